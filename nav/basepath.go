// Copyright 2026 Gaurav Gosain
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nav

import "strings"

// BasePath is a URL path prefix under which the whole application
// is served. An empty value means the application lives at the root.
// Canonical values are either empty or start with a slash and have
// no trailing slash (e.g. "/app", "/tools/chat").
type BasePath string

// Scopes tells whether url is already placed under the base path,
// i.e. it is equal to the base path or continues with a slash
// right after it. An empty base path scopes nothing.
func (bp BasePath) Scopes(url string) bool {
	if bp == "" {
		return false
	}
	base := string(bp)
	return url == base || strings.HasPrefix(url, base+"/")
}

// Apply returns the URL a navigator should receive for url.
// Only root-relative URLs are rewritten and only when they
// are not already scoped. Note that a URL sharing the base path
// just as a string prefix ("/application" vs. "/app") is not
// scoped and gets the prefix prepended.
func (bp BasePath) Apply(url string) string {
	if !strings.HasPrefix(url, "/") {
		return url
	}
	if bp.Scopes(url) {
		return url
	}
	return string(bp) + url
}

func (bp BasePath) String() string {
	return string(bp)
}

// NormalizeBasePath converts an operator-provided value into
// the canonical form expected by BasePath. Empty input and "/"
// both produce an empty base path.
func NormalizeBasePath(raw string) BasePath {
	value := strings.TrimSpace(raw)
	value = strings.Trim(value, "/")
	if value == "" {
		return ""
	}
	return BasePath("/" + value)
}

// IsCanonical tests whether the value can be used as a BasePath
// without further normalization.
func IsCanonical(raw string) bool {
	return string(NormalizeBasePath(raw)) == raw
}
