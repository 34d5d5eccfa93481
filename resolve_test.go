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

package main

import (
	"bytes"
	"testing"

	"github.com/Gaurav-Gosain/uigate/buildinfo"
	"github.com/Gaurav-Gosain/uigate/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunResolve(t *testing.T) {
	tests := []struct {
		base     nav.BasePath
		url      string
		expected string
	}{
		{"/app", "/settings", "/app/settings\n"},
		{"/app", "/app/settings", "/app/settings\n"},
		{"/app", "https://example.com/", "https://example.com/\n"},
		{"", "/settings", "/settings\n"},
	}
	for _, tc := range tests {
		var buff bytes.Buffer
		require.NoError(t, runResolve(&buff, tc.base, tc.url))
		assert.Equal(t, tc.expected, buff.String())
	}
}

func TestRunResolveMissingURL(t *testing.T) {
	var buff bytes.Buffer
	assert.Error(t, runResolve(&buff, "/app", ""))
	assert.Empty(t, buff.String())
}

func TestPrintVersion(t *testing.T) {
	var buff bytes.Buffer
	printVersion(&buff, buildinfo.Info{Version: "1.2.0", BuildHash: "abc123", BasePath: "/app"})
	assert.Equal(t, "uigate 1.2.0\nbuild hash: abc123\nbuilt-in base path: /app\n", buff.String())
}
