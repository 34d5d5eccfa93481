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

package null

import (
	"net/http"

	"github.com/Gaurav-Gosain/uigate/proxy"
)

// NullCache never stores anything; every Get is a miss.
type NullCache struct{}

func (rc *NullCache) Get(req *http.Request, opts ...func(*proxy.CacheEntryOptions)) (proxy.CacheEntry, error) {
	return proxy.CacheEntry{}, proxy.ErrCacheMiss
}

func (rc *NullCache) Set(req *http.Request, value proxy.CacheEntry, opts ...func(*proxy.CacheEntryOptions)) error {
	return nil
}

func New() *NullCache {
	return &NullCache{}
}
