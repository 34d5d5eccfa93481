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
package proxy

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DfltCacheTTLSecs = 300
)

var ErrCacheMiss = errors.New("cache miss")

// AuthHeaders are request headers which always take part
// in cache keys.
var AuthHeaders = []string{"Authorization"}

// CacheEntry is a stored backend response
type CacheEntry struct {
	Status  int
	Headers http.Header
	Data    []byte

	// Expires is filled in by a cache backend on Set
	Expires time.Time
}

func (e CacheEntry) IsExpired(now time.Time) bool {
	return !e.Expires.IsZero() && now.After(e.Expires)
}

type CacheEntryOptions struct {

	// RespectCookies lists cookies which make a response
	// user specific (and thus part of the cache key)
	RespectCookies []string

	// VaryHeaders lists request headers (besides AuthHeaders)
	// which make a response user specific
	VaryHeaders []string
}

func WithRespectCookies(names ...string) func(*CacheEntryOptions) {
	return func(opts *CacheEntryOptions) {
		opts.RespectCookies = names
	}
}

func WithVaryHeaders(names ...string) func(*CacheEntryOptions) {
	return func(opts *CacheEntryOptions) {
		opts.VaryHeaders = names
	}
}

type Cache interface {
	Get(req *http.Request, opts ...func(*CacheEntryOptions)) (CacheEntry, error)
	Set(req *http.Request, value CacheEntry, opts ...func(*CacheEntryOptions)) error
}

func keyHeaders(opts *CacheEntryOptions) []string {
	ans := make([]string, 0, len(AuthHeaders)+len(opts.VaryHeaders))
	seen := make(map[string]bool)
	for _, h := range append(append([]string{}, AuthHeaders...), opts.VaryHeaders...) {
		canon := http.CanonicalHeaderKey(h)
		if !seen[canon] {
			seen[canon] = true
			ans = append(ans, canon)
		}
	}
	sort.Strings(ans)
	return ans
}

// GenerateCacheId derives a cache key from the request path and
// query plus all the request properties identifying a user
// (auth headers, vary headers, respected cookies).
func GenerateCacheId(req *http.Request, opts *CacheEntryOptions) []byte {
	h := sha1.New()
	fmt.Fprintf(h, "%s\n%s\n", req.URL.Path, req.URL.Query().Encode())
	for _, name := range keyHeaders(opts) {
		if v := req.Header.Values(name); len(v) > 0 {
			fmt.Fprintf(h, "h:%s=%s\n", name, strings.Join(v, ","))
		}
	}
	hashCookies := make([]string, 0, len(opts.RespectCookies))
	for _, respectCookie := range opts.RespectCookies {
		cookie, err := req.Cookie(respectCookie)
		if err == nil {
			hashCookies = append(hashCookies, cookie.Name+"="+cookie.Value)
		}
	}
	sort.Strings(hashCookies)
	for _, c := range hashCookies {
		fmt.Fprintf(h, "c:%s\n", c)
	}
	return h.Sum(nil)
}

// cacheControl splits a Cache-Control header into lowercase
// directives mapped to their (possibly empty) arguments.
func cacheControl(value string) map[string]string {
	ans := make(map[string]string)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		k, v, _ := strings.Cut(item, "=")
		ans[strings.ToLower(strings.TrimSpace(k))] = strings.Trim(strings.TrimSpace(v), `"`)
	}
	return ans
}

// ShouldReadFromCache tests if the provided request and options match
// caching conditions for reading.
func ShouldReadFromCache(req *http.Request, opts *CacheEntryOptions) bool {
	if req.Method != http.MethodGet {
		return false
	}
	cc := cacheControl(req.Header.Get("Cache-Control"))
	_, noCache := cc["no-cache"]
	_, noStore := cc["no-store"]
	return !noCache && !noStore
}

func isPrivateResponse(headers http.Header) bool {
	if len(headers.Values("Set-Cookie")) > 0 {
		return true
	}
	cc := cacheControl(headers.Get("Cache-Control"))
	for _, d := range []string{"private", "no-store", "no-cache"} {
		if _, ok := cc[d]; ok {
			return true
		}
	}
	if maxAge, ok := cc["max-age"]; ok && maxAge == "0" {
		return true
	}
	return false
}

// ShouldWriteToCache tests if the provided user request and response properties
// make the response a valid candidate for caching. Responses setting cookies
// or marked as private by the backend are never cached.
func ShouldWriteToCache(req *http.Request, value CacheEntry, opts *CacheEntryOptions) bool {
	ans := (value.Status == http.StatusOK || value.Status == http.StatusCreated) &&
		ShouldReadFromCache(req, opts) &&
		!isPrivateResponse(value.Headers) &&
		!strings.Contains(value.Headers.Get("Content-Type"), "text/event-stream")
	log.Debug().
		Str("url", req.URL.String()).
		Bool("cacheable", ans).
		Str("httpCacheControl", req.Header.Get("Cache-Control")).
		Str("respCacheControl", value.Headers.Get("Cache-Control")).
		Msg("testing cacheability")
	return ans
}

// EntryTTL returns how long an entry may be kept. A backend's
// max-age shorter than dflt wins.
func EntryTTL(value CacheEntry, dflt time.Duration) time.Duration {
	cc := cacheControl(value.Headers.Get("Cache-Control"))
	if raw, ok := cc["max-age"]; ok {
		secs, err := strconv.Atoi(raw)
		if err == nil && secs > 0 && time.Duration(secs)*time.Second < dflt {
			return time.Duration(secs) * time.Second
		}
	}
	return dflt
}

type CacheConf struct {
	FileRootPath string `json:"fileRootPath"`
	RedisAddr    string `json:"redisAddr"`
	RedisDB      int    `json:"redisDB"`

	// TTLSecs is the maximum age of cached responses.
	// Zero means DfltCacheTTLSecs.
	TTLSecs int `json:"ttlSecs"`

	// RespectCookies lists cookies (e.g. a session token)
	// distinguishing users of the backend
	RespectCookies []string `json:"respectCookies"`

	// VaryHeaders lists request headers distinguishing users
	// besides the always respected Authorization
	VaryHeaders []string `json:"varyHeaders"`
}

func (cc *CacheConf) IsEnabled() bool {
	return cc.FileRootPath != "" || cc.RedisAddr != ""
}

func (cc *CacheConf) TTL() time.Duration {
	if cc.TTLSecs <= 0 {
		return DfltCacheTTLSecs * time.Second
	}
	return time.Duration(cc.TTLSecs) * time.Second
}

// EntryOptions turns the configuration into options
// for Cache.Get and Cache.Set
func (cc *CacheConf) EntryOptions() []func(*CacheEntryOptions) {
	ans := make([]func(*CacheEntryOptions), 0, 2)
	if len(cc.RespectCookies) > 0 {
		ans = append(ans, WithRespectCookies(cc.RespectCookies...))
	}
	if len(cc.VaryHeaders) > 0 {
		ans = append(ans, WithVaryHeaders(cc.VaryHeaders...))
	}
	return ans
}

func (cc *CacheConf) Validate(context string) error {
	if cc.TTLSecs < 0 {
		return fmt.Errorf("%s.ttlSecs must not be negative", context)
	}
	if cc.FileRootPath != "" && cc.RedisAddr != "" {
		log.Warn().Msgf("%s: both fileRootPath and redisAddr set, file cache will be used", context)
	}
	for _, name := range cc.RespectCookies {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%s.respectCookies contains an empty name", context)
		}
	}
	for _, name := range cc.VaryHeaders {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%s.varyHeaders contains an empty name", context)
		}
	}
	return nil
}

func ApplyCacheOptions(opts ...func(*CacheEntryOptions)) *CacheEntryOptions {
	optsFin := new(CacheEntryOptions)
	for _, fn := range opts {
		fn(optsFin)
	}
	return optsFin
}
