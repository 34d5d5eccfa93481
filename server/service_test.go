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

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gaurav-Gosain/uigate/config"
	"github.com/Gaurav-Gosain/uigate/globctx"
	"github.com/Gaurav-Gosain/uigate/proxy"
	"github.com/Gaurav-Gosain/uigate/reporting"
	"github.com/Gaurav-Gosain/uigate/ui"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu      sync.Mutex
	records []reporting.Timescalable
}

func (rw *recordingWriter) AddTableWriter(tableName string) {}

func (rw *recordingWriter) Write(item reporting.Timescalable) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.records = append(rw.records, item)
}

func (rw *recordingWriter) navigations() []*reporting.NavigationReport {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	ans := make([]*reporting.NavigationReport, 0, len(rw.records))
	for _, rec := range rw.records {
		if nr, ok := rec.(*reporting.NavigationReport); ok {
			ans = append(ans, nr)
		}
	}
	return ans
}

func createTestConf(t *testing.T, basePath string) *config.Configuration {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ui.IndexFile), []byte("<html>ui</html>"), 0644))
	return &config.Configuration{
		ServerHost: "localhost",
		ServerPort: 8080,
		TimeZone:   "UTC",
		BasePath:   basePath,
		UIDir:      dir,
	}
}

func createTestEngine(t *testing.T, conf *config.Configuration) (http.Handler, *recordingWriter) {
	gin.SetMode(gin.TestMode)
	writer := &recordingWriter{}
	globalCtx := globctx.NewGlobalContext(context.Background())
	globalCtx.TimezoneLocation = time.UTC
	globalCtx.ReportingWriter = writer
	globalCtx.NavigationLogger = globctx.NewNavigationLogger(writer)
	globalCtx.Cache = createCache(globalCtx, &conf.Cache)
	bundle, err := ui.New(conf.UIDir, conf.Backend.PathPrefixOrDefault())
	require.NoError(t, err)
	engine, err := InitEngine(conf, globalCtx, bundle)
	require.NoError(t, err)
	return engine, writer
}

func doRequest(handler http.Handler, method, url string, body io.Reader) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, url, body))
	return rec
}

func TestBasePathScope(t *testing.T) {
	engine, _ := createTestEngine(t, createTestConf(t, "/app"))

	rec := doRequest(engine, http.MethodGet, "/app", nil)
	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/app/", rec.Header().Get("Location"))

	rec = doRequest(engine, http.MethodGet, "/app?lang=cs", nil)
	assert.Equal(t, "/app/?lang=cs", rec.Header().Get("Location"))

	rec = doRequest(engine, http.MethodGet, "/app/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>ui</html>", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, doRequest(engine, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(engine, http.MethodGet, "/application", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(engine, http.MethodGet, "/ping", nil).Code)
}

func TestSPAFallbackUnderBase(t *testing.T) {
	engine, _ := createTestEngine(t, createTestConf(t, "/app"))
	rec := doRequest(engine, http.MethodGet, "/app/c/6f1a", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>ui</html>", rec.Body.String())
}

func TestRequestIDAdded(t *testing.T) {
	engine, _ := createTestEngine(t, createTestConf(t, "/app"))
	rec := doRequest(engine, http.MethodGet, "/app/ping", nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/app/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
}

func TestGotoAppliesBasePath(t *testing.T) {
	engine, writer := createTestEngine(t, createTestConf(t, "/app"))

	tests := []struct {
		query    string
		status   int
		location string
	}{
		{"url=/settings", http.StatusFound, "/app/settings"},
		{"url=/app/settings", http.StatusFound, "/app/settings"},
		{"url=/app", http.StatusFound, "/app"},
		{"url=/application", http.StatusFound, "/app/application"},
		{"url=/", http.StatusFound, "/app/"},
		{"url=%2Fsettings%3Ftab%3D2&status=301", http.StatusMovedPermanently, "/app/settings?tab=2"},
		{"url=/login&status=303", http.StatusSeeOther, "/app/login"},
	}
	for _, tc := range tests {
		rec := doRequest(engine, http.MethodGet, "/app/goto?"+tc.query, nil)
		assert.Equal(t, tc.status, rec.Code, tc.query)
		assert.Equal(t, tc.location, rec.Header().Get("Location"), tc.query)
	}
	navs := writer.navigations()
	require.Len(t, navs, len(tests))
	assert.Equal(t, NavKindGoto, navs[0].Kind)
	assert.Equal(t, "/settings", navs[0].Requested)
	assert.Equal(t, "/app/settings", navs[0].Resolved)
	assert.True(t, navs[0].Rewritten())
	assert.False(t, navs[1].Rewritten())
}

func TestGotoRejectsInvalidInput(t *testing.T) {
	engine, writer := createTestEngine(t, createTestConf(t, "/app"))
	for _, query := range []string{
		"",
		"url=https://example.com/",
		"url=//example.com/x",
		"url=/x&status=200",
		"url=/x&status=304",
		"url=/x&status=305",
		"url=/x&status=abc",
	} {
		rec := doRequest(engine, http.MethodGet, "/app/goto?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		assert.Empty(t, rec.Header().Get("Location"), query)
	}
	assert.Empty(t, writer.navigations())
}

func TestGotoExternalAllowed(t *testing.T) {
	conf := createTestConf(t, "/app")
	conf.AllowExternalGoto = true
	engine, _ := createTestEngine(t, conf)
	rec := doRequest(engine, http.MethodGet, "/app/goto?url=https%3A%2F%2Fexample.com%2Fdocs", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/docs", rec.Header().Get("Location"))
}

func TestGotoWithoutBasePath(t *testing.T) {
	engine, _ := createTestEngine(t, createTestConf(t, ""))
	rec := doRequest(engine, http.MethodGet, "/goto?url=/settings", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/settings", rec.Header().Get("Location"))
}

func TestNavigateResolves(t *testing.T) {
	engine, writer := createTestEngine(t, createTestConf(t, "/app"))
	rec := doRequest(
		engine,
		http.MethodPost,
		"/app/navigate",
		strings.NewReader(`{"url": "/c/1", "options": {"replaceState": true, "state": {"n": 1}}}`),
	)
	require.Equal(t, http.StatusOK, rec.Code)
	var ans map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.Equal(t, "/app/c/1", ans["location"])
	assert.Equal(
		t,
		map[string]any{"replaceState": true, "state": map[string]any{"n": float64(1)}},
		ans["options"],
	)
	navs := writer.navigations()
	require.Len(t, navs, 1)
	assert.Equal(t, NavKindNavigate, navs[0].Kind)
}

func TestNavigateWithoutOptions(t *testing.T) {
	engine, _ := createTestEngine(t, createTestConf(t, "/app"))
	rec := doRequest(engine, http.MethodPost, "/app/navigate", strings.NewReader(`{"url": "settings"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var ans map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.Equal(t, "settings", ans["location"])
	assert.Nil(t, ans["options"])
}

func TestNavigateRejectsInvalidInput(t *testing.T) {
	engine, _ := createTestEngine(t, createTestConf(t, "/app"))
	for _, body := range []string{
		`{"url": `,
		`{"options": {}}`,
		`{"url": "https://example.com"}`,
	} {
		rec := doRequest(engine, http.MethodPost, "/app/navigate", strings.NewReader(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestNavigationRateLimit(t *testing.T) {
	conf := createTestConf(t, "/app")
	conf.NavigationLimit = proxy.Limit{ReqPerTimeThreshold: 1, ReqCheckingIntervalSecs: 3600}
	engine, _ := createTestEngine(t, conf)
	assert.Equal(t, http.StatusFound, doRequest(engine, http.MethodGet, "/app/goto?url=/a", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(engine, http.MethodGet, "/app/goto?url=/a", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(engine, http.MethodGet, "/app/ping", nil).Code)
}

func TestAppConfigScript(t *testing.T) {
	engine, _ := createTestEngine(t, createTestConf(t, "/app"))
	rec := doRequest(engine, http.MethodGet, "/app/app-config.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, AppConfigVar+" = "))
	rawJSON := strings.TrimSuffix(strings.TrimPrefix(body, AppConfigVar+" = "), ";\n")
	var ans map[string]any
	require.NoError(t, json.Unmarshal([]byte(rawJSON), &ans))
	assert.Equal(t, "/app", ans["basePath"])
	assert.Equal(t, "dev", ans["version"])
	assert.Equal(t, "unknown", ans["buildHash"])
}

func TestVersionAndPing(t *testing.T) {
	engine, writer := createTestEngine(t, createTestConf(t, "/app"))
	rec := doRequest(engine, http.MethodGet, "/app/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ans map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.Equal(t, "dev", ans["version"])
	assert.Equal(t, "/app", ans["basePath"])
	assert.NotEmpty(t, ans["uptime"])

	rec = doRequest(engine, http.MethodGet, "/app/ping", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": true}`, rec.Body.String())
	writer.mu.Lock()
	defer writer.mu.Unlock()
	require.Len(t, writer.records, 1)
	assert.Equal(t, reporting.PingTable, writer.records[0].GetTableName())
}

func TestBackendPassthrough(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/api/auth":
			http.Redirect(w, req, "/login?next=%2Fc%2F1", http.StatusFound)
		default:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"path": "` + req.URL.Path + `", "reqId": "` + req.Header.Get(RequestIDHeader) + `"}`))
		}
	}))
	defer backend.Close()

	conf := createTestConf(t, "/app")
	conf.Backend = &proxy.BackendConf{
		BackendURL:     backend.URL,
		PathPrefix:     "/api",
		ReqTimeoutSecs: 5,
	}
	engine, _ := createTestEngine(t, conf)

	req := httptest.NewRequest(http.MethodGet, "/app/api/models", nil)
	req.Header.Set(RequestIDHeader, "req-2")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path": "/api/models", "reqId": "req-2"}`, rec.Body.String())

	rec = doRequest(engine, http.MethodGet, "/app/api/auth", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/app/login?next=%2Fc%2F1", rec.Header().Get("Location"))
}

func TestBackendCacheKeepsUsersApart(t *testing.T) {
	var calls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		user := req.Header.Get("Authorization")
		if c, err := req.Cookie("session"); err == nil {
			user = c.Value
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user": "` + user + `"}`))
	}))
	defer backend.Close()

	conf := createTestConf(t, "/app")
	conf.Backend = &proxy.BackendConf{
		BackendURL:     backend.URL,
		PathPrefix:     "/api",
		ReqTimeoutSecs: 5,
	}
	conf.Cache = proxy.CacheConf{
		FileRootPath:   t.TempDir(),
		TTLSecs:        60,
		RespectCookies: []string{"session"},
	}
	engine, _ := createTestEngine(t, conf)

	get := func(header, value string) string {
		req := httptest.NewRequest(http.MethodGet, "/app/api/me", nil)
		req.Header.Set(header, value)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}
	assert.JSONEq(t, `{"user": "Bearer alice"}`, get("Authorization", "Bearer alice"))
	assert.JSONEq(t, `{"user": "Bearer bob"}`, get("Authorization", "Bearer bob"))
	assert.JSONEq(t, `{"user": "carol"}`, get("Cookie", "session=carol"))
	assert.JSONEq(t, `{"user": "dave"}`, get("Cookie", "session=dave"))
	assert.Equal(t, int32(4), calls.Load())

	assert.JSONEq(t, `{"user": "Bearer alice"}`, get("Authorization", "Bearer alice"))
	assert.JSONEq(t, `{"user": "carol"}`, get("Cookie", "session=carol"))
	assert.Equal(t, int32(4), calls.Load())
}
