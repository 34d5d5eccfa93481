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
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	DfltReqTimeoutSecs      = 60
	DfltIdleConnTimeoutSecs = 30
	DfltPathPrefix          = "/api"
)

// Limit specifies a maximum number of requests within
// a checking interval. Zero threshold means "no limit".
type Limit struct {
	ReqPerTimeThreshold     int `json:"reqPerTimeThreshold"`
	ReqCheckingIntervalSecs int `json:"reqCheckingIntervalSecs"`
	BurstLimit              int `json:"burstLimit"`
}

func (m Limit) ReqCheckingInterval() time.Duration {
	return time.Duration(m.ReqCheckingIntervalSecs) * time.Second
}

func (m Limit) NormLimitPerSec() rate.Limit {
	return rate.Limit(float64(m.ReqPerTimeThreshold) / float64(m.ReqCheckingIntervalSecs))
}

func (m Limit) IsUnlimited() bool {
	return m.ReqPerTimeThreshold == 0
}

// NewLimiter creates a limiter matching the limit. For an unlimited
// configuration, the returned limiter allows any rate.
func (m Limit) NewLimiter() *rate.Limiter {
	if m.IsUnlimited() {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := m.BurstLimit
	if burst == 0 {
		burst = m.ReqPerTimeThreshold
	}
	return rate.NewLimiter(m.NormLimitPerSec(), burst)
}

func (m Limit) Validate(context string) error {
	if m.ReqPerTimeThreshold < 0 || m.ReqCheckingIntervalSecs < 0 || m.BurstLimit < 0 {
		return fmt.Errorf("%s: limit values must not be negative", context)
	}
	if m.ReqPerTimeThreshold > 0 && m.ReqCheckingIntervalSecs == 0 {
		return fmt.Errorf("%s: missing reqCheckingIntervalSecs", context)
	}
	return nil
}

// LimitMiddleware rejects requests exceeding the limiter's rate
// with http.StatusTooManyRequests.
func LimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !limiter.Allow() {
			uniresp.RespondWithErrorJSON(
				ctx,
				fmt.Errorf("too many requests"),
				http.StatusTooManyRequests,
			)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// BackendConf configures the API server the UI talks to.
type BackendConf struct {

	// BackendURL is the internal address of the API server
	BackendURL string `json:"backendUrl"`

	// FrontendURL is the public address of the gateway (scheme + host).
	// If set, rewritten redirect locations are made absolute.
	FrontendURL string `json:"frontendUrl"`

	// PathPrefix is the (base path relative) prefix of routes
	// passed to the backend.
	PathPrefix string `json:"pathPrefix"`

	ReqTimeoutSecs      int   `json:"reqTimeoutSecs"`
	IdleConnTimeoutSecs int   `json:"idleConnTimeoutSecs"`
	Limit               Limit `json:"limit"`
}

// PathPrefixOrDefault returns the configured path prefix. It can be
// called on a nil config too.
func (bc *BackendConf) PathPrefixOrDefault() string {
	if bc == nil || bc.PathPrefix == "" {
		return DfltPathPrefix
	}
	return bc.PathPrefix
}

func (bc *BackendConf) Validate(context string) error {
	if bc.BackendURL == "" {
		return fmt.Errorf("%s.backendUrl is missing", context)
	}
	if _, err := url.Parse(bc.BackendURL); err != nil {
		return fmt.Errorf("%s.backendUrl is invalid: %w", context, err)
	}
	if bc.FrontendURL != "" {
		if _, err := url.Parse(bc.FrontendURL); err != nil {
			return fmt.Errorf("%s.frontendUrl is invalid: %w", context, err)
		}
	}
	if bc.ReqTimeoutSecs < 0 || bc.IdleConnTimeoutSecs < 0 {
		return fmt.Errorf("%s: timeouts must not be negative", context)
	}
	return bc.Limit.Validate(context + ".limit")
}

func WriteError(ctx *gin.Context, err error, status int) {
	if ctx.Request.Header.Get("content-type") == "application/json" ||
		ctx.Request.Header.Get("content-type") == "text/event-stream" {
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf("failed to proxy request: %s", err),
			status,
		)

	} else {
		http.Error(
			ctx.Writer,
			fmt.Sprintf("Failed to proxy request: %s", err),
			status,
		)
	}
}
