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

// Package redirect provides a navigator which turns navigation
// into an HTTP redirect of the current gin request.
package redirect

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var ErrNoRequest = errors.New("no request to redirect")

// redirectStatuses lists codes for which browsers follow
// the Location header.
var redirectStatuses = map[int]bool{
	http.StatusMovedPermanently:  true,
	http.StatusFound:             true,
	http.StatusSeeOther:          true,
	http.StatusTemporaryRedirect: true,
	http.StatusPermanentRedirect: true,
}

func IsRedirectStatus(status int) bool {
	return redirectStatuses[status]
}

type Options struct {
	Ctx *gin.Context

	// Status is one of 301, 302, 303, 307, 308; zero means http.StatusFound
	Status int

	// ReplaceState asks for a redirect which makes the browser
	// re-issue the request as GET (303).
	ReplaceState bool
}

func (opts *Options) status() int {
	if opts.ReplaceState {
		return http.StatusSeeOther
	}
	if opts.Status == 0 {
		return http.StatusFound
	}
	return opts.Status
}

type Outcome struct {
	Location string `json:"location"`
	Status   int    `json:"status"`
}

// Navigator redirects the request found in Options.Ctx.
type Navigator struct{}

func (n Navigator) Navigate(url string, opts *Options) (Outcome, error) {
	if opts == nil || opts.Ctx == nil {
		return Outcome{}, ErrNoRequest
	}
	status := opts.status()
	if !IsRedirectStatus(status) {
		return Outcome{}, fmt.Errorf("cannot redirect to %s: invalid status %d", url, status)
	}
	opts.Ctx.Redirect(status, url)
	return Outcome{Location: url, Status: status}, nil
}
