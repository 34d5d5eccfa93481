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
	"net/http"

	"github.com/Gaurav-Gosain/uigate/nav"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
)

// baseScope exposes the wrapped handler under a base path. Requests
// outside the base path are answered with 404, the bare base path
// is redirected to its slash-terminated variant.
type baseScope struct {
	base  nav.BasePath
	next  http.Handler
	strip http.Handler
}

func (bs *baseScope) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if bs.base == "" {
		bs.next.ServeHTTP(w, req)
		return
	}
	if req.URL.Path == bs.base.String() {
		target := bs.base.String() + "/"
		if req.URL.RawQuery != "" {
			target += "?" + req.URL.RawQuery
		}
		http.Redirect(w, req, target, http.StatusPermanentRedirect)
		return
	}
	if !bs.base.Scopes(req.URL.Path) {
		uniresp.WriteJSONErrorResponse(
			w, uniresp.NewActionError("path outside of %s", bs.base), http.StatusNotFound)
		return
	}
	bs.strip.ServeHTTP(w, req)
}

func withBasePath(base nav.BasePath, handler http.Handler) http.Handler {
	return &baseScope{
		base:  base,
		next:  handler,
		strip: http.StripPrefix(base.String(), handler),
	}
}

// requestIDMiddleware makes sure each request (and its response)
// carries an ID so it can be tracked through the backend.
func requestIDMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reqID := ctx.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
			ctx.Request.Header.Set(RequestIDHeader, reqID)
		}
		ctx.Header(RequestIDHeader, reqID)
		ctx.Next()
	}
}
