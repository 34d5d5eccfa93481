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
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	CacheStatusHeader = "X-Uigate-Cache"
	streamBufferSize  = 4096
)

// Passthrough forwards UI backend calls (e.g. /api/...) to the
// backend server. Responses to GET requests may be served from
// a cache.
type Passthrough struct {
	basicProxy *APIProxy
	cache      Cache
	pathPrefix string
	cacheOpts  []func(*CacheEntryOptions)
}

func (pt *Passthrough) handlesPath(path string) bool {
	return path == pt.pathPrefix || strings.HasPrefix(path, pt.pathPrefix+"/")
}

func (pt *Passthrough) writeCached(ctx *gin.Context, entry CacheEntry) {
	for k, v := range entry.Headers {
		for _, item := range v {
			ctx.Writer.Header().Add(k, item)
		}
	}
	ctx.Writer.Header().Set(CacheStatusHeader, "hit")
	ctx.Writer.WriteHeader(entry.Status)
	ctx.Writer.Write(entry.Data)
}

func (pt *Passthrough) writeStream(ctx *gin.Context, body io.Reader) {
	buff := make([]byte, streamBufferSize)
	for {
		n, err := body.Read(buff)
		if n > 0 {
			if _, wErr := ctx.Writer.Write(buff[:n]); wErr != nil {
				log.Warn().Err(wErr).Msg("client went away during streaming")
				return
			}
			ctx.Writer.Flush()
		}
		if err == io.EOF {
			return

		} else if err != nil {
			log.Error().Err(err).Msg("failed to read backend stream")
			return
		}
	}
}

func (pt *Passthrough) AnyPath(ctx *gin.Context) {
	path := ctx.Request.URL.Path
	if !pt.handlesPath(path) {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("unknown backend path (expected %s)", pt.pathPrefix), http.StatusNotFound)
		return
	}

	cached, err := pt.cache.Get(ctx.Request, pt.cacheOpts...)
	if err == nil {
		log.Debug().Str("path", path).Msg("serving backend response from cache")
		pt.writeCached(ctx, cached)
		return

	} else if !errors.Is(err, ErrCacheMiss) {
		log.Error().Err(err).Str("path", path).Msg("failed to read cache (ignoring)")
	}

	resp := pt.basicProxy.Request(
		path,
		ctx.Request.URL.Query(),
		ctx.Request.Method,
		ctx.Request.Header,
		ctx.Request.Body,
	)
	if resp.Error() != nil {
		log.Error().Err(resp.Error()).Str("path", path).Msg("backend request failed")
		WriteError(ctx, resp.Error(), resp.GetStatusCode())
		return
	}
	defer resp.CloseBodyReader()

	for k, v := range resp.GetHeaders() {
		for _, item := range v {
			ctx.Writer.Header().Add(k, item)
		}
	}
	ctx.Writer.Header().Set(CacheStatusHeader, "miss")
	ctx.Writer.WriteHeader(resp.GetStatusCode())

	if resp.IsDataStream() {
		pt.writeStream(ctx, resp.GetBodyReader())
		return
	}

	data, err := io.ReadAll(resp.GetBodyReader())
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to read backend response")
		return
	}
	entry := CacheEntry{
		Status:  resp.GetStatusCode(),
		Headers: resp.GetHeaders(),
		Data:    data,
	}
	if err := pt.cache.Set(ctx.Request, entry, pt.cacheOpts...); err != nil {
		log.Error().Err(err).Msg("failed to cache response")
	}
	ctx.Writer.Write(data)
}

func NewPassthrough(
	basicProxy *APIProxy,
	cache Cache,
	pathPrefix string,
	cacheOpts ...func(*CacheEntryOptions),
) *Passthrough {
	if pathPrefix == "" {
		pathPrefix = DfltPathPrefix
		log.Warn().Str("value", DfltPathPrefix).Msg("backend pathPrefix not set, using default")
	}
	return &Passthrough{
		basicProxy: basicProxy,
		cache:      cache,
		pathPrefix: strings.TrimSuffix(pathPrefix, "/"),
		cacheOpts:  cacheOpts,
	}
}
