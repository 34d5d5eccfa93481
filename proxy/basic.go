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
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Gaurav-Gosain/uigate/nav"
	"github.com/czcorpus/cnc-gokit/httpclient"
	"github.com/rs/zerolog/log"
)

// hopHeaders are removed when passing requests and responses through
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func removeHopHeaders(headers http.Header) {
	for _, h := range hopHeaders {
		headers.Del(h)
	}
}

// locationWriter is a navigator setting the Location header
// of a backend response.
type locationWriter struct {
	frontendURL *url.URL
}

func (lw locationWriter) Navigate(location string, headers http.Header) (string, error) {
	if lw.frontendURL != nil && strings.HasPrefix(location, "/") {
		location = lw.frontendURL.Scheme + "://" + lw.frontendURL.Host + location
	}
	headers.Set("Location", location)
	return location, nil
}

type APIProxy struct {
	BackendURL  *url.URL
	FrontendURL *url.URL
	client      *http.Client
	locations   *nav.Dispatcher[http.Header, string]
}

// transformRedirect keeps redirects issued by the backend within
// the gateway's base path. Both root-relative locations and
// absolute locations pointing to the backend host are affected,
// anything else is left as it is.
func (proxy *APIProxy) transformRedirect(headers http.Header) error {
	location := headers.Get("Location")
	if location == "" {
		return nil
	}
	redirectURL, err := url.Parse(location)
	if err != nil {
		return err
	}
	if redirectURL.Host != "" && redirectURL.Host != proxy.BackendURL.Host {
		return nil
	}
	// situations like this:
	// the gateway serves the UI at https://example.com/chat
	// the backend runs at http://127.0.0.1:8081 and redirects to
	// either /auth or http://127.0.0.1:8081/auth
	// => the browser must be sent to /chat/auth
	redirectURL.Scheme = ""
	redirectURL.Host = ""
	redirectURL.User = nil
	_, err = proxy.locations.Dispatch(redirectURL.String(), headers)
	return err
}

// Request sends the request to the backend. The urlPath is relative
// to the backend URL.
func (proxy *APIProxy) Request(
	urlPath string,
	args url.Values,
	method string,
	headers http.Header,
	rbody io.Reader,
) *ProxiedResponse {

	targetURL := proxy.BackendURL.JoinPath(urlPath)
	targetURL.RawQuery = args.Encode()
	req, err := http.NewRequest(method, targetURL.String(), rbody)
	if err != nil {
		return &ProxiedResponse{
			BodyReader: EmptyReadCloser{},
			Headers:    http.Header{},
			StatusCode: http.StatusInternalServerError,
			Err:        err,
		}
	}
	req.Header = headers.Clone()
	removeHopHeaders(req.Header)
	resp, err := proxy.client.Do(req)
	if err != nil {
		return &ProxiedResponse{
			BodyReader: EmptyReadCloser{},
			Headers:    http.Header{},
			StatusCode: http.StatusBadGateway,
			Err:        err,
		}
	}
	log.Debug().
		Str("url", targetURL.String()).
		Int("status", resp.StatusCode).
		Msgf(">>> Proxy request >>>")

	ansHeaders := resp.Header
	removeHopHeaders(ansHeaders)
	if err := proxy.transformRedirect(ansHeaders); err != nil {
		log.Error().Err(err).Msg("failed to rewrite backend redirect, keeping the original")
	}
	return &ProxiedResponse{
		BodyReader: resp.Body,
		Headers:    ansHeaders,
		StatusCode: resp.StatusCode,
	}
}

func NewAPIProxy(conf *BackendConf, base nav.BasePath) (*APIProxy, error) {
	backendURL, err := url.Parse(conf.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create APIProxy: %w", err)
	}
	var frontendURL *url.URL
	if conf.FrontendURL != "" {
		frontendURL, err = url.Parse(conf.FrontendURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create APIProxy: %w", err)
		}
	}
	client := httpclient.New(
		httpclient.WithIdleConnTimeout(time.Duration(conf.IdleConnTimeoutSecs) * time.Second),
	)
	// redirects must reach the browser (with rewritten Location)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	client.Timeout = time.Duration(conf.ReqTimeoutSecs) * time.Second
	return &APIProxy{
		BackendURL:  backendURL,
		FrontendURL: frontendURL,
		client:      client,
		locations: nav.NewDispatcher[http.Header, string](
			base, locationWriter{frontendURL: frontendURL}),
	}, nil
}
