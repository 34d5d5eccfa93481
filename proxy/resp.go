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
	"io"
	"net/http"
	"strings"
)

type EmptyReadCloser struct{}

func (erc EmptyReadCloser) Read(p []byte) (int, error) {
	return 0, io.EOF
}

func (erc EmptyReadCloser) Close() error {
	return nil
}

// ProxiedResponse is a backend response with a not yet consumed body
type ProxiedResponse struct {
	BodyReader io.ReadCloser
	Headers    http.Header
	StatusCode int
	Err        error
}

func (pr *ProxiedResponse) GetBodyReader() io.ReadCloser {
	return pr.BodyReader
}

func (pr *ProxiedResponse) CloseBodyReader() error {
	return pr.BodyReader.Close()
}

func (pr *ProxiedResponse) GetHeaders() http.Header {
	return pr.Headers
}

func (pr *ProxiedResponse) GetStatusCode() int {
	return pr.StatusCode
}

func (pr *ProxiedResponse) Error() error {
	return pr.Err
}

func (pr *ProxiedResponse) IsDataStream() bool {
	return strings.Contains(pr.Headers.Get("Content-Type"), "text/event-stream")
}
