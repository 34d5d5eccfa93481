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

package globctx

import (
	"net/http"

	"github.com/Gaurav-Gosain/uigate/reporting"
	"github.com/rs/zerolog/log"
)

// NavigationLogger writes navigation reports both to the application
// log and to the reporting writer.
type NavigationLogger struct {
	tDBWriter reporting.ReportingWriter
}

func (b *NavigationLogger) Log(req *http.Request, report *reporting.NavigationReport) {
	b.tDBWriter.Write(report)
	log.Info().
		Str("id", report.ID.String()).
		Str("kind", report.Kind).
		Str("requested", report.Requested).
		Str("resolved", report.Resolved).
		Bool("rewritten", report.Rewritten()).
		Int("status", report.Status).
		Str("clientIP", req.RemoteAddr).
		Str("requestID", req.Header.Get("X-Request-ID")).
		Msg("navigation")
}

func NewNavigationLogger(tDBWriter reporting.ReportingWriter) *NavigationLogger {
	return &NavigationLogger{
		tDBWriter: tDBWriter,
	}
}
