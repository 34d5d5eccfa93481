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

package reporting

import (
	"encoding/json"
	"time"

	"github.com/czcorpus/hltscl"
	"github.com/google/uuid"
)

// NavigationReport describes a single navigation dispatched
// by the gateway (a redirect or a resolution request).
// maxReportedURLLen limits the length of URLs stored
// in the navigation table.
const maxReportedURLLen = 2048

func clipURL(u string) string {
	if len(u) <= maxReportedURLLen {
		return u
	}
	return u[:maxReportedURLLen]
}

type NavigationReport struct {
	ID        uuid.UUID
	DateTime  time.Time
	Kind      string
	Requested string
	Resolved  string
	Status    int
}

// Rewritten tells whether the base path has been applied
func (report *NavigationReport) Rewritten() bool {
	return report.Requested != report.Resolved
}

func (report *NavigationReport) ToTimescaleDB(tableWriter *hltscl.TableWriter) *hltscl.Entry {
	rewritten := 0
	if report.Rewritten() {
		rewritten = 1
	}
	return tableWriter.NewEntry(report.DateTime).
		Str("id", report.ID.String()).
		Str("kind", report.Kind).
		Str("requested", clipURL(report.Requested)).
		Str("resolved", clipURL(report.Resolved)).
		Int("rewritten", rewritten).
		Int("status", report.Status)
}

func (report *NavigationReport) GetTime() time.Time {
	return report.DateTime
}

func (report *NavigationReport) GetTableName() string {
	return NavigationTable
}

func (report *NavigationReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		DateTime  time.Time `json:"dateTime"`
		Kind      string    `json:"kind"`
		Requested string    `json:"requested"`
		Resolved  string    `json:"resolved"`
		Rewritten bool      `json:"rewritten"`
		Status    int       `json:"status"`
	}{
		ID:        report.ID.String(),
		DateTime:  report.DateTime,
		Kind:      report.Kind,
		Requested: report.Requested,
		Resolved:  report.Resolved,
		Rewritten: report.Rewritten(),
		Status:    report.Status,
	})
}

func NewNavigationReport(kind, requested, resolved string, status int) *NavigationReport {
	return &NavigationReport{
		ID:        uuid.New(),
		DateTime:  time.Now(),
		Kind:      kind,
		Requested: requested,
		Resolved:  resolved,
		Status:    status,
	}
}

// ----

type PingReport struct {
	DateTime time.Time
	ProcTime float64
	Status   int
}

func (report *PingReport) ToTimescaleDB(tableWriter *hltscl.TableWriter) *hltscl.Entry {
	return tableWriter.NewEntry(report.DateTime).
		Str("service", "ping").
		Float("proc_time", report.ProcTime).
		Int("status", report.Status)
}

func (report *PingReport) GetTime() time.Time {
	return report.DateTime
}

func (report *PingReport) GetTableName() string {
	return PingTable
}

func (report *PingReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DateTime time.Time `json:"dateTime"`
		ProcTime float64   `json:"procTime"`
		Status   int       `json:"status"`
	}{
		DateTime: report.DateTime,
		ProcTime: report.ProcTime,
		Status:   report.Status,
	})
}
