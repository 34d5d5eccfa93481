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
	"fmt"
	"time"

	"github.com/czcorpus/hltscl"
)

const (
	NavigationTable = "uigate_navigation"
	PingTable       = "uigate_ping"
)

// Conf configures the TimescaleDB connection used for reporting
const (
	DfltQueueSize        = 500
	DfltQueryTimeoutSecs = 10
)

type Conf struct {
	DB hltscl.PgConf `json:"db"`

	// QueueSize is the per-table number of records waiting
	// to be written. Records over the limit are dropped.
	QueueSize int `json:"queueSize"`

	QueryTimeoutSecs int `json:"queryTimeoutSecs"`
}

func (conf *Conf) QueueLen() int {
	if conf == nil || conf.QueueSize <= 0 {
		return DfltQueueSize
	}
	return conf.QueueSize
}

func (conf *Conf) QueryTimeout() time.Duration {
	if conf == nil || conf.QueryTimeoutSecs <= 0 {
		return DfltQueryTimeoutSecs * time.Second
	}
	return time.Duration(conf.QueryTimeoutSecs) * time.Second
}

func (conf *Conf) Validate(context string) error {
	if conf == nil {
		return nil
	}
	if conf.QueueSize < 0 {
		return fmt.Errorf("%s.queueSize must not be negative", context)
	}
	if conf.QueryTimeoutSecs < 0 {
		return fmt.Errorf("%s.queryTimeoutSecs must not be negative", context)
	}
	return nil
}

// Timescalable represents any type which is able
// to export its data in a format required by TimescaleDB writer.
type Timescalable interface {

	// ToTimescaleDB defines a method providing data
	// to be written to a database.
	ToTimescaleDB(tableWriter *hltscl.TableWriter) *hltscl.Entry

	// GetTime provides a date and time when the record
	// was created.
	GetTime() time.Time

	// GetTableName provides a destination table name
	GetTableName() string

	// MarshalJSON provides a way how to convert the value into JSON.
	// This is mostly used for logging and debugging.
	MarshalJSON() ([]byte, error)
}

type ReportingWriter interface {
	Write(item Timescalable)
	AddTableWriter(tableName string)
}
