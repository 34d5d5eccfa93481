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

import "github.com/rs/zerolog/log"

// NullWriter is used when no TimescaleDB is configured.
// Records are just logged (debug level).
type NullWriter struct {
}

func (sw *NullWriter) Write(item Timescalable) {
	log.Debug().
		Bool("fallbackReporting", true).
		Str("table", item.GetTableName()).
		Any("record", item).
		Msg("report record")
}

func (sw *NullWriter) AddTableWriter(tableName string) {
	log.Info().
		Bool("fallbackReporting", true).
		Msgf("NullWriter.AddTableWriter(%s)", tableName)
}
