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
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/czcorpus/hltscl"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// dropLogInterval controls how often (in number of dropped
// records) a warning about a saturated table queue is logged.
const dropLogInterval = 100

// tableQueue buffers records of a single table and forwards them
// to the TimescaleDB table writer. Records are converted to
// entries only once they leave the queue so a request handler
// never waits for the database.
type tableQueue struct {
	name    string
	writer  *hltscl.TableWriter
	queue   chan Timescalable
	sink    chan<- hltscl.Entry
	errCh   <-chan hltscl.WriteError
	written atomic.Int64
	dropped atomic.Int64
}

func (tq *tableQueue) enqueue(item Timescalable) bool {
	select {
	case tq.queue <- item:
		return true
	default:
		n := tq.dropped.Add(1)
		if n == 1 || n%dropLogInterval == 0 {
			log.Warn().
				Str("table", tq.name).
				Int64("dropped", n).
				Msg("reporting queue full, dropping records")
		}
		return false
	}
}

func (tq *tableQueue) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().
				Str("table", tq.name).
				Int64("written", tq.written.Load()).
				Int64("dropped", tq.dropped.Load()).
				Int("pending", len(tq.queue)).
				Msg("closing reporting table writer")
			return
		case item := <-tq.queue:
			select {
			case tq.sink <- *item.ToTimescaleDB(tq.writer):
				tq.written.Add(1)
			case <-ctx.Done():
				tq.dropped.Add(1)
			}
		case err, ok := <-tq.errCh:
			if !ok {
				tq.errCh = nil
				continue
			}
			log.Error().
				Err(err.Err).
				Str("table", tq.name).
				Str("entry", err.Entry.String()).
				Msg("error writing data to TimescaleDB")
		}
	}
}

type TimescaleDBWriter struct {
	ctx    context.Context
	tz     *time.Location
	conn   *pgxpool.Pool
	conf   *Conf
	tables map[string]*tableQueue
}

// Write enqueues the item for its table. The call never blocks,
// records exceeding the queue capacity are dropped and counted.
func (sw *TimescaleDBWriter) Write(item Timescalable) {
	table, ok := sw.tables[item.GetTableName()]
	if !ok {
		log.Warn().Str("table_name", item.GetTableName()).Msg("Undefined table name in writer")
		return
	}
	if table.enqueue(item) {
		log.Debug().Str("table", table.name).Msg("record queued for TimescaleDB")
	}
}

// AddTableWriter activates a writer for the table and starts
// its forwarding goroutine. It must be called before the writer
// is shared with request handlers.
func (sw *TimescaleDBWriter) AddTableWriter(tableName string) {
	twriter := hltscl.NewTableWriter(sw.conn, tableName, "time", sw.tz)
	sink, errCh := twriter.Activate(
		sw.ctx,
		hltscl.WithTimeout(sw.conf.QueryTimeout()),
		hltscl.WithBufferSize(sw.conf.QueueLen()),
	)
	table := &tableQueue{
		name:   tableName,
		writer: twriter,
		queue:  make(chan Timescalable, sw.conf.QueueLen()),
		sink:   sink,
		errCh:  errCh,
	}
	sw.tables[tableName] = table
	go table.run(sw.ctx)
}

func NewReportingWriter(
	ctx context.Context,
	connection *pgxpool.Pool,
	conf *Conf,
	tz *time.Location,
) *TimescaleDBWriter {
	return &TimescaleDBWriter{
		ctx:    ctx,
		tz:     tz,
		conn:   connection,
		conf:   conf,
		tables: make(map[string]*tableQueue),
	}
}

// NewWriter creates a TimescaleDB backed writer for a non-nil
// conf and a NullWriter otherwise. Both have the navigation and
// ping tables registered.
func NewWriter(ctx context.Context, conf *Conf, tz *time.Location) (ReportingWriter, error) {
	var ans ReportingWriter
	if conf != nil {
		pool, err := hltscl.CreatePool(conf.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to create reporting writer: %w", err)
		}
		ans = NewReportingWriter(ctx, pool, conf, tz)

	} else {
		ans = &NullWriter{}
	}
	ans.AddTableWriter(NavigationTable)
	ans.AddTableWriter(PingTable)
	return ans, nil
}
