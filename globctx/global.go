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
	"context"
	"time"

	"github.com/Gaurav-Gosain/uigate/proxy"
	"github.com/Gaurav-Gosain/uigate/reporting"
)

// Context holds process-wide services and also works as the
// process' root context.Context.
type Context struct {
	TimezoneLocation *time.Location
	StartTime        time.Time
	ReportingWriter  reporting.ReportingWriter
	NavigationLogger *NavigationLogger
	Cache            proxy.Cache
	wCtx             context.Context
}

func (gc *Context) Deadline() (deadline time.Time, ok bool) {
	return gc.wCtx.Deadline()
}

func (gc *Context) Done() <-chan struct{} {
	return gc.wCtx.Done()
}

func (gc *Context) Err() error {
	return gc.wCtx.Err()
}

func (gc *Context) Value(key any) any {
	return gc.wCtx.Value(key)
}

func NewGlobalContext(ctx context.Context) *Context {
	return &Context{wCtx: ctx, StartTime: time.Now()}
}
