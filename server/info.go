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
	"fmt"
	"net/http"
	"time"

	"github.com/Gaurav-Gosain/uigate/buildinfo"
	"github.com/Gaurav-Gosain/uigate/globctx"
	"github.com/Gaurav-Gosain/uigate/nav"
	"github.com/Gaurav-Gosain/uigate/reporting"
	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/datetime"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

const (
	AppConfigVar = "window.__APP_CONFIG__"
)

type versionResponse struct {
	buildinfo.Info
	StartTime time.Time `json:"startTime"`
	Uptime    string    `json:"uptime"`
}

// appConfigScript renders build identity as a script the UI
// loads before its own code. The base path is the effective one
// (i.e. configured or built-in).
func appConfigScript(base nav.BasePath) ([]byte, error) {
	info := buildinfo.Current()
	info.BasePath = base.String()
	data, err := sonic.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to render app config: %w", err)
	}
	return []byte(fmt.Sprintf("%s = %s;\n", AppConfigVar, data)), nil
}

func appConfigHandler(base nav.BasePath) (gin.HandlerFunc, error) {
	script, err := appConfigScript(base)
	if err != nil {
		return nil, err
	}
	return func(ctx *gin.Context) {
		ctx.Header("Cache-Control", "no-cache")
		ctx.Data(http.StatusOK, "application/javascript; charset=utf-8", script)
	}, nil
}

func versionHandler(globalCtx *globctx.Context, base nav.BasePath) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		info := buildinfo.Current()
		info.BasePath = base.String()
		uniresp.WriteJSONResponse(ctx.Writer, versionResponse{
			Info:      info,
			StartTime: globalCtx.StartTime.In(globalCtx.TimezoneLocation),
			Uptime:    datetime.DurationToHMS(time.Since(globalCtx.StartTime)),
		})
	}
}

func pingHandler(globalCtx *globctx.Context) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		t0 := time.Now()
		uniresp.WriteJSONResponse(ctx.Writer, map[string]any{"ok": true})
		globalCtx.ReportingWriter.Write(&reporting.PingReport{
			DateTime: t0.In(globalCtx.TimezoneLocation),
			ProcTime: time.Since(t0).Seconds(),
			Status:   http.StatusOK,
		})
	}
}
