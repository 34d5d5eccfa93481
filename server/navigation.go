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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Gaurav-Gosain/uigate/globctx"
	"github.com/Gaurav-Gosain/uigate/nav"
	"github.com/Gaurav-Gosain/uigate/nav/redirect"
	"github.com/Gaurav-Gosain/uigate/reporting"
	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	NavKindGoto     = "goto"
	NavKindNavigate = "navigate"
)

type navigationRequest struct {
	URL     string          `json:"url"`
	Options json.RawMessage `json:"options"`
}

// Resolution is an answer of the resolving navigator. Options
// are returned exactly as received.
type Resolution struct {
	Location string          `json:"location"`
	Options  json.RawMessage `json:"options"`
}

func resolveLocation(url string, opts json.RawMessage) (Resolution, error) {
	return Resolution{Location: url, Options: opts}, nil
}

// isExternal tells whether the URL would leave the application's
// origin when used as a redirect target.
func isExternal(target string) bool {
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return true
	}
	u, err := url.Parse(target)
	if err != nil {
		return true
	}
	return u.Scheme != "" || u.Host != ""
}

type NavigationActions struct {
	redirects     *nav.Dispatcher[*redirect.Options, redirect.Outcome]
	resolver      *nav.Dispatcher[json.RawMessage, Resolution]
	navLogger     *globctx.NavigationLogger
	allowExternal bool
}

func (a *NavigationActions) checkTarget(target string) error {
	if target == "" {
		return fmt.Errorf("missing target url")
	}
	if !a.allowExternal && isExternal(target) {
		return fmt.Errorf("external url %s not allowed", target)
	}
	return nil
}

// Goto redirects the client to the URL given by the `url` query
// argument, prefixed with the base path if the URL is root-relative.
func (a *NavigationActions) Goto(ctx *gin.Context) {
	target := ctx.Query("url")
	if err := a.checkTarget(target); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	opts := &redirect.Options{Ctx: ctx}
	if rawStatus := ctx.Query("status"); rawStatus != "" {
		status, err := strconv.Atoi(rawStatus)
		if err != nil {
			uniresp.RespondWithErrorJSON(
				ctx, fmt.Errorf("invalid status: %w", err), http.StatusBadRequest)
			return
		}
		opts.Status = status
	}
	outcome, err := a.redirects.Dispatch(target, opts)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	a.navLogger.Log(
		ctx.Request,
		reporting.NewNavigationReport(NavKindGoto, target, outcome.Location, outcome.Status),
	)
}

// Navigate resolves a navigation request without performing it.
// This is for clients which do the navigation by themselves.
func (a *NavigationActions) Navigate(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	var req navigationRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("failed to decode navigation request: %w", err), http.StatusBadRequest)
		return
	}
	if err := a.checkTarget(req.URL); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	ans, err := a.resolver.Dispatch(req.URL, req.Options)
	if err != nil {
		log.Error().Err(err).Str("url", req.URL).Msg("failed to resolve navigation")
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	a.navLogger.Log(
		ctx.Request,
		reporting.NewNavigationReport(NavKindNavigate, req.URL, ans.Location, http.StatusOK),
	)
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

func NewNavigationActions(
	base nav.BasePath,
	navLogger *globctx.NavigationLogger,
	allowExternal bool,
) *NavigationActions {
	return &NavigationActions{
		redirects: nav.NewDispatcher[*redirect.Options, redirect.Outcome](
			base, redirect.Navigator{}),
		resolver: nav.NewDispatcher[json.RawMessage, Resolution](
			base, nav.NavigatorFunc[json.RawMessage, Resolution](resolveLocation)),
		navLogger:     navLogger,
		allowExternal: allowExternal,
	}
}
