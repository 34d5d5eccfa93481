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

package redirect

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gaurav-Gosain/uigate/nav"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCtx() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/goto", nil)
	return ctx, rec
}

func TestRedirectThroughDispatcher(t *testing.T) {
	ctx, rec := newCtx()
	d := nav.NewDispatcher[*Options, Outcome](nav.BasePath("/app"), Navigator{})
	ans, err := d.Dispatch("/settings", &Options{Ctx: ctx})
	require.NoError(t, err)
	assert.Equal(t, Outcome{Location: "/app/settings", Status: http.StatusFound}, ans)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/app/settings", rec.Header().Get("Location"))
}

func TestRedirectReplaceState(t *testing.T) {
	ctx, rec := newCtx()
	ans, err := Navigator{}.Navigate("/app", &Options{Ctx: ctx, ReplaceState: true, Status: 301})
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, ans.Status)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRedirectInvalidStatus(t *testing.T) {
	ctx, _ := newCtx()
	_, err := Navigator{}.Navigate("/app", &Options{Ctx: ctx, Status: http.StatusOK})
	assert.Error(t, err)
}

func TestRedirectRejectsNonRedirectingCodes(t *testing.T) {
	for _, status := range []int{
		http.StatusMultipleChoices,
		http.StatusNotModified,
		http.StatusUseProxy,
		306,
	} {
		ctx, rec := newCtx()
		_, err := Navigator{}.Navigate("/app", &Options{Ctx: ctx, Status: status})
		assert.Error(t, err, status)
		assert.Empty(t, rec.Header().Get("Location"), status)
	}
}

func TestRedirectAcceptsAllRedirectCodes(t *testing.T) {
	for _, status := range []int{301, 302, 303, 307, 308} {
		ctx, _ := newCtx()
		ans, err := Navigator{}.Navigate("/app", &Options{Ctx: ctx, Status: status})
		assert.NoError(t, err, status)
		assert.Equal(t, status, ans.Status)
	}
}

func TestRedirectWithoutRequest(t *testing.T) {
	_, err := Navigator{}.Navigate("/app", nil)
	assert.ErrorIs(t, err, ErrNoRequest)
	_, err = Navigator{}.Navigate("/app", &Options{})
	assert.ErrorIs(t, err, ErrNoRequest)
}
