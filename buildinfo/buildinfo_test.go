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

package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentFallbacks(t *testing.T) {
	Version, BuildHash, BasePath = "", "", ""
	ans := Current()
	assert.Equal(t, DfltVersion, ans.Version)
	assert.Equal(t, DfltBuildHash, ans.BuildHash)
	assert.Equal(t, "", ans.BasePath)
}

func TestCurrentInjected(t *testing.T) {
	Version, BuildHash, BasePath = "0.6.5", "a1b2c3d", "/app"
	defer func() {
		Version, BuildHash, BasePath = "", "", ""
	}()
	assert.Equal(t, Info{Version: "0.6.5", BuildHash: "a1b2c3d", BasePath: "/app"}, Current())
}
