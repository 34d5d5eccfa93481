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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Gaurav-Gosain/uigate/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createValidConf(t *testing.T) *Configuration {
	return &Configuration{
		TimeZone: "Europe/Prague",
		BasePath: "/app",
		UIDir:    t.TempDir(),
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"serverHost": "0.0.0.0",
		"serverPort": 9090,
		"basePath": "/app",
		"uiDir": "/var/www/ui",
		"allowExternalGoto": true,
		"backend": {"backendUrl": "http://localhost:8081", "pathPrefix": "/api"},
		"cache": {"redisAddr": "localhost:6379", "ttlSecs": 60},
		"navigationLimit": {"reqPerTimeThreshold": 10, "reqCheckingIntervalSecs": 5},
		"logging": {"level": "debug"}
	}`), 0644))
	conf, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", conf.ServerHost)
	assert.Equal(t, 9090, conf.ServerPort)
	assert.Equal(t, "/app", conf.Base().String())
	assert.True(t, conf.AllowExternalGoto)
	require.NotNil(t, conf.Backend)
	assert.Equal(t, "http://localhost:8081", conf.Backend.BackendURL)
	assert.Equal(t, "localhost:6379", conf.Cache.RedisAddr)
	assert.Equal(t, 10, conf.NavigationLimit.ReqPerTimeThreshold)
	assert.Nil(t, conf.Reporting)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"serverPort": "x"`), 0644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	conf := createValidConf(t)
	assert.NoError(t, conf.Validate())
	assert.Equal(t, "Europe/Prague", conf.TimezoneLocation().String())
}

func TestValidateRejectsNonCanonicalBase(t *testing.T) {
	for _, base := range []string{"app", "/app/", "/"} {
		conf := createValidConf(t)
		conf.BasePath = base
		assert.Error(t, conf.Validate(), base)
	}
}

func TestValidateErrors(t *testing.T) {
	conf := createValidConf(t)
	conf.TimeZone = "Mars/Olympus"
	assert.Error(t, conf.Validate())

	conf = createValidConf(t)
	conf.UIDir = ""
	assert.Error(t, conf.Validate())

	conf = createValidConf(t)
	conf.UIDir = filepath.Join(conf.UIDir, "missing")
	assert.Error(t, conf.Validate())

	conf = createValidConf(t)
	conf.Backend = &proxy.BackendConf{}
	assert.Error(t, conf.Validate())

	conf = createValidConf(t)
	conf.NavigationLimit = proxy.Limit{ReqPerTimeThreshold: 10}
	assert.Error(t, conf.Validate())
}

func TestValidateRejectsNegativeCacheTTL(t *testing.T) {
	conf := createValidConf(t)
	conf.Cache = proxy.CacheConf{FileRootPath: t.TempDir(), TTLSecs: -5}
	assert.Error(t, conf.Validate())
	conf.Cache.TTLSecs = 0
	assert.NoError(t, conf.Validate())
}
