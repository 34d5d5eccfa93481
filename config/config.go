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
	"fmt"
	"os"
	"time"

	"github.com/Gaurav-Gosain/uigate/nav"
	"github.com/Gaurav-Gosain/uigate/proxy"
	"github.com/Gaurav-Gosain/uigate/reporting"
	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
)

const (
	DfltServerReadTimeoutSecs  = 10
	DfltServerWriteTimeoutSecs = 30
	DftlServerPort             = 8080
	DfltServerHost             = "localhost"
	DfltTimeZone               = "UTC"
	DfltNavReqPerTime          = 30
	DfltNavCheckingSecs        = 10
)

type Configuration struct {
	ServerHost             string `json:"serverHost"`
	ServerPort             int    `json:"serverPort"`
	ServerReadTimeoutSecs  int    `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int    `json:"serverWriteTimeoutSecs"`
	TimeZone               string `json:"timeZone"`

	// BasePath is the path prefix under which the UI is served.
	// Empty value means the root. If not set, the value baked
	// into the binary (buildinfo.BasePath) is used.
	BasePath string `json:"basePath"`

	// UIDir is a directory containing the built UI bundle
	// (index.html and assets).
	UIDir string `json:"uiDir"`

	// AllowExternalGoto enables the goto endpoint to redirect
	// to URLs with a scheme or a host.
	AllowExternalGoto bool `json:"allowExternalGoto"`

	Backend         *proxy.BackendConf  `json:"backend"`
	Cache           proxy.CacheConf     `json:"cache"`
	Reporting       *reporting.Conf     `json:"reporting"`
	NavigationLimit proxy.Limit         `json:"navigationLimit"`
	Logging         logging.LoggingConf `json:"logging"`
}

// Base returns the configured base path. The value is expected
// to be already normalized (see Validate).
func (c *Configuration) Base() nav.BasePath {
	return nav.BasePath(c.BasePath)
}

func (c *Configuration) Validate() error {
	if !nav.IsCanonical(c.BasePath) {
		return fmt.Errorf(
			"invalid basePath '%s' (expected e.g. '/app' or an empty value)", c.BasePath)
	}
	if c.UIDir == "" {
		return fmt.Errorf("missing uiDir")
	}
	isDir, err := fs.IsDir(c.UIDir)
	if err != nil {
		return fmt.Errorf("failed to test uiDir: %w", err)
	}
	if !isDir {
		return fmt.Errorf("uiDir %s is not a directory", c.UIDir)
	}
	if c.Backend != nil {
		if err := c.Backend.Validate("backend"); err != nil {
			return err
		}
	}
	if err := c.NavigationLimit.Validate("navigationLimit"); err != nil {
		return err
	}
	if err := c.Cache.Validate("cache"); err != nil {
		return err
	}
	if err := c.Reporting.Validate("reporting"); err != nil {
		return err
	}
	if c.Reporting != nil {
		log.Info().Msg("navigation reporting to TimescaleDB enabled")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return err
	}
	return nil
}

func (c *Configuration) TimezoneLocation() *time.Location {
	// we can ignore the error here as we always call c.Validate()
	// first (which also tries to load the location and report possible
	// error)
	loc, _ := time.LoadLocation(c.TimeZone)
	return loc
}

func LoadConfig(path string) (*Configuration, error) {
	if path == "" {
		return nil, fmt.Errorf("cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	var conf Configuration
	if err := sonic.Unmarshal(rawData, &conf); err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	return &conf, nil
}
