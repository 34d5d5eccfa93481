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
	"errors"
	"fmt"
	"strings"

	"github.com/Gaurav-Gosain/uigate/buildinfo"
	"github.com/Gaurav-Gosain/uigate/config"
	"github.com/Gaurav-Gosain/uigate/nav"
	"github.com/Gaurav-Gosain/uigate/proxy"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
)

var ErrConfigNotFound = errors.New("configuration file not found")

type CmdOptions struct {
	Host             string
	Port             int
	ReadTimeoutSecs  int
	WriteTimeoutSecs int
	LogPath          string
	LogLevel         string
	BasePath         string
}

var confSearchPaths = []string{
	"/usr/local/etc/uigate/conf.json",
	"/usr/local/etc/uigate.json",
}

// locateConfig loads the explicitly given config file or the first
// one found in confSearchPaths. The returned configuration is not
// validated.
func locateConfig(explicitPath string) (*config.Configuration, string, error) {
	if explicitPath != "" {
		conf, err := config.LoadConfig(explicitPath)
		return conf, explicitPath, err
	}
	for _, path := range confSearchPaths {
		isFile, err := fs.IsFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to search for configuration in %s: %w", path, err)
		}
		if isFile {
			conf, err := config.LoadConfig(path)
			return conf, path, err
		}
	}
	return nil, "", fmt.Errorf(
		"%w (searched in: %s)", ErrConfigNotFound, strings.Join(confSearchPaths, ", "))
}

func FindAndLoadConfig(explicitPath string, cmdOpts *CmdOptions) *config.Configuration {
	conf, confPath, err := locateConfig(explicitPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cmdOpts.LogLevel != "" {
		conf.Logging.Level = logging.LogLevel(cmdOpts.LogLevel)

	} else if conf.Logging.Level == "" {
		conf.Logging.Level = "info"
	}
	if cmdOpts.LogPath != "" {
		conf.Logging.Path = cmdOpts.LogPath
	}
	logging.SetupLogging(conf.Logging)
	log.Info().Msgf("loaded configuration from %s", confPath)
	log.Info().Msgf("using logging level '%s'", conf.Logging.Level)
	applyDefaults(conf)
	overrideConfWithCmd(conf, cmdOpts)
	if err := conf.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return conf
}

// LoadBasePath determines the effective base path without requiring
// a complete (valid) configuration. The -base-path option alone is
// enough, otherwise a configuration file is consulted (if any) and
// finally the built-in value is used.
func LoadBasePath(explicitPath string, cmdOpts *CmdOptions) (nav.BasePath, error) {
	if cmdOpts.BasePath != "" {
		return nav.NormalizeBasePath(cmdOpts.BasePath), nil
	}
	conf, _, err := locateConfig(explicitPath)
	if errors.Is(err, ErrConfigNotFound) {
		return nav.NormalizeBasePath(buildinfo.BasePath), nil

	} else if err != nil {
		return "", err
	}
	return nav.NormalizeBasePath(effectiveBasePath(conf.BasePath, cmdOpts)), nil
}

// effectiveBasePath applies the precedence: command line,
// configuration, built-in value.
func effectiveBasePath(confValue string, cmdOpts *CmdOptions) string {
	if cmdOpts.BasePath != "" {
		return cmdOpts.BasePath
	}
	if confValue == "" && buildinfo.BasePath != "" {
		log.Info().Msgf("basePath not specified, using the built-in value %s", buildinfo.BasePath)
		return buildinfo.BasePath
	}
	return confValue
}

// applyDefaults applies default values for optional config items
// not handled by overrideConfWithCmd (i.e. items not configurable
// via command line arguments).
func applyDefaults(conf *config.Configuration) {
	if conf.TimeZone == "" {
		conf.TimeZone = config.DfltTimeZone
		log.Warn().Msgf("timeZone not specified, using default: %s", conf.TimeZone)
	}
	if conf.NavigationLimit.ReqPerTimeThreshold == 0 && conf.NavigationLimit.ReqCheckingIntervalSecs == 0 {
		conf.NavigationLimit = proxy.Limit{
			ReqPerTimeThreshold:     config.DfltNavReqPerTime,
			ReqCheckingIntervalSecs: config.DfltNavCheckingSecs,
		}
		log.Warn().
			Int("reqPerTime", config.DfltNavReqPerTime).
			Int("intervalSecs", config.DfltNavCheckingSecs).
			Msg("navigationLimit not specified, using default")
	}
	if conf.Cache.IsEnabled() && conf.Cache.TTLSecs == 0 {
		conf.Cache.TTLSecs = proxy.DfltCacheTTLSecs
		log.Warn().Msgf("cache.ttlSecs not specified, using default: %d", proxy.DfltCacheTTLSecs)
	}
	if conf.Backend != nil {
		if conf.Backend.PathPrefix == "" {
			conf.Backend.PathPrefix = proxy.DfltPathPrefix
			log.Warn().Msgf("backend.pathPrefix not specified, using default: %s", proxy.DfltPathPrefix)
		}
		if conf.Backend.ReqTimeoutSecs == 0 {
			conf.Backend.ReqTimeoutSecs = proxy.DfltReqTimeoutSecs
		}
		if conf.Backend.IdleConnTimeoutSecs == 0 {
			conf.Backend.IdleConnTimeoutSecs = proxy.DfltIdleConnTimeoutSecs
		}
	}
}

// overrideInt sets *target to cmdValue if given, otherwise keeps
// the configured value or falls back to dflt (with a warning).
func overrideInt(target *int, cmdValue, dflt int, name string) {
	if cmdValue != 0 {
		*target = cmdValue

	} else if *target == 0 {
		log.Warn().Msgf("%s not specified, using default value %d", name, dflt)
		*target = dflt
	}
}

func overrideConfWithCmd(origConf *config.Configuration, cmdConf *CmdOptions) {
	if cmdConf.Host != "" {
		origConf.ServerHost = cmdConf.Host

	} else if origConf.ServerHost == "" {
		log.Warn().Msgf("serverHost not specified, using default value %s", config.DfltServerHost)
		origConf.ServerHost = config.DfltServerHost
	}
	overrideInt(&origConf.ServerPort, cmdConf.Port, config.DftlServerPort, "serverPort")
	overrideInt(
		&origConf.ServerReadTimeoutSecs, cmdConf.ReadTimeoutSecs,
		config.DfltServerReadTimeoutSecs, "serverReadTimeoutSecs")
	overrideInt(
		&origConf.ServerWriteTimeoutSecs, cmdConf.WriteTimeoutSecs,
		config.DfltServerWriteTimeoutSecs, "serverWriteTimeoutSecs")
	if origConf.Logging.Path == "" {
		log.Warn().Msg("logPath not specified, using stderr")
	}
	origConf.BasePath = effectiveBasePath(origConf.BasePath, cmdConf)
	normalized := nav.NormalizeBasePath(origConf.BasePath).String()
	if normalized != origConf.BasePath {
		log.Warn().
			Str("configured", origConf.BasePath).
			Str("normalized", normalized).
			Msg("basePath normalized")
		origConf.BasePath = normalized
	}
}
