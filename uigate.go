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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Gaurav-Gosain/uigate/buildinfo"
	"github.com/Gaurav-Gosain/uigate/server"

	"github.com/rs/zerolog/log"
)

func main() {
	cmdOpts := new(server.CmdOptions)
	flag.StringVar(&cmdOpts.Host, "host", "", "Host to listen on")
	flag.IntVar(&cmdOpts.Port, "port", 0, "Port to listen on")
	flag.IntVar(&cmdOpts.ReadTimeoutSecs, "read-timeout", 0, "Server read timeout in seconds")
	flag.IntVar(&cmdOpts.WriteTimeoutSecs, "write-timeout", 0, "Server write timeout in seconds")
	flag.StringVar(&cmdOpts.LogPath, "log-path", "", "A file to log to (if empty then stderr is used)")
	flag.StringVar(&cmdOpts.LogLevel, "log-level", "", "A log level (debug, info, warn/warning, error)")
	flag.StringVar(&cmdOpts.BasePath, "base-path", "", "A path prefix the UI is served under (e.g. /app)")

	flag.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"uigate - a web UI gateway serving an application under a base path"+
				"\n\nUsage:"+
				"\n\t%s [options] start [conf.json]"+
				"\n\t%s [options] resolve [url] [conf.json]"+
				"\n\t%s [options] version\n",
			filepath.Base(os.Args[0]), filepath.Base(os.Args[0]), filepath.Base(os.Args[0]),
		)
		flag.PrintDefaults()
	}
	flag.Parse()

	action := flag.Arg(0)

	switch action {
	case "version":
		printVersion(os.Stdout, buildinfo.Current())
	case "start":
		conf := server.FindAndLoadConfig(flag.Arg(1), cmdOpts)
		info := buildinfo.Current()
		log.Info().
			Str("version", info.Version).
			Str("buildHash", info.BuildHash).
			Msg("Starting uigate")
		server.RunService(conf)
	case "resolve":
		base, err := server.LoadBasePath(flag.Arg(2), cmdOpts)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to determine base path")
		}
		if err := runResolve(os.Stdout, base, flag.Arg(1)); err != nil {
			log.Fatal().Err(err).Msg("failed to resolve URL")
		}
	default:
		fmt.Printf("Unknown action [%s]. Try -h for help\n", flag.Arg(0))
		os.Exit(1)
	}
}
