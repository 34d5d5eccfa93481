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
	"fmt"
	"io"

	"github.com/Gaurav-Gosain/uigate/buildinfo"
	"github.com/Gaurav-Gosain/uigate/nav"
)

func printLocation(url string, w io.Writer) (int, error) {
	return fmt.Fprintln(w, url)
}

// runResolve prints the URL a navigation to url would end at.
func runResolve(w io.Writer, base nav.BasePath, url string) error {
	if url == "" {
		return fmt.Errorf("missing URL to resolve")
	}
	dispatcher := nav.NewDispatcher[io.Writer, int](
		base, nav.NavigatorFunc[io.Writer, int](printLocation))
	_, err := dispatcher.Dispatch(url, w)
	return err
}

func printVersion(w io.Writer, info buildinfo.Info) {
	fmt.Fprintf(w, "uigate %s\nbuild hash: %s\n", info.Version, info.BuildHash)
	if info.BasePath != "" {
		fmt.Fprintf(w, "built-in base path: %s\n", info.BasePath)
	}
}
