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

// Package buildinfo holds build identity values injected
// at link time, e.g.:
//
//	go build -ldflags "-X github.com/Gaurav-Gosain/uigate/buildinfo.Version=1.4.0 \
//	  -X github.com/Gaurav-Gosain/uigate/buildinfo.BuildHash=$(git rev-parse --short HEAD) \
//	  -X github.com/Gaurav-Gosain/uigate/buildinfo.BasePath=/app"
package buildinfo

const (
	DfltVersion   = "dev"
	DfltBuildHash = "unknown"
)

var (
	Version   string
	BuildHash string

	// BasePath is the deployment base path baked into the binary.
	// A base path from the configuration file takes precedence.
	BasePath string
)

type Info struct {
	Version   string `json:"version"`
	BuildHash string `json:"buildHash"`
	BasePath  string `json:"basePath"`
}

func Current() Info {
	ans := Info{
		Version:   Version,
		BuildHash: BuildHash,
		BasePath:  BasePath,
	}
	if ans.Version == "" {
		ans.Version = DfltVersion
	}
	if ans.BuildHash == "" {
		ans.BuildHash = DfltBuildHash
	}
	return ans
}
