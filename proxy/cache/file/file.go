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
// Package file provides a response cache storing gob-encoded
// entries in a two level directory structure.
package file

import (
	"encoding/gob"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Gaurav-Gosain/uigate/proxy"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

type File struct {
	conf *proxy.CacheConf
}

func (frc *File) createItemPath(req *http.Request, opts *proxy.CacheEntryOptions) string {
	name := fmt.Sprintf("%x.gob", proxy.GenerateCacheId(req, opts))
	return filepath.Join(frc.conf.FileRootPath, name[0:2], name)
}

func readEntry(itemPath string) (proxy.CacheEntry, error) {
	var ans proxy.CacheEntry
	fr, err := os.Open(itemPath)
	if err != nil {
		return ans, err
	}
	defer fr.Close()
	if err := gob.NewDecoder(fr).Decode(&ans); err != nil {
		return ans, fmt.Errorf("failed to decode cache entry %s: %w", itemPath, err)
	}
	return ans, nil
}

// writeEntry stores the entry through a temporary file so
// concurrent readers never see a partial entry.
func writeEntry(itemPath string, entry proxy.CacheEntry) error {
	if err := os.MkdirAll(filepath.Dir(itemPath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(itemPath), ".entry-*")
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	if err := gob.NewEncoder(tmp).Encode(&entry); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return os.Rename(tmp.Name(), itemPath)
}

func (frc *File) Get(req *http.Request, opts ...func(*proxy.CacheEntryOptions)) (proxy.CacheEntry, error) {
	optsFin := proxy.ApplyCacheOptions(opts...)
	if !proxy.ShouldReadFromCache(req, optsFin) {
		return proxy.CacheEntry{}, proxy.ErrCacheMiss
	}
	itemPath := frc.createItemPath(req, optsFin)
	isFile, err := fs.IsFile(itemPath)
	if err != nil {
		return proxy.CacheEntry{}, err
	}
	if !isFile {
		return proxy.CacheEntry{}, proxy.ErrCacheMiss
	}
	entry, err := readEntry(itemPath)
	if err != nil {
		return proxy.CacheEntry{}, err
	}
	if entry.IsExpired(time.Now()) {
		if err := fs.DeleteFile(itemPath); err != nil {
			log.Warn().Err(err).Str("path", itemPath).Msg("failed to remove expired cache entry")
		}
		return proxy.CacheEntry{}, proxy.ErrCacheMiss
	}
	return entry, nil
}

func (frc *File) Set(req *http.Request, value proxy.CacheEntry, opts ...func(*proxy.CacheEntryOptions)) error {
	optsFin := proxy.ApplyCacheOptions(opts...)
	if !proxy.ShouldWriteToCache(req, value, optsFin) {
		return nil
	}
	value.Expires = time.Now().Add(proxy.EntryTTL(value, frc.conf.TTL()))
	return writeEntry(frc.createItemPath(req, optsFin), value)
}

func New(conf *proxy.CacheConf) *File {
	return &File{
		conf: conf,
	}
}
