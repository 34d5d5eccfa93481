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

// Package ui serves a built single-page application bundle.
// Paths not matching any file fall back to index.html so that
// client-side routing works on reload.
package ui

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	IndexFile = "index.html"
)

type Bundle struct {
	dir        string
	fileServer http.Handler
	excluded   []string
	mu         sync.RWMutex
	index      []byte
}

// Index returns the current content of index.html
func (b *Bundle) Index() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.index
}

// Reload reads index.html again
func (b *Bundle) Reload() error {
	data, err := os.ReadFile(filepath.Join(b.dir, IndexFile))
	if err != nil {
		return fmt.Errorf("failed to load UI index: %w", err)
	}
	b.mu.Lock()
	b.index = data
	b.mu.Unlock()
	return nil
}

func isWriteOrCreateOp(op fsnotify.Op) bool {
	return op&fsnotify.Write == fsnotify.Write || op&fsnotify.Create == fsnotify.Create
}

// GoWatch starts watching the bundle directory and reloads index.html
// whenever it is rewritten (e.g. by a new UI deployment). The returned
// channel is closed once watching ends (along with ctx).
func (b *Bundle) GoWatch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create UI watcher: %w", err)
	}
	if err := watcher.Add(b.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch UI directory: %w", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				log.Info().Str("dir", b.dir).Msg("stopping UI bundle watcher")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != IndexFile || !isWriteOrCreateOp(event.Op) {
					continue
				}
				if err := b.Reload(); err != nil {
					log.Error().Err(err).Msg("failed to reload UI index (keeping the previous one)")

				} else {
					log.Info().Str("file", event.Name).Msg("UI index reloaded")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("UI watcher error")
			}
		}
	}()
	return done, nil
}

func (b *Bundle) isExcluded(requestPath string) bool {
	for _, p := range b.excluded {
		if requestPath == p || strings.HasPrefix(requestPath, p+"/") {
			return true
		}
	}
	return false
}

func (b *Bundle) serveIndex(ctx *gin.Context) {
	ctx.Header("Content-Type", "text/html; charset=utf-8")
	ctx.Header("Cache-Control", "no-cache")
	if ctx.Request.Method == http.MethodHead {
		ctx.Status(http.StatusOK)
		return
	}
	ctx.Status(http.StatusOK)
	ctx.Writer.Write(b.Index())
}

// Serve is a gin handler serving files of the bundle. The request path
// is expected to be relative to the application base path.
func (b *Bundle) Serve(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodGet && ctx.Request.Method != http.MethodHead {
		ctx.Status(http.StatusNotFound)
		return
	}
	requestPath := ctx.Request.URL.Path
	if b.isExcluded(requestPath) {
		ctx.Status(http.StatusNotFound)
		return
	}
	cleanPath := strings.TrimPrefix(path.Clean("/"+requestPath), "/")
	if cleanPath == "" || cleanPath == IndexFile {
		b.serveIndex(ctx)
		return
	}
	info, err := os.Stat(filepath.Join(b.dir, filepath.FromSlash(cleanPath)))
	if err == nil && !info.IsDir() {
		ctx.Request.URL.Path = "/" + cleanPath
		b.fileServer.ServeHTTP(ctx.Writer, ctx.Request)
		return
	}
	baseName := path.Base(cleanPath)
	if strings.HasPrefix(cleanPath, "_app/") || strings.HasPrefix(cleanPath, "assets/") ||
		strings.Contains(baseName, ".") {
		ctx.Status(http.StatusNotFound)
		return
	}
	b.serveIndex(ctx)
}

// New loads a bundle from dir. Requests to any of excludedPrefixes
// (e.g. the backend API prefix) never fall back to the index.
func New(dir string, excludedPrefixes ...string) (*Bundle, error) {
	ans := &Bundle{
		dir:        dir,
		fileServer: http.FileServer(http.Dir(dir)),
		excluded:   excludedPrefixes,
	}
	if err := ans.Reload(); err != nil {
		return nil, err
	}
	return ans, nil
}
