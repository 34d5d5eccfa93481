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
// Package redis provides a response cache backed by Redis.
// Writes are batched and sent by a background goroutine so
// serving a response never waits for Redis.
package redis

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gaurav-Gosain/uigate/proxy"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const (
	defaultRedisPort = 6379
	writeQueueSize   = 256
	writeBatchSize   = 32
	keyPrefix        = "uigate:cache:"
)

type pendingWrite struct {
	key   string
	value []byte
	ttl   time.Duration
}

type Redis struct {
	ctx    context.Context
	conf   *proxy.CacheConf
	client *redis.Client
	queue  chan pendingWrite
}

func cacheKey(req *http.Request, opts *proxy.CacheEntryOptions) string {
	return fmt.Sprintf("%s%x", keyPrefix, proxy.GenerateCacheId(req, opts))
}

func decodeEntry(data []byte) (proxy.CacheEntry, error) {
	var ans proxy.CacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&ans); err != nil {
		return ans, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return ans, nil
}

func encodeEntry(entry proxy.CacheEntry) ([]byte, error) {
	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(&entry); err != nil {
		return nil, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return buffer.Bytes(), nil
}

func (rc *Redis) Get(req *http.Request, opts ...func(*proxy.CacheEntryOptions)) (proxy.CacheEntry, error) {
	optsFin := proxy.ApplyCacheOptions(opts...)
	if !proxy.ShouldReadFromCache(req, optsFin) {
		return proxy.CacheEntry{}, proxy.ErrCacheMiss
	}
	data, err := rc.client.Get(rc.ctx, cacheKey(req, optsFin)).Bytes()
	if err == redis.Nil {
		return proxy.CacheEntry{}, proxy.ErrCacheMiss

	} else if err != nil {
		return proxy.CacheEntry{}, fmt.Errorf("failed to read Redis cache: %w", err)
	}
	return decodeEntry(data)
}

// Set enqueues the entry for writing. The entry expires (in Redis)
// after the configured TTL or the backend's shorter max-age.
func (rc *Redis) Set(req *http.Request, value proxy.CacheEntry, opts ...func(*proxy.CacheEntryOptions)) error {
	optsFin := proxy.ApplyCacheOptions(opts...)
	if !proxy.ShouldWriteToCache(req, value, optsFin) {
		return nil
	}
	ttl := proxy.EntryTTL(value, rc.conf.TTL())
	value.Expires = time.Now().Add(ttl)
	data, err := encodeEntry(value)
	if err != nil {
		return err
	}
	select {
	case rc.queue <- pendingWrite{key: cacheKey(req, optsFin), value: data, ttl: ttl}:
		return nil
	default:
		return fmt.Errorf("Redis cache write queue full")
	}
}

// nextBatch collects first and whatever else is waiting
// in the queue, up to writeBatchSize items.
func (rc *Redis) nextBatch(first pendingWrite) []pendingWrite {
	batch := []pendingWrite{first}
	for len(batch) < writeBatchSize {
		select {
		case item := <-rc.queue:
			batch = append(batch, item)
		default:
			return batch
		}
	}
	return batch
}

func (rc *Redis) flush(batch []pendingWrite) {
	_, err := rc.client.Pipelined(rc.ctx, func(pipe redis.Pipeliner) error {
		for _, item := range batch {
			pipe.Set(rc.ctx, item.key, item.value, item.ttl)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int("entries", len(batch)).Msg("failed to write to Redis cache")
	}
}

func (rc *Redis) goRunWriter() {
	go func() {
		for {
			select {
			case <-rc.ctx.Done():
				log.Info().Int("pending", len(rc.queue)).Msg("closing Redis cache writer")
				return
			case item := <-rc.queue:
				rc.flush(rc.nextBatch(item))
			}
		}
	}()
}

func normalizeAddr(addr string) string {
	if !strings.Contains(addr, ":") {
		log.Warn().Msgf("Redis port not specified, using %d", defaultRedisPort)
		return fmt.Sprintf("%s:%d", addr, defaultRedisPort)
	}
	return addr
}

// New creates a Redis cache and starts its writer.
// The writer ends along with ctx.
func New(ctx context.Context, conf *proxy.CacheConf) *Redis {
	ans := &Redis{
		ctx:  ctx,
		conf: conf,
		client: redis.NewClient(&redis.Options{
			Addr: normalizeAddr(conf.RedisAddr),
			DB:   conf.RedisDB,
		}),
		queue: make(chan pendingWrite, writeQueueSize),
	}
	ans.goRunWriter()
	return ans
}
