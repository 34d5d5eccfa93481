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
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gaurav-Gosain/uigate/config"
	"github.com/Gaurav-Gosain/uigate/globctx"
	"github.com/Gaurav-Gosain/uigate/proxy"
	"github.com/Gaurav-Gosain/uigate/proxy/cache/file"
	"github.com/Gaurav-Gosain/uigate/proxy/cache/null"
	"github.com/Gaurav-Gosain/uigate/proxy/cache/redis"
	"github.com/Gaurav-Gosain/uigate/reporting"
	"github.com/Gaurav-Gosain/uigate/ui"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
)

// InitEngine creates the complete HTTP handler of the gateway.
// Routes are registered relative to the base path which is
// stripped by an outer handler.
func InitEngine(
	conf *config.Configuration,
	globalCtx *globctx.Context,
	bundle *ui.Bundle,
) (http.Handler, error) {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false
	engine.Use(gin.Recovery())
	engine.Use(logging.GinMiddleware())
	engine.Use(requestIDMiddleware())
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(bundle.Serve)

	appConfig, err := appConfigHandler(conf.Base())
	if err != nil {
		return nil, err
	}
	engine.GET("/app-config.js", appConfig)

	apiRoutes := engine.Group("/")
	apiRoutes.Use(uniresp.AlwaysJSONContentType())
	apiRoutes.GET("/version", versionHandler(globalCtx, conf.Base()))
	apiRoutes.GET("/ping", pingHandler(globalCtx))

	navActions := NewNavigationActions(
		conf.Base(), globalCtx.NavigationLogger, conf.AllowExternalGoto)
	navRoutes := engine.Group("/")
	navRoutes.Use(proxy.LimitMiddleware(conf.NavigationLimit.NewLimiter()))
	navRoutes.GET("/goto", navActions.Goto)
	navRoutes.POST("/navigate", uniresp.AlwaysJSONContentType(), navActions.Navigate)

	if conf.Backend != nil {
		apiProxy, err := proxy.NewAPIProxy(conf.Backend, conf.Base())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize backend proxy: %w", err)
		}
		passthrough := proxy.NewPassthrough(
			apiProxy, globalCtx.Cache, conf.Backend.PathPrefix, conf.Cache.EntryOptions()...)
		backendRoutes := engine.Group(conf.Backend.PathPrefix)
		if !conf.Backend.Limit.IsUnlimited() {
			backendRoutes.Use(proxy.LimitMiddleware(conf.Backend.Limit.NewLimiter()))
		}
		backendRoutes.Any("/*path", passthrough.AnyPath)
		log.Info().
			Str("prefix", conf.Backend.PathPrefix).
			Str("backend", conf.Backend.BackendURL).
			Msg("backend passthrough enabled")
	}
	return withBasePath(conf.Base(), engine), nil
}

func createCache(ctx context.Context, conf *proxy.CacheConf) proxy.Cache {
	if conf.FileRootPath != "" {
		log.Info().Msgf("using file response cache (path: %s)", conf.FileRootPath)
		log.Warn().Msg("caching respects the Cache-Control header")
		return file.New(conf)

	} else if conf.RedisAddr != "" {
		log.Info().Msgf("using redis response cache (addr: %s, db: %d)", conf.RedisAddr, conf.RedisDB)
		log.Warn().Msg("caching respects the Cache-Control header")
		return redis.New(ctx, conf)
	}
	log.Warn().Msg("using NULL cache (neither fs path nor Redis props are specified)")
	return null.New()
}

func CreateGlobalCtx(
	ctx context.Context,
	conf *config.Configuration,
	tDBWriter reporting.ReportingWriter,
) *globctx.Context {
	ans := globctx.NewGlobalContext(ctx)
	ans.TimezoneLocation = conf.TimezoneLocation()
	ans.ReportingWriter = tDBWriter
	ans.NavigationLogger = globctx.NewNavigationLogger(tDBWriter)
	ans.Cache = createCache(ctx, &conf.Cache)
	return ans
}

func RunService(conf *config.Configuration) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tDBWriter, err := reporting.NewWriter(ctx, conf.Reporting, conf.TimezoneLocation())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	globalCtx := CreateGlobalCtx(ctx, conf, tDBWriter)

	bundle, err := ui.New(conf.UIDir, conf.Backend.PathPrefixOrDefault())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	watchDone, err := bundle.GoWatch(globalCtx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}

	engine, err := InitEngine(conf, globalCtx, bundle)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}

	log.Info().
		Str("basePath", conf.Base().String()).
		Msgf("starting to listen at %s:%d", conf.ServerHost, conf.ServerPort)
	srv := &http.Server{
		Handler:      engine,
		Addr:         fmt.Sprintf("%s:%d", conf.ServerHost, conf.ServerPort),
		WriteTimeout: time.Duration(conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(conf.ServerReadTimeoutSecs) * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-globalCtx.Done()
	// now let's give subsystems some time to clean-up
	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var eg errgroup.Group
	eg.Go(func() error {
		if err := srv.Shutdown(shCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		select {
		case <-watchDone:
			return nil
		case <-shCtx.Done():
			return fmt.Errorf("UI watcher shutdown error: %w", shCtx.Err())
		}
	})

	if err := eg.Wait(); err != nil {
		log.Warn().Err(err).Msg("shutdown timed out")
		return
	}
	log.Info().Msg("graceful shutdown completed")
}
