/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"marketplace-ledger-go/internal/common"
	"marketplace-ledger-go/internal/config"
	"marketplace-ledger-go/internal/httpapi"
	"marketplace-ledger-go/internal/listener"

	"go.uber.org/zap"
)

func main() {
	// The global logger must be live before anything can call Fatal.
	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting marketplace ledger server")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	var mirrorListener *listener.MirrorListener
	if services.Mirror != nil {
		mirrorListener = listener.NewMirrorListener(listener.MirrorListenerConfig{
			Source:          services.DbService,
			Mirror:          services.Mirror,
			PollingInterval: cfg.Listener.PollingInterval,
			CleanupInterval: cfg.Listener.CleanupInterval,
			Retention:       cfg.Listener.Retention,
			BatchSize:       cfg.Listener.BatchSize,
		})
		if err := mirrorListener.Start(ctx); err != nil {
			zap.L().Fatal("Failed to start mirror listener", zap.Error(err))
		}
	}

	handler := httpapi.NewHandler(services.Materializer, services.Engine, services.Ledger)
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpapi.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		zap.L().Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		zap.L().Info("Shutdown signal received, draining requests...")
	case err := <-serverErr:
		if err != nil {
			zap.L().Error("HTTP server failed", zap.Error(err))
		}
	}

	// In-flight settlements finish on their own context; Shutdown only waits
	// for the handlers to return.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	err = server.Shutdown(shutdownCtx)
	if mirrorListener != nil {
		mirrorListener.Stop()
	}
	if err != nil {
		zap.L().Warn("Forced shutdown after timeout", zap.Error(err))
		return
	}
	zap.L().Info("Server stopped gracefully")
}
