/*
 * This file is part of Lingo (https://github.com/lingolabs/lingo).
 * Copyright (C) 2025 Lingo Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/logging"
	"github.com/lingolabs/lingo-hub/internal/server"
)

func main() {
	// Initialize structured logging
	if err := logging.Initialize(); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		logging.LogError(err, "Failed to load configuration")
		log.Fatalf("Failed to load configuration: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		logging.LogError(err, "Failed to create server")
		log.Fatalf("Failed to create server: %v", err)
	}

	logging.Sugar.Infow("🚀 lingo-hub starting",
		"http_port", cfg.Server.Port,
		"db_path", cfg.Server.DBPath,
		"nats_url", cfg.NATS.URL,
	)

	// Shut down cleanly on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Sugar.Infow("📴 Signal received, shutting down", "signal", sig.String())
		if err := srv.Stop(); err != nil {
			logging.LogError(err, "Shutdown failed")
		}
	}()

	if err := srv.Start(); err != nil {
		logging.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
