/*
main.go

Copyright © 2025 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of Hestia.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/CodeMonkeyCybersecurity/hestia/cmd"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	logger.InitializeWithFallback()
	log := logger.L()

	if err := telemetry.Init("hestia", logger.Path()); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Telemetry disabled: %v\n", err)
	}

	log.Debug("Hestia starting", zap.String("log_path", logger.Path()))
	code := cmd.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := telemetry.Shutdown(ctx); err != nil {
		log.Warn("Failed to flush telemetry", zap.Error(err))
	}
	cancel()

	os.Exit(code)
}
