// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package auth

import (
	"context"
	"log/slog"
	"time"
)

// # Session Sweeper

// Sweeper periodically reclaims storage from dead sessions.
//
// It deletes sessions that are past their expiry window, plus invalidated
// sessions idle beyond the retention period. Authentication correctness never
// depends on it: a usable-session lookup already filters out everything the
// sweeper would remove, so missed runs only cost disk.
type Sweeper struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper constructs a [Sweeper] over the given service.
func NewSweeper(service *Service, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run executes sweep passes on a fixed ticker until the context is cancelled.
// It is intended to be launched as a goroutine owned by the server lifecycle.
func (sweeper *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sweeper.interval)
	defer ticker.Stop()

	sweeper.logger.Info("session sweeper started", "interval", sweeper.interval.String())

	for {
		select {
		case <-ctx.Done():
			sweeper.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			sweeper.sweep(ctx)
		}
	}
}

// sweep performs one pass. Failures are logged and swallowed; the next tick retries.
func (sweeper *Sweeper) sweep(ctx context.Context) {
	removed, err := sweeper.service.SweepSessions(ctx)
	if err != nil {
		sweeper.logger.Error("session sweep failed", "error", err)
		return
	}

	if removed > 0 {
		sweeper.logger.Info("session sweep completed", "removed", removed)
	}
}
