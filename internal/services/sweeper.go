package services

import (
	"context"
	"log/slog"
	"time"
)

// chatLogRetention is how long chat history is kept before the sweep
// removes it.
const chatLogRetention = 90 * 24 * time.Hour

// Sweeper periodically removes expired revocation entries and aged chat
// logs. Run blocks until the context is canceled.
type Sweeper struct {
	revocation RevocationRepository
	chatLogs   ChatLogRepository
	interval   time.Duration
	logger     *slog.Logger
}

func NewSweeper(revocation RevocationRepository, chatLogs ChatLogRepository, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		revocation: revocation,
		chatLogs:   chatLogs,
		interval:   interval,
		logger:     logger,
	}
}

// Run sweeps on a fixed interval until ctx is canceled. A failed sweep
// is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now().UTC()

	removed, err := s.revocation.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Error("revocation sweep failed", "error", err)
	} else if removed > 0 {
		s.logger.Info("revocation sweep", "removed", removed)
	}

	aged, err := s.chatLogs.DeleteOlderThan(ctx, now.Add(-chatLogRetention))
	if err != nil {
		s.logger.Error("chat log sweep failed", "error", err)
	} else if aged > 0 {
		s.logger.Info("chat log sweep", "removed", aged)
	}
}
