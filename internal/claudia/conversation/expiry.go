package conversation

import (
	"log/slog"
	"time"
)

// ExpiryPolicy drives lazy history expiry. There is no background timer;
// the controller invokes Sweep on each interaction, so stale channels are
// reclaimed the next time anything happens.
type ExpiryPolicy struct {
	history *HistoryStore
	logger  *slog.Logger
}

// NewExpiryPolicy builds a policy over the given history store.
func NewExpiryPolicy(history *HistoryStore, logger *slog.Logger) *ExpiryPolicy {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpiryPolicy{history: history, logger: logger}
}

// Sweep removes expired channels as of now and returns how many were
// dropped.
func (p *ExpiryPolicy) Sweep(now time.Time) int {
	removed := p.history.SweepExpired(now)
	if len(removed) > 0 {
		p.logger.Info("expired inactive conversations", "count", len(removed))
	}
	return len(removed)
}
