package identity

import (
	"context"
	"log/slog"
	"time"
)

// Pruner periodically removes expired logins until its context ends.
type Pruner struct {
	auth     *TokenAuthenticator
	interval time.Duration
	logger   *slog.Logger
	onPruned func(n int64)
}

// DefaultPruneInterval replaces a non-positive interval passed to NewPruner.
const DefaultPruneInterval = 15 * time.Minute

// NewPruner builds a pruner; onPruned may be nil.
func NewPruner(auth *TokenAuthenticator, interval time.Duration, logger *slog.Logger, onPruned func(n int64)) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultPruneInterval
	}
	return &Pruner{auth: auth, interval: interval, logger: logger, onPruned: onPruned}
}

// Run prunes once immediately and then on every tick. It returns nil when
// ctx is cancelled; pruning failures are logged and retried on the next tick.
func (p *Pruner) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		p.PruneOnce(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Pruner) PruneOnce(ctx context.Context) int64 {
	n, err := p.auth.Prune(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.ErrorContext(ctx, "login pruning failed", "error", err)
		}
		return 0
	}
	if n > 0 {
		p.logger.InfoContext(ctx, "pruned expired logins", "count", n)
		if p.onPruned != nil {
			p.onPruned(n)
		}
	}
	return n
}
