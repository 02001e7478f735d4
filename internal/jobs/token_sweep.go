package jobs

import (
	"context"
	"log"
	"time"

	"github.com/dareyes/restaurant-management/internal/config"
	"github.com/dareyes/restaurant-management/internal/repository"
)

// StartTokenSweep periodically deletes refresh-token rows whose expiry is
// older than the retention window.  The ledger stays correct without it —
// expiry and revocation are checked on read — so this is housekeeping only.
func StartTokenSweep(ctx context.Context, cfg config.Config, tokens repository.TokenStore) {
	if !cfg.SweepEnabled {
		return
	}
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().UTC().Add(-cfg.SweepRetention)
				tickCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				n, err := tokens.DeleteExpiredBefore(tickCtx, cutoff)
				cancel()
				if err != nil {
					log.Printf("token sweep error: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("token sweep deleted %d expired refresh tokens", n)
				}
			}
		}
	}()
}
