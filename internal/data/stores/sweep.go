package stores

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunSweeper periodically removes expired KV entries until ctx is cancelled.
// Expired sessions and cached preferences are never read back, but they
// would otherwise stay on disk forever.
func RunSweeper(ctx context.Context, kvStore *KVStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := kvStore.SweepExpired(ctx); err != nil {
				log.Debug().Err(err).Msg("kv sweep failed")
			}
		}
	}
}
