package sessions

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunJanitor sweeps expired sessions every interval until ctx is done.
func RunJanitor(ctx context.Context, repo Repo, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := repo.DeleteExpired(now); n > 0 {
				log.Debug().Int("removed", n).Msg("Expired sessions removed")
			}
		}
	}
}
