package session

import (
	"context"
	"time"

	"github.com/zhouzirui/funds-assistant/backend/internal/logging"
)

// RunJanitor sweeps expired sessions every interval until ctx is cancelled.
func RunJanitor(ctx context.Context, sweeper Sweeper, interval time.Duration) {
	if sweeper == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sweeper.Sweep(ctx)
			if err != nil {
				logging.Errorf("session", "sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				logging.Infof("session", "swept %d expired sessions", removed)
			}
		}
	}
}
