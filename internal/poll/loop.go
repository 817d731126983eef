package poll

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomsync/internal/core"
)

// Fetch pulls the current full room snapshot from the authority.
type Fetch func(ctx context.Context) (*core.RoomState, error)

// Loop periodically pulls the full room state and feeds it into the
// reconciler as a poll-origin candidate. It runs regardless of push
// channel health: the stream may silently drop messages without closing,
// so the poll is the correctness backstop, not a fallback. Failed pulls
// are logged and retried on the next tick.
type Loop struct {
	interval time.Duration
	fetch    Fetch
	rec      *core.Reconciler
	log      *zerolog.Logger
}

// New builds a loop; interval must be positive.
func New(interval time.Duration, fetch Fetch, rec *core.Reconciler, logger *zerolog.Logger) *Loop {
	return &Loop{interval: interval, fetch: fetch, rec: rec, log: logger}
}

// Run ticks until ctx is cancelled. Cancellation is the only way to stop
// the loop and must happen on session teardown so a stale producer never
// feeds a superseded room.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	pullCtx, cancel := context.WithTimeout(ctx, l.interval)
	defer cancel()

	state, err := l.fetch(pullCtx)
	if err != nil {
		// Transport trouble is absorbed here; next tick retries.
		l.log.Debug().Err(err).Msg("poll pull failed")
		return
	}
	l.rec.Apply(state, core.OriginPoll)
}
