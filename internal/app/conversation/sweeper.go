package conversation

import (
	"context"
	"time"

	"github.com/havenlabs/haven-agent/internal/domain"
	"github.com/havenlabs/haven-agent/internal/observability"
)

// Sweeper evicts idle sessions so abandoned conversations don't pile up
// in the store. It reuses the service's per-session locks, so a sweep
// never races a turn in flight.
type Sweeper struct {
	service  *Service
	interval time.Duration
	idleFor  time.Duration
}

func NewSweeper(service *Service, interval, idleFor time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if idleFor <= 0 {
		idleFor = 30 * time.Minute
	}
	return &Sweeper{service: service, interval: interval, idleFor: idleFor}
}

// Run blocks, sweeping at the configured interval until ctx is canceled.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep performs one eviction pass and returns how many sessions it
// deleted.
func (w *Sweeper) Sweep(ctx context.Context) int {
	log := observability.LoggerFromContext(ctx)
	s := w.service

	cutoff := s.now().Add(-w.idleFor)
	ids, err := s.sessionStore.ListIdleSessions(cutoff)
	if err != nil {
		log.Error("idle session listing failed", "error", err)
		return 0
	}

	deleted := 0
	for _, id := range ids {
		if w.evict(id, cutoff) {
			deleted++
		}
	}
	if deleted > 0 {
		log.Info("idle sessions evicted", "count", deleted)
	}
	return deleted
}

func (w *Sweeper) evict(id domain.SessionID, cutoff time.Time) bool {
	s := w.service
	l := s.lockSession(id)
	defer s.unlockSession(id, l)

	// A turn may have landed between the listing and taking the lock.
	session, err := s.sessionStore.GetSession(id)
	if err != nil {
		return false
	}
	if session.LastActivity.After(cutoff) {
		return false
	}
	if err := s.messageStore.DeleteMessagesBySession(id); err != nil {
		return false
	}
	if err := s.sessionStore.DeleteSession(id); err != nil {
		return false
	}
	return true
}
