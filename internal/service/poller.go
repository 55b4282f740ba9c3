package service

import (
	"context"
	"time"
)

// DefaultPollInterval is used when Run gets a non-positive tick.
const DefaultPollInterval = 10 * time.Millisecond

// updater is satisfied by both pump controllers.
type updater interface {
	Update(ctx context.Context)
}

// PollerService is the host loop: on every tick it lets each pump expire
// its timed run.
type PollerService struct {
	pumps []updater
}

func NewPollerService(pumps ...updater) *PollerService {
	return &PollerService{pumps: pumps}
}

// Run ticks at the given interval until ctx is canceled.
func (s *PollerService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultPollInterval
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Poll(ctx)
		}
	}
}

// Poll runs one iteration: Update on every pump, in order.
func (s *PollerService) Poll(ctx context.Context) {
	for _, p := range s.pumps {
		p.Update(ctx)
	}
}
