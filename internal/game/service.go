// Package game manages the exercise lifecycle: the singleton session
// record, its start/stop transitions, and the simulated clock derived
// from it. The scoring path never touches the session; only admin
// actions mutate it.
package game

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/event"
)

var runningState = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "warpoint",
	Name:      "game_running",
	Help:      "Whether the exercise clock is currently running.",
})

type Store interface {
	GameSession(ctx context.Context) (domain.GameSession, error)
	SaveGameSession(ctx context.Context, g domain.GameSession) error
}

type Config struct {
	EventBus *event.Bus
	Store    Store

	// Now is the real-time source; defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	eb    *event.Bus
	store Store
	now   func() time.Time
}

func NewService(c Config) *Service {
	if c.Now == nil {
		c.Now = time.Now
	}

	// State transitions go through the bus so the gauge tracks every
	// publisher, not just this service's own methods.
	c.EventBus.Subscribe(domain.EventNameGameStateChanged, func(ctx context.Context, e event.Event) error {
		if e.(domain.EventGameStateChanged).Session.Running {
			runningState.Set(1)
		} else {
			runningState.Set(0)
		}
		return nil
	})

	return &Service{
		eb:    c.EventBus,
		store: c.Store,
		now:   c.Now,
	}
}

func (s *Service) Session(ctx context.Context) (domain.GameSession, error) {
	return s.store.GameSession(ctx)
}

// Start switches the session on and pins its real-world start time.
// Starting an already-running session just refreshes the start time.
func (s *Service) Start(ctx context.Context) (domain.GameSession, error) {
	g, err := s.store.GameSession(ctx)
	if err != nil {
		return domain.GameSession{}, err
	}

	g.Running = true
	g.StartTime = s.now()

	if err := s.store.SaveGameSession(ctx, g); err != nil {
		return domain.GameSession{}, err
	}

	s.eb.Publish(ctx, domain.EventGameStateChanged{Session: g})

	return g, nil
}

func (s *Service) Stop(ctx context.Context) (domain.GameSession, error) {
	g, err := s.store.GameSession(ctx)
	if err != nil {
		return domain.GameSession{}, err
	}

	g.Running = false

	if err := s.store.SaveGameSession(ctx, g); err != nil {
		return domain.GameSession{}, err
	}

	s.eb.Publish(ctx, domain.EventGameStateChanged{Session: g})

	return g, nil
}

// SimulatedNow returns the current instant on the exercise's
// accelerated clock.
func (s *Service) SimulatedNow(ctx context.Context) (time.Time, error) {
	g, err := s.store.GameSession(ctx)
	if err != nil {
		return time.Time{}, err
	}

	return g.SimulatedTime(s.now()), nil
}
