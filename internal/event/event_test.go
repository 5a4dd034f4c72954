package event_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rangelab/warpoint/internal/event"
)

type testEvent string

func (e testEvent) Name() string { return string(e) }

const (
	evSolve = testEvent("solve.recorded")
	evGame  = testEvent("game.state_changed")
)

// recorder collects the events one subscriber saw, keyed by subscriber
// name. Handlers run concurrently, so every append takes the lock.
type recorder struct {
	mu   sync.Mutex
	seen map[string][]event.Event
}

func newRecorder() *recorder {
	return &recorder{seen: make(map[string][]event.Event)}
}

func (r *recorder) handler(name string) event.Handler {
	return func(ctx context.Context, e event.Event) error {
		r.mu.Lock()
		r.seen[name] = append(r.seen[name], e)
		r.mu.Unlock()
		return nil
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	tests := map[string]struct {
		subscriptions map[string][]testEvent // subscriber name -> event names
		published     []testEvent
		want          map[string][]event.Event
	}{
		"subscriber only sees its event": {
			subscriptions: map[string][]testEvent{"standings": {evSolve}},
			published:     []testEvent{evSolve, evGame},
			want:          map[string][]event.Event{"standings": {evSolve}},
		},
		"every publish is delivered": {
			subscriptions: map[string][]testEvent{"standings": {evSolve}},
			published:     []testEvent{evSolve, evSolve, evSolve},
			want:          map[string][]event.Event{"standings": {evSolve, evSolve, evSolve}},
		},
		"one event fans out to all subscribers": {
			subscriptions: map[string][]testEvent{
				"standings":  {evSolve},
				"scoreboard": {evSolve},
			},
			published: []testEvent{evSolve},
			want: map[string][]event.Event{
				"standings":  {evSolve},
				"scoreboard": {evSolve},
			},
		},
		"mixed subscriptions route independently": {
			subscriptions: map[string][]testEvent{
				"standings":  {evSolve},
				"scoreboard": {evSolve, evGame},
				"audit":      {evGame},
			},
			published: []testEvent{evSolve, evGame, evSolve},
			want: map[string][]event.Event{
				"standings":  {evSolve, evSolve},
				"scoreboard": {evSolve, evGame, evSolve},
				"audit":      {evGame},
			},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := event.NewBus()
			rec := newRecorder()

			for sub, events := range tt.subscriptions {
				for _, e := range events {
					b.Subscribe(string(e), rec.handler(sub))
				}
			}

			for _, e := range tt.published {
				b.Publish(context.Background(), e)
			}
			b.Stop()

			rec.mu.Lock()
			defer rec.mu.Unlock()
			for sub, want := range tt.want {
				assert.ElementsMatch(t, want, rec.seen[sub], "subscriber %s", sub)
			}
		})
	}
}

func TestBus_HandlerPanicIsolated(t *testing.T) {
	t.Parallel()

	b := event.NewBus()

	b.Subscribe(string(evSolve), func(ctx context.Context, e event.Event) error {
		panic("boom")
	})

	var (
		mu    sync.Mutex
		calls int
	)
	b.Subscribe(string(evSolve), func(ctx context.Context, e event.Event) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})

	b.Publish(context.Background(), evSolve)
	b.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "a panicking handler should not stop other handlers")
}
