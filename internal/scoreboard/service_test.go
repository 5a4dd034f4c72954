package scoreboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
	"github.com/rangelab/warpoint/internal/event"
	"github.com/rangelab/warpoint/internal/scoreboard"
	"github.com/rangelab/warpoint/internal/standings"
)

func TestService_Update(t *testing.T) {
	s, _, _ := makeService(t, nil)

	err := s.Update(context.Background(), solveEvent("u1", 350))
	require.NoError(t, err)

	board, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, &scoreboard.Scoreboard{
		Entries: []scoreboard.Entry{{Username: "u1", Score: 350}},
	}, board)
}

func TestService_Get_OrderedByScore(t *testing.T) {
	s, _, _ := makeService(t, nil)

	for _, e := range []domain.EventSolveRecorded{
		solveEvent("u1", 100),
		solveEvent("u2", 350),
		solveEvent("u3", 200),
		solveEvent("u1", 400), // u1 solves again, overwriting their entry
	} {
		require.NoError(t, s.Update(context.Background(), e))
	}

	board, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, []scoreboard.Entry{
		{Username: "u1", Score: 400},
		{Username: "u2", Score: 350},
		{Username: "u3", Score: 200},
	}, board.Entries)
}

func TestService_Get_Empty(t *testing.T) {
	s, _, _ := makeService(t, nil)

	_, err := s.Get(context.Background())
	require.Equal(t, errors.CodeNotFound, errors.Convert(err).Code)
}

func TestService_ReactsToSolveEvents(t *testing.T) {
	eb := event.NewBus()
	s, _, _ := makeService(t, eb)

	eb.Publish(context.Background(), solveEvent("u7", 150))
	eb.Stop()

	board, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, []scoreboard.Entry{{Username: "u7", Score: 150}}, board.Entries)
}

func TestService_Rebuild(t *testing.T) {
	s, fs, _ := makeService(t, nil)

	// Stale mirror entry for a user the store no longer knows.
	require.NoError(t, s.Update(context.Background(), solveEvent("deleted", 500)))

	fs.standings = []domain.Standing{
		{UserID: 1, Username: "u1", Score: 300},
		{UserID: 2, Username: "u2", Score: 0},
	}

	require.NoError(t, s.Rebuild(context.Background()))

	board, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, []scoreboard.Entry{
		{Username: "u1", Score: 300},
		{Username: "u2", Score: 0},
	}, board.Entries)
}

func TestService_PublishDebounced(t *testing.T) {
	eb := event.NewBus()
	s, _, rc := makeService(t, eb)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub := rc.Subscribe(ctx, "test:user:u1")
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	// Two updates inside one publish interval collapse into a single
	// notification.
	require.NoError(t, s.Update(ctx, solveEvent("u1", 100)))
	require.NoError(t, s.Update(ctx, solveEvent("u1", 200)))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.Contains(t, msg.Payload, `"u1"`)

	shortCtx, cancelShort := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancelShort()
	_, err = sub.ReceiveMessage(shortCtx)
	require.Error(t, err, "second update within the interval should not publish")
}

func solveEvent(username string, total int) domain.EventSolveRecorded {
	return domain.EventSolveRecorded{
		Solve: domain.Solve{
			UserID:    1,
			Username:  username,
			CreatedAt: time.Now(),
		},
		TotalScore: total,
	}
}

type fakeStandingsStore struct {
	standings []domain.Standing
}

func (f *fakeStandingsStore) Standings(_ context.Context) ([]domain.Standing, error) {
	return f.standings, nil
}

func makeService(t *testing.T, eb *event.Bus) (*scoreboard.Service, *fakeStandingsStore, redis.UniversalClient) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{rs.Addr()},
	})
	require.NoError(t, rc.Ping(ctx).Err(), "should be able to ping redis")

	if eb == nil {
		eb = event.NewBus()
		t.Cleanup(eb.Stop)
	}

	fs := &fakeStandingsStore{}
	st := standings.NewService(standings.Config{Store: fs})

	s := scoreboard.NewService(scoreboard.Config{
		EventBus:  eb,
		Standings: st,
		Redis:     rc,
		Prefix:    "test",
	})

	return s, fs, rc
}
