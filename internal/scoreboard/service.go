// Package scoreboard keeps a redis mirror of the standings for the
// polling scoreboard page, and fans out update notifications over redis
// pub/sub. The authoritative ranking lives in the standings package;
// this mirror only serves the high-traffic public view.
package scoreboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
	"github.com/rangelab/warpoint/internal/event"
	"github.com/rangelab/warpoint/internal/standings"
)

const (
	publishInterval = 200 * time.Millisecond
	maxConcurrent   = 100
)

type Config struct {
	EventBus  *event.Bus
	Standings *standings.Service
	Redis     redis.UniversalClient
	Prefix    string
}

type Service struct {
	standings *standings.Service
	redis     redis.UniversalClient
	prefix    string
}

func NewService(c Config) *Service {
	s := &Service{
		standings: c.Standings,
		redis:     c.Redis,
		prefix:    c.Prefix,
	}

	c.EventBus.Subscribe(domain.EventNameSolveRecorded, func(ctx context.Context, e event.Event) error {
		return s.Update(ctx, e.(domain.EventSolveRecorded))
	})

	return s
}

type Entry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

type Scoreboard struct {
	Entries []Entry `json:"entries"`
}

// Get returns the mirrored scoreboard, best score first.
func (s *Service) Get(ctx context.Context) (*Scoreboard, error) {
	res, err := s.redis.ZRevRangeWithScores(ctx, s.scoreboardKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get scoreboard: %w", err)
	}

	if len(res) == 0 {
		return nil, errors.NotFoundf("scoreboard is empty")
	}

	entries := make([]Entry, 0, len(res))
	for _, z := range res {
		entries = append(entries, Entry{
			Username: z.Member.(string),
			Score:    int(z.Score),
		})
	}

	return &Scoreboard{Entries: entries}, nil
}

// Update overwrites the solver's mirrored score after a recorded solve.
func (s *Service) Update(ctx context.Context, e domain.EventSolveRecorded) error {
	if err := s.redis.ZAdd(ctx, s.scoreboardKey(), redis.Z{
		Score:  float64(e.TotalScore),
		Member: e.Solve.Username,
	}).Err(); err != nil {
		return fmt.Errorf("update scoreboard: %w", err)
	}

	return s.schedulePublish(ctx, e.Solve.CreatedAt)
}

// Rebuild replaces the mirror with the authoritative standings. Run at
// startup and after administrative deletions, which bypass the solve
// path.
func (s *Service) Rebuild(ctx context.Context) error {
	all, err := s.standings.Standings(ctx, standings.StandingsRequest{})
	if err != nil {
		return fmt.Errorf("rebuild scoreboard: %w", err)
	}

	members := make([]redis.Z, 0, len(all))
	for _, st := range all {
		members = append(members, redis.Z{
			Score:  float64(st.Score),
			Member: st.Username,
		})
	}

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, s.scoreboardKey())
	if len(members) > 0 {
		pipe.ZAdd(ctx, s.scoreboardKey(), members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuild scoreboard: %w", err)
	}

	return nil
}

// schedulePublish publishes scoreboard changes at most once per
// interval. Many solves can land in a short burst; collapsing them
// keeps the notification volume bounded.
func (s *Service) schedulePublish(ctx context.Context, at time.Time) error {
	ok, err := s.redis.SetNX(ctx, s.timeKey(), at.UnixMilli(), publishInterval).Result()
	if err != nil {
		return fmt.Errorf("setnx: %w", err)
	}

	if !ok {
		return nil
	}

	return s.publish(ctx)
}

type notification struct {
	Event string      `json:"event"`
	Data  *Scoreboard `json:"data"`
}

func (s *Service) publish(ctx context.Context) error {
	board, err := s.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish scoreboard: %w", err)
	}

	b, err := json.Marshal(notification{
		Event: domain.EventNameSolveRecorded,
		Data:  board,
	})
	if err != nil {
		return fmt.Errorf("publish scoreboard: marshal: %w", err)
	}

	var eg errgroup.Group
	eg.SetLimit(maxConcurrent)

	for _, entry := range board.Entries {
		entry := entry
		eg.Go(func() error {
			return s.redis.Publish(ctx, s.userChannel(entry.Username), b).Err()
		})
	}

	return eg.Wait()
}

func (s *Service) scoreboardKey() string {
	return fmt.Sprintf("%s:scoreboard", s.prefix)
}

func (s *Service) timeKey() string {
	return fmt.Sprintf("%s:scoreboard:time", s.prefix)
}

func (s *Service) userChannel(username string) string {
	return fmt.Sprintf("%s:user:%s", s.prefix, username)
}
