package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/rangelab/warpoint/internal/api"
	"github.com/rangelab/warpoint/internal/challenge"
	"github.com/rangelab/warpoint/internal/event"
	"github.com/rangelab/warpoint/internal/game"
	"github.com/rangelab/warpoint/internal/score"
	"github.com/rangelab/warpoint/internal/scoreboard"
	"github.com/rangelab/warpoint/internal/standings"
	"github.com/rangelab/warpoint/internal/store"
	"github.com/rangelab/warpoint/internal/team"
	"github.com/rangelab/warpoint/internal/telemetry"
)

type Config struct {
	HTTP struct {
		Port int32
	}

	Redis struct {
		Addrs  []string
		Pass   string
		Prefix string
	}

	Postgres struct {
		Addr string
		User string
		Pass string
		Name string
	}
}

type Server struct {
	c Config

	eb *event.Bus

	infra struct {
		redis    redis.UniversalClient
		postgres *pgxpool.Pool
	}

	store *store.Postgres

	service struct {
		challenge  *challenge.Service
		score      *score.Service
		standings  *standings.Service
		scoreboard *scoreboard.Service
		team       *team.Service
		game       *game.Service
	}

	http *http.Server
}

func Init(c Config) (*Server, error) {
	s := &Server{c: c}

	s.eb = event.NewBus()

	if err := s.initInfra(); err != nil {
		return nil, fmt.Errorf("server: init infra: %w", err)
	}

	s.initService()
	s.initAPI()
	return s, nil
}

func (s *Server) initInfra() error {
	if err := s.initRedis(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := s.initPostgres(); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	return nil
}

func (s *Server) initRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    s.c.Redis.Addrs,
		Password: s.c.Redis.Pass,
	})

	if err := telemetry.MonitorRedis(r); err != nil {
		return err
	}

	if err := r.Ping(ctx).Err(); err != nil {
		return err
	}

	s.infra.redis = r
	return nil
}

func (s *Server) initPostgres() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cc, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://%s:%s@%s/%s",
		s.c.Postgres.User, s.c.Postgres.Pass, s.c.Postgres.Addr, s.c.Postgres.Name))
	if err != nil {
		return err
	}

	db, err := pgxpool.NewWithConfig(ctx, cc)
	if err != nil {
		return err
	}

	if err := db.Ping(ctx); err != nil {
		return err
	}

	s.infra.postgres = db
	return nil
}

func (s *Server) initService() {
	s.store = store.NewPostgres(s.infra.postgres)

	s.service.challenge = challenge.NewService(challenge.Config{
		Store: s.store,
	})

	s.service.standings = standings.NewService(standings.Config{
		Store: s.store,
	})

	s.service.score = score.NewService(score.Config{
		EventBus:  s.eb,
		Store:     s.store,
		Standings: s.service.standings,
	})

	s.service.scoreboard = scoreboard.NewService(scoreboard.Config{
		EventBus:  s.eb,
		Standings: s.service.standings,
		Redis:     s.infra.redis,
		Prefix:    s.c.Redis.Prefix,
	})

	s.service.team = team.NewService(team.Config{
		Store: s.store,
	})

	s.service.game = game.NewService(game.Config{
		EventBus: s.eb,
		Store:    s.store,
	})
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery())

	api.New(api.Config{
		Router:     e,
		Challenge:  s.service.challenge,
		Score:      s.service.score,
		Standings:  s.service.standings,
		Scoreboard: s.service.scoreboard,
		Team:       s.service.team,
		Game:       s.service.game,
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) Start() {
	ctx := context.TODO()

	// Seed the redis mirror from the store before taking traffic.
	{
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := s.service.scoreboard.Rebuild(ctx); err != nil {
			slog.ErrorContext(ctx, "server: seed scoreboard failed", "error", err)
		}
		cancel()
	}

	slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	s.eb.Stop()

	s.infra.postgres.Close()
	if err := s.infra.redis.Close(); err != nil {
		slog.ErrorContext(ctx, "server: close redis failed", "error", err)
	}

	slog.InfoContext(ctx, "server: shutdown completed")
}
