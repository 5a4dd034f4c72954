// Package team covers team and user administration, and the mitigation
// denylist teams maintain during the exercise. Denylist entries are
// opaque to the engine: they are stored and returned verbatim.
package team

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
)

// New teams start at the original default awareness level.
var defaultSecurityAwareness = decimal.RequireFromString("0.25")

type Store interface {
	CreateTeam(ctx context.Context, t *domain.Team) error
	GetTeam(ctx context.Context, id int64) (domain.Team, error)
	ListTeams(ctx context.Context) ([]domain.Team, error)
	DeleteTeam(ctx context.Context, id int64) error
	UpdateTeamMitigations(ctx context.Context, teamID int64, mitigations []string) error

	GetUser(ctx context.Context, id int64) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type Config struct {
	Store Store
}

type Service struct {
	store Store
}

func NewService(c Config) *Service {
	return &Service{store: c.Store}
}

type CreateTeamRequest struct {
	Name string

	// SecurityAwareness must sit in [0, 1]; zero value means default.
	SecurityAwareness *decimal.Decimal
}

func (s *Service) CreateTeam(ctx context.Context, req CreateTeamRequest) (*domain.Team, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("team name is required"))
	}

	awareness := defaultSecurityAwareness
	if req.SecurityAwareness != nil {
		awareness = *req.SecurityAwareness
		if awareness.IsNegative() || awareness.GreaterThan(decimal.NewFromInt(1)) {
			return nil, errors.New(errors.CodeInvalidArgument,
				errors.WithMessagef("security awareness must be in [0, 1], got %s", awareness))
		}
	}

	t := domain.Team{
		Name:              req.Name,
		Mitigations:       []string{},
		SecurityAwareness: awareness,
	}
	if err := s.store.CreateTeam(ctx, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

func (s *Service) GetTeam(ctx context.Context, id int64) (domain.Team, error) {
	return s.store.GetTeam(ctx, id)
}

func (s *Service) ListTeams(ctx context.Context) ([]domain.Team, error) {
	return s.store.ListTeams(ctx)
}

func (s *Service) DeleteTeam(ctx context.Context, id int64) error {
	return s.store.DeleteTeam(ctx, id)
}

// DenyList returns the team's mitigation denylist in stored order.
func (s *Service) DenyList(ctx context.Context, teamID int64) ([]string, error) {
	t, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	return t.Mitigations, nil
}

// UpdateDenyList replaces the team's denylist with the entries from a
// newline-separated submission. Blank lines drop out; everything else
// is kept verbatim, order preserved.
func (s *Service) UpdateDenyList(ctx context.Context, teamID int64, raw string) ([]string, error) {
	var mitigations []string
	for _, line := range strings.Split(raw, "\n") {
		if line == "" {
			continue
		}
		mitigations = append(mitigations, line)
	}
	if mitigations == nil {
		mitigations = []string{}
	}

	if err := s.store.UpdateTeamMitigations(ctx, teamID, mitigations); err != nil {
		return nil, err
	}

	return mitigations, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return s.store.GetUser(ctx, id)
}

// DeleteUser removes a user; their solves cascade at the store.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.store.DeleteUser(ctx, id)
}
