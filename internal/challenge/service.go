// Package challenge manages the challenge catalog: single and bulk
// creation, edits, deletion, and answer validation.
package challenge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
)

// The original data set used "None" for uncategorized challenges.
const defaultCategory = "None"

type Store interface {
	CreateChallenge(ctx context.Context, c *domain.Challenge) error
	GetChallenge(ctx context.Context, id int64) (domain.Challenge, error)
	ListChallenges(ctx context.Context) ([]domain.Challenge, error)
	UpdateChallenge(ctx context.Context, c domain.Challenge) error
	DeleteChallenge(ctx context.Context, id int64) error
	ChallengeSolves(ctx context.Context, challengeID int64) ([]domain.Solve, error)
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

type CreateChallengeRequest struct {
	Name        string
	Category    string
	Description string
	Answer      string
	Value       int
}

func (s *Service) CreateChallenge(ctx context.Context, req CreateChallengeRequest) (*domain.Challenge, error) {
	c := domain.Challenge{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Answer:      req.Answer,
		Value:       req.Value,
	}
	if err := validateChallenge(c); err != nil {
		return nil, err
	}
	if c.Category == "" {
		c.Category = defaultCategory
	}

	if err := s.store.CreateChallenge(ctx, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Service) GetChallenge(ctx context.Context, id int64) (domain.Challenge, error) {
	return s.store.GetChallenge(ctx, id)
}

func (s *Service) ListChallenges(ctx context.Context) ([]domain.Challenge, error) {
	return s.store.ListChallenges(ctx)
}

func (s *Service) UpdateChallenge(ctx context.Context, c domain.Challenge) error {
	if err := validateChallenge(c); err != nil {
		return err
	}
	if c.Category == "" {
		c.Category = defaultCategory
	}

	return s.store.UpdateChallenge(ctx, c)
}

func (s *Service) DeleteChallenge(ctx context.Context, id int64) error {
	return s.store.DeleteChallenge(ctx, id)
}

// Solvers returns the distinct users who solved a challenge, in the
// order they solved it.
func (s *Service) Solvers(ctx context.Context, challengeID int64) ([]domain.Standing, error) {
	solves, err := s.store.ChallengeSolves(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	solvers := make([]domain.Standing, 0, len(solves))
	for _, sv := range solves {
		solvers = append(solvers, domain.Standing{
			UserID:   sv.UserID,
			Username: sv.Username,
		})
	}

	return solvers, nil
}

func validateChallenge(c domain.Challenge) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New(errors.CodeInvalidArgument, errors.WithMessagef("challenge name is required"))
	}
	if c.Answer == "" {
		return errors.New(errors.CodeInvalidArgument, errors.WithMessagef("challenge answer is required"))
	}
	if c.Value < 0 {
		return errors.New(errors.CodeInvalidArgument, errors.WithMessagef("challenge value must be >= 0, got %d", c.Value))
	}

	return nil
}

// ImportRecord is one already-parsed row of a bulk challenge upload.
// Value stays a string here: parsing it is part of per-row validation.
type ImportRecord struct {
	Name        string
	Value       string
	Description string
	Answer      string
	Category    string
}

type RowError struct {
	Row    int
	Reason string
}

type ImportResult struct {
	BatchID  string
	Imported int
	Errors   []RowError
}

// BulkImport validates and persists each record independently. A bad
// row is reported and skipped; it never fails the batch, and rows
// already imported are not rolled back.
func (s *Service) BulkImport(ctx context.Context, records []ImportRecord) (*ImportResult, error) {
	res := &ImportResult{BatchID: uuid.NewString()}

	for i, rec := range records {
		c, err := parseImportRecord(rec)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: i, Reason: err.Error()})
			continue
		}

		if err := s.store.CreateChallenge(ctx, &c); err != nil {
			res.Errors = append(res.Errors, RowError{Row: i, Reason: fmt.Sprintf("store: %v", err)})
			continue
		}

		res.Imported++
	}

	return res, nil
}

func parseImportRecord(rec ImportRecord) (domain.Challenge, error) {
	value, err := strconv.Atoi(strings.TrimSpace(rec.Value))
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("value %q is not an integer", rec.Value)
	}

	c := domain.Challenge{
		Name:        rec.Name,
		Category:    rec.Category,
		Description: rec.Description,
		Answer:      rec.Answer,
		Value:       value,
	}
	if err := validateChallenge(c); err != nil {
		return domain.Challenge{}, err
	}
	if c.Category == "" {
		c.Category = defaultCategory
	}

	return c, nil
}
