package team_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
	"github.com/rangelab/warpoint/internal/team"
)

func TestService_CreateTeam(t *testing.T) {
	awareness := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	tests := map[string]struct {
		req           team.CreateTeamRequest
		wantErr       errors.Code
		wantAwareness string
	}{
		"defaults apply": {
			req:           team.CreateTeamRequest{Name: "blue team"},
			wantAwareness: "0.25",
		},
		"explicit awareness": {
			req:           team.CreateTeamRequest{Name: "red team", SecurityAwareness: awareness("0.8")},
			wantAwareness: "0.8",
		},
		"awareness may be zero": {
			req:           team.CreateTeamRequest{Name: "greenhorns", SecurityAwareness: awareness("0")},
			wantAwareness: "0",
		},
		"awareness above one rejected": {
			req:     team.CreateTeamRequest{Name: "overachievers", SecurityAwareness: awareness("1.5")},
			wantErr: errors.CodeInvalidArgument,
		},
		"negative awareness rejected": {
			req:     team.CreateTeamRequest{Name: "undefined", SecurityAwareness: awareness("-0.1")},
			wantErr: errors.CodeInvalidArgument,
		},
		"name required": {
			req:     team.CreateTeamRequest{Name: "   "},
			wantErr: errors.CodeInvalidArgument,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := team.NewService(team.Config{Store: newFakeStore()})

			created, err := s.CreateTeam(context.Background(), tt.req)
			if tt.wantErr != 0 {
				require.Error(t, err)
				require.Equal(t, tt.wantErr, errors.Convert(err).Code)
				return
			}

			require.NoError(t, err)
			require.NotZero(t, created.ID)
			require.True(t, decimal.RequireFromString(tt.wantAwareness).Equal(created.SecurityAwareness))
			require.NotNil(t, created.Mitigations)
		})
	}
}

func TestService_UpdateDenyList(t *testing.T) {
	tests := map[string]struct {
		raw  string
		want []string
	}{
		"single entry": {
			raw:  "block 10.0.0.5",
			want: []string{"block 10.0.0.5"},
		},
		"blank lines drop out, order kept": {
			raw:  "deny evil.io\n\nblock 10.0.0.5\n\n\ndrop udp/53\n",
			want: []string{"deny evil.io", "block 10.0.0.5", "drop udp/53"},
		},
		"entries stay verbatim": {
			raw:  "  indented \nUPPER case",
			want: []string{"  indented ", "UPPER case"},
		},
		"empty submission clears the list": {
			raw:  "\n\n",
			want: []string{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fs := newFakeStore()
			s := team.NewService(team.Config{Store: fs})

			created, err := s.CreateTeam(context.Background(), team.CreateTeamRequest{Name: "blue"})
			require.NoError(t, err)

			got, err := s.UpdateDenyList(context.Background(), created.ID, tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			// The list must survive a store round-trip unchanged.
			stored, err := s.DenyList(context.Background(), created.ID)
			require.NoError(t, err)
			require.Equal(t, tt.want, stored)
		})
	}
}

func TestService_UpdateDenyList_UnknownTeam(t *testing.T) {
	s := team.NewService(team.Config{Store: newFakeStore()})

	_, err := s.UpdateDenyList(context.Background(), 42, "block 10.0.0.5")
	require.Equal(t, errors.CodeNotFound, errors.Convert(err).Code)
}

func TestService_DeleteUser(t *testing.T) {
	fs := newFakeStore()
	fs.users[7] = domain.User{ID: 7, Username: "blue7"}

	s := team.NewService(team.Config{Store: fs})

	require.NoError(t, s.DeleteUser(context.Background(), 7))

	err := s.DeleteUser(context.Background(), 7)
	require.Equal(t, errors.CodeNotFound, errors.Convert(err).Code)
}

// fakeStore persists mitigations through the same JSON codec as the
// real store, so these tests cover the round-trip.
type fakeStore struct {
	nextID int64
	teams  map[int64]string // serialized mitigations
	names  map[int64]domain.Team
	users  map[int64]domain.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		teams: make(map[int64]string),
		names: make(map[int64]domain.Team),
		users: make(map[int64]domain.User),
	}
}

func (f *fakeStore) CreateTeam(_ context.Context, t *domain.Team) error {
	raw, err := domain.MarshalMitigations(t.Mitigations)
	if err != nil {
		return err
	}

	f.nextID++
	t.ID = f.nextID
	f.teams[t.ID] = raw
	f.names[t.ID] = *t
	return nil
}

func (f *fakeStore) GetTeam(_ context.Context, id int64) (domain.Team, error) {
	raw, ok := f.teams[id]
	if !ok {
		return domain.Team{}, errors.NotFoundf("team not found: id=%d", id)
	}

	t := f.names[id]
	mitigations, err := domain.UnmarshalMitigations(raw)
	if err != nil {
		return domain.Team{}, err
	}
	t.Mitigations = mitigations
	return t, nil
}

func (f *fakeStore) ListTeams(_ context.Context) ([]domain.Team, error) {
	out := make([]domain.Team, 0, len(f.teams))
	for id := int64(1); id <= f.nextID; id++ {
		if _, ok := f.teams[id]; ok {
			t, err := f.GetTeam(context.Background(), id)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteTeam(_ context.Context, id int64) error {
	if _, ok := f.teams[id]; !ok {
		return errors.NotFoundf("team not found: id=%d", id)
	}
	delete(f.teams, id)
	delete(f.names, id)
	return nil
}

func (f *fakeStore) UpdateTeamMitigations(_ context.Context, teamID int64, mitigations []string) error {
	if _, ok := f.teams[teamID]; !ok {
		return errors.NotFoundf("team not found: id=%d", teamID)
	}

	raw, err := domain.MarshalMitigations(mitigations)
	if err != nil {
		return err
	}
	f.teams[teamID] = raw
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, errors.NotFoundf("user not found: id=%d", id)
	}
	return u, nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return errors.NotFoundf("user not found: id=%d", id)
	}
	delete(f.users, id)
	return nil
}
