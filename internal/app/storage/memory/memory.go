// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/star-labs/star-platform/internal/app/domain/participation"
	"github.com/star-labs/star-platform/internal/app/domain/project"
	"github.com/star-labs/star-platform/internal/app/domain/user"
	"github.com/star-labs/star-platform/internal/app/storage"
)

// Store keeps all records in mutex-guarded maps.
type Store struct {
	mu             sync.RWMutex
	users          map[string]user.User
	usersByWallet  map[string]string
	usersByCode    map[string]string
	projects       map[string]project.Project
	participations map[string]participation.Participation
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.ProjectStore = (*Store)(nil)
var _ storage.ParticipationStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:          make(map[string]user.User),
		usersByWallet:  make(map[string]string),
		usersByCode:    make(map[string]string),
		projects:       make(map[string]project.Project),
		participations: make(map[string]participation.Participation),
	}
}

// UserStore implementation -------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	s.users[u.ID] = u
	s.usersByWallet[u.WalletAddress] = u.ID
	s.usersByCode[u.ReferralCode] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByWallet(_ context.Context, walletAddress string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByWallet[walletAddress]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUserByReferralCode(_ context.Context, code string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByCode[code]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	return result, nil
}

func (s *Store) UpdateUserPoints(_ context.Context, id string, starPoints float64) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	u.StarPoints = starPoints
	s.users[id] = u
	return u, nil
}

func (s *Store) AdjustUserPoints(_ context.Context, id string, delta float64) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	if u.StarPoints+delta < 0 {
		return user.User{}, storage.ErrInsufficientPoints
	}
	u.StarPoints += delta
	s.users[id] = u
	return u, nil
}

func (s *Store) ListReferralsByUser(_ context.Context, id string) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	result := make([]user.User, 0)
	for _, u := range s.users {
		if u.ReferredBy != nil && *u.ReferredBy == owner.ReferralCode {
			result = append(result, u)
		}
	}
	return result, nil
}

// ProjectStore implementation ----------------------------------------------

func (s *Store) CreateProject(_ context.Context, p project.Project) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.EndsAt = p.CreatedAt.Add(time.Duration(p.ParticipationPeriodDays) * 24 * time.Hour)
	if p.Decimals == 0 {
		p.Decimals = 7
	}
	if p.Status == "" {
		p.Status = project.StatusActive
	}
	if p.ContractAddress == "" {
		p.ContractAddress = "STELLAR_CONTRACT_" + strings.ToUpper(p.ID[:8])
	}

	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) GetProject(_ context.Context, id string) (project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return project.Project{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListProjects(_ context.Context) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]project.Project, 0, len(s.projects))
	for _, p := range s.projects {
		result = append(result, p)
	}
	return result, nil
}

func (s *Store) ListActiveProjects(_ context.Context) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UTC()
	result := make([]project.Project, 0)
	for _, p := range s.projects {
		if p.Active(now) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *Store) ListProjectsByCreator(_ context.Context, creatorID string) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]project.Project, 0)
	for _, p := range s.projects {
		if p.CreatorID == creatorID {
			result = append(result, p)
		}
	}
	return result, nil
}

// ParticipationStore implementation ----------------------------------------

func (s *Store) CreateParticipation(_ context.Context, p participation.Participation) (participation.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	s.participations[p.ID] = p
	return p, nil
}

func (s *Store) GetParticipation(_ context.Context, id string) (participation.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participations[id]
	if !ok {
		return participation.Participation{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListParticipationsByUser(_ context.Context, userID string) ([]participation.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]participation.Participation, 0)
	for _, p := range s.participations {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *Store) ListParticipationsByProject(_ context.Context, projectID string) ([]participation.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]participation.Participation, 0)
	for _, p := range s.participations {
		if p.ProjectID == projectID {
			result = append(result, p)
		}
	}
	return result, nil
}
