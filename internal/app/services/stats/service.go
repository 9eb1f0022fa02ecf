// Package stats aggregates platform-wide figures.
package stats

import (
	"context"

	"github.com/star-labs/star-platform/internal/app/storage"
	"github.com/star-labs/star-platform/pkg/logger"
)

// Global is the platform-wide statistics payload.
type Global struct {
	TotalUsers int `json:"totalUsers"`
	// DailyActiveUsers is a placeholder derived figure; activity is not
	// independently tracked.
	DailyActiveUsers  int     `json:"dailyActiveUsers"`
	ActiveProjects    int     `json:"activeProjects"`
	TotalPointsMinted float64 `json:"totalPointsMinted"`
}

// Service computes global statistics from the stores.
type Service struct {
	users    storage.UserStore
	projects storage.ProjectStore
	log      *logger.Logger
}

// New creates the service.
func New(users storage.UserStore, projects storage.ProjectStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("stats")
	}
	return &Service{users: users, projects: projects, log: log}
}

// Compute returns the current global statistics.
func (s *Service) Compute(ctx context.Context) (Global, error) {
	allUsers, err := s.users.ListUsers(ctx)
	if err != nil {
		return Global{}, err
	}
	active, err := s.projects.ListActiveProjects(ctx)
	if err != nil {
		return Global{}, err
	}

	var totalPoints float64
	for _, u := range allUsers {
		totalPoints += u.StarPoints
	}

	return Global{
		TotalUsers:        len(allUsers),
		DailyActiveUsers:  len(allUsers) / 4,
		ActiveProjects:    len(active),
		TotalPointsMinted: totalPoints,
	}, nil
}
