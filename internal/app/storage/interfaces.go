package storage

import (
	"context"
	"errors"

	"github.com/star-labs/star-platform/internal/app/domain/participation"
	"github.com/star-labs/star-platform/internal/app/domain/project"
	"github.com/star-labs/star-platform/internal/app/domain/user"
)

// ErrNotFound is returned when a referenced record does not exist. Lookups
// never treat absence as a panic-worthy condition.
var ErrNotFound = errors.New("not found")

// ErrInsufficientPoints is returned by AdjustUserPoints when applying the
// delta would drive a balance below zero.
var ErrInsufficientPoints = errors.New("insufficient star points")

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (user.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	// UpdateUserPoints overwrites the balance of an existing user.
	UpdateUserPoints(ctx context.Context, id string, starPoints float64) (user.User, error)
	// AdjustUserPoints applies a delta atomically. A delta that would leave
	// the balance negative fails with ErrInsufficientPoints and changes
	// nothing.
	AdjustUserPoints(ctx context.Context, id string, delta float64) (user.User, error)
	// ListReferralsByUser returns the users whose ReferredBy field matches
	// the referral code owned by the given user.
	ListReferralsByUser(ctx context.Context, id string) ([]user.User, error)
}

// ProjectStore persists token launch projects.
type ProjectStore interface {
	CreateProject(ctx context.Context, p project.Project) (project.Project, error)
	GetProject(ctx context.Context, id string) (project.Project, error)
	ListProjects(ctx context.Context) ([]project.Project, error)
	// ListActiveProjects returns projects whose status is "active" and whose
	// end timestamp is strictly in the future at query time.
	ListActiveProjects(ctx context.Context) ([]project.Project, error)
	ListProjectsByCreator(ctx context.Context, creatorID string) ([]project.Project, error)
}

// ParticipationStore persists participation records. Creation performs no
// validation; callers are responsible for eligibility checks.
type ParticipationStore interface {
	CreateParticipation(ctx context.Context, p participation.Participation) (participation.Participation, error)
	GetParticipation(ctx context.Context, id string) (participation.Participation, error)
	ListParticipationsByUser(ctx context.Context, userID string) ([]participation.Participation, error)
	ListParticipationsByProject(ctx context.Context, projectID string) ([]participation.Participation, error)
}
