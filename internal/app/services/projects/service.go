// Package projects implements token-launch creation and the participation
// ledger.
package projects

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/star-labs/star-platform/internal/app/domain/participation"
	"github.com/star-labs/star-platform/internal/app/domain/project"
	"github.com/star-labs/star-platform/internal/app/events"
	"github.com/star-labs/star-platform/internal/app/metrics"
	"github.com/star-labs/star-platform/internal/app/storage"
	"github.com/star-labs/star-platform/internal/app/validation"
	"github.com/star-labs/star-platform/internal/config"
	"github.com/star-labs/star-platform/pkg/logger"
)

// ErrNotEligible marks participation attempts refused for reasons other than
// malformed input: inactive or expired project, own project, or an
// insufficient balance.
var ErrNotEligible = errors.New("not eligible to participate")

// CreateInput carries the fields for a new project. The creator is resolved
// by wallet address and must already be registered.
type CreateInput struct {
	WalletAddress           string
	Name                    string
	Symbol                  string
	Description             string
	LogoURL                 *string
	TotalSupply             string
	Decimals                int
	AirdropPercent          int
	CreatorPercent          int
	LiquidityPercent        int
	MinimumLiquidity        string
	HasVesting              bool
	VestingPeriodDays       *int
	ParticipationPeriodDays int
	TwitterURL              *string
	TelegramURL             *string
	WebsiteURL              *string
}

// ParticipateResult is the participation response payload.
type ParticipateResult struct {
	Participation participation.Participation `json:"participation"`
	Burned        float64                     `json:"burned"`
	ToCreator     float64                     `json:"toCreator"`
	NewBalance    float64                     `json:"newBalance"`
}

// UserParticipation joins a participation with its parent project.
type UserParticipation struct {
	Participation participation.Participation `json:"participation"`
	Project       *project.Project            `json:"project"`
}

// Service owns project lifecycle and the participation split.
type Service struct {
	users          storage.UserStore
	projects       storage.ProjectStore
	participations storage.ParticipationStore
	eco            config.Economics
	events         events.Publisher
	log            *logger.Logger
}

// New creates the service. Zero economics fall back to the defaults.
func New(users storage.UserStore, projects storage.ProjectStore, participations storage.ParticipationStore, eco config.Economics, log *logger.Logger) *Service {
	if eco == (config.Economics{}) {
		eco = config.DefaultEconomics()
	}
	if log == nil {
		log = logger.NewDefault("projects")
	}
	return &Service{
		users:          users,
		projects:       projects,
		participations: participations,
		eco:            eco,
		log:            log,
	}
}

// AttachPublisher enables event publishing.
func (s *Service) AttachPublisher(p events.Publisher) { s.events = p }

func validateCreate(in CreateInput) error {
	verr := &validation.Error{}

	if l := len(in.Name); l < 2 || l > 50 {
		verr.Add("name", "must be between 2 and 50 characters")
	}
	if l := len(in.Symbol); l < 2 || l > 10 {
		verr.Add("symbol", "must be between 2 and 10 characters")
	}
	if len(in.Description) < 10 {
		verr.Add("description", "must be at least 10 characters")
	}
	if supply, err := strconv.ParseFloat(in.TotalSupply, 64); err != nil || supply <= 0 {
		verr.Add("totalSupply", "must be a positive number")
	}
	if liq, err := strconv.ParseFloat(in.MinimumLiquidity, 64); err != nil || liq < 500 {
		verr.Add("minimumLiquidity", "must be at least 500")
	}
	if in.ParticipationPeriodDays < 3 || in.ParticipationPeriodDays > 15 {
		verr.Add("participationPeriodDays", "must be between 3 and 15 days")
	}
	if in.AirdropPercent+in.CreatorPercent+in.LiquidityPercent != 100 {
		verr.Add("percentages", "airdrop, creator, and liquidity percentages must sum to 100")
	}
	if in.HasVesting && (in.VestingPeriodDays == nil || *in.VestingPeriodDays <= 0) {
		verr.Add("vestingPeriodDays", "required when vesting is enabled")
	}

	return verr.Err()
}

// Create validates the submission and persists a new active project.
func (s *Service) Create(ctx context.Context, in CreateInput) (project.Project, error) {
	if err := validateCreate(in); err != nil {
		return project.Project{}, err
	}

	creator, err := s.users.GetUserByWallet(ctx, in.WalletAddress)
	if err != nil {
		return project.Project{}, err
	}

	created, err := s.projects.CreateProject(ctx, project.Project{
		CreatorID:               creator.ID,
		Name:                    in.Name,
		Symbol:                  strings.ToUpper(in.Symbol),
		Description:             in.Description,
		LogoURL:                 in.LogoURL,
		TotalSupply:             in.TotalSupply,
		Decimals:                in.Decimals,
		AirdropPercent:          in.AirdropPercent,
		CreatorPercent:          in.CreatorPercent,
		LiquidityPercent:        in.LiquidityPercent,
		MinimumLiquidity:        in.MinimumLiquidity,
		HasVesting:              in.HasVesting,
		VestingPeriodDays:       in.VestingPeriodDays,
		ParticipationPeriodDays: in.ParticipationPeriodDays,
		TwitterURL:              in.TwitterURL,
		TelegramURL:             in.TelegramURL,
		WebsiteURL:              in.WebsiteURL,
	})
	if err != nil {
		return project.Project{}, fmt.Errorf("create project: %w", err)
	}

	s.log.WithField("project", created.ID).Infof("project %s created by %s", created.Symbol, in.WalletAddress)
	return created, nil
}

// Participate spends the wallet's points into the project. The spent amount
// splits between a burn (credited nowhere) and the project creator. The debit
// is an atomic guarded adjustment, so concurrent requests cannot overdraw.
func (s *Service) Participate(ctx context.Context, projectID, walletAddress string, starPoints float64, txHash string) (ParticipateResult, error) {
	if starPoints <= 0 {
		return ParticipateResult{}, validation.Errorf("starPoints", "must be positive")
	}

	proj, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return ParticipateResult{}, err
	}
	if !proj.Active(time.Now().UTC()) {
		return ParticipateResult{}, fmt.Errorf("%w: project is not active or has ended", ErrNotEligible)
	}

	participant, err := s.users.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		return ParticipateResult{}, err
	}
	if participant.StarPoints < starPoints {
		return ParticipateResult{}, fmt.Errorf("%w: insufficient STAR points balance", ErrNotEligible)
	}

	creator, err := s.users.GetUser(ctx, proj.CreatorID)
	if err != nil {
		return ParticipateResult{}, err
	}
	if participant.ID == proj.CreatorID {
		return ParticipateResult{}, fmt.Errorf("%w: cannot participate in your own project", ErrNotEligible)
	}

	burned := starPoints * s.eco.BurnFraction
	toCreator := starPoints - burned

	debited, err := s.users.AdjustUserPoints(ctx, participant.ID, -starPoints)
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientPoints) {
			return ParticipateResult{}, fmt.Errorf("%w: insufficient STAR points balance", ErrNotEligible)
		}
		return ParticipateResult{}, fmt.Errorf("debit participant: %w", err)
	}

	if _, err := s.users.AdjustUserPoints(ctx, creator.ID, toCreator); err != nil {
		return ParticipateResult{}, fmt.Errorf("credit creator: %w", err)
	}

	record, err := s.participations.CreateParticipation(ctx, participation.Participation{
		UserID:         participant.ID,
		ProjectID:      projectID,
		StarPointsUsed: starPoints,
	})
	if err != nil {
		return ParticipateResult{}, fmt.Errorf("record participation: %w", err)
	}

	metrics.RecordParticipation(burned)
	if s.events != nil {
		s.events.ParticipationRecorded(ctx, events.ParticipationEvent{
			ParticipationID: record.ID,
			UserID:          participant.ID,
			ProjectID:       projectID,
			StarPoints:      starPoints,
			Burned:          burned,
			ToCreator:       toCreator,
		})
	}

	s.log.WithField("project", projectID).Infof("%s participated with %.2f points", walletAddress, starPoints)
	return ParticipateResult{
		Participation: record,
		Burned:        burned,
		ToCreator:     toCreator,
		NewBalance:    debited.StarPoints,
	}, nil
}

// Get returns a project by id.
func (s *Service) Get(ctx context.Context, id string) (project.Project, error) {
	return s.projects.GetProject(ctx, id)
}

// ListActive returns active projects, newest first.
func (s *Service) ListActive(ctx context.Context) ([]project.Project, error) {
	list, err := s.projects.ListActiveProjects(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// ListByCreator returns the projects a user created, after confirming the
// user exists.
func (s *Service) ListByCreator(ctx context.Context, userID string) ([]project.Project, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.projects.ListProjectsByCreator(ctx, userID)
}

// ParticipationsByProject lists a project's participations.
func (s *Service) ParticipationsByProject(ctx context.Context, projectID string) ([]participation.Participation, error) {
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.participations.ListParticipationsByProject(ctx, projectID)
}

// ParticipationsByUser lists a user's participations joined with their
// parent projects.
func (s *Service) ParticipationsByUser(ctx context.Context, userID string) ([]UserParticipation, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	records, err := s.participations.ListParticipationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]UserParticipation, 0, len(records))
	for _, rec := range records {
		entry := UserParticipation{Participation: rec}
		if proj, err := s.projects.GetProject(ctx, rec.ProjectID); err == nil {
			entry.Project = &proj
		}
		result = append(result, entry)
	}
	return result, nil
}
