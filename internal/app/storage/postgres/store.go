// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/star-labs/star-platform/internal/app/domain/participation"
	"github.com/star-labs/star-platform/internal/app/domain/project"
	"github.com/star-labs/star-platform/internal/app/domain/user"
	"github.com/star-labs/star-platform/internal/app/storage"
)

// Store implements the storage interfaces using database/sql.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.ProjectStore = (*Store)(nil)
var _ storage.ParticipationStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const userColumns = "id, wallet_address, star_points, referral_code, referred_by, created_at"

func scanUser(row interface{ Scan(...any) error }) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.WalletAddress, &u.StarPoints, &u.ReferralCode, &u.ReferredBy, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, wallet_address, star_points, referral_code, referred_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.WalletAddress, u.StarPoints, u.ReferralCode, u.ReferredBy, u.CreatedAt)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

func (s *Store) GetUserByWallet(ctx context.Context, walletAddress string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE wallet_address = $1
	`, walletAddress)
	return scanUser(row)
}

func (s *Store) GetUserByReferralCode(ctx context.Context, code string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE referral_code = $1
	`, code)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *Store) UpdateUserPoints(ctx context.Context, id string, starPoints float64) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET star_points = $2 WHERE id = $1
		RETURNING `+userColumns+`
	`, id, starPoints)
	return scanUser(row)
}

// AdjustUserPoints applies the delta in a single conditional statement so
// concurrent adjustments cannot lose updates or overdraw the balance.
func (s *Store) AdjustUserPoints(ctx context.Context, id string, delta float64) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET star_points = star_points + $2
		WHERE id = $1 AND star_points + $2 >= 0
		RETURNING `+userColumns+`
	`, id, delta)

	u, err := scanUser(row)
	if errors.Is(err, storage.ErrNotFound) {
		// Disambiguate a missing row from a refused overdraw.
		if _, getErr := s.GetUser(ctx, id); getErr != nil {
			return user.User{}, getErr
		}
		return user.User{}, storage.ErrInsufficientPoints
	}
	return u, err
}

func (s *Store) ListReferralsByUser(ctx context.Context, id string) ([]user.User, error) {
	owner, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE referred_by = $1 ORDER BY created_at
	`, owner.ReferralCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// --- ProjectStore -----------------------------------------------------------

const projectColumns = `id, creator_id, name, symbol, description, logo_url,
	total_supply, decimals, airdrop_percent, creator_percent, liquidity_percent,
	minimum_liquidity, has_vesting, vesting_period_days, participation_period_days,
	twitter_url, telegram_url, website_url, contract_address, status, created_at, ends_at`

func scanProject(row interface{ Scan(...any) error }) (project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.ID, &p.CreatorID, &p.Name, &p.Symbol, &p.Description, &p.LogoURL,
		&p.TotalSupply, &p.Decimals, &p.AirdropPercent, &p.CreatorPercent, &p.LiquidityPercent,
		&p.MinimumLiquidity, &p.HasVesting, &p.VestingPeriodDays, &p.ParticipationPeriodDays,
		&p.TwitterURL, &p.TelegramURL, &p.WebsiteURL, &p.ContractAddress, &p.Status, &p.CreatedAt, &p.EndsAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return project.Project{}, storage.ErrNotFound
		}
		return project.Project{}, err
	}
	return p, nil
}

func (s *Store) CreateProject(ctx context.Context, p project.Project) (project.Project, error) {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (
			id, creator_id, name, symbol, description, logo_url,
			total_supply, decimals, airdrop_percent, creator_percent, liquidity_percent,
			minimum_liquidity, has_vesting, vesting_period_days, participation_period_days,
			twitter_url, telegram_url, website_url, contract_address, status, created_at, ends_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`,
		p.ID, p.CreatorID, p.Name, p.Symbol, p.Description, p.LogoURL,
		p.TotalSupply, p.Decimals, p.AirdropPercent, p.CreatorPercent, p.LiquidityPercent,
		p.MinimumLiquidity, p.HasVesting, p.VestingPeriodDays, p.ParticipationPeriodDays,
		p.TwitterURL, p.TelegramURL, p.WebsiteURL, p.ContractAddress, p.Status, p.CreatedAt, p.EndsAt,
	)
	if err != nil {
		return project.Project{}, err
	}
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (project.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE id = $1
	`, id)
	return scanProject(row)
}

func (s *Store) listProjects(ctx context.Context, query string, args ...any) ([]project.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]project.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) ListProjects(ctx context.Context) ([]project.Project, error) {
	return s.listProjects(ctx, `
		SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC
	`)
}

func (s *Store) ListActiveProjects(ctx context.Context) ([]project.Project, error) {
	return s.listProjects(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE status = $1 AND ends_at > $2
		ORDER BY created_at DESC
	`, project.StatusActive, time.Now().UTC())
}

func (s *Store) ListProjectsByCreator(ctx context.Context, creatorID string) ([]project.Project, error) {
	return s.listProjects(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE creator_id = $1 ORDER BY created_at DESC
	`, creatorID)
}

// --- ParticipationStore -----------------------------------------------------

const participationColumns = "id, user_id, project_id, star_points_used, created_at"

func scanParticipation(row interface{ Scan(...any) error }) (participation.Participation, error) {
	var p participation.Participation
	if err := row.Scan(&p.ID, &p.UserID, &p.ProjectID, &p.StarPointsUsed, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return participation.Participation{}, storage.ErrNotFound
		}
		return participation.Participation{}, err
	}
	return p, nil
}

func (s *Store) CreateParticipation(ctx context.Context, p participation.Participation) (participation.Participation, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participations (id, user_id, project_id, star_points_used, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.UserID, p.ProjectID, p.StarPointsUsed, p.CreatedAt)
	if err != nil {
		return participation.Participation{}, err
	}
	return p, nil
}

func (s *Store) GetParticipation(ctx context.Context, id string) (participation.Participation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+participationColumns+` FROM participations WHERE id = $1
	`, id)
	return scanParticipation(row)
}

func (s *Store) listParticipations(ctx context.Context, query string, args ...any) ([]participation.Participation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]participation.Participation, 0)
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) ListParticipationsByUser(ctx context.Context, userID string) ([]participation.Participation, error) {
	return s.listParticipations(ctx, `
		SELECT `+participationColumns+` FROM participations WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
}

func (s *Store) ListParticipationsByProject(ctx context.Context, projectID string) ([]participation.Participation, error) {
	return s.listParticipations(ctx, `
		SELECT `+participationColumns+` FROM participations WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
}
