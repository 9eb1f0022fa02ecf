package postgres

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		wallet_address TEXT UNIQUE NOT NULL,
		star_points DOUBLE PRECISION NOT NULL DEFAULT 0,
		referral_code TEXT UNIQUE NOT NULL,
		referred_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id VARCHAR(36) PRIMARY KEY,
		creator_id VARCHAR(36) NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		symbol TEXT NOT NULL,
		description TEXT NOT NULL,
		logo_url TEXT,
		total_supply TEXT NOT NULL,
		decimals INTEGER NOT NULL DEFAULT 7,
		airdrop_percent INTEGER NOT NULL,
		creator_percent INTEGER NOT NULL,
		liquidity_percent INTEGER NOT NULL,
		minimum_liquidity TEXT NOT NULL,
		has_vesting BOOLEAN NOT NULL DEFAULT FALSE,
		vesting_period_days INTEGER,
		participation_period_days INTEGER NOT NULL,
		twitter_url TEXT,
		telegram_url TEXT,
		website_url TEXT,
		contract_address TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		ends_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS participations (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL REFERENCES users(id),
		project_id VARCHAR(36) NOT NULL REFERENCES projects(id),
		star_points_used DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_referred_by ON users (referred_by)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_status_ends_at ON projects (status, ends_at)`,
	`CREATE INDEX IF NOT EXISTS idx_participations_user_id ON participations (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_participations_project_id ON participations (project_id)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
// Proper migration tooling is intentionally out of scope.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
