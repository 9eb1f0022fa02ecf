package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/star-labs/star-platform/internal/app/domain/project"
	"github.com/star-labs/star-platform/internal/app/domain/user"
	"github.com/star-labs/star-platform/internal/app/storage"
)

func projectFixture() project.Project {
	return project.Project{
		CreatorID:               "u1",
		Name:                    "Launch",
		Symbol:                  "LNCH",
		Description:             "a token launch",
		TotalSupply:             "1000000",
		AirdropPercent:          40,
		CreatorPercent:          30,
		LiquidityPercent:        30,
		MinimumLiquidity:        "500",
		ParticipationPeriodDays: 5,
	}
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func userRows(u user.User) *sqlmock.Rows {
	var referredBy interface{}
	if u.ReferredBy != nil {
		referredBy = *u.ReferredBy
	}
	return sqlmock.NewRows([]string{"id", "wallet_address", "star_points", "referral_code", "referred_by", "created_at"}).
		AddRow(u.ID, u.WalletAddress, u.StarPoints, u.ReferralCode, referredBy, u.CreatedAt)
}

func TestCreateUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "GWALLET1", 0.0, "STARAAAAAA", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := store.CreateUser(context.Background(), user.User{
		WalletAddress: "GWALLET1",
		ReferralCode:  "STARAAAAAA",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByWallet(t *testing.T) {
	store, mock := newMockStore(t)

	want := user.User{
		ID:            "u1",
		WalletAddress: "GWALLET1",
		StarPoints:    150,
		ReferralCode:  "STARAAAAAA",
		CreatedAt:     time.Now().UTC(),
	}
	mock.ExpectQuery("SELECT .+ FROM users WHERE wallet_address").
		WithArgs("GWALLET1").
		WillReturnRows(userRows(want))

	got, err := store.GetUserByWallet(context.Background(), "GWALLET1")
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.StarPoints, got.StarPoints)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_address", "star_points", "referral_code", "referred_by", "created_at"}))

	_, err := store.GetUser(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustUserPointsCredit(t *testing.T) {
	store, mock := newMockStore(t)

	want := user.User{ID: "u1", WalletAddress: "GWALLET1", StarPoints: 1100, ReferralCode: "STARAAAAAA", CreatedAt: time.Now().UTC()}
	mock.ExpectQuery(`UPDATE users SET star_points = star_points \+ \$2`).
		WithArgs("u1", 100.0).
		WillReturnRows(userRows(want))

	got, err := store.AdjustUserPoints(context.Background(), "u1", 100)
	require.NoError(t, err)
	require.Equal(t, 1100.0, got.StarPoints)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustUserPointsOverdraw(t *testing.T) {
	store, mock := newMockStore(t)

	emptyUpdate := sqlmock.NewRows([]string{"id", "wallet_address", "star_points", "referral_code", "referred_by", "created_at"})
	mock.ExpectQuery(`UPDATE users SET star_points = star_points \+ \$2`).
		WithArgs("u1", -500.0).
		WillReturnRows(emptyUpdate)

	// The guard refused the debit; the follow-up lookup proves the row exists.
	existing := user.User{ID: "u1", WalletAddress: "GWALLET1", StarPoints: 100, ReferralCode: "STARAAAAAA", CreatedAt: time.Now().UTC()}
	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("u1").
		WillReturnRows(userRows(existing))

	_, err := store.AdjustUserPoints(context.Background(), "u1", -500)
	require.ErrorIs(t, err, storage.ErrInsufficientPoints)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustUserPointsMissingUser(t *testing.T) {
	store, mock := newMockStore(t)

	empty := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "wallet_address", "star_points", "referral_code", "referred_by", "created_at"})
	}
	mock.ExpectQuery(`UPDATE users SET star_points = star_points \+ \$2`).
		WithArgs("missing", 10.0).
		WillReturnRows(empty())
	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("missing").
		WillReturnRows(empty())

	_, err := store.AdjustUserPoints(context.Background(), "missing", 10)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListReferralsByUser(t *testing.T) {
	store, mock := newMockStore(t)

	owner := user.User{ID: "u1", WalletAddress: "GOWNER", ReferralCode: "STARAAAAAA", CreatedAt: time.Now().UTC()}
	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("u1").
		WillReturnRows(userRows(owner))

	referrals := sqlmock.NewRows([]string{"id", "wallet_address", "star_points", "referral_code", "referred_by", "created_at"}).
		AddRow("u2", "GREF1", 0.0, "STARBBBBBB", owner.ReferralCode, time.Now().UTC()).
		AddRow("u3", "GREF2", 0.0, "STARCCCCCC", owner.ReferralCode, time.Now().UTC())
	mock.ExpectQuery("SELECT .+ FROM users WHERE referred_by").
		WithArgs("STARAAAAAA").
		WillReturnRows(referrals)

	got, err := store.ListReferralsByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProjectAppliesDefaults(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO projects").
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := store.CreateProject(context.Background(), projectFixture())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "active", created.Status)
	require.Equal(t, 7, created.Decimals)
	require.Equal(t, created.CreatedAt.Add(5*24*time.Hour), created.EndsAt)
	require.Contains(t, created.ContractAddress, "STELLAR_CONTRACT_")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)

	for range schemaStatements {
		mock.ExpectExec("CREATE (TABLE|INDEX)").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
