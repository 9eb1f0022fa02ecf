package projects

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/star-labs/star-platform/internal/app/domain/project"
	"github.com/star-labs/star-platform/internal/app/domain/user"
	"github.com/star-labs/star-platform/internal/app/storage/memory"
	"github.com/star-labs/star-platform/internal/app/validation"
	"github.com/star-labs/star-platform/internal/config"
)

func newService(store *memory.Store) *Service {
	return New(store, store, store, config.DefaultEconomics(), nil)
}

func seedUser(t *testing.T, store *memory.Store, wallet, code string, points float64) user.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), user.User{
		WalletAddress: wallet,
		StarPoints:    points,
		ReferralCode:  code,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", wallet, err)
	}
	return u
}

func validInput(wallet string) CreateInput {
	return CreateInput{
		WalletAddress:           wallet,
		Name:                    "Moon Token",
		Symbol:                  "moon",
		Description:             "a community token launch",
		TotalSupply:             "1000000",
		AirdropPercent:          40,
		CreatorPercent:          30,
		LiquidityPercent:        30,
		MinimumLiquidity:        "500",
		ParticipationPeriodDays: 7,
	}
}

func TestCreateProject(t *testing.T) {
	store := memory.New()
	creator := seedUser(t, store, "GCREATOR", "STARAAAAAA", 0)
	svc := newService(store)

	created, err := svc.Create(context.Background(), validInput("GCREATOR"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.CreatorID != creator.ID {
		t.Fatal("wrong creator resolved")
	}
	if created.Symbol != "MOON" {
		t.Fatalf("symbol not uppercased: %q", created.Symbol)
	}
	if created.Status != project.StatusActive {
		t.Fatalf("expected active status, got %q", created.Status)
	}
	if !created.EndsAt.Equal(created.CreatedAt.Add(7 * 24 * time.Hour)) {
		t.Fatalf("unexpected endsAt %v", created.EndsAt)
	}
}

func TestCreateValidation(t *testing.T) {
	store := memory.New()
	seedUser(t, store, "GCREATOR", "STARAAAAAA", 0)
	svc := newService(store)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"short name", func(in *CreateInput) { in.Name = "X" }, "name"},
		{"long symbol", func(in *CreateInput) { in.Symbol = "TOOLONGSYMBOL" }, "symbol"},
		{"short description", func(in *CreateInput) { in.Description = "short" }, "description"},
		{"bad supply", func(in *CreateInput) { in.TotalSupply = "zero" }, "totalSupply"},
		{"negative supply", func(in *CreateInput) { in.TotalSupply = "-10" }, "totalSupply"},
		{"low liquidity", func(in *CreateInput) { in.MinimumLiquidity = "499" }, "minimumLiquidity"},
		{"short period", func(in *CreateInput) { in.ParticipationPeriodDays = 2 }, "participationPeriodDays"},
		{"long period", func(in *CreateInput) { in.ParticipationPeriodDays = 16 }, "participationPeriodDays"},
		{"bad split", func(in *CreateInput) { in.LiquidityPercent = 31 }, "percentages"},
		{"vesting without days", func(in *CreateInput) { in.HasVesting = true }, "vestingPeriodDays"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput("GCREATOR")
			tc.mutate(&in)

			_, err := svc.Create(ctx, in)
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			found := false
			for _, f := range verr.Fields {
				if f.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected failure on %q, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestCreateUnknownCreator(t *testing.T) {
	svc := newService(memory.New())

	_, err := svc.Create(context.Background(), validInput("GNOBODY"))
	if err == nil {
		t.Fatal("expected error for unregistered creator")
	}
}

func TestParticipateSplitsPoints(t *testing.T) {
	store := memory.New()
	creator := seedUser(t, store, "GCREATOR", "STARAAAAAA", 0)
	participant := seedUser(t, store, "GPLAYER", "STARBBBBBB", 500)
	svc := newService(store)
	ctx := context.Background()

	proj, err := svc.Create(ctx, validInput("GCREATOR"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	result, err := svc.Participate(ctx, proj.ID, "GPLAYER", 200, "")
	if err != nil {
		t.Fatalf("Participate failed: %v", err)
	}
	if result.Burned != 100 || result.ToCreator != 100 {
		t.Fatalf("expected 100/100 split, got %v/%v", result.Burned, result.ToCreator)
	}
	if result.NewBalance != 300 {
		t.Fatalf("expected new balance 300, got %v", result.NewBalance)
	}
	if result.Participation.StarPointsUsed != 200 {
		t.Fatalf("unexpected recorded spend %v", result.Participation.StarPointsUsed)
	}

	creatorAfter, _ := store.GetUser(ctx, creator.ID)
	if creatorAfter.StarPoints != 100 {
		t.Fatalf("expected creator balance 100, got %v", creatorAfter.StarPoints)
	}
	participantAfter, _ := store.GetUser(ctx, participant.ID)
	if participantAfter.StarPoints != 300 {
		t.Fatalf("expected participant balance 300, got %v", participantAfter.StarPoints)
	}
}

func TestParticipateRefusals(t *testing.T) {
	store := memory.New()
	seedUser(t, store, "GCREATOR", "STARAAAAAA", 0)
	seedUser(t, store, "GPLAYER", "STARBBBBBB", 100)
	svc := newService(store)
	ctx := context.Background()

	proj, err := svc.Create(ctx, validInput("GCREATOR"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := svc.Participate(ctx, proj.ID, "GPLAYER", 0, "")
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("insufficient balance", func(t *testing.T) {
		_, err := svc.Participate(ctx, proj.ID, "GPLAYER", 101, "")
		if !errors.Is(err, ErrNotEligible) {
			t.Fatalf("expected ErrNotEligible, got %v", err)
		}
	})

	t.Run("own project", func(t *testing.T) {
		store.AdjustUserPoints(ctx, proj.CreatorID, 1000)
		_, err := svc.Participate(ctx, proj.ID, "GCREATOR", 100, "")
		if !errors.Is(err, ErrNotEligible) {
			t.Fatalf("expected ErrNotEligible, got %v", err)
		}
	})

	t.Run("unknown project", func(t *testing.T) {
		if _, err := svc.Participate(ctx, "missing", "GPLAYER", 10, ""); err == nil {
			t.Fatal("expected error for unknown project")
		}
	})

	t.Run("unknown wallet", func(t *testing.T) {
		if _, err := svc.Participate(ctx, proj.ID, "GNOBODY", 10, ""); err == nil {
			t.Fatal("expected error for unknown wallet")
		}
	})
}

func TestParticipateExpiredProject(t *testing.T) {
	store := memory.New()
	creator := seedUser(t, store, "GCREATOR", "STARAAAAAA", 0)
	seedUser(t, store, "GPLAYER", "STARBBBBBB", 500)
	svc := newService(store)
	ctx := context.Background()

	// Zero-day window closes immediately.
	expired, err := store.CreateProject(ctx, project.Project{
		CreatorID:               creator.ID,
		Name:                    "Old Launch",
		Symbol:                  "OLD",
		ParticipationPeriodDays: 0,
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	_, err = svc.Participate(ctx, expired.ID, "GPLAYER", 100, "")
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
}

func TestListActiveNewestFirst(t *testing.T) {
	store := memory.New()
	creator := seedUser(t, store, "GCREATOR", "STARAAAAAA", 0)
	svc := newService(store)
	ctx := context.Background()

	older, _ := store.CreateProject(ctx, project.Project{
		CreatorID: creator.ID, Name: "Older", ParticipationPeriodDays: 5,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	})
	newer, _ := store.CreateProject(ctx, project.Project{
		CreatorID: creator.ID, Name: "Newer", ParticipationPeriodDays: 5,
	})

	list, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(list))
	}
	if list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatal("expected newest-first ordering")
	}
}

func TestParticipationsByUserJoinsProjects(t *testing.T) {
	store := memory.New()
	seedUser(t, store, "GCREATOR", "STARAAAAAA", 0)
	player := seedUser(t, store, "GPLAYER", "STARBBBBBB", 500)
	svc := newService(store)
	ctx := context.Background()

	proj, err := svc.Create(ctx, validInput("GCREATOR"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Participate(ctx, proj.ID, "GPLAYER", 100, ""); err != nil {
		t.Fatalf("Participate failed: %v", err)
	}

	list, err := svc.ParticipationsByUser(ctx, player.ID)
	if err != nil {
		t.Fatalf("ParticipationsByUser failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 participation, got %d", len(list))
	}
	if list[0].Project == nil || list[0].Project.ID != proj.ID {
		t.Fatal("participation not joined with its project")
	}
}
