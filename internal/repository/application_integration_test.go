//go:build integration

package repository

import (
	"errors"
	"testing"

	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/testutil"
)

func TestIntegrationApplicationRepository_Create(t *testing.T) {
	ctx, repo := newTestEnv(t)

	owner := seedAccount(t, ctx, repo, "owner", model.PlanHobby)
	app := testutil.NewTestApplication(t, owner.ID)
	app.Active = false

	if err := repo.CreateApplication(ctx, app); err != nil {
		t.Fatalf("CreateApplication failed: %v", err)
	}

	got, err := repo.GetApplicationsByIDs(ctx, []string{app.ID})
	if err != nil {
		t.Fatalf("GetApplicationsByIDs failed: %v", err)
	}
	if len(got) != 1 || got[0].OwnerID != owner.ID || got[0].Active {
		t.Errorf("unexpected applications: %+v", got)
	}
}

func TestIntegrationApplicationRepository_Create_Errors(t *testing.T) {
	ctx, repo := newTestEnv(t)

	owner := seedAccount(t, ctx, repo, "owner", model.PlanHobby)
	app := testutil.NewTestApplication(t, owner.ID)
	if err := repo.CreateApplication(ctx, app); err != nil {
		t.Fatalf("CreateApplication failed: %v", err)
	}

	t.Run("duplicate id", func(t *testing.T) {
		dup := testutil.NewTestApplication(t, owner.ID)
		dup.ID = app.ID
		if err := repo.CreateApplication(ctx, dup); !errors.Is(err, ErrApplicationExists) {
			t.Errorf("expected ErrApplicationExists, got: %v", err)
		}
	})

	t.Run("unknown owner", func(t *testing.T) {
		orphan := testutil.NewTestApplication(t, "u_missing000")
		if err := repo.CreateApplication(ctx, orphan); !errors.Is(err, ErrOwnerNotFound) {
			t.Errorf("expected ErrOwnerNotFound, got: %v", err)
		}
	})
}

func TestIntegrationApplicationRepository_GetByOwnerIDs(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedAccount(t, ctx, repo, "alice", model.PlanHobby)
	bob := seedAccount(t, ctx, repo, "bob", model.PlanPro)
	carol := seedAccount(t, ctx, repo, "carol", model.PlanHobby)

	for _, ownerID := range []string{alice.ID, alice.ID, bob.ID} {
		if err := repo.CreateApplication(ctx, testutil.NewTestApplication(t, ownerID)); err != nil {
			t.Fatalf("CreateApplication failed: %v", err)
		}
	}

	apps, err := repo.GetApplicationsByOwnerIDs(ctx, []string{alice.ID, bob.ID, carol.ID})
	if err != nil {
		t.Fatalf("GetApplicationsByOwnerIDs failed: %v", err)
	}

	perOwner := map[string]int{}
	for _, app := range apps {
		perOwner[app.OwnerID]++
	}
	if perOwner[alice.ID] != 2 || perOwner[bob.ID] != 1 || perOwner[carol.ID] != 0 {
		t.Errorf("unexpected grouping: %v", perOwner)
	}

	all, err := repo.ListApplications(ctx)
	if err != nil {
		t.Fatalf("ListApplications failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListApplications returned %d, want 3", len(all))
	}
}
