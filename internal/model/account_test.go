package model

import (
	"errors"
	"testing"
	"time"
)

func TestAccount_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		account Account
		wantErr bool
	}{
		{
			name:    "valid hobby account",
			account: Account{Username: "alice", Plan: PlanHobby},
		},
		{
			name:    "valid pro account",
			account: Account{Username: "bob", Plan: PlanPro},
		},
		{
			name:    "empty username",
			account: Account{Username: "", Plan: PlanHobby},
			wantErr: true,
		},
		{
			name:    "blank username",
			account: Account{Username: "   ", Plan: PlanHobby},
			wantErr: true,
		},
		{
			name:    "invalid plan",
			account: Account{Username: "carol", Plan: "ENTERPRISE"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.account.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestApplication_Validate(t *testing.T) {
	app := &Application{Active: true}
	if err := app.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing owner, got %v", err)
	}

	app.OwnerID = "u_abcdefghij"
	if err := app.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAccount_CachedRoundTrip(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 5, 1, 10, 0, 0, 123, time.UTC)
	account := &Account{
		ID:        "u_abcdefghij",
		Username:  "alice",
		Plan:      PlanPro,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}

	cached := account.ToCachedAccount()
	if cached.Plan != "PRO" {
		t.Errorf("Plan = %s, want PRO", cached.Plan)
	}

	restored := cached.ToAccount(account.ID)
	if *restored != *account {
		t.Errorf("restored = %+v, want %+v", restored, account)
	}
}

func TestNodeKinds(t *testing.T) {
	var nodes = []Node{&Account{ID: "u_1"}, &Application{ID: "app_1"}}

	if nodes[0].NodeKind() != KindAccount || nodes[0].NodeKey() != "u_1" {
		t.Errorf("unexpected account node: %v %s", nodes[0].NodeKind(), nodes[0].NodeKey())
	}
	if nodes[1].NodeKind() != KindApplication || nodes[1].NodeKey() != "app_1" {
		t.Errorf("unexpected application node: %v %s", nodes[1].NodeKind(), nodes[1].NodeKey())
	}
}
