package model

import (
	"errors"
	"testing"
)

func TestPlan_Apply(t *testing.T) {
	testCases := []struct {
		name       string
		from       Plan
		transition Transition
		want       Plan
		wantErr    error
	}{
		{name: "upgrade hobby", from: PlanHobby, transition: TransitionUpgrade, want: PlanPro},
		{name: "downgrade pro", from: PlanPro, transition: TransitionDowngrade, want: PlanHobby},
		{name: "upgrade pro", from: PlanPro, transition: TransitionUpgrade, want: PlanPro, wantErr: ErrAlreadyAtTargetPlan},
		{name: "downgrade hobby", from: PlanHobby, transition: TransitionDowngrade, want: PlanHobby, wantErr: ErrAlreadyAtTargetPlan},
		{name: "corrupt plan", from: "GOLD", transition: TransitionUpgrade, want: "GOLD", wantErr: ErrValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.from.Apply(tc.transition)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("plan = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestPlan_ApplyUnknownTransition(t *testing.T) {
	if _, err := PlanHobby.Apply("sideways"); err == nil {
		t.Fatal("expected error for unknown transition")
	}
}
