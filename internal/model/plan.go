package model

import (
	"errors"
	"fmt"
)

// ErrAlreadyAtTargetPlan is returned when a transition would leave the plan unchanged.
var ErrAlreadyAtTargetPlan = errors.New("account is already at target plan")

// Transition is a plan state change requested by a mutation.
type Transition string

const (
	TransitionUpgrade   Transition = "upgrade"
	TransitionDowngrade Transition = "downgrade"
)

// Target returns the plan a transition moves to.
func (t Transition) Target() Plan {
	if t == TransitionUpgrade {
		return PlanPro
	}
	return PlanHobby
}

// Apply returns the plan reached by applying t to p.
// Self transitions are rejected rather than treated as no-ops.
func (p Plan) Apply(t Transition) (Plan, error) {
	var from Plan
	switch t {
	case TransitionUpgrade:
		from = PlanHobby
	case TransitionDowngrade:
		from = PlanPro
	default:
		return p, fmt.Errorf("unknown transition %q", t)
	}

	if p != from {
		if p == t.Target() {
			return p, fmt.Errorf("%w: already %s", ErrAlreadyAtTargetPlan, p)
		}
		return p, fmt.Errorf("%w: invalid plan %q", ErrValidation, p)
	}

	return t.Target(), nil
}
