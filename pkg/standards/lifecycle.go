package standards

import "fmt"

// TransitionRule defines an allowed assignment state transition.
type TransitionRule struct {
	From AssignmentState
	To   AssignmentState
}

// DefaultTransitions defines the allowed assignment state transitions.
// Assignments start open and terminate at closed; closed has no outgoing
// edges, which the active-assignment uniqueness invariant depends on.
var DefaultTransitions = []TransitionRule{
	{From: StateOpen, To: StateReview},
	{From: StateOpen, To: StateWaitingForFlow},
	{From: StateOpen, To: StateWaitingForAlignment},
	{From: StateOpen, To: StateClosed},
	{From: StateReview, To: StateOpen},
	{From: StateReview, To: StateWaitingForAlignment},
	{From: StateReview, To: StateClosed},
	{From: StateWaitingForFlow, To: StateOpen},
	{From: StateWaitingForFlow, To: StateClosed},
	{From: StateWaitingForAlignment, To: StateOpen},
	{From: StateWaitingForAlignment, To: StateReview},
	{From: StateWaitingForAlignment, To: StateClosed},
}

// LifecycleMachine validates assignment state transitions.
type LifecycleMachine struct {
	transitions []TransitionRule
}

// NewLifecycleMachine creates a machine with the default transition table.
func NewLifecycleMachine() *LifecycleMachine {
	return &LifecycleMachine{transitions: DefaultTransitions}
}

// ValidateTransition checks if a transition from->to is allowed.
// Returns nil if allowed, a TransitionError with a machine-readable code if
// not. Only the listed edges are allowed; same-state writes are rejected.
func (m *LifecycleMachine) ValidateTransition(from, to AssignmentState) error {
	if from == StateClosed {
		return &TransitionError{
			Code:    "ASSIGNMENT_STATE_TERMINAL",
			From:    from,
			To:      to,
			Message: fmt.Sprintf("assignment is closed; no transition to %s is allowed", to),
		}
	}
	for _, t := range m.transitions {
		if t.From == from && t.To == to {
			return nil
		}
	}
	return &TransitionError{
		Code:    "ASSIGNMENT_INVALID_TRANSITION",
		From:    from,
		To:      to,
		Message: fmt.Sprintf("no transition defined from %s to %s", from, to),
	}
}

// AllowedTransitions returns all valid target states from the given state.
func (m *LifecycleMachine) AllowedTransitions(from AssignmentState) []AssignmentState {
	var allowed []AssignmentState
	for _, t := range m.transitions {
		if t.From == from {
			allowed = append(allowed, t.To)
		}
	}
	return allowed
}

// TransitionError is a structured error for invalid state transitions.
type TransitionError struct {
	Code    string          `json:"code"`
	From    AssignmentState `json:"from"`
	To      AssignmentState `json:"to"`
	Message string          `json:"message"`
}

func (e *TransitionError) Error() string {
	return e.Message
}
