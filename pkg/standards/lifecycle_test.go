package standards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleMachine_AllowedEdges(t *testing.T) {
	m := NewLifecycleMachine()

	allowed := []TransitionRule{
		{StateOpen, StateReview},
		{StateOpen, StateWaitingForFlow},
		{StateOpen, StateWaitingForAlignment},
		{StateOpen, StateClosed},
		{StateReview, StateOpen},
		{StateReview, StateWaitingForAlignment},
		{StateReview, StateClosed},
		{StateWaitingForFlow, StateOpen},
		{StateWaitingForFlow, StateClosed},
		{StateWaitingForAlignment, StateOpen},
		{StateWaitingForAlignment, StateReview},
		{StateWaitingForAlignment, StateClosed},
	}
	for _, edge := range allowed {
		assert.NoError(t, m.ValidateTransition(edge.From, edge.To),
			"%s -> %s should be allowed", edge.From, edge.To)
	}
}

func TestLifecycleMachine_RejectedEdges(t *testing.T) {
	m := NewLifecycleMachine()

	rejected := []TransitionRule{
		{StateReview, StateWaitingForFlow},
		{StateWaitingForFlow, StateReview},
		{StateWaitingForFlow, StateWaitingForAlignment},
		{StateWaitingForAlignment, StateWaitingForFlow},
		// Same-state writes are not listed edges.
		{StateOpen, StateOpen},
		{StateReview, StateReview},
	}
	for _, edge := range rejected {
		err := m.ValidateTransition(edge.From, edge.To)
		var transition *TransitionError
		require.ErrorAs(t, err, &transition, "%s -> %s should be rejected", edge.From, edge.To)
		assert.Equal(t, "ASSIGNMENT_INVALID_TRANSITION", transition.Code)
	}
}

func TestLifecycleMachine_ClosedIsTerminal(t *testing.T) {
	m := NewLifecycleMachine()

	for _, to := range []AssignmentState{StateOpen, StateReview, StateWaitingForFlow, StateWaitingForAlignment, StateClosed} {
		err := m.ValidateTransition(StateClosed, to)
		var transition *TransitionError
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, "ASSIGNMENT_STATE_TERMINAL", transition.Code)
	}
}

func TestLifecycleMachine_AllowedTransitions(t *testing.T) {
	m := NewLifecycleMachine()

	assert.ElementsMatch(t,
		[]AssignmentState{StateReview, StateWaitingForFlow, StateWaitingForAlignment, StateClosed},
		m.AllowedTransitions(StateOpen))
	assert.ElementsMatch(t,
		[]AssignmentState{StateOpen, StateClosed},
		m.AllowedTransitions(StateWaitingForFlow))
	assert.Empty(t, m.AllowedTransitions(StateClosed))
}
