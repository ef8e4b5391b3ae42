package standards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotationValidator_Valid(t *testing.T) {
	v := NewNotationValidator()
	violations := v.Validate("Contractor Agreement", "desc", RespondentPerson,
		map[string]string{"title": "Contractor Agreement"}, "# Agreement")
	assert.Empty(t, violations)
}

func TestNotationValidator_EmptyTitle(t *testing.T) {
	v := NewNotationValidator()

	for _, title := range []string{"", "   ", "\t"} {
		violations := v.Validate(title, "desc", RespondentEntity, nil, "content")
		require.Len(t, violations, 1)
		assert.Equal(t, RuleTitleRequired, violations[0].RuleCode)
		assert.Equal(t, "title", violations[0].Field)
	}
}

func TestNotationValidator_InvalidRespondentType(t *testing.T) {
	v := NewNotationValidator()

	violations := v.Validate("Title", "desc", RespondentType("robot"), nil, "content")
	require.Len(t, violations, 1)
	assert.Equal(t, RuleRespondentTypeRequired, violations[0].RuleCode)
	assert.Equal(t, "respondent_type", violations[0].Field)
	assert.Equal(t, "robot", violations[0].Context["value"])
	assert.Contains(t, violations[0].Context["valid_values"], "person_and_entity")
}

func TestNotationValidator_AggregatesAllFailures(t *testing.T) {
	v := NewNotationValidator()

	violations := v.Validate("  ", "desc", RespondentType(""), nil, "content")
	require.Len(t, violations, 2)

	err := &ValidationError{Violations: violations}
	assert.Contains(t, err.Error(), RuleTitleRequired)
	assert.Contains(t, err.Error(), RuleRespondentTypeRequired)
}
