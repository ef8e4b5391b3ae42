package standards

import (
	"fmt"
	"strings"
)

// Rule codes for notation content validation.
const (
	RuleTitleRequired          = "F101"
	RuleRespondentTypeRequired = "F102"
)

// NotationValidator performs field-level validation of notation content
// before a version is created.
type NotationValidator struct{}

// NewNotationValidator creates a new NotationValidator.
func NewNotationValidator() *NotationValidator {
	return &NotationValidator{}
}

// Validate checks notation fields and returns every violation found.
// An empty slice means the notation is valid.
func (v *NotationValidator) Validate(title, description string, respondentType RespondentType, frontmatter map[string]string, markdownContent string) []FieldViolation {
	var violations []FieldViolation
	violations = append(violations, v.validateTitle(title)...)
	violations = append(violations, v.validateRespondentType(respondentType)...)
	return violations
}

func (v *NotationValidator) validateTitle(title string) []FieldViolation {
	if strings.TrimSpace(title) == "" {
		return []FieldViolation{{
			RuleCode: RuleTitleRequired,
			Field:    "title",
			Message:  "title must not be empty",
		}}
	}
	return nil
}

func (v *NotationValidator) validateRespondentType(respondentType RespondentType) []FieldViolation {
	if !respondentType.Valid() {
		valid := make([]string, len(RespondentTypes))
		for i, t := range RespondentTypes {
			valid[i] = string(t)
		}
		return []FieldViolation{{
			RuleCode: RuleRespondentTypeRequired,
			Field:    "respondent_type",
			Message:  fmt.Sprintf("invalid respondent_type: %q", respondentType),
			Context: map[string]string{
				"value":        string(respondentType),
				"valid_values": strings.Join(valid, ", "),
			},
		}}
	}
	return nil
}
