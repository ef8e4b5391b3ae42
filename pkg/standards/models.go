package standards

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RespondentType identifies who a notation can be assigned to.
type RespondentType string

const (
	RespondentPerson          RespondentType = "person"
	RespondentEntity          RespondentType = "entity"
	RespondentPersonAndEntity RespondentType = "person_and_entity"
)

// RespondentTypes lists all valid respondent types.
var RespondentTypes = []RespondentType{
	RespondentPerson,
	RespondentEntity,
	RespondentPersonAndEntity,
}

// Valid reports whether t is one of the enumerated respondent types.
func (t RespondentType) Valid() bool {
	for _, v := range RespondentTypes {
		if t == v {
			return true
		}
	}
	return false
}

// AssignmentState represents the lifecycle state of an assignment.
type AssignmentState string

const (
	StateOpen                AssignmentState = "open"
	StateReview              AssignmentState = "review"
	StateWaitingForFlow      AssignmentState = "waiting_for_flow"
	StateWaitingForAlignment AssignmentState = "waiting_for_alignment"
	StateClosed              AssignmentState = "closed"
)

// AssignmentStates lists all valid assignment states.
var AssignmentStates = []AssignmentState{
	StateOpen,
	StateReview,
	StateWaitingForFlow,
	StateWaitingForAlignment,
	StateClosed,
}

// Valid reports whether s is one of the enumerated assignment states.
func (s AssignmentState) Valid() bool {
	for _, v := range AssignmentStates {
		if s == v {
			return true
		}
	}
	return false
}

// JSONStringMap is a custom GORM type for map[string]string stored as JSON.
type JSONStringMap map[string]string

// Scan implements the sql.Scanner interface for JSONStringMap.
func (m *JSONStringMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	default:
		return fmt.Errorf("unsupported type for JSONStringMap: %T", value)
	}
	return json.Unmarshal(bytes, m)
}

// Value implements the driver.Valuer interface for JSONStringMap.
func (m JSONStringMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// SourceRepository identifies an external version-control repository that
// stores notation templates. Records are created by an administrative import
// step and never mutated except for descriptive fields.
type SourceRepository struct {
	ID                   int64     `gorm:"primaryKey;column:id;autoIncrement"`
	AccountID            string    `gorm:"column:account_id;not null"`
	Region               string    `gorm:"column:region;not null"`
	ProviderRepositoryID string    `gorm:"column:provider_repository_id;uniqueIndex;not null"`
	Name                 string    `gorm:"column:name;not null"`
	ARN                  string    `gorm:"column:arn"`
	Description          string    `gorm:"column:description"`
	InsertedAt           time.Time `gorm:"column:inserted_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (SourceRepository) TableName() string { return "source_repositories" }

// Notation is a single immutable version of a logical document. New content is
// always a new row; rows are never updated or deleted by this engine.
//
// SourceRepositoryID and Code are nullable only for legacy rows created before
// versioning existed. "Latest version" for a (repository, code) pair is the row
// with the greatest InsertedAt, surrogate key descending as the tie break.
type Notation struct {
	ID                 int64          `gorm:"primaryKey;column:id;autoIncrement"`
	Title              string         `gorm:"column:title;not null"`
	Description        string         `gorm:"column:description;not null"`
	RespondentType     RespondentType `gorm:"column:respondent_type;not null"`
	MarkdownContent    string         `gorm:"column:markdown_content;not null"`
	Frontmatter        JSONStringMap  `gorm:"column:frontmatter;type:text"`
	OwnerID            *int64         `gorm:"column:owner_id"`
	Code               *string        `gorm:"column:code;uniqueIndex:idx_notation_repo_code_version,priority:2;index:idx_notation_lookup,priority:2"`
	SourceRepositoryID *int64         `gorm:"column:source_repository_id;uniqueIndex:idx_notation_repo_code_version,priority:1;index:idx_notation_lookup,priority:1"`
	Version            string         `gorm:"column:version;uniqueIndex:idx_notation_repo_code_version,priority:3;not null;default:''"`
	InsertedAt         time.Time      `gorm:"column:inserted_at;index:idx_notation_lookup,priority:3;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Notation) TableName() string { return "notations" }

// Assignment binds one notation version to a person, an entity, or both, and
// tracks its lifecycle state. PersonID and EntityID use exact-or-null
// semantics: which of the two must be set is dictated by the referenced
// notation's respondent type.
type Assignment struct {
	ID         int64           `gorm:"primaryKey;column:id;autoIncrement"`
	NotationID int64           `gorm:"column:notation_id;not null"`
	PersonID   *int64          `gorm:"column:person_id"`
	EntityID   *int64          `gorm:"column:entity_id"`
	State      AssignmentState `gorm:"column:state;index:idx_assignment_state;not null;default:open"`
	InsertedAt time.Time       `gorm:"column:inserted_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Assignment) TableName() string { return "assignments" }

// IsActive reports whether the assignment occupies a non-terminal state.
// Every state except closed counts as active.
func (a *Assignment) IsActive() bool {
	return a.State != StateClosed
}
