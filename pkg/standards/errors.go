package standards

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrDefaultOwnerNotFound is returned by owner resolvers when the configured
// default owning organization does not exist.
var ErrDefaultOwnerNotFound = errors.New("default owner organization not found")

// VersionExistsError indicates an attempt to create a notation version that
// already exists for the same repository and code.
type VersionExistsError struct {
	RepositoryID int64
	Code         string
	Version      string
}

func (e *VersionExistsError) Error() string {
	return fmt.Sprintf("notation %q version %q already exists in repository %d",
		e.Code, e.Version, e.RepositoryID)
}

// NotationNotFoundError indicates a notation lookup by ID failed, or that the
// row found is a legacy row without a repository or code.
type NotationNotFoundError struct {
	NotationID int64
}

func (e *NotationNotFoundError) Error() string {
	return fmt.Sprintf("notation with ID %d not found", e.NotationID)
}

// NoVersionsFoundError indicates no versions exist for a repository and code.
type NoVersionsFoundError struct {
	RepositoryID int64
	Code         string
}

func (e *NoVersionsFoundError) Error() string {
	return fmt.Sprintf("no versions found for notation %q in repository %d",
		e.Code, e.RepositoryID)
}

// NoLatestVersionError indicates latest-version resolution found nothing for a
// repository and code.
type NoLatestVersionError struct {
	RepositoryID int64
	Code         string
}

func (e *NoLatestVersionError) Error() string {
	return fmt.Sprintf("no latest version found for notation %q in repository %d",
		e.Code, e.RepositoryID)
}

// OutdatedVersionError indicates an assignment was requested against a
// superseded notation version. It carries both the requested and the latest
// version so a caller can retry against the current one without a second
// lookup.
type OutdatedVersionError struct {
	RequestedNotationID int64
	RequestedVersion    string
	RequestedInsertedAt time.Time
	LatestNotationID    int64
	LatestVersion       string
	LatestInsertedAt    time.Time
	Code                string
	RepositoryID        int64
}

func (e *OutdatedVersionError) Error() string {
	return fmt.Sprintf(
		"cannot assign outdated notation version: requested notation %d version %q (created %s), latest is notation %d version %q (created %s); use the latest version of %q from repository %d",
		e.RequestedNotationID, e.RequestedVersion, e.RequestedInsertedAt.Format(time.RFC3339),
		e.LatestNotationID, e.LatestVersion, e.LatestInsertedAt.Format(time.RFC3339),
		e.Code, e.RepositoryID)
}

// ActiveAssignmentError indicates an active assignment already exists for the
// same notation and respondent combination.
type ActiveAssignmentError struct {
	NotationID int64
	PersonID   *int64
	EntityID   *int64
}

func (e *ActiveAssignmentError) Error() string {
	return fmt.Sprintf("active assignment already exists for notation %d, person %s, entity %s",
		e.NotationID, formatOptionalID(e.PersonID), formatOptionalID(e.EntityID))
}

// InvalidStateError indicates a caller supplied a state outside the
// enumerated assignment states. Such a row would count as active per
// IsActive yet be invisible to the open-only precheck and the filtered
// unique index, with no lifecycle edge out of it.
type InvalidStateError struct {
	State AssignmentState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid assignment state %q", e.State)
}

// RespondentShapeError indicates an assignment's person/entity combination
// does not match the respondent type of the referenced notation.
type RespondentShapeError struct {
	RespondentType RespondentType
	Reason         string
}

func (e *RespondentShapeError) Error() string {
	return fmt.Sprintf("invalid assignment for respondent type %q: %s",
		e.RespondentType, e.Reason)
}

// FieldViolation is a single content-rule failure, tagged with the rule code
// and the offending field.
type FieldViolation struct {
	RuleCode string
	Field    string
	Message  string
	Context  map[string]string
}

func (v FieldViolation) String() string {
	if v.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", v.RuleCode, v.Field, v.Message)
	}
	return fmt.Sprintf("[%s] %s", v.RuleCode, v.Message)
}

// ValidationError aggregates every field violation found before a write was
// attempted. Nothing is persisted when validation fails.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "notation validation failed:\n" + strings.Join(msgs, "\n")
}

func formatOptionalID(id *int64) string {
	if id == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%d", *id)
}

// isUniqueViolation reports whether err is a storage-level unique or
// filtered-unique constraint violation. Drivers that support GORM error
// translation surface gorm.ErrDuplicatedKey; the message checks cover SQLite
// and PostgreSQL when translation is unavailable.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
