package standards

import (
	"fmt"

	"gorm.io/gorm"
)

// AssignmentStore persists assignments and detects active-assignment
// collisions. State changes go through TransitionState, which guards the
// lifecycle edges; direct state writes bypassing the guard are not exposed.
type AssignmentStore struct {
	db      *gorm.DB
	machine *LifecycleMachine
}

// NewAssignmentStore creates a new AssignmentStore.
func NewAssignmentStore(db *gorm.DB) *AssignmentStore {
	return &AssignmentStore{db: db, machine: NewLifecycleMachine()}
}

// AutoMigrate creates or updates the assignments table, including the
// filtered unique index that prevents duplicate open assignments. GORM tags
// cannot express partial indexes, so the index is created with raw SQL; both
// SQLite and PostgreSQL support the WHERE predicate.
func (s *AssignmentStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Assignment{}); err != nil {
		return fmt.Errorf("auto-migrate assignments: %w", err)
	}
	err := s.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_unique_open
		ON assignments (notation_id, COALESCE(person_id, 0), COALESCE(entity_id, 0))
		WHERE state = 'open'
	`).Error
	if err != nil {
		return fmt.Errorf("create unique open assignment index: %w", err)
	}
	return nil
}

// HasActiveAssignment reports whether an open assignment already exists for
// the exact (notation, person, entity) triple. A nil person or entity filter
// matches rows where that column is NULL, not rows with any value.
//
// Only the open state is checked, matching the predicate of the filtered
// unique index. The intermediate states are reachable only from open via the
// lifecycle guard, so a triple parked in review or a waiting state was
// admitted while it held the open slot.
func (s *AssignmentStore) HasActiveAssignment(notationID int64, personID, entityID *int64) (bool, error) {
	query := s.db.Model(&Assignment{}).
		Where("notation_id = ? AND state = ?", notationID, StateOpen)

	if personID != nil {
		query = query.Where("person_id = ?", *personID)
	} else {
		query = query.Where("person_id IS NULL")
	}
	if entityID != nil {
		query = query.Where("entity_id = ?", *entityID)
	} else {
		query = query.Where("entity_id IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("count active assignments: %w", err)
	}
	return count > 0, nil
}

// Save persists a new or updated assignment row. Storage constraint
// violations are returned as-is; the assignment service maps them into the
// domain error taxonomy.
func (s *AssignmentStore) Save(assignment *Assignment) error {
	if err := s.db.Save(assignment).Error; err != nil {
		return fmt.Errorf("save assignment: %w", err)
	}
	return nil
}

// GetAssignment retrieves an assignment by its surrogate key.
// Returns nil, nil if no record exists.
func (s *AssignmentStore) GetAssignment(id int64) (*Assignment, error) {
	var assignment Assignment
	err := s.db.First(&assignment, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &assignment, nil
}

// ValidateRespondentShape enforces the person/entity combination dictated by
// the notation's respondent type.
func (s *AssignmentStore) ValidateRespondentShape(assignment *Assignment, notation *Notation) error {
	switch notation.RespondentType {
	case RespondentPerson:
		if assignment.PersonID == nil || assignment.EntityID != nil {
			return &RespondentShapeError{
				RespondentType: RespondentPerson,
				Reason:         "person_id must be set and entity_id must be nil",
			}
		}
	case RespondentEntity:
		if assignment.EntityID == nil || assignment.PersonID != nil {
			return &RespondentShapeError{
				RespondentType: RespondentEntity,
				Reason:         "entity_id must be set and person_id must be nil",
			}
		}
	case RespondentPersonAndEntity:
		if assignment.PersonID == nil || assignment.EntityID == nil {
			return &RespondentShapeError{
				RespondentType: RespondentPersonAndEntity,
				Reason:         "both person_id and entity_id must be set",
			}
		}
	default:
		return &RespondentShapeError{
			RespondentType: notation.RespondentType,
			Reason:         "unknown respondent type",
		}
	}
	return nil
}

// TransitionState moves an assignment to a new state after validating the
// edge against the lifecycle transition table. The write is a
// compare-and-swap on the loaded state; a concurrent transition that lands
// first surfaces as a conflict, not a silent no-op.
func (s *AssignmentStore) TransitionState(id int64, to AssignmentState) error {
	var assignment Assignment
	if err := s.db.First(&assignment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("transition assignment %d: not found", id)
		}
		return fmt.Errorf("load assignment %d: %w", id, err)
	}
	return s.applyTransition(&assignment, to)
}

// applyTransition validates the edge from the assignment's loaded state and
// swaps it in storage. RowsAffected zero means another writer moved the row
// between the load and the update.
func (s *AssignmentStore) applyTransition(assignment *Assignment, to AssignmentState) error {
	if err := s.machine.ValidateTransition(assignment.State, to); err != nil {
		return err
	}

	result := s.db.Model(&Assignment{}).
		Where("id = ? AND state = ?", assignment.ID, assignment.State).
		Update("state", to)
	if result.Error != nil {
		return fmt.Errorf("update assignment %d state: %w", assignment.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return &TransitionError{
			Code:    "ASSIGNMENT_TRANSITION_CONFLICT",
			From:    assignment.State,
			To:      to,
			Message: fmt.Sprintf("assignment %d left state %s before the transition to %s was applied", assignment.ID, assignment.State, to),
		}
	}
	return nil
}
