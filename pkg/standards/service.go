package standards

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// OwnerResolver resolves a default owning organization when a notation is
// created without one.
type OwnerResolver interface {
	ResolveDefaultOwner() (int64, error)
}

// StaticOwnerResolver resolves the default owner by name from an
// organizations table. It fails with ErrDefaultOwnerNotFound when the
// configured record is missing.
type StaticOwnerResolver struct {
	db   *gorm.DB
	name string
}

// NewStaticOwnerResolver creates a resolver for the named organization.
func NewStaticOwnerResolver(db *gorm.DB, name string) *StaticOwnerResolver {
	return &StaticOwnerResolver{db: db, name: name}
}

// ResolveDefaultOwner looks up the configured organization and returns its ID.
func (r *StaticOwnerResolver) ResolveDefaultOwner() (int64, error) {
	var row struct{ ID int64 }
	err := r.db.Table("organizations").Select("id").Where("name = ?", r.name).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrDefaultOwnerNotFound
		}
		return 0, fmt.Errorf("resolve default owner: %w", err)
	}
	return row.ID, nil
}

// AssignmentService is the sanctioned entry point for creating assignments.
// It composes the notation and assignment stores to reject stale versions and
// duplicate active assignments.
type AssignmentService struct {
	notations   *NotationStore
	assignments *AssignmentStore
	logger      *slog.Logger
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(notations *NotationStore, assignments *AssignmentStore, logger *slog.Logger) *AssignmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentService{
		notations:   notations,
		assignments: assignments,
		logger:      logger,
	}
}

// CreateAssignment creates an assignment for the given notation after
// enforcing the version-currency and active-assignment invariants. The state
// defaults to open when empty; states outside the enumerated set are
// rejected with InvalidStateError.
//
// The active-assignment precheck exists for the typed error; the filtered
// unique index is the authoritative guard, and a constraint violation at the
// final save (a concurrent writer won the race between the precheck and the
// insert) is normalized to the same ActiveAssignmentError.
func (s *AssignmentService) CreateAssignment(notationID int64, personID, entityID *int64, state AssignmentState) (*Assignment, error) {
	if state == "" {
		state = StateOpen
	}
	if !state.Valid() {
		return nil, &InvalidStateError{State: state}
	}

	notation, err := s.notations.GetNotation(notationID)
	if err != nil {
		return nil, err
	}
	if notation == nil {
		return nil, &NotationNotFoundError{NotationID: notationID}
	}

	// Legacy rows predate versioning and cannot participate in
	// latest-version resolution.
	if notation.SourceRepositoryID == nil || notation.Code == nil {
		return nil, &NotationNotFoundError{NotationID: notationID}
	}
	repoID := *notation.SourceRepositoryID
	code := *notation.Code

	latest, err := s.notations.FindLatestVersion(repoID, code)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, &NoLatestVersionError{RepositoryID: repoID, Code: code}
	}

	if latest.ID != notationID {
		return nil, &OutdatedVersionError{
			RequestedNotationID: notationID,
			RequestedVersion:    notation.Version,
			RequestedInsertedAt: notation.InsertedAt,
			LatestNotationID:    latest.ID,
			LatestVersion:       latest.Version,
			LatestInsertedAt:    latest.InsertedAt,
			Code:                code,
			RepositoryID:        repoID,
		}
	}

	hasActive, err := s.assignments.HasActiveAssignment(notationID, personID, entityID)
	if err != nil {
		return nil, err
	}
	if hasActive {
		return nil, &ActiveAssignmentError{
			NotationID: notationID,
			PersonID:   personID,
			EntityID:   entityID,
		}
	}

	assignment := &Assignment{
		NotationID: notationID,
		PersonID:   personID,
		EntityID:   entityID,
		State:      state,
	}

	if err := s.assignments.ValidateRespondentShape(assignment, notation); err != nil {
		return nil, err
	}

	if err := s.assignments.Save(assignment); err != nil {
		if isUniqueViolation(err) {
			return nil, &ActiveAssignmentError{
				NotationID: notationID,
				PersonID:   personID,
				EntityID:   entityID,
			}
		}
		return nil, err
	}

	s.logger.Info("assignment created",
		"assignmentID", assignment.ID,
		"notationID", notationID,
		"code", code,
		"state", string(assignment.State))

	return assignment, nil
}

// CreateAssignmentByCode resolves the latest version of a notation by
// repository and code, then creates an assignment to it.
func (s *AssignmentService) CreateAssignmentByCode(repositoryID int64, code string, personID, entityID *int64, state AssignmentState) (*Assignment, error) {
	latest, err := s.notations.FindLatestVersion(repositoryID, code)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, &NoLatestVersionError{RepositoryID: repositoryID, Code: code}
	}
	return s.CreateAssignment(latest.ID, personID, entityID, state)
}
