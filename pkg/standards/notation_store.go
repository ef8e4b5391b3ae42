package standards

import (
	"fmt"

	"gorm.io/gorm"
)

// NotationStore persists immutable notation version records and resolves the
// latest version of a logical document. It also manages the source repository
// records that notations reference.
type NotationStore struct {
	db        *gorm.DB
	validator *NotationValidator
}

// NewNotationStore creates a new NotationStore.
func NewNotationStore(db *gorm.DB) *NotationStore {
	return &NotationStore{db: db, validator: NewNotationValidator()}
}

// AutoMigrate creates or updates the source_repositories and notations tables.
func (s *NotationStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&SourceRepository{}); err != nil {
		return fmt.Errorf("auto-migrate source_repositories: %w", err)
	}
	if err := s.db.AutoMigrate(&Notation{}); err != nil {
		return fmt.Errorf("auto-migrate notations: %w", err)
	}
	return nil
}

// CreateVersionParams carries the fields for a new notation version.
type CreateVersionParams struct {
	RepositoryID    int64
	Code            string
	Version         string
	Title           string
	Description     string
	RespondentType  RespondentType
	MarkdownContent string
	Frontmatter     map[string]string
	OwnerID         *int64
}

// CreateVersion persists a new immutable notation version.
//
// A precheck rejects a (repository, code, version) triple that already exists
// with a VersionExistsError. The precheck is not atomic against concurrent
// identical requests; the unique index on (source_repository_id, code,
// version) is the authoritative guard, and a constraint violation at write
// time is translated into the same VersionExistsError.
func (s *NotationStore) CreateVersion(params CreateVersionParams) (*Notation, error) {
	if params.Code == "" {
		return nil, fmt.Errorf("create version: code must not be empty")
	}
	if params.Version == "" {
		return nil, fmt.Errorf("create version: version must not be empty")
	}

	var sameVersion []Notation
	err := s.db.Where("source_repository_id = ? AND version = ?",
		params.RepositoryID, params.Version).Find(&sameVersion).Error
	if err != nil {
		return nil, fmt.Errorf("check existing versions: %w", err)
	}
	for _, existing := range sameVersion {
		if existing.Code != nil && *existing.Code == params.Code {
			return nil, &VersionExistsError{
				RepositoryID: params.RepositoryID,
				Code:         params.Code,
				Version:      params.Version,
			}
		}
	}

	repoID := params.RepositoryID
	code := params.Code
	notation := &Notation{
		Title:              params.Title,
		Description:        params.Description,
		RespondentType:     params.RespondentType,
		MarkdownContent:    params.MarkdownContent,
		Frontmatter:        params.Frontmatter,
		OwnerID:            params.OwnerID,
		Code:               &code,
		SourceRepositoryID: &repoID,
		Version:            params.Version,
	}

	if err := s.db.Create(notation).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost the race against a concurrent identical create.
			return nil, &VersionExistsError{
				RepositoryID: params.RepositoryID,
				Code:         params.Code,
				Version:      params.Version,
			}
		}
		return nil, fmt.Errorf("create version: %w", err)
	}
	return notation, nil
}

// CreateVersionWithValidation runs content validation before persisting.
// All failing fields are aggregated into a single ValidationError and nothing
// is inserted when validation fails.
func (s *NotationStore) CreateVersionWithValidation(params CreateVersionParams) (*Notation, error) {
	violations := s.validator.Validate(params.Title, params.Description,
		params.RespondentType, params.Frontmatter, params.MarkdownContent)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return s.CreateVersion(params)
}

// FindLatestVersion returns the most recent version of a notation for the
// given repository and code, or nil, nil if none exists. Recency is ordered by
// inserted_at, surrogate key descending as the deterministic tie break.
func (s *NotationStore) FindLatestVersion(repositoryID int64, code string) (*Notation, error) {
	var notation Notation
	err := s.db.Where("source_repository_id = ? AND code = ?", repositoryID, code).
		Order("inserted_at DESC, id DESC").
		First(&notation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("find latest version: %w", err)
	}
	return &notation, nil
}

// FindAllVersions returns every version of a notation for the given
// repository and code, newest first.
func (s *NotationStore) FindAllVersions(repositoryID int64, code string) ([]Notation, error) {
	var notations []Notation
	err := s.db.Where("source_repository_id = ? AND code = ?", repositoryID, code).
		Order("inserted_at DESC, id DESC").
		Find(&notations).Error
	if err != nil {
		return nil, fmt.Errorf("find all versions: %w", err)
	}
	return notations, nil
}

// GetNotation retrieves a notation by its surrogate key.
// Returns nil, nil if no record exists.
func (s *NotationStore) GetNotation(id int64) (*Notation, error) {
	var notation Notation
	err := s.db.First(&notation, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get notation: %w", err)
	}
	return &notation, nil
}

// CreateRepository persists a new source repository record.
func (s *NotationStore) CreateRepository(repo *SourceRepository) error {
	if err := s.db.Create(repo).Error; err != nil {
		return fmt.Errorf("create source repository: %w", err)
	}
	return nil
}

// GetRepository retrieves a source repository by its surrogate key.
// Returns nil, nil if no record exists.
func (s *NotationStore) GetRepository(id int64) (*SourceRepository, error) {
	var repo SourceRepository
	err := s.db.First(&repo, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get source repository: %w", err)
	}
	return &repo, nil
}

// GetRepositoryByProviderID retrieves a source repository by its unique
// provider-assigned ID. Returns nil, nil if no record exists.
func (s *NotationStore) GetRepositoryByProviderID(providerID string) (*SourceRepository, error) {
	var repo SourceRepository
	err := s.db.Where("provider_repository_id = ?", providerID).First(&repo).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get source repository by provider id: %w", err)
	}
	return &repo, nil
}

// ListRepositories returns all source repositories ordered by surrogate key.
func (s *NotationStore) ListRepositories() ([]SourceRepository, error) {
	var repos []SourceRepository
	if err := s.db.Order("id ASC").Find(&repos).Error; err != nil {
		return nil, fmt.Errorf("list source repositories: %w", err)
	}
	return repos, nil
}
