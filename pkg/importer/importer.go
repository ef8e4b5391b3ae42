// Package importer loads markdown notation templates from a checked-out git
// repository into the standards store. Each template carries YAML frontmatter
// naming its title, description, and respondent type; the repository HEAD
// commit SHA becomes the version token for every file imported in a run.
package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/google/uuid"

	"github.com/lawstack/standards/pkg/standards"
)

// MissingFieldError indicates a required frontmatter field is absent or empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required frontmatter field: %s", e.Field)
}

// Importer imports markdown notation files into the database.
type Importer struct {
	notations *standards.NotationStore
	logger    *slog.Logger
}

// NewImporter creates a new Importer.
func NewImporter(notations *standards.NotationStore, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{notations: notations, logger: logger}
}

// Result summarizes an import run.
type Result struct {
	RunID     string
	Version   string
	Imported  []string
	Skipped   []string
	Conflicts []string
}

// ImportRepository walks a checked-out git working tree, imports every
// notation template in it, and tags the created versions with the HEAD commit
// SHA. Files whose version already exists are skipped rather than failing the
// run; any other error aborts it. The logical code is derived from the file
// basename, so two files with the same basename in different directories
// claim the same code; the first one wins and later ones are reported as
// conflicts.
func (i *Importer) ImportRepository(dir string, repositoryID int64) (*Result, error) {
	version, err := ResolveHeadCommit(dir)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:   uuid.New().String(),
		Version: version,
	}
	logger := i.logger.With("runID", result.RunID, "repositoryID", repositoryID, "version", version)
	logger.Info("starting notation import", "dir", dir)

	seen := map[string]string{}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == gogit.GitDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if !ShouldImport(path) {
			return nil
		}

		code := CodeFromPath(path)
		if first, ok := seen[code]; ok {
			logger.Warn("duplicate notation code in repository, skipping",
				"code", code, "file", path, "importedFrom", first)
			result.Conflicts = append(result.Conflicts, path)
			return nil
		}
		seen[code] = path

		notation, err := i.ImportFile(path, repositoryID, version)
		if err != nil {
			var exists *standards.VersionExistsError
			if errors.As(err, &exists) {
				logger.Info("version already imported, skipping", "file", path)
				result.Skipped = append(result.Skipped, path)
				return nil
			}
			return fmt.Errorf("import %s: %w", path, err)
		}

		result.Imported = append(result.Imported, path)
		logger.Info("imported notation", "code", deref(notation.Code), "title", notation.Title)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("notation import finished",
		"imported", len(result.Imported), "skipped", len(result.Skipped),
		"conflicts", len(result.Conflicts))
	return result, nil
}

// ImportFile imports a single markdown file as a notation version. The
// logical code is derived from the file basename; title, description, and
// respondent_type must be present in the frontmatter.
func (i *Importer) ImportFile(path string, repositoryID int64, version string) (*standards.Notation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	frontmatter, markdown, err := ParseFrontmatter(string(data))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(frontmatter["title"])
	if title == "" {
		return nil, &MissingFieldError{Field: "title"}
	}
	description := strings.TrimSpace(frontmatter["description"])
	if description == "" {
		return nil, &MissingFieldError{Field: "description"}
	}
	respondentType := standards.RespondentType(frontmatter["respondent_type"])
	if !respondentType.Valid() {
		return nil, &MissingFieldError{Field: "respondent_type"}
	}

	return i.notations.CreateVersionWithValidation(standards.CreateVersionParams{
		RepositoryID:    repositoryID,
		Code:            CodeFromPath(path),
		Version:         version,
		Title:           title,
		Description:     description,
		RespondentType:  respondentType,
		MarkdownContent: markdown,
		Frontmatter:     frontmatter,
	})
}

// ResolveHeadCommit opens the git repository at dir and returns the SHA of
// its HEAD commit.
func ResolveHeadCommit(dir string) (string, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("open git repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
