package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lawstack/standards/pkg/standards"
)

func newTestStore(t *testing.T) *standards.NotationStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, standards.Migrate(db))
	return standards.NewNotationStore(db)
}

func createTestRepository(t *testing.T, store *standards.NotationStore) int64 {
	t.Helper()
	repo := &standards.SourceRepository{
		AccountID:            "123456789012",
		Region:               "us-west-2",
		ProviderRepositoryID: fmt.Sprintf("repo-%d", time.Now().UnixNano()),
		Name:                 "standards-templates",
	}
	require.NoError(t, store.CreateRepository(repo))
	return repo.ID
}

const templateContent = `---
title: Conflict of Interest Disclosure
description: Annual COI disclosure form
respondent_type: person
---
# Disclosure

Please disclose any conflicts.`

// createTemplateRepo initializes a git repo with notation template files and
// returns its path and the HEAD commit SHA.
func createTemplateRepo(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: "refs/heads/main",
		},
	})
	require.NoError(t, err)

	w, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		_, err = w.Add(name)
		require.NoError(t, err)
	}

	hash, err := w.Commit("add notation templates", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return dir, hash.String()
}

func TestImporter_ImportFile(t *testing.T) {
	store := newTestStore(t)
	repoID := createTestRepository(t, store)

	dir := t.TempDir()
	path := filepath.Join(dir, "coi-disclosure.md")
	require.NoError(t, os.WriteFile(path, []byte(templateContent), 0o644))

	imp := NewImporter(store, nil)
	notation, err := imp.ImportFile(path, repoID, "abc123")
	require.NoError(t, err)
	require.NotNil(t, notation.Code)
	assert.Equal(t, "coi-disclosure", *notation.Code)
	assert.Equal(t, "abc123", notation.Version)
	assert.Equal(t, "Conflict of Interest Disclosure", notation.Title)
	assert.Equal(t, standards.RespondentPerson, notation.RespondentType)
	assert.Contains(t, notation.MarkdownContent, "Please disclose any conflicts.")
	assert.Equal(t, "person", notation.Frontmatter["respondent_type"])
}

func TestImporter_ImportFile_MissingFields(t *testing.T) {
	store := newTestStore(t)
	repoID := createTestRepository(t, store)
	imp := NewImporter(store, nil)
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"no title", "---\ndescription: d\nrespondent_type: person\n---\nbody", "title"},
		{"no description", "---\ntitle: T\nrespondent_type: person\n---\nbody", "description"},
		{"no respondent type", "---\ntitle: T\ndescription: d\n---\nbody", "respondent_type"},
		{"bad respondent type", "---\ntitle: T\ndescription: d\nrespondent_type: robot\n---\nbody", "respondent_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "doc.md")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := imp.ImportFile(path, repoID, "abc123")
			var missing *MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.field, missing.Field)
		})
	}
}

func TestImporter_ImportFile_NoFrontmatter(t *testing.T) {
	store := newTestStore(t)
	repoID := createTestRepository(t, store)
	imp := NewImporter(store, nil)

	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# no frontmatter"), 0o644))

	_, err := imp.ImportFile(path, repoID, "abc123")
	require.ErrorIs(t, err, ErrNoFrontmatter)
}

func TestImporter_ImportRepository(t *testing.T) {
	store := newTestStore(t)
	repoID := createTestRepository(t, store)

	dir, sha := createTemplateRepo(t, map[string]string{
		"notations/coi-disclosure.md": templateContent,
		"notations/nda.md": `---
title: Non-Disclosure Agreement
description: Mutual NDA
respondent_type: entity
---
# NDA`,
		"README.md": "# Templates repo",
	})

	imp := NewImporter(store, nil)
	result, err := imp.ImportRepository(dir, repoID)
	require.NoError(t, err)
	assert.Equal(t, sha, result.Version)
	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Imported, 2)
	assert.Empty(t, result.Skipped)

	latest, err := store.FindLatestVersion(repoID, "coi-disclosure")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, sha, latest.Version)

	// README.md was filtered out.
	readme, err := store.FindLatestVersion(repoID, "README")
	require.NoError(t, err)
	assert.Nil(t, readme)
}

func TestImporter_ImportRepository_RerunSkipsExisting(t *testing.T) {
	store := newTestStore(t)
	repoID := createTestRepository(t, store)

	dir, _ := createTemplateRepo(t, map[string]string{
		"coi-disclosure.md": templateContent,
	})

	imp := NewImporter(store, nil)
	first, err := imp.ImportRepository(dir, repoID)
	require.NoError(t, err)
	assert.Len(t, first.Imported, 1)

	// The same commit imported again is a no-op, not a failure.
	second, err := imp.ImportRepository(dir, repoID)
	require.NoError(t, err)
	assert.Empty(t, second.Imported)
	assert.Len(t, second.Skipped, 1)

	all, err := store.FindAllVersions(repoID, "coi-disclosure")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestImporter_ImportRepository_DuplicateBasenameConflicts(t *testing.T) {
	store := newTestStore(t)
	repoID := createTestRepository(t, store)

	// The same basename in two directories maps to one code.
	dir, _ := createTemplateRepo(t, map[string]string{
		"annual/coi-disclosure.md":  templateContent,
		"interim/coi-disclosure.md": templateContent,
	})

	imp := NewImporter(store, nil)
	result, err := imp.ImportRepository(dir, repoID)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	assert.Len(t, result.Conflicts, 1)
	assert.Empty(t, result.Skipped)

	all, err := store.FindAllVersions(repoID, "coi-disclosure")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResolveHeadCommit_NotARepo(t *testing.T) {
	_, err := ResolveHeadCommit(t.TempDir())
	require.Error(t, err)
}
