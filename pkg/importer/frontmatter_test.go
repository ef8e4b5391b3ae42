package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	content := `---
title: Contractor Agreement
description: Standard contractor agreement
respondent_type: person
---
# Agreement

Terms follow.`

	frontmatter, markdown, err := ParseFrontmatter(content)
	require.NoError(t, err)
	assert.Equal(t, "Contractor Agreement", frontmatter["title"])
	assert.Equal(t, "Standard contractor agreement", frontmatter["description"])
	assert.Equal(t, "person", frontmatter["respondent_type"])
	assert.Equal(t, "# Agreement\n\nTerms follow.", markdown)
}

func TestParseFrontmatter_NoBlock(t *testing.T) {
	_, _, err := ParseFrontmatter("# Just markdown\n\nNo frontmatter here.")
	require.ErrorIs(t, err, ErrNoFrontmatter)
}

func TestParseFrontmatter_Unclosed(t *testing.T) {
	_, _, err := ParseFrontmatter("---\ntitle: Oops\n\n# Content")
	require.ErrorIs(t, err, ErrNoFrontmatter)
}

func TestParseFrontmatter_InvalidYAML(t *testing.T) {
	_, _, err := ParseFrontmatter("---\ntitle: [unclosed\n---\ncontent")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFrontmatter)
}

func TestParseFrontmatter_CRLF(t *testing.T) {
	content := "---\r\ntitle: Agreement\r\n---\r\nbody"
	frontmatter, markdown, err := ParseFrontmatter(content)
	require.NoError(t, err)
	assert.Equal(t, "Agreement", frontmatter["title"])
	assert.Equal(t, "body", markdown)
}

func TestHasFrontmatter(t *testing.T) {
	assert.True(t, HasFrontmatter("---\ntitle: X\n---\nbody"))
	assert.False(t, HasFrontmatter("# no frontmatter"))
}
