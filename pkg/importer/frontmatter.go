package importer

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoFrontmatter indicates a markdown file has no leading frontmatter block.
var ErrNoFrontmatter = errors.New("file must have a YAML frontmatter block")

const frontmatterDelimiter = "---"

// ParseFrontmatter splits a markdown document into its leading YAML
// frontmatter and the remaining content. The frontmatter must start on the
// first line and be closed by a second delimiter line.
func ParseFrontmatter(content string) (map[string]string, string, error) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != frontmatterDelimiter {
		return nil, "", ErrNoFrontmatter
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == frontmatterDelimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, "", ErrNoFrontmatter
	}

	block := strings.Join(lines[1:end], "\n")
	var frontmatter map[string]string
	if err := yaml.Unmarshal([]byte(block), &frontmatter); err != nil {
		return nil, "", fmt.Errorf("parse frontmatter: %w", err)
	}

	markdown := strings.Join(lines[end+1:], "\n")
	return frontmatter, markdown, nil
}

// HasFrontmatter reports whether content starts with a closed frontmatter block.
func HasFrontmatter(content string) bool {
	_, _, err := ParseFrontmatter(content)
	return err == nil || !errors.Is(err, ErrNoFrontmatter)
}
