package importer

import (
	"path/filepath"
	"strings"
)

// excludedFiles are markdown files that are repository documentation rather
// than notation templates.
var excludedFiles = map[string]bool{
	"README.md":       true,
	"CONTRIBUTING.md": true,
}

// ShouldImport reports whether a file is a notation template that should be
// imported. Only .md files count; repository documentation and hidden files
// are skipped.
func ShouldImport(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if filepath.Ext(base) != ".md" {
		return false
	}
	return !excludedFiles[base]
}

// CodeFromPath derives the logical notation code from a template file path:
// the base name without its extension.
func CodeFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
