package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldImport(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"notations/coi-disclosure.md", true},
		{"france-contractor-agreement.md", true},
		{"notations/README.md", false},
		{"CONTRIBUTING.md", false},
		{"notations/.hidden.md", false},
		{"notations/schema.yaml", false},
		{"notations/script.sh", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShouldImport(tt.path), tt.path)
	}
}

func TestCodeFromPath(t *testing.T) {
	assert.Equal(t, "coi-disclosure", CodeFromPath("notations/coi-disclosure.md"))
	assert.Equal(t, "nda", CodeFromPath("nda.md"))
}
