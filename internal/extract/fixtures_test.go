package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for fixture files:
// - Each testdata/code sample is detected by extension and summarized with
//   the expected imports, declarations and line statistics

func TestExtract_Fixtures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file       string
		language   string
		imports    []string
		requires   []string
		functions  []string
		classes    []string
		prototypes []string
		stats      Stats
	}{
		{
			file:       "go/simple.go",
			language:   "go",
			imports:    []string{"os", "sync"},
			requires:   []string{},
			functions:  []string{"Open"},
			classes:    []string{"Store", "Loader"},
			prototypes: []string{"Store.Load"},
			stats:      Stats{TotalLines: 28, ContextLines: 7, SkippedLines: 7, NonContextLines: 14},
		},
		{
			file:       "javascript/simple.js",
			language:   "script",
			imports:    []string{"fs/promises"},
			requires:   []string{"path"},
			functions:  []string{"Loader.constructor", "Loader.load", "helper", "double"},
			classes:    []string{"Loader"},
			prototypes: []string{"Loader.reset"},
			stats:      Stats{TotalLines: 22, ContextLines: 8, SkippedLines: 8, NonContextLines: 6},
		},
		{
			file:       "python/simple.py",
			language:   "python",
			imports:    []string{"json", "pathlib"},
			requires:   []string{},
			functions:  []string{"Settings.__init__", "Settings.read", "main"},
			classes:    []string{"Settings"},
			prototypes: []string{},
			stats:      Stats{TotalLines: 14, ContextLines: 6, SkippedLines: 6, NonContextLines: 2},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()

			source, err := os.ReadFile(filepath.Join("..", "..", "testdata", "code", filepath.FromSlash(tt.file)))
			require.NoError(t, err)

			rec := Extract(tt.file, source, DetectFamily(tt.file))
			assert.Equal(t, tt.language, rec.Language)
			assert.Equal(t, tt.imports, rec.Imports)
			assert.Equal(t, tt.requires, rec.Requires)
			assert.Equal(t, tt.functions, rec.Functions)
			assert.Equal(t, tt.classes, rec.Classes)
			assert.Equal(t, tt.prototypes, rec.PrototypeMethods)
			assert.Equal(t, tt.stats, rec.Stats)
			assert.True(t, rec.Stats.Consistent())
		})
	}
}
