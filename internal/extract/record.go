package extract

// Stats is the line accounting of one file.
// TotalLines always equals ContextLines + SkippedLines + NonContextLines.
type Stats struct {
	TotalLines      int `json:"total_lines"`
	ContextLines    int `json:"context_lines"`
	SkippedLines    int `json:"skipped_lines"`
	NonContextLines int `json:"non_context_lines"`
}

// Consistent reports whether the line counts add up.
func (s Stats) Consistent() bool {
	return s.TotalLines == s.ContextLines+s.SkippedLines+s.NonContextLines &&
		s.ContextLines >= 0 && s.SkippedLines >= 0 && s.NonContextLines >= 0
}

// Record is the structural summary of one source file.
type Record struct {
	File             string   `json:"file"`
	Language         string   `json:"language"`
	Imports          []string `json:"imports"`
	Requires         []string `json:"requires"`
	Functions        []string `json:"functions"`
	Classes          []string `json:"classes"`
	PrototypeMethods []string `json:"prototype_methods"`
	Stats            Stats    `json:"stats"`
}

// LineKind classifies a physical line.
type LineKind uint8

const (
	NonContext LineKind = iota // present but not meaningful context
	Context                    // contributed a recognized statement
	Skipped                    // elided body line
)

// Summary is what a Family recognizes in a file.
// Lines holds one LineKind per physical line.
type Summary struct {
	Imports          []string
	Requires         []string
	Functions        []string
	Classes          []string
	PrototypeMethods []string
	Lines            []LineKind
}

func newSummary(lines int) Summary {
	return Summary{Lines: make([]LineKind, lines)}
}
