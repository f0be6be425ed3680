package extract

import (
	"strings"
)

// PlainLanguage is the language reported for files without a family.
const PlainLanguage = "plain"

// Extract builds the Record for source. A nil family yields empty symbol
// lists with every line counted as non-context. Extract never fails: lines
// that no pattern recognizes are simply left unclassified.
func Extract(path string, source []byte, family Family) Record {
	lines := SplitLines(string(source))

	rec := Record{
		File:     path,
		Language: PlainLanguage,
	}

	var sum Summary
	if family != nil {
		rec.Language = family.Name()
		sum = family.Scan(lines)
	}

	rec.Imports = nonNil(sum.Imports)
	rec.Requires = nonNil(sum.Requires)
	rec.Functions = unique(sum.Functions)
	rec.Classes = unique(sum.Classes)
	rec.PrototypeMethods = unique(sum.PrototypeMethods)

	rec.Stats.TotalLines = len(lines)
	for i, kind := range sum.Lines {
		if i >= len(lines) {
			break
		}
		switch kind {
		case Context:
			rec.Stats.ContextLines++
		case Skipped:
			rec.Stats.SkippedLines++
		}
	}
	rec.Stats.NonContextLines = rec.Stats.TotalLines - rec.Stats.ContextLines - rec.Stats.SkippedLines

	return rec
}

// SplitLines splits text into physical lines. A trailing newline does not
// start a new line and carriage returns are dropped.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// unique keeps the first occurrence of each name.
func unique(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
