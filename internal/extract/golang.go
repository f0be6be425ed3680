package extract

import (
	"regexp"
	"strings"
)

var (
	goImportRe      = regexp.MustCompile(`^\s*import\s+(?:[\w.]+\s+)?"([^"]+)"`)
	goImportBlockRe = regexp.MustCompile(`^\s*import\s*\(\s*$`)
	goImportSpecRe  = regexp.MustCompile(`^\s*(?:[\w.]+\s+)?"([^"]+)"`)
	goTypeRe        = regexp.MustCompile(`^\s*(?:type\s+)?([A-Za-z_]\w*)(?:\[[^\]]*\])?\s+(?:struct|interface)\s*\{`)
	goTypeBlockRe   = regexp.MustCompile(`^\s*type\s*\(\s*$`)
	goFuncRe        = regexp.MustCompile(`^func\s+([A-Za-z_]\w*)\s*[\[(]`)
	goMethodRe      = regexp.MustCompile(`^func\s*\(\s*(?:[A-Za-z_]\w*\s+)?\*?\s*([A-Za-z_]\w*)(?:\[[^\]]*\])?\s*\)\s*([A-Za-z_]\w*)\s*[\[(]`)
)

// GoFamily handles Go sources.
type GoFamily struct{}

func (GoFamily) Name() string { return "go" }

func (GoFamily) Extensions() []string {
	return []string{".go"}
}

// Scan records imports, struct and interface types, functions, and
// methods as Receiver.method prototype augmentations. Function bodies
// are elided.
func (GoFamily) Scan(lines []string) Summary {
	sum := newSummary(len(lines))
	var braces braceTracker
	inImports := false
	inTypes := false

	for i, line := range lines {
		if braces.inBody() {
			sum.Lines[i] = Skipped
			braces.skip(line)
			continue
		}

		trimmed := strings.TrimSpace(line)

		if inImports {
			if trimmed == ")" {
				inImports = false
				continue
			}
			if m := goImportSpecRe.FindStringSubmatch(line); m != nil {
				sum.Imports = append(sum.Imports, m[1])
				sum.Lines[i] = Context
			}
			continue
		}

		switch {
		case goImportBlockRe.MatchString(line):
			inImports = true
			sum.Lines[i] = Context
			continue
		case goTypeBlockRe.MatchString(line):
			inTypes = true
			braces.advance(line)
			continue
		}

		if inTypes && braces.depth == 0 && trimmed == ")" {
			inTypes = false
			continue
		}

		if m := goImportRe.FindStringSubmatch(line); m != nil {
			sum.Imports = append(sum.Imports, m[1])
			sum.Lines[i] = Context
			continue
		}

		if braces.depth == 0 {
			if m := goTypeRe.FindStringSubmatch(line); m != nil && (inTypes || strings.HasPrefix(trimmed, "type ")) {
				sum.Classes = append(sum.Classes, m[1])
				sum.Lines[i] = Context
				braces.advance(line)
				continue
			}
			if m := goMethodRe.FindStringSubmatch(line); m != nil {
				sum.PrototypeMethods = append(sum.PrototypeMethods, m[1]+"."+m[2])
				sum.Lines[i] = Context
				braces.declare(line)
				continue
			}
			if m := goFuncRe.FindStringSubmatch(line); m != nil {
				sum.Functions = append(sum.Functions, m[1])
				sum.Lines[i] = Context
				braces.declare(line)
				continue
			}
		}

		braces.advance(line)
	}

	return sum
}
