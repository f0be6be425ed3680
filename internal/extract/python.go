package extract

import (
	"regexp"
	"strings"
)

var (
	pyImportRe = regexp.MustCompile(`^\s*import\s+(.+)$`)
	pyFromRe   = regexp.MustCompile(`^\s*from\s+(\S+)\s+import\b(.*)$`)
	pyDefRe    = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+([A-Za-z_]\w*)\s*[\[(]`)
	pyClassRe  = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)\s*[:(\[]`)
)

// PythonFamily handles indentation-structured Python sources.
type PythonFamily struct{}

func (PythonFamily) Name() string { return "python" }

func (PythonFamily) Extensions() []string {
	return []string{".py", ".pyi", ".pyw"}
}

// Scan records imported modules, def and class declarations, and methods
// as Class.method. Bodies of defs are elided by indentation; class bodies
// are walked.
func (PythonFamily) Scan(lines []string) Summary {
	sum := newSummary(len(lines))

	type pyClass struct {
		name   string
		indent int
	}
	var classes []pyClass
	bodyIndent := -1 // indentation of the def being elided, -1 when none
	openParens := 0  // unbalanced parentheses of a continued import

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		indent := indentation(line)

		if bodyIndent >= 0 {
			if trimmed == "" || indent > bodyIndent {
				sum.Lines[i] = Skipped
				continue
			}
			bodyIndent = -1
		}

		if openParens > 0 {
			sum.Lines[i] = Context
			openParens += strings.Count(line, "(") - strings.Count(line, ")")
			continue
		}

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		for len(classes) > 0 && indent <= classes[len(classes)-1].indent {
			classes = classes[:len(classes)-1]
		}

		if m := pyFromRe.FindStringSubmatch(line); m != nil {
			sum.Imports = append(sum.Imports, m[1])
			sum.Lines[i] = Context
			if n := strings.Count(m[2], "(") - strings.Count(m[2], ")"); n > 0 {
				openParens = n
			}
			continue
		}

		if m := pyImportRe.FindStringSubmatch(line); m != nil {
			for _, part := range strings.Split(stripComment(m[1]), ",") {
				name := strings.Fields(part)
				if len(name) > 0 {
					sum.Imports = append(sum.Imports, name[0])
				}
			}
			sum.Lines[i] = Context
			continue
		}

		if m := pyClassRe.FindStringSubmatch(line); m != nil {
			sum.Classes = append(sum.Classes, m[2])
			sum.Lines[i] = Context
			classes = append(classes, pyClass{name: m[2], indent: len(m[1])})
			continue
		}

		if m := pyDefRe.FindStringSubmatch(line); m != nil {
			name := m[2]
			if len(classes) > 0 {
				name = classes[len(classes)-1].name + "." + name
			}
			sum.Functions = append(sum.Functions, name)
			sum.Lines[i] = Context
			bodyIndent = len(m[1])
			continue
		}
	}

	return sum
}

// indentation returns the leading whitespace width, tabs counted as one.
func indentation(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}
