package extract

import (
	"regexp"
	"strings"
)

var (
	cIncludeRe   = regexp.MustCompile(`^\s*#\s*include\s*[<"]([^>"]+)[>"]`)
	cNamespaceRe = regexp.MustCompile(`^\s*(?:inline\s+)?namespace\b[^;]*$`)
	cExternRe    = regexp.MustCompile(`^\s*extern\s+"C"\s*\{`)
	cClassRe     = regexp.MustCompile(`^\s*(?:typedef\s+)?(?:template\s*<[^>]*>\s*)?(?:class|struct|union)\s+(?:\w+\s+)*?([A-Za-z_]\w*)\s*(?:final\s*)?(?::[^;{]*)?\{?\s*$`)
	cFunctionRe  = regexp.MustCompile(`^\s*(?:template\s*<[^>]*>\s*)?(?:[A-Za-z_][\w:<>,]*[\s*&]+)+?([A-Za-z_~][\w:~]*)\s*\([^;]*$`)
	cKeywords    = map[string]bool{
		"if": true, "for": true, "while": true, "switch": true, "return": true,
		"else": true, "do": true, "sizeof": true, "case": true, "catch": true,
	}
)

// CFamily handles C and C++ sources and headers.
type CFamily struct{}

func (CFamily) Name() string { return "c" }

func (CFamily) Extensions() []string {
	return []string{".c", ".h", ".cc", ".cpp", ".cxx", ".hpp", ".hh", ".hxx"}
}

// Scan records #include targets, class/struct/union declarations and
// function definitions. Qualified definitions such as Type::method are
// reported as prototype methods Type.method. Function bodies are elided.
func (CFamily) Scan(lines []string) Summary {
	sum := newSummary(len(lines))
	var braces braceTracker
	var scopes []int // depths opened by namespace or extern "C" blocks

	for i, line := range lines {
		if braces.inBody() {
			sum.Lines[i] = Skipped
			braces.skip(line)
			continue
		}

		for len(scopes) > 0 && braces.depth < scopes[len(scopes)-1] {
			scopes = scopes[:len(scopes)-1]
		}

		if m := cIncludeRe.FindStringSubmatch(line); m != nil {
			sum.Imports = append(sum.Imports, m[1])
			sum.Lines[i] = Context
			continue
		}

		if cNamespaceRe.MatchString(line) || cExternRe.MatchString(line) {
			braces.advance(line)
			if strings.Contains(line, "{") {
				scopes = append(scopes, braces.depth)
			}
			continue
		}

		topLevel := braces.depth == len(scopes)

		if m := cClassRe.FindStringSubmatch(line); m != nil && topLevel {
			sum.Classes = append(sum.Classes, m[1])
			sum.Lines[i] = Context
			braces.advance(line)
			continue
		}

		if m := cFunctionRe.FindStringSubmatch(line); m != nil && topLevel {
			name := m[1]
			if !cKeywords[name] && !strings.HasPrefix(strings.TrimSpace(line), "#") {
				if owner, method, ok := strings.Cut(name, "::"); ok {
					sum.PrototypeMethods = append(sum.PrototypeMethods, owner+"."+strings.ReplaceAll(method, "::", "."))
				} else {
					sum.Functions = append(sum.Functions, name)
				}
				sum.Lines[i] = Context
				braces.declare(line)
				continue
			}
		}

		braces.advance(line)
	}

	return sum
}
