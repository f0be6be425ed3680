package extract

import (
	"regexp"
	"strings"
)

var (
	scriptImportRe      = regexp.MustCompile(`^\s*import\s+(?:type\s+)?(?:[\w*\s{},$]+from\s+)?["']([^"']+)["']`)
	scriptImportOpenRe  = regexp.MustCompile(`^\s*import\s+(?:type\s+)?(?:[\w$]+\s*,\s*)?\{[^}]*$`)
	scriptFromRe        = regexp.MustCompile(`\bfrom\s+["']([^"']+)["']`)
	scriptReexportRe    = regexp.MustCompile(`^\s*export\s+(?:type\s+)?(?:\*(?:\s+as\s+[\w$]+)?|\{[^}]*\})\s*from\s+["']([^"']+)["']`)
	scriptRequireRe     = regexp.MustCompile(`\brequire\s*\(\s*["']([^"']+)["']\s*\)`)
	scriptFunctionRe    = regexp.MustCompile(`(?:^|[^\w$.])(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([\w$]+)\s*(?:<[^>]*>)?\s*\(`)
	scriptArrowRe       = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([\w$]+)\s*(?::[^=]+)?=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*(?::[^=]+)?=>|[\w$]+\s*=>)`)
	scriptClassRe       = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([\w$]+)`)
	scriptMethodRe      = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|async|readonly|override|abstract|get|set)\s+)*\*?\s*(#?[\w$]+)\s*(?:<[^>]*>)?\s*\([^;]*$`)
	scriptFieldArrowRe  = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|readonly)\s+)*(#?[\w$]+)\s*=\s*(?:async\s+)?(?:\([^)]*\)|[\w$]+)\s*=>`)
	scriptInlineRe      = regexp.MustCompile(`(#?[\w$]+)\s*\([^()]*\)\s*\{`)
	scriptPrototypeRe   = regexp.MustCompile(`([\w$]+)\.prototype\.([\w$]+)\s*=[^=]`)
	scriptControlTokens = map[string]bool{
		"if": true, "for": true, "while": true, "switch": true, "catch": true,
		"return": true, "function": true, "do": true, "else": true, "with": true,
	}
)

// ScriptFamily handles JavaScript and TypeScript sources.
type ScriptFamily struct{}

func (ScriptFamily) Name() string { return "script" }

func (ScriptFamily) Extensions() []string {
	return []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}
}

// Scan records imports, require calls, function and class declarations,
// class members as Class.member, and prototype assignments. Function
// bodies are elided; class bodies are walked so that members are seen.
func (ScriptFamily) Scan(lines []string) Summary {
	sum := newSummary(len(lines))
	var braces braceTracker
	var classes frameStack
	inImport := false

	for i, line := range lines {
		if braces.inBody() {
			sum.Lines[i] = Skipped
			braces.skip(line)
			classes.settle(braces.depth)
			continue
		}

		if inImport {
			sum.Lines[i] = Context
			braces.advance(line)
			if m := scriptFromRe.FindStringSubmatch(line); m != nil {
				sum.Imports = append(sum.Imports, m[1])
				inImport = false
			} else if strings.Contains(line, ";") {
				inImport = false
			}
			continue
		}

		classified := false
		if m := scriptImportRe.FindStringSubmatch(line); m != nil {
			sum.Imports = append(sum.Imports, m[1])
			classified = true
		} else if scriptImportOpenRe.MatchString(line) {
			inImport = true
			classified = true
		} else if m := scriptReexportRe.FindStringSubmatch(line); m != nil {
			sum.Imports = append(sum.Imports, m[1])
			classified = true
		}

		for _, m := range scriptRequireRe.FindAllStringSubmatch(line, -1) {
			sum.Requires = append(sum.Requires, m[1])
			classified = true
		}

		if m := scriptPrototypeRe.FindStringSubmatch(line); m != nil {
			sum.PrototypeMethods = append(sum.PrototypeMethods, m[1]+"."+m[2])
			sum.Lines[i] = Context
			braces.declare(line)
			classes.settle(braces.depth)
			continue
		}

		if owner, ok := classes.top(braces.depth); ok {
			if name := scriptMember(line); name != "" {
				sum.Functions = append(sum.Functions, owner.name+"."+name)
				sum.Lines[i] = Context
				braces.declare(line)
				classes.settle(braces.depth)
				continue
			}
		}

		if m := scriptClassRe.FindStringSubmatch(line); m != nil && m[1] != "extends" {
			sum.Classes = append(sum.Classes, m[1])
			sum.Lines[i] = Context
			depth := braces.depth
			classes.push(m[1], depth)
			braces.advance(line)
			if open, _ := countBraces(line); open > 0 && braces.depth <= depth {
				for _, member := range inlineMembers(line) {
					sum.Functions = append(sum.Functions, m[1]+"."+member)
				}
				classes.pop()
			}
			classes.settle(braces.depth)
			continue
		}

		name := ""
		if m := scriptFunctionRe.FindStringSubmatch(line); m != nil {
			name = m[1]
		} else if m := scriptArrowRe.FindStringSubmatch(line); m != nil {
			name = m[1]
		}
		if name != "" {
			sum.Functions = append(sum.Functions, name)
			sum.Lines[i] = Context
			braces.declare(line)
			classes.settle(braces.depth)
			continue
		}

		if classified {
			sum.Lines[i] = Context
		}
		braces.advance(line)
		classes.settle(braces.depth)
	}

	return sum
}

// scriptMember returns the member name declared on line, if any.
func scriptMember(line string) string {
	if m := scriptFieldArrowRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	m := scriptMethodRe.FindStringSubmatch(line)
	if m == nil || scriptControlTokens[m[1]] {
		return ""
	}
	return m[1]
}

// inlineMembers returns the methods declared in a class body that opens
// and closes on line.
func inlineMembers(line string) []string {
	start := strings.Index(line, "{")
	end := strings.LastIndex(line, "}")
	if start < 0 || end <= start {
		return nil
	}
	var names []string
	for _, m := range scriptInlineRe.FindAllStringSubmatch(line[start+1:end], -1) {
		if !scriptControlTokens[m[1]] {
			names = append(names, m[1])
		}
	}
	return names
}
