package extract

import "strings"

// maxSignatureLines bounds how far a declaration without an opening brace
// may look ahead for its body.
const maxSignatureLines = 8

// braceTracker follows brace depth through a file and elides the bodies
// of declarations. Braces inside quotes and after // are ignored.
type braceTracker struct {
	depth   int
	base    int
	eliding bool
	pending int
}

// inBody reports whether the next line belongs to an elided body.
func (b *braceTracker) inBody() bool {
	return b.eliding || b.pending > 0
}

// skip consumes a line that inBody claimed.
func (b *braceTracker) skip(line string) {
	open, closed := countBraces(line)
	if b.pending > 0 {
		if open == 0 {
			b.pending--
			if strings.HasSuffix(strings.TrimSpace(line), ";") {
				b.pending = 0
			}
			return
		}
		b.pending = 0
		b.eliding = true
	}
	b.depth += open - closed
	if b.depth <= b.base {
		b.depth = b.base
		b.eliding = false
	}
}

// declare consumes a declaration line whose body should be elided.
func (b *braceTracker) declare(line string) {
	open, closed := countBraces(line)
	base := b.depth
	if open == 0 {
		if awaitsBody(strings.TrimSpace(line)) {
			b.base = base
			b.pending = maxSignatureLines
		}
		b.advanceBy(-closed)
		return
	}
	b.depth += open - closed
	if b.depth > base {
		b.base = base
		b.eliding = true
		return
	}
	b.clamp()
}

// awaitsBody reports whether a brace-less declaration line continues on
// the following lines: an open parameter list, a trailing =>, or a closed
// signature whose body starts on the next line. Expression-bodied arrows
// and plain value assignments are complete.
func awaitsBody(trimmed string) bool {
	if strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}") {
		return false
	}
	if strings.HasSuffix(trimmed, "=>") {
		return true
	}
	if strings.Count(trimmed, "(") > strings.Count(trimmed, ")") {
		return true
	}
	if strings.Contains(trimmed, "=>") {
		return false
	}
	eq := strings.Index(trimmed, "=")
	paren := strings.Index(trimmed, "(")
	if eq >= 0 && (paren < 0 || eq < paren) && !strings.Contains(trimmed, "function") {
		return false
	}
	return strings.Contains(trimmed, ")")
}

// advance consumes an ordinary line.
func (b *braceTracker) advance(line string) {
	open, closed := countBraces(line)
	b.advanceBy(open - closed)
}

func (b *braceTracker) advanceBy(delta int) {
	b.depth += delta
	b.clamp()
}

func (b *braceTracker) clamp() {
	if b.depth < 0 {
		b.depth = 0
	}
}

// countBraces counts '{' and '}' outside string literals and line comments.
func countBraces(line string) (open, closed int) {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return open, closed
			}
		case '{':
			open++
		case '}':
			closed++
		}
	}
	return open, closed
}

// frame is an open class-like body whose direct members are of interest.
type frame struct {
	name   string
	body   int
	opened bool
}

// frameStack tracks nested class bodies against a braceTracker's depth.
type frameStack []frame

func (s *frameStack) push(name string, depth int) {
	*s = append(*s, frame{name: name, body: depth + 1})
}

func (s *frameStack) pop() {
	if len(*s) > 0 {
		*s = (*s)[:len(*s)-1]
	}
}

// top returns the innermost frame if depth is directly inside its body.
func (s frameStack) top(depth int) (frame, bool) {
	if len(s) == 0 {
		return frame{}, false
	}
	f := s[len(s)-1]
	if !f.opened || f.body != depth {
		return frame{}, false
	}
	return f, true
}

// settle marks frames opened and drops frames whose body has closed.
func (s *frameStack) settle(depth int) {
	for len(*s) > 0 {
		f := &(*s)[len(*s)-1]
		if depth >= f.body {
			f.opened = true
			return
		}
		if !f.opened {
			return
		}
		*s = (*s)[:len(*s)-1]
	}
}
