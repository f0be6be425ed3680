package extract

import (
	"path/filepath"
	"sort"
	"strings"
)

// Family is a set of line patterns for languages that share syntax.
type Family interface {
	// Name is reported as the record's language.
	Name() string
	// Extensions lists the lower-cased file extensions the family handles.
	Extensions() []string
	// Scan classifies every line and collects the recognized symbols.
	// It must not panic on malformed or minified input.
	Scan(lines []string) Summary
}

// Registry maps file extensions to families.
type Registry struct {
	byExt  map[string]Family
	byName map[string]Family
}

// NewRegistry creates a registry holding families. Later families win
// when two claim the same extension.
func NewRegistry(families ...Family) *Registry {
	r := &Registry{
		byExt:  make(map[string]Family),
		byName: make(map[string]Family),
	}
	for _, f := range families {
		r.Register(f)
	}
	return r
}

// DefaultRegistry returns a registry with every built-in family.
func DefaultRegistry() *Registry {
	return NewRegistry(ScriptFamily{}, PythonFamily{}, CFamily{}, GoFamily{})
}

// Register adds f to the registry.
func (r *Registry) Register(f Family) {
	r.byName[f.Name()] = f
	for _, ext := range f.Extensions() {
		r.byExt[strings.ToLower(ext)] = f
	}
}

// Detect returns the family for path, or nil when no family handles it.
func (r *Registry) Detect(path string) Family {
	return r.byExt[strings.ToLower(filepath.Ext(path))]
}

// Lookup returns the family registered under name.
func (r *Registry) Lookup(name string) (Family, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// Names returns the registered family names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var builtin = DefaultRegistry()

// DetectFamily returns the built-in family for path, or nil.
func DetectFamily(path string) Family {
	return builtin.Detect(path)
}
