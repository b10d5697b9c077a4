package llm

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Placeholders substituted into a lens archetype.
const (
	placeholderContext = "{CONTEXT_CHUNKS}"
	placeholderQuery   = "{USER_QUERY}"
)

// Lens is a named prompt archetype that reframes a user query with a
// specific reasoning style before it is sent to the completion model.
type Lens struct {
	Name            string `yaml:"name"`
	Description     string `yaml:"description,omitempty"`
	PromptArchetype string `yaml:"prompt_archetype"`
}

// Apply substitutes the retrieved context block and the user query into the
// lens archetype.
func (l Lens) Apply(contextBlock, query string) string {
	prompt := strings.ReplaceAll(l.PromptArchetype, placeholderContext, strings.TrimSpace(contextBlock))
	return strings.ReplaceAll(prompt, placeholderQuery, query)
}

type lensFile struct {
	Lenses []Lens `yaml:"lenses"`
}

// LensRegistry resolves lens names against user input by longest-prefix
// match over a small fixed vocabulary loaded at startup.
type LensRegistry struct {
	byName map[string]Lens
	// lowercase names sorted longest first, so the first prefix hit is the
	// longest match
	names []string
}

// LoadLenses reads a lens definition file and builds a registry.
func LoadLenses(path string) (*LensRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lens file: %w", err)
	}

	var f lensFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lens file %s: %w", path, err)
	}

	return NewLensRegistry(f.Lenses), nil
}

// NewLensRegistry builds a registry from the given lenses. Lenses without a
// name are dropped.
func NewLensRegistry(lenses []Lens) *LensRegistry {
	r := &LensRegistry{byName: make(map[string]Lens)}
	for _, l := range lenses {
		name := strings.ToLower(strings.TrimSpace(l.Name))
		if name == "" {
			continue
		}
		if _, dup := r.byName[name]; !dup {
			r.names = append(r.names, name)
		}
		r.byName[name] = l
	}
	sort.Slice(r.names, func(i, j int) bool {
		if len(r.names[i]) != len(r.names[j]) {
			return len(r.names[i]) > len(r.names[j])
		}
		return r.names[i] < r.names[j]
	})
	return r
}

// Len returns the number of registered lenses.
func (r *LensRegistry) Len() int {
	return len(r.names)
}

// Match finds the lens whose name is the longest prefix of input
// (case-insensitive) and returns it along with the remainder of the input,
// which is the actual query.
func (r *LensRegistry) Match(input string) (Lens, string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(input))
	for _, name := range r.names {
		if strings.HasPrefix(lowered, name) {
			trimmed := strings.TrimSpace(input)
			remainder := strings.TrimSpace(trimmed[len(name):])
			return r.byName[name], remainder, true
		}
	}
	return Lens{}, "", false
}
