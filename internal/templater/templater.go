// Package templater fills __TOKEN__ placeholders in document templates.
//
// Substitution is whole-token and case-sensitive. Keys supplied for tokens
// that do not occur in the template are ignored, so call sites and templates
// can evolve independently. Fill passes chain: each pass substitutes what it
// can and leaves the rest queryable via Remaining.
package templater

import (
	"fmt"
	"os"
	"regexp"
)

var keywordRe = regexp.MustCompile(`__([A-Z0-9][A-Z0-9-]*)__`)

// Templater holds a template through one or more fill passes.
type Templater struct {
	original string
	filled   string
}

// New creates a Templater over the given template text.
func New(text string) *Templater {
	return &Templater{original: text, filled: text}
}

// FromFile reads a template file and creates a Templater over its content.
func FromFile(path string) (*Templater, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("templater: read template: %w", err)
	}
	return New(string(data)), nil
}

// FillData substitutes every __KEY__ token that has a value in the mapping.
// It returns the receiver so passes can chain.
func (t *Templater) FillData(values map[string]string) *Templater {
	t.filled = keywordRe.ReplaceAllStringFunc(t.filled, func(token string) string {
		key := token[2 : len(token)-2]
		if v, ok := values[key]; ok {
			return v
		}
		return token
	})
	return t
}

// FillField substitutes a single __KEY__ token.
func (t *Templater) FillField(field, value string) *Templater {
	return t.FillData(map[string]string{field: value})
}

// Remaining lists the placeholder keys still present after substitution.
func (t *Templater) Remaining() []string {
	return ListKeywords(t.filled)
}

// Finalize freezes the result. No further substitution happens on the
// returned text; feed it to the parser.
func (t *Templater) Finalize() string {
	return t.filled
}

// ListKeywords returns the distinct placeholder keys found in text, in order
// of first occurrence.
func ListKeywords(text string) []string {
	matches := keywordRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}
