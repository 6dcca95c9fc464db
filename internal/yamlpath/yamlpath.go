// Package yamlpath parses YAML documents and exposes /-separated path
// accessors over the resulting tree.
//
// Accessors never fail hard: a missing segment at any level yields an
// absent-value result. Only malformed syntax at parse time is an error.
package yamlpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ParseError reports malformed document syntax.
type ParseError struct {
	Msg  string
	Line int // 1-based, 0 when unknown
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("yamlpath: line %d: %s", e.Line, e.Msg)
	}
	return "yamlpath: " + e.Msg
}

var lineRe = regexp.MustCompile(`line (\d+):\s*(.*)`)

// Parse parses text into a tree of mappings, sequences, and scalars.
func Parse(text string) (map[string]any, error) {
	var tree map[string]any
	if err := yaml.Unmarshal([]byte(text), &tree); err != nil {
		perr := &ParseError{Msg: err.Error()}
		if m := lineRe.FindStringSubmatch(err.Error()); m != nil {
			perr.Line, _ = strconv.Atoi(m[1])
			perr.Msg = m[2]
		}
		return nil, perr
	}
	return tree, nil
}

// Get traverses tree along a /-separated path. Path segments address mapping
// keys; numeric segments address sequence indices. The second return value
// reports whether every segment resolved.
func Get(tree any, path string) (any, bool) {
	node := tree
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		switch v := node.(type) {
		case map[string]any:
			child, ok := v[seg]
			if !ok {
				return nil, false
			}
			node = child
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			node = v[i]
		default:
			return nil, false
		}
	}
	return node, true
}

// GetString returns the scalar at path rendered as a string. Unquoted ISO
// dates, which the parser decodes into timestamps, render back in their
// document notation.
func GetString(tree any, path string) (string, bool) {
	node, ok := Get(tree, path)
	if !ok || node == nil {
		return "", false
	}
	switch v := node.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case time.Time:
		return v.Format("2006-01-02"), true
	default:
		return "", false
	}
}

// GetFloat returns the number at path. Numeric strings count.
func GetFloat(tree any, path string) (float64, bool) {
	node, ok := Get(tree, path)
	if !ok {
		return 0, false
	}
	switch v := node.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// GetInt returns the integer at path.
func GetInt(tree any, path string) (int, bool) {
	f, ok := GetFloat(tree, path)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// GetBool returns the boolean at path.
func GetBool(tree any, path string) (bool, bool) {
	node, ok := Get(tree, path)
	if !ok {
		return false, false
	}
	b, ok := node.(bool)
	return b, ok
}

// GetStringList returns the sequence at path with every element rendered as
// a string. A scalar at path yields a one-element list.
func GetStringList(tree any, path string) ([]string, bool) {
	node, ok := Get(tree, path)
	if !ok || node == nil {
		return nil, false
	}
	seq, ok := node.([]any)
	if !ok {
		if s, ok := GetString(tree, path); ok {
			return []string{s}, true
		}
		return nil, false
	}
	out := make([]string, 0, len(seq))
	for _, item := range seq {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case int:
			out = append(out, strconv.Itoa(v))
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out, true
}

// GetMap returns the mapping at path.
func GetMap(tree any, path string) (map[string]any, bool) {
	node, ok := Get(tree, path)
	if !ok {
		return nil, false
	}
	m, ok := node.(map[string]any)
	return m, ok
}
