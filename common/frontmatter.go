package common

import (
	"strings"
)

const frontMatterDelimiter = "---"

// Value is a front matter value: either a scalar string or a list of strings
type Value struct {
	scalar string
	list   []string
	isList bool
}

// Scalar creates a scalar value
func Scalar(s string) Value {
	return Value{scalar: s}
}

// List creates a list value
func List(items ...string) Value {
	return Value{list: items, isList: true}
}

// IsList reports whether the value was written in bracket form
func (v Value) IsList() bool {
	return v.isList
}

// String returns the scalar, or the list items joined with ","
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.list, ",")
	}
	return v.scalar
}

// Items returns the list items, or a one-element list for a scalar
func (v Value) Items() []string {
	if v.isList {
		out := make([]string, len(v.list))
		copy(out, v.list)
		return out
	}
	return []string{v.scalar}
}

// FrontMatter is the result of parsing a document's leading metadata block.
// The zero value is an absent block.
type FrontMatter struct {
	present bool
	keys    []string
	fields  map[string]Value
}

// Present reports whether the document had a front matter block
func (fm FrontMatter) Present() bool {
	return fm.present
}

// Len returns the number of distinct keys
func (fm FrontMatter) Len() int {
	return len(fm.keys)
}

// Keys returns keys in order of first appearance
func (fm FrontMatter) Keys() []string {
	out := make([]string, len(fm.keys))
	copy(out, fm.keys)
	return out
}

// Value returns the raw value for key
func (fm FrontMatter) Value(key string) (Value, bool) {
	v, ok := fm.fields[key]
	return v, ok
}

// String returns the value for key as a string
func (fm FrontMatter) String(key string) (string, bool) {
	v, ok := fm.fields[key]
	if !ok {
		return "", false
	}
	return v.String(), true
}

// List returns the value for key as a list
func (fm FrontMatter) List(key string) ([]string, bool) {
	v, ok := fm.fields[key]
	if !ok {
		return nil, false
	}
	return v.Items(), true
}

// ParseFrontMatter extracts the leading "---" block of content.
//
// Parsing is line based and lenient: every "key: value" line is accepted,
// anything else is skipped. A missing block is not an error; the result
// simply reports Present() == false.
func ParseFrontMatter(content string) FrontMatter {
	body, ok := splitFrontMatter(content)
	if !ok {
		return FrontMatter{}
	}

	fm := FrontMatter{
		present: true,
		fields:  make(map[string]Value),
	}

	for _, line := range strings.Split(body, "\n") {
		key, raw, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		if _, seen := fm.fields[key]; !seen {
			fm.keys = append(fm.keys, key)
		}
		fm.fields[key] = parseValue(raw)
	}

	return fm
}

// splitFrontMatter returns the block body between the opening and closing
// delimiter lines
func splitFrontMatter(content string) (string, bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	first, rest, ok := strings.Cut(content, "\n")
	if !ok || first != frontMatterDelimiter {
		return "", false
	}

	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if line == frontMatterDelimiter {
			return strings.Join(lines[:i], "\n"), true
		}
	}
	return "", false
}

func parseValue(raw string) Value {
	value := unquote(strings.TrimSpace(raw))

	if !strings.HasPrefix(value, "[") {
		return Scalar(value)
	}

	// Naive on purpose: quoted commas and nesting are not understood.
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '"', '\'':
			return -1
		}
		return r
	}, value)

	parts := strings.Split(stripped, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return List(parts...)
}

// unquote strips one leading and one trailing quote, each on its own.
// The two need not match.
func unquote(s string) string {
	if s != "" && isQuote(s[0]) {
		s = s[1:]
	}
	if s != "" && isQuote(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	return s
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}
