// Package theme maps post categories to the colors of their preview image.
package theme

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
)

// Palette is the background/accent pair of a category
type Palette struct {
	Background string `yaml:"background"`
	Accent     string `yaml:"accent"`
}

// Validate checks that both colors are hex colors
func (p Palette) Validate() error {
	if _, err := ParseHex(p.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if _, err := ParseHex(p.Accent); err != nil {
		return fmt.Errorf("accent: %w", err)
	}
	return nil
}

// Table is an immutable category → palette lookup with a fallback
type Table struct {
	palettes map[string]Palette
	fallback Palette
}

// Built-in palettes
var (
	DefaultPalette = Palette{Background: "#1a1a2e", Accent: "#4a4a6a"}

	builtin = map[string]Palette{
		"Terraform":  {Background: "#7B42BC", Accent: "#5C4EE5"},
		"ArgoCD":     {Background: "#EF7B4D", Accent: "#E95420"},
		"Kubernetes": {Background: "#326CE5", Accent: "#2157D6"},
		"DevOps":     {Background: "#0DB7ED", Accent: "#0996C7"},
	}
)

// NewTable copies palettes into a new table
func NewTable(palettes map[string]Palette, fallback Palette) Table {
	t := Table{
		palettes: make(map[string]Palette, len(palettes)),
		fallback: fallback,
	}
	for name, p := range palettes {
		t.palettes[name] = p
	}
	return t
}

// Default returns the built-in table
func Default() Table {
	return NewTable(builtin, DefaultPalette)
}

// Builtin returns a copy of the built-in palettes
func Builtin() map[string]Palette {
	out := make(map[string]Palette, len(builtin))
	for name, p := range builtin {
		out[name] = p
	}
	return out
}

// Lookup returns the palette for category, or the fallback.
// Matching is exact and case sensitive.
func (t Table) Lookup(category string) Palette {
	if p, ok := t.palettes[category]; ok {
		return p
	}
	return t.fallback
}

// Fallback returns the palette used for unknown categories
func (t Table) Fallback() Palette {
	return t.fallback
}

// Names returns the known category names in sorted order
func (t Table) Names() []string {
	names := make([]string, 0, len(t.palettes))
	for name := range t.palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseHex parses #rgb or #rrggbb
func ParseHex(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if hex == s {
		return color.RGBA{}, fmt.Errorf("invalid color %q: missing #", s)
	}

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: expected #rgb or #rrggbb", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
