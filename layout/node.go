// Package layout lays out a small tree of flexbox-style boxes and renders it
// as an SVG document with text converted to glyph outlines.
package layout

import (
	"strconv"
)

// Direction is the main axis of a container
type Direction int

const (
	Column Direction = iota
	Row
)

// Align positions children along an axis
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignStretch
)

// Unit says how a Length is interpreted
type Unit int

const (
	UnitAuto Unit = iota
	UnitPx
	UnitPercent
)

// Length is a size in pixels or a percentage of the available space.
// The zero value means auto; Px(0) is an explicit zero.
type Length struct {
	Value float64
	Unit  Unit
}

// Auto is the unset length
var Auto = Length{}

// Px returns a pixel length
func Px(v float64) Length {
	return Length{Value: v, Unit: UnitPx}
}

// Pct returns a percentage length
func Pct(v float64) Length {
	return Length{Value: v, Unit: UnitPercent}
}

// IsAuto reports whether the length is unset
func (l Length) IsAuto() bool {
	return l.Unit == UnitAuto
}

// Insets are per-side distances, used for padding and margin
type Insets struct {
	Top, Right, Bottom, Left float64
}

// Symmetric returns insets with vertical and horizontal values, like CSS "padding: v h"
func Symmetric(v, h float64) Insets {
	return Insets{Top: v, Right: h, Bottom: v, Left: h}
}

func (i Insets) horizontal() float64 { return i.Left + i.Right }
func (i Insets) vertical() float64   { return i.Top + i.Bottom }

// Color is a hex color with an alpha between 0 and 1.
// The zero value paints nothing.
type Color struct {
	Hex   string
	Alpha float64
}

// Hex returns an opaque color
func Hex(hex string) Color {
	return Color{Hex: hex, Alpha: 1}
}

// WithAlpha returns c with the given alpha
func (c Color) WithAlpha(a float64) Color {
	c.Alpha = a
	return c
}

// IsZero reports whether the color is unset
func (c Color) IsZero() bool {
	return c.Hex == ""
}

func (c Color) opacity() string {
	return strconv.FormatFloat(c.Alpha, 'f', -1, 64)
}

// Gradient is a two-stop linear gradient with a CSS angle in degrees
// (0 points up, 90 right, 135 to the bottom right corner)
type Gradient struct {
	Angle    float64
	From, To Color
}

// Background paints a box: a gradient wins over a solid color
type Background struct {
	Color    Color
	Gradient *Gradient
}

func (b Background) isZero() bool {
	return b.Gradient == nil && b.Color.IsZero()
}

// Style is the subset of CSS the engine understands. Sizes are border-box.
type Style struct {
	Width, Height Length
	MaxWidth      float64

	Padding Insets
	Margin  Insets

	Direction Direction
	Justify   Align
	Align     Align

	Background Background
	Radius     float64

	FontSize   float64
	LineHeight float64 // multiple of FontSize, 0 means 1.2
	Color      Color
	TextAlign  Align
}

func (s Style) lineHeight() float64 {
	if s.LineHeight == 0 {
		return s.FontSize * 1.2
	}
	return s.FontSize * s.LineHeight
}

// Node is an element of the layout tree: a container or a text leaf
type Node struct {
	Style    Style
	Text     string
	Children []*Node
}

// Box creates a container node
func Box(style Style, children ...*Node) *Node {
	return &Node{Style: style, Children: children}
}

// Text creates a text leaf
func Text(style Style, text string) *Node {
	return &Node{Style: style, Text: text}
}

func (n *Node) isText() bool {
	return n.Text != ""
}
