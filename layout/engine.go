package layout

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/kjk/flex"
)

// wrapSlack absorbs float32 rounding of measured widths so that text
// wraps the same way when it is laid out as when it was measured
const wrapSlack = 0.01

// flex keeps a package level generation counter, so layouts must not overlap
var layoutMu sync.Mutex

// TextFace measures and outlines text at a pixel size
type TextFace interface {
	// Advance returns the width of s
	Advance(s string, size float64) float64
	// Metrics returns the ascent and descent, both positive
	Metrics(size float64) (ascent, descent float64)
	// Outline returns SVG path data for s with its origin at (x, baseline)
	Outline(s string, size, x, baseline float64) string
}

// Frame is a positioned node
type Frame struct {
	Node     *Node
	X, Y     float64
	W, H     float64
	Lines    []Line
	Children []*Frame
}

// Line is a positioned line of wrapped text
type Line struct {
	Text     string
	X        float64
	Baseline float64
	Width    float64
}

type engine struct {
	face TextFace
	cfg  *flex.Config
}

// Compute lays out root inside a width×height viewport
func Compute(root *Node, face TextFace, width, height float64) (*Frame, error) {
	if root == nil {
		return nil, fmt.Errorf("layout: nil root")
	}
	if err := validate(root, face); err != nil {
		return nil, err
	}

	cfg := flex.NewConfig()
	cfg.SetPointScaleFactor(0)
	e := &engine{face: face, cfg: cfg}

	tree := e.build(root)

	layoutMu.Lock()
	flex.CalculateLayout(tree, float32(width), float32(height), flex.DirectionLTR)
	layoutMu.Unlock()

	return e.frame(tree, 0, 0), nil
}

func validate(n *Node, face TextFace) error {
	if n.isText() {
		if face == nil {
			return fmt.Errorf("layout: text node %q without a font face", n.Text)
		}
		if n.Style.FontSize <= 0 {
			return fmt.Errorf("layout: text node %q has no font size", n.Text)
		}
		if len(n.Children) > 0 {
			return fmt.Errorf("layout: text node %q has children", n.Text)
		}
	}
	for _, c := range n.Children {
		if c == nil {
			return fmt.Errorf("layout: nil child")
		}
		if err := validate(c, face); err != nil {
			return err
		}
	}
	return nil
}

// build mirrors the node tree as flex nodes
func (e *engine) build(n *Node) *flex.Node {
	s := n.Style
	fn := flex.NewNodeWithConfig(e.cfg)
	fn.Context = n

	setLength(s.Width, fn.StyleSetWidth, fn.StyleSetWidthPercent)
	setLength(s.Height, fn.StyleSetHeight, fn.StyleSetHeightPercent)
	if s.MaxWidth > 0 {
		fn.StyleSetMaxWidth(float32(s.MaxWidth))
	}
	setInsets(fn.StyleSetPadding, s.Padding)
	setInsets(fn.StyleSetMargin, s.Margin)

	if s.Direction == Row {
		fn.StyleSetFlexDirection(flex.FlexDirectionRow)
	} else {
		fn.StyleSetFlexDirection(flex.FlexDirectionColumn)
	}
	fn.StyleSetJustifyContent(justify(s.Justify))
	fn.StyleSetAlignItems(alignItems(s.Align))

	if n.isText() {
		fn.SetMeasureFunc(e.measureText)
		return fn
	}
	for i, c := range n.Children {
		fn.InsertChild(e.build(c), i)
	}
	return fn
}

func setLength(l Length, px, pct func(float32)) {
	switch l.Unit {
	case UnitPx:
		px(float32(l.Value))
	case UnitPercent:
		pct(float32(l.Value))
	}
}

func setInsets(set func(flex.Edge, float32), in Insets) {
	set(flex.EdgeTop, float32(in.Top))
	set(flex.EdgeRight, float32(in.Right))
	set(flex.EdgeBottom, float32(in.Bottom))
	set(flex.EdgeLeft, float32(in.Left))
}

func justify(a Align) flex.Justify {
	switch a {
	case AlignCenter:
		return flex.JustifyCenter
	case AlignEnd:
		return flex.JustifyFlexEnd
	default:
		return flex.JustifyFlexStart
	}
}

func alignItems(a Align) flex.Align {
	switch a {
	case AlignCenter:
		return flex.AlignCenter
	case AlignEnd:
		return flex.AlignFlexEnd
	case AlignStretch:
		return flex.AlignStretch
	default:
		return flex.AlignFlexStart
	}
}

// measureText sizes a text leaf: the widest wrapped line by the line count
func (e *engine) measureText(fn *flex.Node, width float32, widthMode flex.MeasureMode, height float32, heightMode flex.MeasureMode) flex.Size {
	n := fn.Context.(*Node)
	s := n.Style

	limit := 0.0
	if widthMode != flex.MeasureModeUndefined && !flex.FloatIsUndefined(width) {
		limit = float64(width)
	}

	var w float64
	lines := e.wrap(n.Text, s.FontSize, limit)
	for _, line := range lines {
		w = math.Max(w, e.face.Advance(line, s.FontSize))
	}
	return flex.Size{
		Width:  float32(w),
		Height: float32(float64(len(lines)) * s.lineHeight()),
	}
}

// frame converts the computed flex tree to absolute positions
func (e *engine) frame(fn *flex.Node, parentX, parentY float64) *Frame {
	n := fn.Context.(*Node)
	f := &Frame{
		Node: n,
		X:    parentX + float64(fn.LayoutGetLeft()),
		Y:    parentY + float64(fn.LayoutGetTop()),
		W:    float64(fn.LayoutGetWidth()),
		H:    float64(fn.LayoutGetHeight()),
	}

	if n.isText() {
		left := float64(fn.LayoutGetPadding(flex.EdgeLeft))
		top := float64(fn.LayoutGetPadding(flex.EdgeTop))
		right := float64(fn.LayoutGetPadding(flex.EdgeRight))
		f.Lines = e.lines(n, f.X+left, f.Y+top, math.Max(f.W-left-right, 0))
		return f
	}

	for _, c := range fn.Children {
		f.Children = append(f.Children, e.frame(c, f.X, f.Y))
	}
	return f
}

func (e *engine) lines(n *Node, x, y, width float64) []Line {
	s := n.Style
	size := s.FontSize
	lh := s.lineHeight()
	ascent, descent := e.face.Metrics(size)

	var out []Line
	for i, text := range e.wrap(n.Text, size, width) {
		lw := e.face.Advance(text, size)
		lx := x
		switch s.TextAlign {
		case AlignCenter:
			lx = x + (width-lw)/2
		case AlignEnd:
			lx = x + width - lw
		}
		top := y + float64(i)*lh
		out = append(out, Line{
			Text:     text,
			X:        lx,
			Baseline: top + (lh-(ascent+descent))/2 + ascent,
			Width:    lw,
		})
	}
	return out
}

// wrap breaks text greedily at spaces so that each line fits width.
// Words wider than width are broken between runes. A width of zero
// means unbounded.
func (e *engine) wrap(text string, size, width float64) []string {
	if width > 0 {
		width += wrapSlack
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, e.wrapParagraph(para, size, width)...)
	}
	return lines
}

func (e *engine) wrapParagraph(text string, size, width float64) []string {
	if width <= 0 || e.face.Advance(text, size) <= width {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if e.face.Advance(candidate, size) <= width {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if e.face.Advance(word, size) <= width {
			current = word
			continue
		}
		pieces := e.breakWord(word, size, width)
		lines = append(lines, pieces[:len(pieces)-1]...)
		current = pieces[len(pieces)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func (e *engine) breakWord(word string, size, width float64) []string {
	var pieces []string
	var b strings.Builder
	for _, r := range word {
		next := b.String() + string(r)
		if b.Len() > 0 && e.face.Advance(next, size) > width {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	return append(pieces, b.String())
}
