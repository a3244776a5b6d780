package layout

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo/float"
)

// RenderSVG lays out root at width×height and writes it as an SVG document.
// Text is emitted as outline paths, so the document needs no fonts to display.
func RenderSVG(root *Node, face TextFace, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("layout: invalid canvas %dx%d", width, height)
	}

	frame, err := Compute(root, face, float64(width), float64(height))
	if err != nil {
		return nil, err
	}

	w := &svgWriter{face: face}
	w.canvas = svg.New(&w.body)
	w.frame(frame)

	var out bytes.Buffer
	doc := svg.New(&out)
	doc.Startview(float64(width), float64(height), 0, 0, float64(width), float64(height))
	if w.defs.Len() > 0 {
		doc.Def()
		out.Write(w.defs.Bytes())
		doc.DefEnd()
	}
	out.Write(w.body.Bytes())
	doc.End()
	return out.Bytes(), nil
}

type svgWriter struct {
	face      TextFace
	canvas    *svg.SVG
	defs      bytes.Buffer
	body      bytes.Buffer
	gradients int
}

func (w *svgWriter) frame(f *Frame) {
	s := f.Node.Style

	if !s.Background.isZero() && f.W > 0 && f.H > 0 {
		w.background(f, s)
	}

	if len(f.Lines) > 0 && !s.Color.IsZero() {
		for _, line := range f.Lines {
			d := w.face.Outline(line.Text, s.FontSize, line.X, line.Baseline)
			if d == "" {
				continue
			}
			w.canvas.Path(d, attr("fill", s.Color.Hex), attr("fill-opacity", s.Color.opacity()), attr("fill-rule", "nonzero"))
		}
	}

	for _, c := range f.Children {
		w.frame(c)
	}
}

func (w *svgWriter) background(f *Frame, s Style) {
	var fill string
	opacity := "1"
	if g := s.Background.Gradient; g != nil {
		id := w.gradient(f, g)
		fill = "url(#" + id + ")"
	} else {
		fill = s.Background.Color.Hex
		opacity = s.Background.Color.opacity()
	}

	r := math.Min(s.Radius, math.Min(f.W, f.H)/2)
	if r > 0 {
		w.canvas.Roundrect(f.X, f.Y, f.W, f.H, r, r, attr("fill", fill), attr("fill-opacity", opacity))
		return
	}
	w.canvas.Rect(f.X, f.Y, f.W, f.H, attr("fill", fill), attr("fill-opacity", opacity))
}

func attr(name, value string) string {
	return name + `="` + value + `"`
}

// gradient writes a userSpaceOnUse gradient matching CSS linear-gradient
// geometry: the gradient line passes through the box center and its length
// makes the corners land exactly on the end stops. svgo only emits
// percentage gradients in bounding box units, which cannot hold this line.
func (w *svgWriter) gradient(f *Frame, g *Gradient) string {
	id := "g" + strconv.Itoa(w.gradients)
	w.gradients++

	x1, y1, x2, y2 := GradientLine(g.Angle, f.X, f.Y, f.W, f.H)
	fmt.Fprintf(&w.defs, `<linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%s" y1="%s" x2="%s" y2="%s">`,
		id, num(x1), num(y1), num(x2), num(y2))
	fmt.Fprintf(&w.defs, `<stop offset="0" stop-color="%s" stop-opacity="%s"/>`, g.From.Hex, g.From.opacity())
	fmt.Fprintf(&w.defs, `<stop offset="1" stop-color="%s" stop-opacity="%s"/>`, g.To.Hex, g.To.opacity())
	w.defs.WriteString("</linearGradient>")
	return id
}

// GradientLine returns the start and end points of a CSS gradient with the
// given angle over the box (x, y, w, h)
func GradientLine(angle, x, y, w, h float64) (x1, y1, x2, y2 float64) {
	rad := angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := (math.Abs(w*dx) + math.Abs(h*dy)) / 2

	cx, cy := x+w/2, y+h/2
	return cx - dx*half, cy - dy*half, cx + dx*half, cy + dy*half
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
