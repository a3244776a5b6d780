package fonts

import (
	"fmt"
	"strconv"
	"strings"

	webfont "github.com/tdewolff/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Face measures and outlines text with a chain of fonts: each rune is drawn
// with the first font that has a glyph for it. A Face is not safe for
// concurrent use.
type Face struct {
	fonts []*sfnt.Font
	buf   sfnt.Buffer
}

// Parse decodes TTF, OTF, WOFF or WOFF2 data
func Parse(data []byte) (*sfnt.Font, error) {
	data, err := webfont.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap font: %w", err)
	}

	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return f, nil
}

// NewFace creates a face from a primary font and optional fallbacks
func NewFace(primary *sfnt.Font, fallbacks ...*sfnt.Font) *Face {
	return &Face{fonts: append([]*sfnt.Font{primary}, fallbacks...)}
}

func ppem(size float64) fixed.Int26_6 {
	return fixed.Int26_6(size * 64)
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// glyph picks the font and glyph for r, falling back to the primary
// font's missing glyph
func (f *Face) glyph(r rune) (*sfnt.Font, sfnt.GlyphIndex) {
	for _, fnt := range f.fonts {
		idx, err := fnt.GlyphIndex(&f.buf, r)
		if err == nil && idx != 0 {
			return fnt, idx
		}
	}
	return f.fonts[0], 0
}

// each walks s calling fn with every glyph and its pen position
func (f *Face) each(s string, size float64, fn func(fnt *sfnt.Font, idx sfnt.GlyphIndex, pen float64)) float64 {
	em := ppem(size)
	pen := 0.0

	var prevFont *sfnt.Font
	var prev sfnt.GlyphIndex
	for _, r := range s {
		fnt, idx := f.glyph(r)
		if prevFont == fnt {
			if k, err := fnt.Kern(&f.buf, prev, idx, em, font.HintingNone); err == nil {
				pen += toFloat(k)
			}
		}
		if fn != nil {
			fn(fnt, idx, pen)
		}
		if adv, err := fnt.GlyphAdvance(&f.buf, idx, em, font.HintingNone); err == nil {
			pen += toFloat(adv)
		}
		prevFont, prev = fnt, idx
	}
	return pen
}

// Advance returns the width of s at size pixels
func (f *Face) Advance(s string, size float64) float64 {
	return f.each(s, size, nil)
}

// Metrics returns ascent and descent of the primary font
func (f *Face) Metrics(size float64) (float64, float64) {
	m, err := f.fonts[0].Metrics(&f.buf, ppem(size), font.HintingNone)
	if err != nil {
		return size * 0.8, size * 0.2
	}
	return toFloat(m.Ascent), toFloat(m.Descent)
}

// Outline returns SVG path data for s with its origin at (x, baseline)
func (f *Face) Outline(s string, size, x, baseline float64) string {
	em := ppem(size)
	var b strings.Builder

	f.each(s, size, func(fnt *sfnt.Font, idx sfnt.GlyphIndex, pen float64) {
		segs, err := fnt.LoadGlyph(&f.buf, idx, em, nil)
		if err != nil {
			return
		}
		ox := x + pen
		open := false
		for _, seg := range segs {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if open {
					b.WriteByte('Z')
				}
				b.WriteByte('M')
				writePoint(&b, ox, baseline, seg.Args[0])
				open = true
			case sfnt.SegmentOpLineTo:
				b.WriteByte('L')
				writePoint(&b, ox, baseline, seg.Args[0])
			case sfnt.SegmentOpQuadTo:
				b.WriteByte('Q')
				writePoint(&b, ox, baseline, seg.Args[0])
				b.WriteByte(' ')
				writePoint(&b, ox, baseline, seg.Args[1])
			case sfnt.SegmentOpCubeTo:
				b.WriteByte('C')
				writePoint(&b, ox, baseline, seg.Args[0])
				b.WriteByte(' ')
				writePoint(&b, ox, baseline, seg.Args[1])
				b.WriteByte(' ')
				writePoint(&b, ox, baseline, seg.Args[2])
			}
		}
		if open {
			b.WriteByte('Z')
		}
	})

	return b.String()
}

// sfnt segments are y-down with the origin on the baseline
func writePoint(b *strings.Builder, ox, oy float64, p fixed.Point26_6) {
	b.WriteString(strconv.FormatFloat(ox+toFloat(p.X), 'f', 2, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(oy+toFloat(p.Y), 'f', 2, 64))
}
