package raster

import (
	"bytes"
	"image/png"
	"testing"
)

const redBox = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="5" viewBox="0 0 10 5">` +
	`<rect x="0" y="0" width="10" height="5" fill="#ff0000"/></svg>`

func TestToPNGFitsWidth(t *testing.T) {
	data, err := ToPNG([]byte(redBox), 20)
	if err != nil {
		t.Fatalf("ToPNG failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}

	b := img.Bounds()
	if b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("Expected 20x10, got %dx%d", b.Dx(), b.Dy())
	}

	r, g, bl, a := img.At(10, 5).RGBA()
	if r>>8 != 0xff || g>>8 != 0 || bl>>8 != 0 || a>>8 != 0xff {
		t.Errorf("Expected opaque red at center, got %d,%d,%d,%d", r>>8, g>>8, bl>>8, a>>8)
	}
}

func TestRasterizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		svg   string
		width int
	}{
		{name: "zero width", svg: redBox, width: 0},
		{name: "not xml", svg: "<svg", width: 10},
		{name: "no view box", svg: `<svg xmlns="http://www.w3.org/2000/svg"></svg>`, width: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Rasterize([]byte(tt.svg), tt.width); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
