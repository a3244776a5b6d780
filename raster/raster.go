// Package raster converts SVG documents to PNG images.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Rasterize draws svg into an RGBA image fitted to width, keeping the
// view box aspect ratio
func Rasterize(svg []byte, width int) (*image.RGBA, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid target width %d", width)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return nil, fmt.Errorf("SVG has no view box")
	}

	scale := float64(width) / icon.ViewBox.W
	height := int(math.Round(icon.ViewBox.H * scale))
	if height <= 0 {
		return nil, fmt.Errorf("SVG view box %vx%v collapses at width %d", icon.ViewBox.W, icon.ViewBox.H, width)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)

	icon.Draw(raster, 1.0)

	return rgba, nil
}

// ToPNG rasterizes svg fitted to width and encodes it as PNG
func ToPNG(svg []byte, width int) ([]byte, error) {
	img, err := Rasterize(svg, width)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
