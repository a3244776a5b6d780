// Package composer builds the preview image layout for a post and renders
// it to PNG.
package composer

import (
	"context"
	"unicode/utf8"

	"ogimage/common"
	"ogimage/config"
	"ogimage/layout"
	"ogimage/raster"
	"ogimage/theme"
)

// FontSource provides the face used for one image
type FontSource interface {
	Load(ctx context.Context) (layout.TextFace, error)
}

// Composer renders preview images
type Composer struct {
	cfg    config.ImageConfig
	themes theme.Table
	fonts  FontSource
}

// New creates a composer. themes is consulted for every image; fonts is
// loaded once per image.
func New(cfg config.ImageConfig, themes theme.Table, fonts FontSource) *Composer {
	return &Composer{cfg: cfg, themes: themes, fonts: fonts}
}

// TitleFontSize returns size for titles up to threshold characters and
// longSize beyond that
func TitleFontSize(title string, threshold int, size, longSize float64) float64 {
	if utf8.RuneCountInString(title) > threshold {
		return longSize
	}
	return size
}

// Label returns the badge text for category
func (c *Composer) Label(category string) string {
	if category == "" {
		return c.cfg.FallbackLabel
	}
	return category
}

// Tree builds the layout of a preview image
func (c *Composer) Tree(title, category string, p theme.Palette) *layout.Node {
	white := layout.Hex("#ffffff")

	badge := layout.Box(layout.Style{
		Padding:    layout.Symmetric(4, 12),
		Radius:     10,
		Margin:     layout.Insets{Bottom: 12},
		Background: layout.Background{Color: white.WithAlpha(0.2)},
	}, layout.Text(layout.Style{
		FontSize: 14,
		Color:    white,
	}, c.Label(category)))

	heading := layout.Text(layout.Style{
		FontSize:   TitleFontSize(title, c.cfg.TitleThreshold, c.cfg.TitleSize, c.cfg.LongTitleSize),
		LineHeight: 1.3,
		MaxWidth:   780,
		Color:      white,
		TextAlign:  layout.AlignCenter,
	}, title)

	author := layout.Text(layout.Style{
		FontSize: 14,
		Margin:   layout.Insets{Top: 12},
		Color:    white.WithAlpha(0.8),
	}, c.cfg.Author)

	column := layout.Box(layout.Style{
		Width:     layout.Pct(100),
		Direction: layout.Column,
		Justify:   layout.AlignCenter,
		Align:     layout.AlignCenter,
		TextAlign: layout.AlignCenter,
	}, badge, heading, author)

	return layout.Box(layout.Style{
		Width:     layout.Px(float64(c.cfg.Width)),
		Height:    layout.Px(float64(c.cfg.Height)),
		Padding:   layout.Symmetric(30, 60),
		Direction: layout.Column,
		Justify:   layout.AlignCenter,
		Align:     layout.AlignCenter,
		Background: layout.Background{Gradient: &layout.Gradient{
			Angle: 135,
			From:  layout.Hex(p.Background),
			To:    layout.Hex(p.Accent),
		}},
	}, column)
}

// SVG renders the preview as an SVG document
func (c *Composer) SVG(ctx context.Context, title, category string) ([]byte, error) {
	palette := c.themes.Lookup(category)

	face, err := c.fonts.Load(ctx)
	if err != nil {
		return nil, err
	}

	svg, err := layout.RenderSVG(c.Tree(title, category, palette), face, c.cfg.Width, c.cfg.Height)
	if err != nil {
		return nil, common.RenderError("lay out image", err)
	}
	return svg, nil
}

// Compose renders the preview as PNG bytes
func (c *Composer) Compose(ctx context.Context, title, category string) ([]byte, error) {
	svg, err := c.SVG(ctx, title, category)
	if err != nil {
		return nil, err
	}

	png, err := raster.ToPNG(svg, c.cfg.Width)
	if err != nil {
		return nil, common.RenderError("rasterize image", err)
	}
	return png, nil
}
