package layout

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

// monoFace gives every rune an advance of half the font size
type monoFace struct{}

func (monoFace) Advance(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size / 2
}

func (monoFace) Metrics(size float64) (float64, float64) {
	return size * 0.8, size * 0.2
}

func (monoFace) Outline(s string, size, x, baseline float64) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return fmt.Sprintf("M%s %sH%sV%sZ", num(x), num(baseline), num(x+float64(len(s))*size/2), num(baseline-size*0.8))
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestComputeCentersColumn(t *testing.T) {
	root := Box(Style{
		Width:     Px(200),
		Height:    Px(100),
		Padding:   Symmetric(10, 20),
		Direction: Column,
		Justify:   AlignCenter,
		Align:     AlignCenter,
	},
		Text(Style{FontSize: 10, LineHeight: 1}, "abcd"),
		Text(Style{FontSize: 10, LineHeight: 1, Margin: Insets{Top: 10}}, "ab"),
	)

	f, err := Compute(root, monoFace{}, 200, 100)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if f.W != 200 || f.H != 100 {
		t.Fatalf("Expected root 200x100, got %vx%v", f.W, f.H)
	}
	if len(f.Children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(f.Children))
	}

	// content box 160x80, children take 10 + 10 + 10 = 30 → 25 free above
	first, second := f.Children[0], f.Children[1]
	if !approx(first.W, 20) || !approx(first.H, 10) {
		t.Errorf("Expected first child 20x10, got %vx%v", first.W, first.H)
	}
	if !approx(first.X, 90) || !approx(first.Y, 35) {
		t.Errorf("Expected first child at (90,35), got (%v,%v)", first.X, first.Y)
	}
	if !approx(second.X, 95) || !approx(second.Y, 55) {
		t.Errorf("Expected second child at (95,55), got (%v,%v)", second.X, second.Y)
	}

	line := first.Lines[0]
	if !approx(line.Baseline, 35+8) {
		t.Errorf("Expected baseline 43, got %v", line.Baseline)
	}
}

func TestComputePercentWidthAndMaxWidth(t *testing.T) {
	inner := Box(Style{Width: Pct(100), Direction: Column, Align: AlignCenter},
		Text(Style{FontSize: 10, MaxWidth: 40, TextAlign: AlignCenter}, "aaaa bbbb cccc"),
	)
	root := Box(Style{Width: Px(300), Height: Px(200), Padding: Symmetric(0, 50)}, inner)

	f, err := Compute(root, monoFace{}, 300, 200)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	in := f.Children[0]
	if !approx(in.W, 200) || !approx(in.X, 50) {
		t.Errorf("Expected inner box 200 wide at x=50, got %v at %v", in.W, in.X)
	}

	text := in.Children[0]
	if len(text.Lines) != 3 {
		t.Fatalf("Expected 3 wrapped lines, got %d: %+v", len(text.Lines), text.Lines)
	}
	if !approx(text.W, 20) {
		t.Errorf("Expected text box to shrink to 20, got %v", text.W)
	}
	if !approx(text.X, 140) {
		t.Errorf("Expected text box centered at x=140, got %v", text.X)
	}
	if !approx(text.H, 36) {
		t.Errorf("Expected 3 lines of 12px, got %v", text.H)
	}
}

func TestWrapBreaksLongWords(t *testing.T) {
	e := &engine{face: monoFace{}}
	lines := e.wrap("abcdefghij xy", 10, 20)
	want := []string{"abcd", "efgh", "ij", "xy"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("Expected %v, got %v", want, lines)
	}

	lines = e.wrap("fits", 10, 0)
	if len(lines) != 1 || lines[0] != "fits" {
		t.Errorf("Expected no wrapping without a width, got %v", lines)
	}

	lines = e.wrap("ab cd ef", 10, 20)
	if strings.Join(lines, "|") != "ab|cd|ef" {
		t.Errorf("Expected word wrapping, got %v", lines)
	}
}

func TestComputeRow(t *testing.T) {
	root := Box(Style{Width: Px(100), Height: Px(20), Direction: Row, Justify: AlignEnd, Align: AlignStretch},
		Text(Style{FontSize: 10, LineHeight: 1}, "ab"),
		Text(Style{FontSize: 10, LineHeight: 1, Margin: Insets{Left: 5}}, "cd"),
	)

	f, err := Compute(root, monoFace{}, 100, 20)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	a, b := f.Children[0], f.Children[1]
	if !approx(a.X, 75) || !approx(b.X, 90) {
		t.Errorf("Expected children at x=75 and x=90, got %v and %v", a.X, b.X)
	}
	if !approx(a.H, 20) {
		t.Errorf("Expected stretched height 20, got %v", a.H)
	}
}

func TestLengthZeroIsNotAuto(t *testing.T) {
	if !Auto.IsAuto() || !(Length{}).IsAuto() {
		t.Error("Expected zero value to be auto")
	}
	if Px(0).IsAuto() || Pct(0).IsAuto() {
		t.Error("Expected explicit zero lengths not to be auto")
	}

	root := Box(Style{Width: Px(100), Height: Px(50), Direction: Row, Align: AlignStretch},
		Box(Style{Width: Px(0), Padding: Symmetric(0, 0)}),
		Box(Style{Height: Px(0)}, Text(Style{FontSize: 10, LineHeight: 1}, "ab")),
	)

	f, err := Compute(root, monoFace{}, 100, 50)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	zeroWidth, zeroHeight := f.Children[0], f.Children[1]
	if zeroWidth.W != 0 || !approx(zeroWidth.H, 50) {
		t.Errorf("Expected 0x50 box, got %vx%v", zeroWidth.W, zeroWidth.H)
	}
	if zeroHeight.H != 0 || !approx(zeroHeight.W, 10) {
		t.Errorf("Expected 10x0 box, got %vx%v", zeroHeight.W, zeroHeight.H)
	}
}

func TestComputeRejectsMalformedTrees(t *testing.T) {
	tests := []struct {
		name string
		root *Node
		face TextFace
	}{
		{name: "nil root", root: nil, face: monoFace{}},
		{name: "no font size", root: Box(Style{}, Text(Style{}, "x")), face: monoFace{}},
		{name: "no face", root: Text(Style{FontSize: 10}, "x"), face: nil},
		{name: "nil child", root: Box(Style{}, nil), face: monoFace{}},
		{name: "text with children", root: &Node{Text: "x", Style: Style{FontSize: 1}, Children: []*Node{Box(Style{})}}, face: monoFace{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compute(tt.root, tt.face, 10, 10); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	root := Box(Style{
		Width:      Px(900),
		Height:     Px(300),
		Justify:    AlignCenter,
		Align:      AlignCenter,
		Background: Background{Gradient: &Gradient{Angle: 135, From: Hex("#7B42BC"), To: Hex("#5C4EE5")}},
	},
		Box(Style{
			Padding:    Symmetric(4, 12),
			Radius:     10,
			Background: Background{Color: Hex("#ffffff").WithAlpha(0.2)},
		}, Text(Style{FontSize: 14, Color: Hex("#ffffff")}, "Terraform")),
	)

	svg, err := RenderSVG(root, monoFace{}, 900, 300)
	if err != nil {
		t.Fatalf("RenderSVG failed: %v", err)
	}
	doc := string(svg)

	for _, want := range []string{
		`width="900.00" height="300.00"`,
		`viewBox="0.00 0.00 900.00 300.00"`,
		`<linearGradient id="g0" gradientUnits="userSpaceOnUse" x1="150" y1="-150" x2="750" y2="450">`,
		`stop-color="#7B42BC"`,
		`stop-color="#5C4EE5"`,
		`fill="url(#g0)"`,
		`rx="10.00"`,
		`fill="#ffffff" fill-opacity="0.2"`,
		`<path d="M`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Expected SVG to contain %q\n%s", want, doc)
		}
	}

	if strings.Index(doc, "<defs>") > strings.Index(doc, "<rect") {
		t.Error("Expected gradient definitions before use")
	}
}

func TestRenderSVGInvalidCanvas(t *testing.T) {
	if _, err := RenderSVG(Box(Style{}), monoFace{}, 0, 300); err == nil {
		t.Error("Expected error for zero width")
	}
}

func TestGradientLine(t *testing.T) {
	tests := []struct {
		angle          float64
		x1, y1, x2, y2 float64
	}{
		{angle: 180, x1: 50, y1: 0, x2: 50, y2: 20},
		{angle: 90, x1: 0, y1: 10, x2: 100, y2: 10},
		{angle: 0, x1: 50, y1: 20, x2: 50, y2: 0},
	}

	for _, tt := range tests {
		x1, y1, x2, y2 := GradientLine(tt.angle, 0, 0, 100, 20)
		if !approx(x1, tt.x1) || !approx(y1, tt.y1) || !approx(x2, tt.x2) || !approx(y2, tt.y2) {
			t.Errorf("angle %v: expected (%v,%v)-(%v,%v), got (%v,%v)-(%v,%v)",
				tt.angle, tt.x1, tt.y1, tt.x2, tt.y2, x1, y1, x2, y2)
		}
	}
}
