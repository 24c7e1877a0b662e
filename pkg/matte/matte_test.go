package matte

import (
	"image"
	"image/color"
	"testing"
)

// transparentImage creates a fully transparent image
func transparentImage(width, height int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, width, height))
}

// setAlpha sets a single pixel with the given alpha and a fixed color
func setAlpha(img *image.NRGBA, x, y int, a uint8) {
	img.SetNRGBA(x, y, color.NRGBA{200, 60, 40, a})
}

func TestAnalyzeBoundingBoxTightness(t *testing.T) {
	img := transparentImage(40, 30)
	setAlpha(img, 3, 4, 255)
	setAlpha(img, 17, 9, 255)
	setAlpha(img, 10, 25, 255)

	a := Analyze(img, 16)
	if !a.Found {
		t.Fatal("expected foreground to be found")
	}

	want := image.Rect(3, 4, 18, 26)
	if a.Bounds != want {
		t.Errorf("bounds = %v, want %v", a.Bounds, want)
	}

	// every above-threshold pixel must be inside the box
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			if img.NRGBAAt(x, y).A > 16 && !(image.Pt(x, y).In(a.Bounds)) {
				t.Errorf("foreground pixel (%d,%d) outside bounds %v", x, y, a.Bounds)
			}
		}
	}
}

func TestAnalyzeThresholdIsStrict(t *testing.T) {
	img := transparentImage(10, 10)
	setAlpha(img, 2, 2, 16) // exactly at threshold: background
	setAlpha(img, 5, 5, 17) // one above: foreground

	a := Analyze(img, 16)
	if !a.Found {
		t.Fatal("expected foreground to be found")
	}
	if want := image.Rect(5, 5, 6, 6); a.Bounds != want {
		t.Errorf("bounds = %v, want %v (pixel at threshold must be excluded)", a.Bounds, want)
	}
}

func TestAnalyzeWeightedCentroid(t *testing.T) {
	img := transparentImage(10, 5)
	setAlpha(img, 0, 0, 51)
	setAlpha(img, 3, 0, 153)

	a := Analyze(img, 16)
	if !a.Found {
		t.Fatal("expected foreground to be found")
	}

	// mean of the pixel centers 0.5 and 3.5, weighted 51:153; the
	// more-opaque pixel pulls harder
	if a.CX != 2.75 {
		t.Errorf("CX = %v, want 2.75", a.CX)
	}
	if a.CY != 0.5 {
		t.Errorf("CY = %v, want 0.5", a.CY)
	}
}

func TestAnalyzeCentroidInsideBounds(t *testing.T) {
	img := transparentImage(50, 50)
	// L-shaped subject
	for x := 10; x < 40; x++ {
		setAlpha(img, x, 10, 255)
	}
	for y := 10; y < 40; y++ {
		setAlpha(img, 10, y, 255)
	}

	a := Analyze(img, 16)
	if !a.Found {
		t.Fatal("expected foreground to be found")
	}
	if a.CX < float64(a.Bounds.Min.X) || a.CX >= float64(a.Bounds.Max.X) {
		t.Errorf("CX = %v outside bounds %v", a.CX, a.Bounds)
	}
	if a.CY < float64(a.Bounds.Min.Y) || a.CY >= float64(a.Bounds.Max.Y) {
		t.Errorf("CY = %v outside bounds %v", a.CY, a.Bounds)
	}
}

func TestAnalyzeDegenerate(t *testing.T) {
	img := transparentImage(20, 20)
	setAlpha(img, 5, 5, 10) // below threshold

	a := Analyze(img, 16)
	if a.Found {
		t.Errorf("expected no foreground, got bounds %v", a.Bounds)
	}
}

func TestAnalyzeFullyOpaque(t *testing.T) {
	img := transparentImage(8, 6)
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			setAlpha(img, x, y, 255)
		}
	}

	a := Analyze(img, 16)
	if want := image.Rect(0, 0, 8, 6); a.Bounds != want {
		t.Errorf("bounds = %v, want %v", a.Bounds, want)
	}
	// uniform weights: centroid is the exact image center
	if a.CX != 4 || a.CY != 3 {
		t.Errorf("centroid = (%v, %v), want (4, 3)", a.CX, a.CY)
	}
}

func TestAnalyzeSubImage(t *testing.T) {
	img := transparentImage(20, 20)
	for y := 12; y < 16; y++ {
		for x := 12; x < 16; x++ {
			setAlpha(img, x, y, 255)
		}
	}

	sub := img.SubImage(image.Rect(10, 10, 20, 20)).(*image.NRGBA)
	a := Analyze(sub, 16)
	if !a.Found {
		t.Fatal("expected foreground to be found")
	}
	if want := image.Rect(12, 12, 16, 16); a.Bounds != want {
		t.Errorf("bounds = %v, want %v", a.Bounds, want)
	}
	if a.CX != 14 || a.CY != 14 {
		t.Errorf("centroid = (%v, %v), want (14, 14)", a.CX, a.CY)
	}
}

func TestSmoothSubImage(t *testing.T) {
	img := transparentImage(20, 20)
	for y := 12; y < 16; y++ {
		for x := 12; x < 16; x++ {
			setAlpha(img, x, y, 255)
		}
	}

	sub := img.SubImage(image.Rect(10, 10, 20, 20)).(*image.NRGBA)
	out := Smooth(sub, 1.2, 180)

	if out.Bounds().Dx() != 10 || out.Bounds().Dy() != 10 {
		t.Fatalf("size = %dx%d, want 10x10", out.Bounds().Dx(), out.Bounds().Dy())
	}
	// subject center, shifted into the sub-image frame
	if a := out.NRGBAAt(3, 3).A; a != 255 {
		t.Errorf("subject alpha = %d, want 255", a)
	}
	if a := out.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("background alpha = %d, want 0", a)
	}
}

func TestTranslate(t *testing.T) {
	a := Analysis{
		Bounds: image.Rect(10, 20, 30, 40),
		CX:     15,
		CY:     25,
		Found:  true,
	}

	local := a.Translate(image.Pt(10, 20))
	if want := image.Rect(0, 0, 20, 20); local.Bounds != want {
		t.Errorf("bounds = %v, want %v", local.Bounds, want)
	}
	if local.CX != 5 || local.CY != 5 {
		t.Errorf("centroid = (%v, %v), want (5, 5)", local.CX, local.CY)
	}
}

func TestSmooth(t *testing.T) {
	img := transparentImage(30, 30)
	// solid subject block
	for y := 8; y < 22; y++ {
		for x := 8; x < 22; x++ {
			setAlpha(img, x, y, 255)
		}
	}
	// isolated speckle the blur should wash out
	setAlpha(img, 2, 2, 255)

	out := Smooth(img, 1.2, 180)

	if out.Bounds() != img.Bounds() {
		t.Fatalf("dimensions changed: %v -> %v", img.Bounds(), out.Bounds())
	}

	// alpha is binary after smoothing
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			if a := out.NRGBAAt(x, y).A; a != 0 && a != 255 {
				t.Fatalf("alpha at (%d,%d) = %d, want 0 or 255", x, y, a)
			}
		}
	}

	if out.NRGBAAt(15, 15).A != 255 {
		t.Error("subject interior lost its alpha")
	}
	if out.NRGBAAt(2, 2).A != 0 {
		t.Error("isolated speckle survived smoothing")
	}

	// color channels are never altered
	got := out.NRGBAAt(15, 15)
	if got.R != 200 || got.G != 60 || got.B != 40 {
		t.Errorf("RGB at subject = (%d,%d,%d), want (200,60,40)", got.R, got.G, got.B)
	}
	spk := out.NRGBAAt(2, 2)
	if spk.R != 200 || spk.G != 60 || spk.B != 40 {
		t.Errorf("RGB at speckle = (%d,%d,%d), want (200,60,40)", spk.R, spk.G, spk.B)
	}
}
