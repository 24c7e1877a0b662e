// Package cropper extracts the subject region found by package matte and
// composes it, scaled and centered, onto a fixed-size transparent square
// canvas.
package cropper

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/photo-normalizer/pkg/matte"
)

const dimEpsilon = 1e-6

// Crop extracts the analysis bounding box from img and translates the
// analysis into crop-local coordinates. A degenerate analysis (no foreground
// found) yields the identity crop: the full image, untranslated.
func Crop(img *image.NRGBA, a matte.Analysis) (*image.NRGBA, matte.Analysis) {
	if !a.Found {
		return img, a
	}
	return imaging.Crop(img, a.Bounds), a.Translate(a.Bounds.Min)
}

// Compositor places a cropped subject onto a Size×Size transparent canvas.
//
// The crop is scaled uniformly so that its larger relative dimension fills
// the padded content area, then placed so the canvas center coincides with
// the subject's scaled centroid (visual-mass centering). Without a centroid
// the resized crop is centered geometrically. VBias shifts the placement
// vertically by that fraction of the canvas edge in either path.
type Compositor struct {
	Size  int
	Pad   float64
	VBias float64
}

// Placement records where Compose put the content, for logging and tests.
type Placement struct {
	Scale float64
	Rect  image.Rectangle
}

// Compose scales crop to fit the padded content area and pastes it onto a
// fresh transparent canvas. The result is always exactly Size×Size; content
// pushed past an edge by centroid bias is clipped and the uncovered area
// stays fully transparent.
func (c Compositor) Compose(crop *image.NRGBA, a matte.Analysis) (*image.NRGBA, Placement) {
	w := crop.Bounds().Dx()
	h := crop.Bounds().Dy()

	maxContent := float64(c.Size) * (1 - 2*c.Pad)
	scale := math.Min(maxContent/float64(w), maxContent/float64(h))

	// Floor the scaled dimensions, with a guard against products like
	// 1799.9999999999998 that are an exact pixel count in disguise.
	nw := int(math.Floor(float64(w)*scale + dimEpsilon))
	nh := int(math.Floor(float64(h)*scale + dimEpsilon))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	resized := imaging.Resize(crop, nw, nh, imaging.Lanczos)

	// Integer pixel offsets only; fractional placement smears the canvas
	// edge.
	bias := int(math.Round(c.VBias * float64(c.Size)))
	var left, top int
	if a.Found {
		half := float64(c.Size) / 2
		left = int(math.Round(half - a.CX*scale))
		top = int(math.Round(half-a.CY*scale)) + bias
	} else {
		left = (c.Size - nw) / 2
		top = (c.Size-nh)/2 + bias
	}

	canvas := imaging.New(c.Size, c.Size, color.NRGBA{})
	canvas = imaging.Paste(canvas, resized, image.Pt(left, top))

	return canvas, Placement{
		Scale: scale,
		Rect:  image.Rect(left, top, left+nw, top+nh),
	}
}
