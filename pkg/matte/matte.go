// Package matte analyzes and cleans the alpha channel of a cut-out image.
//
// Analyze locates the subject: the minimal bounding box of all pixels whose
// alpha strictly exceeds a threshold, plus the alpha-weighted centroid of
// those pixels. Smooth denoises a speckled alpha mask into a clean
// silhouette.
package matte

import (
	"image"

	"github.com/disintegration/imaging"
)

// Analysis describes the subject found in an alpha channel.
//
// Bounds is the minimal axis-aligned rectangle (half-open on the high end)
// containing every foreground pixel. CX, CY are the alpha-weighted mean
// position of the foreground, with each pixel's mass at its center
// (x+0.5, y+0.5), so a uniformly opaque w×h subject has its centroid at
// exactly (w/2, h/2). The centroid always lies within Bounds. The
// coordinate frame is the frame of the analyzed image; use Translate after
// cropping.
type Analysis struct {
	Bounds image.Rectangle
	CX, CY float64
	Found  bool
}

// Translate shifts the analysis into a frame whose origin lies at p in the
// current frame (typically the crop's top-left corner).
func (a Analysis) Translate(p image.Point) Analysis {
	a.Bounds = a.Bounds.Sub(p)
	a.CX -= float64(p.X)
	a.CY -= float64(p.Y)
	return a
}

// Analyze scans every pixel once and computes the bounding box and weighted
// centroid of all pixels with alpha > threshold. Weighting by the alpha
// value itself favors confidently opaque pixels over barely-above-threshold
// edge pixels.
//
// When no pixel exceeds the threshold, Found is false and callers must treat
// the whole image as the subject with no centroid bias.
//
// This is the hot path for large images: one pass over Pix, no allocation.
// Sub-images (non-zero-origin buffers) are handled; results are reported in
// the image's own coordinate space.
func Analyze(img *image.NRGBA, threshold uint8) Analysis {
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()

	minX, minY := w, h
	maxX, maxY := -1, -1
	var sumA, sumAX, sumAY uint64

	for y := 0; y < h; y++ {
		row := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			a := img.Pix[row+x*4+3]
			if a <= threshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
			wa := uint64(a)
			sumA += wa
			sumAX += wa * uint64(x)
			sumAY += wa * uint64(y)
		}
	}

	if maxX < 0 {
		return Analysis{}
	}

	// Each pixel's mass sits at its center, half a pixel past its index.
	return Analysis{
		Bounds: image.Rect(minX, minY, maxX+1, maxY+1).Add(b.Min),
		CX:     float64(sumAX)/float64(sumA) + 0.5 + float64(b.Min.X),
		CY:     float64(sumAY)/float64(sumA) + 0.5 + float64(b.Min.Y),
		Found:  true,
	}
}

// Smooth replaces the alpha channel with a denoised version: the alpha plane
// is Gaussian-blurred with the given sigma and binarized at threshold,
// collapsing noisy semi-transparent edges into a crisp silhouette. The RGB
// channels and the image dimensions are never altered. The result is a
// zero-origin buffer.
func Smooth(img *image.NRGBA, sigma float64, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()

	alpha := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			alpha.Pix[y*alpha.Stride+x] = img.Pix[row+x*4+3]
		}
	}

	blurred := imaging.Blur(alpha, sigma)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcRow := img.PixOffset(b.Min.X, b.Min.Y+y)
		dstRow := y * out.Stride
		blurRow := y * blurred.Stride
		for x := 0; x < w; x++ {
			copy(out.Pix[dstRow+x*4:dstRow+x*4+3], img.Pix[srcRow+x*4:srcRow+x*4+3])
			if blurred.Pix[blurRow+x*4] > threshold {
				out.Pix[dstRow+x*4+3] = 255
			} else {
				out.Pix[dstRow+x*4+3] = 0
			}
		}
	}
	return out
}
