// Package encoder serializes a composited canvas to lossy WebP.
//
// Policy: lossless and near-lossless are disabled; a catalog batch wants
// consistent output size and quality across images, not per-image optimal
// encoding. Image quality, alpha quality and encoder effort are configured
// independently. Output is deterministic for a fixed input and options.
package encoder

import (
	"bytes"
	"image"
	"io"

	"github.com/deepteams/webp"
)

// Options are the encoding knobs.
type Options struct {
	// Quality is the lossy image quality (0-100).
	Quality int
	// AlphaQuality is the alpha-channel quality (0-100).
	AlphaQuality int
	// Effort is the speed/size trade-off (0 fastest, 6 smallest).
	Effort int
}

// Default returns the batch encoding policy defaults.
func Default() Options {
	return Options{Quality: 82, AlphaQuality: 80, Effort: 6}
}

// Encode writes img to w as lossy WebP.
func Encode(w io.Writer, img image.Image, o Options) error {
	opts := webp.DefaultOptions()
	opts.Lossless = false
	opts.Quality = float32(clamp(o.Quality, 0, 100))
	opts.AlphaQuality = clamp(o.AlphaQuality, 0, 100)
	opts.Method = clamp(o.Effort, 0, 6)
	return webp.Encode(w, img, opts)
}

// EncodeBytes is Encode into a fresh byte slice.
func EncodeBytes(img image.Image, o Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
