// Package normalizer turns arbitrarily framed product photographs into
// visually consistent square catalog assets.
//
// Each image runs through a fixed pipeline: background removal (an external
// rembg-compatible service), alpha analysis (bounding box and weighted
// centroid), optional alpha smoothing, bounding-box cropping, scale-to-fit
// composition on a transparent square canvas, and lossy WebP encoding.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		normalizer "github.com/menta2k/photo-normalizer"
//		"github.com/menta2k/photo-normalizer/pkg/imageio"
//	)
//
//	func main() {
//		n := normalizer.New()
//
//		img, err := imageio.Open("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		canvas, report, err := n.Process(context.Background(), img)
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("subject at %v, removal tier %s", report.Placement.Rect, report.Tier)
//
//		f, err := os.Create("photo.webp")
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer f.Close()
//		if err := n.EncodeTo(f, canvas); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of five main components:
//
// 1. Remover (pkg/remover): background-removal collaborator with quality tiers
// 2. Matte (pkg/matte): alpha-channel analysis and smoothing
// 3. Cropper (pkg/cropper): subject cropping and canvas composition
// 4. Encoder (pkg/encoder): the lossy WebP output policy
// 5. ImageIO (pkg/imageio): decoding, downloading and directory listing
//
// All configuration comes from a single immutable config.Config constructed
// at startup; components never read global state.
package normalizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/menta2k/photo-normalizer/pkg/config"
	"github.com/menta2k/photo-normalizer/pkg/cropper"
	"github.com/menta2k/photo-normalizer/pkg/encoder"
	"github.com/menta2k/photo-normalizer/pkg/imageio"
	"github.com/menta2k/photo-normalizer/pkg/matte"
	"github.com/menta2k/photo-normalizer/pkg/remover"
)

// Version of the photo normalizer library
const Version = "1.0.0"

// Normalizer runs the subject-extraction and compositing pipeline.
type Normalizer struct {
	cfg        config.Config
	remover    remover.BackgroundRemover
	compositor cropper.Compositor
}

// Report describes what the pipeline did to one image.
type Report struct {
	// Tier is the background-removal path that ran.
	Tier remover.Tier
	// Analysis is the alpha analysis in source-image coordinates.
	// Analysis.Found is false when no pixel exceeded the threshold and the
	// whole image was used as the subject.
	Analysis matte.Analysis
	// Placement is where the scaled subject landed on the canvas.
	Placement cropper.Placement
}

// New creates a Normalizer configured from the environment. A removal
// service is used when one is configured; otherwise inputs are treated as
// already matted.
func New() *Normalizer {
	return NewWithConfig(config.FromEnv())
}

// NewWithConfig creates a Normalizer with an explicit configuration.
func NewWithConfig(cfg config.Config) *Normalizer {
	n := &Normalizer{
		cfg: cfg,
		compositor: cropper.Compositor{
			Size:  cfg.Size,
			Pad:   cfg.Pad,
			VBias: cfg.VerticalBias,
		},
	}
	if cfg.RembgURL != "" {
		n.remover = remover.NewClient(cfg.RembgURL, cfg.RembgModel, cfg.RembgHQModel, cfg.RembgTimeout)
	} else {
		n.remover = remover.Passthrough{}
	}
	return n
}

// SetRemover replaces the background-removal collaborator. Useful for tests
// and for callers that mat images themselves.
func (n *Normalizer) SetRemover(r remover.BackgroundRemover) {
	n.remover = r
}

// Config returns the configuration the Normalizer was built with.
func (n *Normalizer) Config() config.Config {
	return n.cfg
}

// Process runs stages one through five on a decoded image and returns the
// composited canvas, which is always exactly Size×Size.
func (n *Normalizer) Process(ctx context.Context, img *image.NRGBA) (*image.NRGBA, Report, error) {
	res, err := n.remover.Remove(ctx, img, n.cfg.HighQuality)
	if err != nil {
		return nil, Report{}, err
	}
	matted := res.Image

	analysis := matte.Analyze(matted, n.cfg.AlphaThreshold)

	if n.cfg.HighQuality {
		matted = matte.Smooth(matted, n.cfg.SmoothSigma, n.cfg.SmoothThreshold)
	}

	crop, local := cropper.Crop(matted, analysis)
	canvas, placement := n.compositor.Compose(crop, local)

	return canvas, Report{Tier: res.Tier, Analysis: analysis, Placement: placement}, nil
}

// EncodeTo runs stage six: the canvas is written to w as lossy WebP with the
// run's quality settings.
func (n *Normalizer) EncodeTo(w io.Writer, canvas *image.NRGBA) error {
	return encoder.Encode(w, canvas, encoder.Options{
		Quality:      n.cfg.Quality,
		AlphaQuality: n.cfg.AlphaQuality,
		Effort:       n.cfg.Effort,
	})
}

// ProcessFile normalizes one local image file into outDir and returns the
// path written.
func (n *Normalizer) ProcessFile(ctx context.Context, path, outDir string) (string, error) {
	img, err := imageio.Open(path)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	return n.write(ctx, img, filepath.Join(outDir, imageio.BaseName(path)+".webp"))
}

// ProcessURL downloads, normalizes and writes one remote image. The output
// name derives from the URL's path component.
func (n *Normalizer) ProcessURL(ctx context.Context, rawURL, outDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.RembgTimeout)
	defer cancel()

	img, err := imageio.Download(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return n.write(ctx, img, filepath.Join(outDir, imageio.URLOutputName(rawURL)+".webp"))
}

func (n *Normalizer) write(ctx context.Context, img *image.NRGBA, outPath string) (string, error) {
	canvas, _, err := n.Process(ctx, img)
	if err != nil {
		return "", err
	}

	// Encode to memory first; a failed encode must not leave a partial
	// file in the output directory.
	var buf bytes.Buffer
	if err := n.EncodeTo(&buf, canvas); err != nil {
		return "", fmt.Errorf("encode %s: %w", outPath, err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return outPath, nil
}
