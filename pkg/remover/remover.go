// Package remover isolates the foreground of a photograph by calling a
// rembg-compatible background-removal service.
//
// The service is an opaque collaborator: image in, RGBA image with the
// background at alpha zero out. Two quality tiers are supported; a failing
// high-quality call falls back to the fast tier, and the tier actually used
// is reported explicitly in the Result so callers and tests can observe
// which path was taken rather than relying on log side effects.
package remover

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/menta2k/photo-normalizer/pkg/imageio"
)

// Tier identifies which removal path produced a Result.
type Tier int

const (
	// TierNone means no removal ran (input was already matted, or no
	// service is configured).
	TierNone Tier = iota
	// TierFast is the default removal model.
	TierFast
	// TierHigh is the high-accuracy removal model.
	TierHigh
	// TierFallback means the high tier failed and the fast tier was used
	// instead.
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierHigh:
		return "high"
	case TierFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Result is a removal outcome: the matted image and the tier that made it.
// The image is always NRGBA, so an alpha channel is guaranteed even when a
// tier returns a fully opaque image.
type Result struct {
	Image *image.NRGBA
	Tier  Tier
}

// BackgroundRemover is the removal collaborator contract.
type BackgroundRemover interface {
	Remove(ctx context.Context, img *image.NRGBA, highQuality bool) (Result, error)
}

// Passthrough returns the input untouched. Used when no removal service is
// configured; the whole image is treated as subject unless it already
// carries transparency.
type Passthrough struct{}

func (Passthrough) Remove(_ context.Context, img *image.NRGBA, _ bool) (Result, error) {
	return Result{Image: img, Tier: TierNone}, nil
}

// Client calls a rembg-compatible HTTP endpoint (POST {base}/api/remove with
// a multipart image upload and a model field; PNG with alpha comes back).
type Client struct {
	BaseURL string
	// Model and HQModel select the fast and high-quality tiers.
	Model   string
	HQModel string

	httpClient *http.Client
}

// NewClient builds a Client with a bounded per-call timeout.
func NewClient(baseURL, model, hqModel string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		HQModel:    hqModel,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Remove mats img through the service. In high-quality mode a failure of the
// HQ model is recovered locally by retrying with the fast model; the Result
// then reports TierFallback. A fast-tier failure is a real error.
func (c *Client) Remove(ctx context.Context, img *image.NRGBA, highQuality bool) (Result, error) {
	// Already cut out upstream: a second removal pass can only erode the
	// subject.
	if hasTransparency(img) {
		return Result{Image: img, Tier: TierNone}, nil
	}

	if highQuality {
		out, err := c.call(ctx, img, c.HQModel)
		if err == nil {
			return Result{Image: out, Tier: TierHigh}, nil
		}
		log.Printf("high-quality removal failed, falling back: %v", err)
		out, err = c.call(ctx, img, c.Model)
		if err != nil {
			return Result{}, fmt.Errorf("background removal: %w", err)
		}
		return Result{Image: out, Tier: TierFallback}, nil
	}

	out, err := c.call(ctx, img, c.Model)
	if err != nil {
		return Result{}, fmt.Errorf("background removal: %w", err)
	}
	return Result{Image: out, Tier: TierFast}, nil
}

func (c *Client) call(ctx context.Context, img *image.NRGBA, model string) (*image.NRGBA, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "input.png")
	if err != nil {
		return nil, err
	}
	if err := png.Encode(fw, img); err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}
	if model != "" {
		if err := mw.WriteField("model", model); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := c.BaseURL + "/api/remove"
	if model != "" {
		endpoint += "?model=" + url.QueryEscape(model)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: status %s: %s", endpoint, resp.Status, strings.TrimSpace(string(msg)))
	}

	return imageio.Decode(resp.Body)
}

// hasTransparency reports whether any pixel is not fully opaque.
func hasTransparency(img *image.NRGBA) bool {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	for y := 0; y < h; y++ {
		row := y * img.Stride
		for x := 0; x < w; x++ {
			if img.Pix[row+x*4+3] != 255 {
				return true
			}
		}
	}
	return false
}
