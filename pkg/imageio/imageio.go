// Package imageio loads images from files, readers and URLs, and lists the
// image files below a directory.
//
// Every load path normalizes to *image.NRGBA with a zero-origin bounds
// rectangle. The conversion also guarantees an alpha channel exists: RGB
// sources come out fully opaque.
package imageio

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads and decodes an image from r into an NRGBA buffer.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return ToNRGBA(img), nil
}

// Open loads an image from a local file.
func Open(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Download fetches an image over HTTP(S) and decodes it. A non-2xx status is
// an error. The context bounds the whole transfer.
func Download(ctx context.Context, rawURL string) (*image.NRGBA, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return Decode(bytes.NewReader(data))
}

// ToNRGBA converts any image to a zero-origin NRGBA buffer. The input is
// returned as-is when it already has that shape.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// BaseName returns the file name without directory or extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// URLOutputName derives an output file stem from a URL's path component.
// URLs whose path has no usable stem get a generated unique name.
func URLOutputName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if stem := BaseName(u.Path); stem != "" && stem != "/" && stem != "." {
			return stem
		}
	}
	return ksuid.New().String()
}
