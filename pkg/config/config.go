// Package config defines the tunable knobs for a normalization run.
//
// All configuration is read once at startup from the environment and held in
// an immutable Config value that is passed explicitly into every component;
// no component reads the environment (or any other global state) after
// FromEnv returns.
package config

import (
	"os"
	"strconv"
	"time"
)

// Environment keys recognized by FromEnv.
const (
	EnvSize            = "SIZE"
	EnvPad             = "PAD"
	EnvVerticalBias    = "VBIAS"
	EnvAlphaThreshold  = "ATHRESH"
	EnvHighQuality     = "HQ"
	EnvSmoothThreshold = "SMOOTH_THRESH"
	EnvSmoothBlur      = "SMOOTH_BLUR"
	EnvQuality         = "QUALITY"
	EnvAlphaQuality    = "AQUALITY"
	EnvEffort          = "EFFORT"
	EnvRembgURL        = "REMBG_URL"
	EnvRembgModel      = "REMBG_MODEL"
	EnvRembgHQModel    = "REMBG_HQ_MODEL"
	EnvRembgTimeout    = "REMBG_TIMEOUT"
)

// Config holds every knob for the pipeline.
type Config struct {
	// Size is the output canvas edge length in pixels.
	Size int
	// Pad is the fraction of the canvas edge reserved as empty border on
	// each side of the scaled content.
	Pad float64
	// VerticalBias shifts the placed subject vertically by this fraction of
	// the canvas edge. Negative values shift up.
	VerticalBias float64

	// AlphaThreshold is the alpha value a pixel must strictly exceed to
	// count as foreground during analysis.
	AlphaThreshold uint8

	// HighQuality selects the high-accuracy removal tier and enables alpha
	// smoothing.
	HighQuality bool
	// SmoothThreshold binarizes the blurred alpha mask.
	SmoothThreshold uint8
	// SmoothSigma is the Gaussian blur sigma applied to the alpha mask
	// before binarization.
	SmoothSigma float64

	// Quality is the lossy WebP quality (0-100).
	Quality int
	// AlphaQuality is the alpha-channel encode quality (0-100).
	AlphaQuality int
	// Effort is the encoder speed/size trade-off (0 fastest - 6 smallest).
	Effort int

	// RembgURL is the base URL of a rembg-compatible removal service.
	// Empty means background removal is skipped (inputs are treated as
	// already matted).
	RembgURL string
	// RembgModel and RembgHQModel name the models used by the fast and
	// high-quality tiers.
	RembgModel   string
	RembgHQModel string
	// RembgTimeout bounds each removal call and each URL download.
	RembgTimeout time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Size:            2000,
		Pad:             0.05,
		VerticalBias:    0,
		AlphaThreshold:  16,
		HighQuality:     false,
		SmoothThreshold: 180,
		SmoothSigma:     1.2,
		Quality:         82,
		AlphaQuality:    80,
		Effort:          6,
		RembgURL:        "",
		RembgModel:      "u2net",
		RembgHQModel:    "birefnet-general",
		RembgTimeout:    60 * time.Second,
	}
}

// FromEnv builds a Config from the environment, falling back to Default for
// unset or unparseable values. Out-of-range numbers are clamped rather than
// rejected so a stray value cannot abort a batch.
func FromEnv() Config {
	c := Default()

	c.Size = envInt(EnvSize, c.Size, 1, 16383)
	c.Pad = envFloat(EnvPad, c.Pad, 0, 0.49)
	c.VerticalBias = envFloat(EnvVerticalBias, c.VerticalBias, -1, 1)
	c.AlphaThreshold = envByte(EnvAlphaThreshold, c.AlphaThreshold)
	c.HighQuality = envBool(EnvHighQuality, c.HighQuality)
	c.SmoothThreshold = envByte(EnvSmoothThreshold, c.SmoothThreshold)
	c.SmoothSigma = envFloat(EnvSmoothBlur, c.SmoothSigma, 0, 100)
	c.Quality = envInt(EnvQuality, c.Quality, 0, 100)
	c.AlphaQuality = envInt(EnvAlphaQuality, c.AlphaQuality, 0, 100)
	c.Effort = envInt(EnvEffort, c.Effort, 0, 6)

	if v := os.Getenv(EnvRembgURL); v != "" {
		c.RembgURL = v
	}
	if v := os.Getenv(EnvRembgModel); v != "" {
		c.RembgModel = v
	}
	if v := os.Getenv(EnvRembgHQModel); v != "" {
		c.RembgHQModel = v
	}
	if v := os.Getenv(EnvRembgTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.RembgTimeout = d
		}
	}

	return c
}

func envInt(key string, def, min, max int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func envFloat(key string, def, min, max float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}

func envByte(key string, def uint8) uint8 {
	return uint8(envInt(key, int(def), 0, 255))
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}
