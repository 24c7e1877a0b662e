// Package server exposes the normalization pipeline over HTTP for callers
// that cannot shell out to the batch CLI.
package server

import (
	"errors"
	"image"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"

	normalizer "github.com/menta2k/photo-normalizer"
	"github.com/menta2k/photo-normalizer/pkg/imageio"
)

// New builds the HTTP engine.
//
// POST /normalize accepts either a multipart upload under the "file" field
// or a "url" query parameter, and responds with the normalized image as
// image/webp. Every response carries an X-Request-ID header.
func New(n *normalizer.Normalizer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestID())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": normalizer.Version})
	})

	r.POST("/normalize", func(c *gin.Context) {
		img, err := loadRequestImage(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		canvas, report, err := n.Process(c.Request.Context(), img)
		if err != nil {
			log.Printf("[%s] processing failed: %v", c.GetString(requestIDKey), err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		c.Header("X-Removal-Tier", report.Tier.String())
		c.Header("Content-Type", "image/webp")
		c.Status(http.StatusOK)
		if err := n.EncodeTo(c.Writer, canvas); err != nil {
			log.Printf("[%s] encode failed: %v", c.GetString(requestIDKey), err)
		}
	})

	return r
}

const requestIDKey = "request_id"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ksuid.New().String()
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// loadRequestImage decodes the request's image from the multipart "file"
// field, or downloads it when only a "url" parameter is given.
func loadRequestImage(c *gin.Context) (*image.NRGBA, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return imageio.Decode(f)
	}

	if rawURL := c.Query("url"); rawURL != "" {
		return imageio.Download(c.Request.Context(), rawURL)
	}

	return nil, errors.New("provide a multipart \"file\" upload or a \"url\" parameter")
}
