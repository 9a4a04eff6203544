// Package qrx renders provisioning URIs as PNG QR codes.
package qrx

import (
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the image edge length in pixels when none is configured.
const DefaultSize = 256

// ErrEmptyContent is returned when there is nothing to encode.
var ErrEmptyContent = errors.New("qrx: content cannot be empty")

// Renderer encodes text as a square PNG QR code.
type Renderer struct {
	Size  int
	Level skipqrcode.RecoveryLevel
}

// New returns a Renderer producing size x size images at medium error
// correction. Non-positive sizes fall back to DefaultSize.
func New(size int) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{Size: size, Level: skipqrcode.Medium}
}

// PNG returns the encoded image bytes for content.
func (r *Renderer) PNG(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	png, err := skipqrcode.Encode(content, r.Level, r.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
