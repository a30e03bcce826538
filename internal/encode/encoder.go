// Package encode implements the tile image encoders the rest of the module
// hands flushed surface pixels to: PNG via the standard library, JPEG via
// the standard library, and WebP via native libwebp through CGo (falling
// back to a clear error when CGo is unavailable), stripped of the
// PMTiles-archive-specific tile type tagging and terrain-elevation encoding
// that had no counterpart left in this module once the PMTiles writer was
// retired (see DESIGN.md).
package encode

import (
	"fmt"
	"image"
)

// Encoder encodes an image into tile bytes for one wire format.
type Encoder interface {
	// Encode encodes an image to bytes in the tile format.
	Encode(img image.Image) ([]byte, error)

	// Format returns the format name (e.g. "jpeg", "png", "webp").
	Format() string

	// FileExtension returns the appropriate file extension.
	FileExtension() string
}

// NewEncoder creates an encoder for the given format and quality (ignored by
// formats that don't use it).
func NewEncoder(format string, quality int) (Encoder, error) {
	switch format {
	case "jpeg", "jpg":
		return &JPEGEncoder{Quality: quality}, nil
	case "png":
		return &PNGEncoder{}, nil
	case "webp":
		return newWebPEncoder(quality)
	default:
		return nil, fmt.Errorf("unsupported tile format: %q (supported: jpeg, png, webp)", format)
	}
}
