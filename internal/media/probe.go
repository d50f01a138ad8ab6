package media

import (
	"bytes"
	"fmt"
	"image"

	// Decoder registrations for image.DecodeConfig covering all accepted
	// extensions.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Dimensions reads the pixel size from the image header without decoding
// the full image. Used for progress display only; callers treat failure as
// "dimensions unknown", never as a processing error.
func (p *Payload) Dimensions() (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(p.raw))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
