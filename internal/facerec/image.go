package facerec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// maxImageEdge bounds the longer edge of images sent to the embedding server.
// Camera captures are much larger than the model input and downscaling them
// keeps upload sizes predictable.
const maxImageEdge = 640

// PrepareImage decodes uploaded image bytes, downscales them to fit within
// maxImageEdge while keeping aspect ratio, and re-encodes as JPEG.
// Returns ErrInvalidImage when the bytes are not a decodable image.
func PrepareImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxImageEdge && height <= maxImageEdge {
		// Re-encode as JPEG to ensure consistent format.
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
		return buf.Bytes(), nil
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxImageEdge
		newHeight = int(float64(height) * float64(maxImageEdge) / float64(width))
	} else {
		newHeight = maxImageEdge
		newWidth = int(float64(width) * float64(maxImageEdge) / float64(height))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}
