// Package facerec talks to the external face-embedding server and provides
// the vector math used to enroll and verify faces. The detection and
// embedding model itself lives behind the Provider interface; this package
// never computes embeddings on its own.
package facerec

import (
	"context"
	"errors"
)

// Provider computes a face descriptor for an image.
type Provider interface {
	// DetectAndEmbed returns the descriptor of the single face found in the
	// image, or ErrNoFaceDetected when the model finds none.
	DetectAndEmbed(ctx context.Context, imageData []byte) ([]float32, error)
}

var (
	// ErrNoFaceDetected means the model processed the image but found no face.
	ErrNoFaceDetected = errors.New("no face detected in the image")

	// ErrInvalidImage means the uploaded bytes could not be decoded as an image.
	ErrInvalidImage = errors.New("could not decode image")
)
