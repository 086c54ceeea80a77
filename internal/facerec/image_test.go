package facerec

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTestJPEG encodes a plain image of the given size.
func makeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestPrepareImage_SmallImagePassesThrough(t *testing.T) {
	data := makeTestJPEG(t, 320, 240)

	out, err := PrepareImage(data)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestPrepareImage_LargeImageDownscaled(t *testing.T) {
	data := makeTestJPEG(t, 1920, 1080)

	out, err := PrepareImage(data)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 360, img.Bounds().Dy())
}

func TestPrepareImage_PortraitKeepsAspectRatio(t *testing.T) {
	data := makeTestJPEG(t, 720, 1280)

	out, err := PrepareImage(data)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 360, img.Bounds().Dx())
	assert.Equal(t, 640, img.Bounds().Dy())
}

func TestPrepareImage_InvalidData(t *testing.T) {
	_, err := PrepareImage([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}
