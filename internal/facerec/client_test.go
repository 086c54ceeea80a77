package facerec

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kozaktomas/face-vault/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEmbeddingConfig(url string) *config.EmbeddingConfig {
	return &config.EmbeddingConfig{
		URL:     url,
		Model:   "facenet",
		Dim:     4,
		Timeout: 5 * time.Second,
	}
}

func TestClient_DetectAndEmbed_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/detect/face", r.URL.Path)
		require.Equal(t, "facenet", r.URL.Query().Get("model"))
		require.NoError(t, r.ParseMultipartForm(32<<20))
		require.NotNil(t, r.MultipartForm.File["file"])

		json.NewEncoder(w).Encode(detectResponse{
			FaceFound:  true,
			Dim:        4,
			Descriptor: []float32{0.1, 0.2, 0.3, 0.4},
			Model:      "facenet",
		})
	}))
	defer server.Close()

	client := NewClient(testEmbeddingConfig(server.URL))
	descriptor, err := client.DetectAndEmbed(context.Background(), makeTestJPEG(t, 100, 100))

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, descriptor)
}

func TestClient_DetectAndEmbed_NoFace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(detectResponse{FaceFound: false})
	}))
	defer server.Close()

	client := NewClient(testEmbeddingConfig(server.URL))
	_, err := client.DetectAndEmbed(context.Background(), makeTestJPEG(t, 100, 100))

	assert.ErrorIs(t, err, ErrNoFaceDetected)
}

func TestClient_DetectAndEmbed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testEmbeddingConfig(server.URL))
	_, err := client.DetectAndEmbed(context.Background(), makeTestJPEG(t, 100, 100))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFaceDetected)
}

func TestClient_DetectAndEmbed_DimMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(detectResponse{
			FaceFound:  true,
			Dim:        2,
			Descriptor: []float32{0.1, 0.2},
		})
	}))
	defer server.Close()

	client := NewClient(testEmbeddingConfig(server.URL))
	_, err := client.DetectAndEmbed(context.Background(), makeTestJPEG(t, 100, 100))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 4")
}

func TestClient_DetectAndEmbed_InvalidImage(t *testing.T) {
	client := NewClient(testEmbeddingConfig("http://localhost:1"))
	_, err := client.DetectAndEmbed(context.Background(), []byte("junk"))

	assert.ErrorIs(t, err, ErrInvalidImage)
}
