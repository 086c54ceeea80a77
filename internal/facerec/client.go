package facerec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/face-vault/internal/config"
)

const (
	defaultServerURL = "http://localhost:8000"
	defaultModel     = "facenet"
)

// Client computes face descriptors using the face-embedding server.
type Client struct {
	baseURL string
	model   string
	dim     int
	client  *http.Client
}

var _ Provider = (*Client)(nil)

// NewClient creates a new embedding server client.
func NewClient(cfg *config.EmbeddingConfig) *Client {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = defaultServerURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		dim:     cfg.Dim,
		client:  &http.Client{Timeout: timeout},
	}
}

// detectResponse represents the response from the embedding server.
type detectResponse struct {
	FaceFound  bool      `json:"face_found"`
	Dim        int       `json:"dim"`
	Descriptor []float32 `json:"descriptor"`
	Model      string    `json:"model"`
}

// postMultipartImage constructs a multipart form with the image data and
// posts it to the given endpoint.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	query := req.URL.Query()
	query.Set("model", c.model)
	req.URL.RawQuery = query.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// DetectAndEmbed prepares the image, sends it to the embedding server and
// returns the descriptor of the detected face. Returns ErrNoFaceDetected
// when the model finds no face and ErrInvalidImage when the bytes cannot be
// decoded.
func (c *Client) DetectAndEmbed(ctx context.Context, imageData []byte) ([]float32, error) {
	prepared, err := PrepareImage(imageData)
	if err != nil {
		return nil, err
	}

	body, err := c.postMultipartImage(ctx, "/detect/face", prepared)
	if err != nil {
		return nil, err
	}

	var detResp detectResponse
	if err := json.Unmarshal(body, &detResp); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}

	if !detResp.FaceFound || len(detResp.Descriptor) == 0 {
		return nil, ErrNoFaceDetected
	}

	if c.dim > 0 && len(detResp.Descriptor) != c.dim {
		return nil, fmt.Errorf("embedding server returned %d-dim descriptor, expected %d",
			len(detResp.Descriptor), c.dim)
	}

	return detResp.Descriptor, nil
}
