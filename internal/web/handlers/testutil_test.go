package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kozaktomas/face-vault/internal/auth"
	"github.com/kozaktomas/face-vault/internal/config"
	"github.com/kozaktomas/face-vault/internal/database"
	"github.com/kozaktomas/face-vault/internal/database/postgres"
	"github.com/kozaktomas/face-vault/internal/facerec"
	"github.com/kozaktomas/face-vault/internal/web/middleware"
)

// testConfig creates a minimal config for testing.
func testConfig() *config.Config {
	return &config.Config{
		Embedding: config.EmbeddingConfig{Threshold: 0.55},
		Auth:      config.AuthConfig{SampleCount: 5, TokenTTL: time.Hour},
	}
}

// fakeUserStore is an in-memory auth.UserStore.
type fakeUserStore struct {
	users map[string]*database.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*database.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *database.User) error {
	if _, ok := f.users[user.Username]; ok {
		return postgres.ErrUsernameTaken
	}
	user.CreatedAt = time.Now()
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*database.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, postgres.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) Exists(ctx context.Context, username string) (bool, error) {
	_, ok := f.users[username]
	return ok, nil
}

// fakeProvider returns the same descriptor for every image, or an error.
type fakeProvider struct {
	descriptor []float32
	err        error
}

func (f *fakeProvider) DetectAndEmbed(ctx context.Context, imageData []byte) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.descriptor, nil
}

// flatDescriptor builds a 128-dim descriptor with the first element set.
func flatDescriptor(first float32) []float32 {
	d := make([]float32, 128)
	d[0] = first
	return d
}

// newTestAuthHandler wires an AuthHandler over in-memory fakes.
func newTestAuthHandler(store *fakeUserStore, provider facerec.Provider) (*AuthHandler, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	service := auth.NewService(store, provider, tokens, testConfig())
	return NewAuthHandler(service), tokens
}

// multipartAuthForm builds a multipart body with credentials and image files
// under the given field name.
func multipartAuthForm(t *testing.T, username, password, field string, imageCount int) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if username != "" {
		if err := writer.WriteField("username", username); err != nil {
			t.Fatalf("writing username field: %v", err)
		}
	}
	if password != "" {
		if err := writer.WriteField("password", password); err != nil {
			t.Fatalf("writing password field: %v", err)
		}
	}
	for i := 0; i < imageCount; i++ {
		part, err := writer.CreateFormFile(field, "capture.jpg")
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err := part.Write([]byte{0xff, 0xd8, byte(i)}); err != nil {
			t.Fatalf("writing form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	return &buf, writer.FormDataContentType()
}

// requestWithClaims creates a request carrying session claims, as the guard
// middleware would.
func requestWithClaims(method, path string, body io.Reader, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, path, body)
	claims := &auth.Claims{UserID: userID, Username: "alice"}
	return req.WithContext(middleware.SetClaimsInContext(req.Context(), claims))
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, want int) {
	t.Helper()
	if recorder.Code != want {
		t.Fatalf("expected status %d, got %d (body: %s)", want, recorder.Code, recorder.Body.String())
	}
}

func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("parsing response body %q: %v", recorder.Body.String(), err)
	}
}

func assertMessage(t *testing.T, recorder *httptest.ResponseRecorder, want string) {
	t.Helper()
	var body map[string]string
	parseJSONResponse(t, recorder, &body)
	if body["message"] != want {
		t.Errorf("expected message %q, got %q", want, body["message"])
	}
}

// fakeNoteStore is an in-memory NoteStore.
type fakeNoteStore struct {
	notes []database.Note
	err   error
}

func (f *fakeNoteStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]database.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	var owned []database.Note
	for i := len(f.notes) - 1; i >= 0; i-- { // newest first
		if f.notes[i].OwnerID == ownerID {
			owned = append(owned, f.notes[i])
		}
	}
	return owned, nil
}

func (f *fakeNoteStore) Create(ctx context.Context, note *database.Note) error {
	if f.err != nil {
		return f.err
	}
	note.CreatedAt = time.Now()
	note.UpdatedAt = note.CreatedAt
	f.notes = append(f.notes, *note)
	return nil
}

func (f *fakeNoteStore) Update(ctx context.Context, id, ownerID uuid.UUID, title, content string) (*database.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.notes {
		if f.notes[i].ID == id && f.notes[i].OwnerID == ownerID {
			f.notes[i].Title = title
			f.notes[i].Content = content
			f.notes[i].UpdatedAt = time.Now()
			note := f.notes[i]
			return &note, nil
		}
	}
	return nil, postgres.ErrNoteNotFound
}

func (f *fakeNoteStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	for i := range f.notes {
		if f.notes[i].ID == id && f.notes[i].OwnerID == ownerID {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return postgres.ErrNoteNotFound
}

var errStorage = errors.New("storage failure")
