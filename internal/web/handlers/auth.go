package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/kozaktomas/face-vault/internal/auth"
	"github.com/kozaktomas/face-vault/internal/facerec"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// LoginResponse is the successful login payload.
type LoginResponse struct {
	Message string `json:"message"`
	User    string `json:"user"`
	Token   string `json:"token"`
}

// readUploadedImage reads one multipart image into memory.
func readUploadedImage(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening uploaded file %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading uploaded file %s: %w", header.Filename, err)
	}
	return data, nil
}

// Register enrolls a new user from a multipart form carrying username,
// password and the required number of face images under the "images" field.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	required := h.service.SampleCount()
	provideMsg := fmt.Sprintf("Please provide username, password, and %d face images.", required)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondMessage(w, http.StatusBadRequest, provideMsg)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	files := r.MultipartForm.File["images"]

	// Any other image count is a validation failure, never truncated or padded.
	if username == "" || password == "" || len(files) != required {
		respondMessage(w, http.StatusBadRequest, provideMsg)
		return
	}

	images := make([][]byte, 0, required)
	for _, header := range files {
		data, err := readUploadedImage(header)
		if err != nil {
			log.Printf("[web] registration upload error: %v", err)
			respondMessage(w, http.StatusInternalServerError, "Server error during registration.")
			return
		}
		images = append(images, data)
	}

	err := h.service.Register(r.Context(), username, password, images)
	if err != nil {
		var insufficient *auth.InsufficientFacesError
		switch {
		case errors.Is(err, auth.ErrMissingFields), errors.Is(err, auth.ErrImageCount):
			respondMessage(w, http.StatusBadRequest, provideMsg)
		case errors.Is(err, auth.ErrUsernameTaken):
			respondMessage(w, http.StatusBadRequest, "Username is already taken.")
		case errors.As(err, &insufficient):
			respondMessage(w, http.StatusBadRequest, fmt.Sprintf(
				"Could only detect a face in %d of the %d images. Please try again.",
				insufficient.Detected, insufficient.Required))
		case errors.Is(err, facerec.ErrInvalidImage):
			respondMessage(w, http.StatusBadRequest, "Could not decode one of the images.")
		default:
			log.Printf("[web] registration error for %q: %v", sanitizeForLog(username), err)
			respondMessage(w, http.StatusInternalServerError, "Server error during registration.")
		}
		return
	}

	respondMessage(w, http.StatusCreated, "User registered successfully! You can now log in.")
}

// Login verifies username, password and a single face image and returns a
// session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondMessage(w, http.StatusBadRequest, "Username, password, and face image are required.")
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	files := r.MultipartForm.File["image"]

	if username == "" || password == "" || len(files) != 1 {
		respondMessage(w, http.StatusBadRequest, "Username, password, and face image are required.")
		return
	}

	image, err := readUploadedImage(files[0])
	if err != nil {
		log.Printf("[web] login upload error: %v", err)
		respondMessage(w, http.StatusInternalServerError, "Server error during login.")
		return
	}

	token, user, err := h.service.Login(r.Context(), username, password, image)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			respondMessage(w, http.StatusBadRequest, "Username, password, and face image are required.")
		case errors.Is(err, auth.ErrInvalidCredentials):
			// Unknown username and wrong password share this response.
			respondMessage(w, http.StatusUnauthorized, "Authentication failed: Invalid credentials.")
		case errors.Is(err, facerec.ErrNoFaceDetected):
			respondMessage(w, http.StatusBadRequest, "No face detected in the image.")
		case errors.Is(err, facerec.ErrInvalidImage):
			respondMessage(w, http.StatusBadRequest, "Could not decode image.")
		case errors.Is(err, auth.ErrFaceMismatch):
			respondMessage(w, http.StatusUnauthorized, "Authentication failed: Face not recognized.")
		default:
			log.Printf("[web] login error for %q: %v", sanitizeForLog(username), err)
			respondMessage(w, http.StatusInternalServerError, "Server error during login.")
		}
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{
		Message: fmt.Sprintf("Welcome back, %s!", user),
		User:    user,
		Token:   token,
	})
}
