// Package auth implements face-gated enrollment and verification.
//
// Registration collects several face samples, embeds each through the
// external model and stores the element-wise mean as the user's reference
// descriptor. Login checks the password hash first and then requires the
// submitted face to land within a configured distance of the reference.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-vault/internal/config"
	"github.com/kozaktomas/face-vault/internal/database"
	"github.com/kozaktomas/face-vault/internal/database/postgres"
	"github.com/kozaktomas/face-vault/internal/facerec"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the stored hashes were created with.
const bcryptCost = 12

// dummyHash is compared against when the username does not exist, so the
// unknown-user and wrong-password paths take comparable time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("face-vault-timing-pad"), bcryptCost)

var (
	// ErrMissingFields means username, password or the face image is absent.
	ErrMissingFields = errors.New("missing required fields")

	// ErrImageCount means registration did not receive the required number of images.
	ErrImageCount = errors.New("wrong number of face images")

	// ErrUsernameTaken means the username is already registered.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords. The two must stay indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrFaceMismatch means the password matched but the submitted face is
	// too far from the enrolled reference descriptor.
	ErrFaceMismatch = errors.New("face not recognized")
)

// InsufficientFacesError reports how many of the enrollment images actually
// contained a detectable face.
type InsufficientFacesError struct {
	Detected int
	Required int
}

func (e *InsufficientFacesError) Error() string {
	return fmt.Sprintf("could only detect a face in %d of the %d images", e.Detected, e.Required)
}

// UserStore is the persistence interface the service needs.
type UserStore interface {
	Create(ctx context.Context, user *database.User) error
	GetByUsername(ctx context.Context, username string) (*database.User, error)
	Exists(ctx context.Context, username string) (bool, error)
}

// Service orchestrates enrollment and verification.
type Service struct {
	users     UserStore
	provider  facerec.Provider
	tokens    *TokenManager
	threshold float64
	samples   int
}

// NewService creates an auth service.
func NewService(users UserStore, provider facerec.Provider, tokens *TokenManager, cfg *config.Config) *Service {
	samples := cfg.Auth.SampleCount
	if samples <= 0 {
		samples = 5
	}
	return &Service{
		users:     users,
		provider:  provider,
		tokens:    tokens,
		threshold: cfg.Embedding.Threshold,
		samples:   samples,
	}
}

// SampleCount returns the number of face images registration requires.
func (s *Service) SampleCount() int {
	return s.samples
}

// Register enrolls a new user. All images must contain a detectable face;
// their descriptors are averaged into the stored reference. No token is
// issued, a separate login is required.
func (s *Service) Register(ctx context.Context, username, password string, images [][]byte) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingFields
	}
	if len(images) != s.samples {
		return ErrImageCount
	}

	taken, err := s.users.Exists(ctx, username)
	if err != nil {
		return fmt.Errorf("checking username: %w", err)
	}
	if taken {
		return ErrUsernameTaken
	}

	descriptors := make([][]float32, 0, s.samples)
	for i, img := range images {
		descriptor, err := s.provider.DetectAndEmbed(ctx, img)
		if errors.Is(err, facerec.ErrNoFaceDetected) {
			log.Printf("[auth] registration for %q: no face in sample %d", username, i+1)
			continue
		}
		if err != nil {
			return fmt.Errorf("embedding sample %d: %w", i+1, err)
		}
		descriptors = append(descriptors, descriptor)
	}

	if len(descriptors) != s.samples {
		return &InsufficientFacesError{Detected: len(descriptors), Required: s.samples}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user := &database.User{
		ID:            uuid.New(),
		Username:      username,
		PasswordHash:  string(hashed),
		FaceEmbedding: facerec.Average(descriptors),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, postgres.ErrUsernameTaken) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("creating user: %w", err)
	}

	log.Printf("[auth] user %q registered", username)
	return nil
}

// Login verifies the password and the face and returns a signed session
// token plus the username. Unknown usernames and wrong passwords both come
// back as ErrInvalidCredentials; face failures are reported separately
// because the password already matched at that point.
func (s *Service) Login(ctx context.Context, username, password string, image []byte) (string, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || len(image) == 0 {
		return "", "", ErrMissingFields
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, postgres.ErrUserNotFound) {
		// Burn a comparison anyway so the response time matches the
		// wrong-password path.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	descriptor, err := s.provider.DetectAndEmbed(ctx, image)
	if err != nil {
		// facerec.ErrNoFaceDetected and facerec.ErrInvalidImage pass
		// through for the handler to map; anything else is a provider fault.
		if errors.Is(err, facerec.ErrNoFaceDetected) || errors.Is(err, facerec.ErrInvalidImage) {
			return "", "", err
		}
		return "", "", fmt.Errorf("embedding login image: %w", err)
	}

	distance := facerec.EuclideanDistance(descriptor, user.FaceEmbedding)
	if distance > s.threshold {
		log.Printf("[auth] face mismatch for %q: distance %.4f > %.4f", username, distance, s.threshold)
		return "", "", ErrFaceMismatch
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", "", fmt.Errorf("issuing token: %w", err)
	}

	log.Printf("[auth] user %q authenticated (distance %.4f)", username, distance)
	return token, user.Username, nil
}
