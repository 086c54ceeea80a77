// Package database defines the stored types shared by the repositories.
package database

import (
	"time"

	"github.com/google/uuid"
)

// User represents an enrolled account.
type User struct {
	ID            uuid.UUID
	Username      string
	PasswordHash  string
	FaceEmbedding []float32 // reference descriptor, mean of the enrollment samples
	CreatedAt     time.Time
}

// Note represents an owned text record.
type Note struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
