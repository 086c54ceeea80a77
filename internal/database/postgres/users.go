package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-vault/internal/database"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

var (
	// ErrUsernameTaken means the username is already registered.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrUserNotFound means no user exists with the given username.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository provides PostgreSQL-backed user storage. The reference face
// descriptor is stored in a pgvector column.
type UserRepository struct {
	pool *Pool
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(pool *Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user. Returns ErrUsernameTaken when the username is
// already registered.
func (r *UserRepository) Create(ctx context.Context, user *database.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, face_embedding)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	vec := pgvector.NewVector(user.FaceEmbedding)
	err := r.pool.QueryRow(ctx, query, user.ID, user.Username, user.PasswordHash, vec).
		Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by username. Returns ErrUserNotFound when
// no such user exists.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*database.User, error) {
	query := `
		SELECT id, username, password_hash, face_embedding, created_at
		FROM users
		WHERE username = $1
	`

	var (
		user database.User
		vec  pgvector.Vector
	)
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&vec,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	user.FaceEmbedding = vec.Slice()
	return &user, nil
}

// Exists checks whether a username is already registered.
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// Count returns the total number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
