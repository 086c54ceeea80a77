package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-vault/internal/database"
)

// ErrNoteNotFound is returned when no note matches both the id and the
// owner. A note owned by someone else and a nonexistent note are
// deliberately indistinguishable.
var ErrNoteNotFound = errors.New("note not found")

// NoteRepository provides PostgreSQL-backed note storage. Every query is
// scoped to the owner so notes never leak across accounts.
type NoteRepository struct {
	pool *Pool
}

// NewNoteRepository creates a new PostgreSQL note repository.
func NewNoteRepository(pool *Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

// ListByOwner returns all notes for an owner, newest first.
func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]database.Note, error) {
	query := `
		SELECT id, owner_id, title, content, created_at, updated_at
		FROM notes
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// Create inserts a new note for the owner.
func (r *NoteRepository) Create(ctx context.Context, note *database.Note) error {
	query := `
		INSERT INTO notes (id, owner_id, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, note.ID, note.OwnerID, note.Title, note.Content).
		Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// Update replaces the title and content of a note. The statement matches id
// and owner together; zero matched rows surface as ErrNoteNotFound.
func (r *NoteRepository) Update(ctx context.Context, id, ownerID uuid.UUID, title, content string) (*database.Note, error) {
	query := `
		UPDATE notes
		SET title = $3, content = $4, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, title, content, created_at, updated_at
	`

	var note database.Note
	err := r.pool.QueryRow(ctx, query, id, ownerID, title, content).Scan(
		&note.ID,
		&note.OwnerID,
		&note.Title,
		&note.Content,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return &note, nil
}

// Delete removes a note. The statement matches id and owner together; zero
// deleted rows surface as ErrNoteNotFound.
func (r *NoteRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// scanNotes reads note rows into a slice.
func scanNotes(rows *sql.Rows) ([]database.Note, error) {
	var notes []database.Note
	for rows.Next() {
		var note database.Note
		if err := rows.Scan(
			&note.ID,
			&note.OwnerID,
			&note.Title,
			&note.Content,
			&note.CreatedAt,
			&note.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}
