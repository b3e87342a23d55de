package store

import (
	"context"
	"fmt"

	"scrapbookAPI/internal/scrapbook"
)

// UpsertUser mirrors an identity-provider user into the users table.
func (s *Store) UpsertUser(ctx context.Context, u *scrapbook.User) error {
	ts := now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = ts
	}
	u.UpdatedAt = ts
	_, err := s.db.Exec(ctx, `INSERT INTO users (id, email, display_name, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET email = excluded.email, display_name = excluded.display_name,
			image_url = excluded.image_url, updated_at = excluded.updated_at`,
		u.ID, u.Email, u.DisplayName, u.ImageURL, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// DeleteUser removes the user row. Deleting an unknown user is not an error.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// FindUserByEmail matches the address case-insensitively.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*scrapbook.User, error) {
	var u scrapbook.User
	err := s.db.QueryRow(ctx, `SELECT id, email, display_name, image_url, created_at, updated_at
		FROM users WHERE LOWER(email) = LOWER(?) ORDER BY created_at ASC LIMIT 1`, email).Scan(
		&u.ID, &u.Email, &u.DisplayName, &u.ImageURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", email, err)
	}
	return &u, nil
}
