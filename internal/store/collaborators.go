package store

import (
	"context"
	"fmt"

	"scrapbookAPI/internal/scrapbook"
)

const collaboratorColumns = "id, scrapbook_id, user_id, email, role, invited_by, created_at"

func scanCollaborator(r row) (*scrapbook.Collaborator, error) {
	var c scrapbook.Collaborator
	if err := r.Scan(&c.ID, &c.ScrapbookID, &c.UserID, &c.Email, &c.Role, &c.InvitedBy, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// AddCollaborator inserts c. A second row for the same scrapbook and user is
// ErrConflict.
func (s *Store) AddCollaborator(ctx context.Context, c *scrapbook.Collaborator) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now()
	}
	_, err := s.db.Exec(ctx, "INSERT INTO scrapbook_collaborators ("+collaboratorColumns+") VALUES ("+placeholders(7)+")",
		c.ID, c.ScrapbookID, c.UserID, c.Email, string(c.Role), c.InvitedBy, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}
	return nil
}

func (s *Store) GetCollaborator(ctx context.Context, id string) (*scrapbook.Collaborator, error) {
	c, err := scanCollaborator(s.db.QueryRow(ctx, "SELECT "+collaboratorColumns+" FROM scrapbook_collaborators WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("collaborator %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) RemoveCollaborator(ctx context.Context, id string) error {
	n, err := s.db.Exec(ctx, "DELETE FROM scrapbook_collaborators WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("collaborator %s: %w", id, scrapbook.ErrNotFound)
	}
	return nil
}

func (s *Store) ListCollaborators(ctx context.Context, scrapbookID string) ([]scrapbook.Collaborator, error) {
	r, err := s.db.Query(ctx, "SELECT "+collaboratorColumns+" FROM scrapbook_collaborators WHERE scrapbook_id = ? ORDER BY created_at ASC, id ASC", scrapbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	defer r.Close()
	out := []scrapbook.Collaborator{}
	for r.Next() {
		c, err := scanCollaborator(r)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		out = append(out, *c)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	return out, nil
}

// CollaboratorRole returns userID's role on the scrapbook, or "" when the user
// is not a collaborator.
func (s *Store) CollaboratorRole(ctx context.Context, scrapbookID, userID string) (scrapbook.Role, error) {
	if userID == "" {
		return "", nil
	}
	var role scrapbook.Role
	err := s.db.QueryRow(ctx, "SELECT role FROM scrapbook_collaborators WHERE scrapbook_id = ? AND user_id = ?",
		scrapbookID, userID).Scan(&role)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read collaborator role: %w", err)
	}
	return role, nil
}
