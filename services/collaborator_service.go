package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"scrapbookAPI/internal/scrapbook"
	"scrapbookAPI/internal/store"
)

type CollaboratorService struct {
	store *store.Store
}

func NewCollaboratorService(st *store.Store) *CollaboratorService {
	return &CollaboratorService{
		store: st,
	}
}

// InviteResult is the outcome of adding a collaborator. An email with no
// account yet is a pending invitation and creates no row.
type InviteResult struct {
	Pending      bool                    `json:"pending"`
	Email        string                  `json:"email"`
	Collaborator *scrapbook.Collaborator `json:"collaborator,omitempty"`
}

// Add invites email to the scrapbook with role. Only the owner (or an
// owner-role collaborator) may invite.
func (s *CollaboratorService) Add(ctx context.Context, callerID, id, email, role string) (*InviteResult, error) {
	sb, _, err := authorize(ctx, s.store, callerID, id, needOwner)
	if err != nil {
		return nil, err
	}
	r, err := scrapbook.ParseRole(role)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, &scrapbook.ValidationError{Field: "email", Message: "must be an email address"}
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, scrapbook.ErrNotFound) {
		return &InviteResult{Pending: true, Email: email}, nil
	}
	if err != nil {
		return nil, err
	}
	if user.ID == sb.UserID {
		return nil, fmt.Errorf("%s already owns this scrapbook: %w", email, scrapbook.ErrConflict)
	}

	c := &scrapbook.Collaborator{
		ID:          uuid.New().String(),
		ScrapbookID: id,
		UserID:      user.ID,
		Email:       user.Email,
		Role:        r,
		InvitedBy:   callerID,
	}
	if err := s.store.AddCollaborator(ctx, c); err != nil {
		if errors.Is(err, scrapbook.ErrConflict) {
			return nil, fmt.Errorf("%s is already a collaborator: %w", user.Email, scrapbook.ErrConflict)
		}
		return nil, err
	}
	return &InviteResult{Email: user.Email, Collaborator: c}, nil
}

// Remove deletes a collaborator row. The scrapbook owner may remove anyone;
// collaborators may remove themselves.
func (s *CollaboratorService) Remove(ctx context.Context, callerID, collaboratorID string) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}
	c, err := s.store.GetCollaborator(ctx, collaboratorID)
	if err != nil {
		return err
	}
	if c.UserID != callerID {
		if _, _, err := authorize(ctx, s.store, callerID, c.ScrapbookID, needOwner); err != nil {
			return err
		}
	}
	return s.store.RemoveCollaborator(ctx, collaboratorID)
}

// List returns the collaborators to the owner and to other collaborators.
func (s *CollaboratorService) List(ctx context.Context, callerID, id string) ([]scrapbook.Collaborator, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	sb, access, err := authorize(ctx, s.store, callerID, id, needView)
	if err != nil {
		return nil, err
	}
	if !access.Owner && !access.Edit && sb.IsPublic {
		role, err := s.store.CollaboratorRole(ctx, id, callerID)
		if err != nil {
			return nil, err
		}
		if role == "" {
			return nil, fmt.Errorf("collaborators of %s: %w", id, scrapbook.ErrForbidden)
		}
	}
	return s.store.ListCollaborators(ctx, id)
}
