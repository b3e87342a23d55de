package services

import (
	"context"
	"fmt"
	"strings"

	"scrapbookAPI/internal/scrapbook"
	"scrapbookAPI/internal/store"
)

// UserService mirrors Clerk users locally so collaborator invites can be
// resolved by email.
type UserService struct {
	store *store.Store
}

func NewUserService(st *store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) SyncUser(ctx context.Context, u *scrapbook.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return &scrapbook.ValidationError{Field: "id", Message: "required"}
	}
	u.Email = strings.TrimSpace(u.Email)
	if err := s.store.UpsertUser(ctx, u); err != nil {
		return fmt.Errorf("failed to sync user %s: %w", u.ID, err)
	}
	return nil
}

// DeleteUser forgets the user. Their scrapbooks are kept.
func (s *UserService) DeleteUser(ctx context.Context, clerkID string) error {
	return s.store.DeleteUser(ctx, clerkID)
}
