package services

import (
	"context"
	"fmt"
	"strings"

	"scrapbookAPI/internal/scrapbook"
	"scrapbookAPI/internal/store"
)

type need int

const (
	needView need = iota
	needEdit
	needOwner
)

// authorize loads the scrapbook row and checks what callerID may do with it.
// A scrapbook the caller cannot see is reported as not found so private
// scrapbooks are indistinguishable from missing ones.
func authorize(ctx context.Context, st *store.Store, callerID, id string, level need) (*scrapbook.Scrapbook, scrapbook.Access, error) {
	if level > needView && strings.TrimSpace(callerID) == "" {
		return nil, scrapbook.Access{}, scrapbook.ErrUnauthorized
	}
	sb, err := st.GetScrapbook(ctx, id)
	if err != nil {
		return nil, scrapbook.Access{}, err
	}
	var role scrapbook.Role
	if callerID != "" && callerID != sb.UserID {
		role, err = st.CollaboratorRole(ctx, id, callerID)
		if err != nil {
			return nil, scrapbook.Access{}, err
		}
	}
	access := scrapbook.AccessFor(sb, callerID, role)
	switch {
	case !access.View:
		return nil, access, fmt.Errorf("scrapbook %s not found or private: %w", id, scrapbook.ErrNotFound)
	case level == needEdit && !access.Edit:
		return nil, access, fmt.Errorf("scrapbook %s is read-only for this user: %w", id, scrapbook.ErrForbidden)
	case level == needOwner && !access.Owner:
		return nil, access, fmt.Errorf("only the owner may do this: %w", scrapbook.ErrForbidden)
	}
	return sb, access, nil
}

func requireCaller(callerID string) error {
	if strings.TrimSpace(callerID) == "" {
		return scrapbook.ErrUnauthorized
	}
	return nil
}
