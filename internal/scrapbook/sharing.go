package scrapbook

import (
	"strings"
	"time"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ParseRole accepts owner, editor or viewer in any case.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleOwner, RoleEditor, RoleViewer:
		return r, nil
	}
	return "", invalid("role", "must be one of owner, editor, viewer")
}

type Collaborator struct {
	ID          string    `json:"id"`
	ScrapbookID string    `json:"scrapbook_id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	InvitedBy   string    `json:"invited_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Access is what a caller may do with a scrapbook.
type Access struct {
	View  bool
	Edit  bool
	Owner bool
}

// AccessFor derives the caller's access from ownership, collaborator role
// (empty when none) and visibility.
func AccessFor(s *Scrapbook, callerID string, role Role) Access {
	if callerID != "" && callerID == s.UserID {
		return Access{View: true, Edit: true, Owner: true}
	}
	switch role {
	case RoleOwner:
		return Access{View: true, Edit: true, Owner: true}
	case RoleEditor:
		return Access{View: true, Edit: true}
	case RoleViewer:
		return Access{View: true}
	}
	return Access{View: s.IsPublic}
}

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Template is a pre-built page tree used to seed new scrapbooks.
type Template struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ThumbnailURL string    `json:"thumbnail_url"`
	PageWidth    float64   `json:"page_width"`
	PageHeight   float64   `json:"page_height"`
	PageSizeName string    `json:"page_size_name"`
	Pages        []Page    `json:"pages,omitempty"`
	UseCount     int64     `json:"use_count"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}
