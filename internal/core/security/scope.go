// Package security provides the site-scope authorization boundary.
//
// Admins see and mutate everything. Site managers are restricted to the projects
// listed in their assignedSites; every site-facing query filters by the scope and
// every site-facing mutation calls RequireProject before touching data.
package security

import (
	"context"
	"slices"

	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/id"
)

// AccessScope defines the boundaries of data visibility for the current request.
type AccessScope struct {
	UserID  string
	Role    string
	IsAdmin bool

	// AllowedSites limits access to specific projects. Empty = no access (unless IsAdmin).
	AllowedSites []id.ID
}

// NewAccessScope builds the scope from the authenticated user in ctx.
// A request without a user gets an empty scope that allows nothing.
func NewAccessScope(ctx context.Context) *AccessScope {
	user := appctx.GetUser(ctx)
	if user == nil {
		return &AccessScope{}
	}
	return &AccessScope{
		UserID:       user.UserID,
		Role:         user.Role,
		IsAdmin:      user.IsAdmin(),
		AllowedSites: id.ParseAll(user.AssignedSites),
	}
}

// Restricted reports whether queries must be filtered by AllowedSites.
func (s *AccessScope) Restricted() bool {
	return !s.IsAdmin
}

// CanAccessProject checks if the user can read or write data owned by projectID.
func (s *AccessScope) CanAccessProject(projectID id.ID) bool {
	if s.IsAdmin {
		return true
	}
	return slices.Contains(s.AllowedSites, projectID)
}

// RequireProject returns a Forbidden error when projectID is outside the scope.
func (s *AccessScope) RequireProject(projectID id.ID) error {
	if !s.CanAccessProject(projectID) {
		return apperror.NewForbidden("project is not assigned to you").
			WithDetail("project_id", projectID.String())
	}
	return nil
}

// FilterProjects returns the intersection of requested and allowed projects.
// An empty request means "everything I may see".
func (s *AccessScope) FilterProjects(requested []id.ID) []id.ID {
	if s.IsAdmin {
		return requested
	}
	if len(requested) == 0 {
		return s.AllowedSites
	}
	result := make([]id.ID, 0, len(requested))
	for _, p := range requested {
		if slices.Contains(s.AllowedSites, p) {
			result = append(result, p)
		}
	}
	return result
}

type scopeKey struct{}

// WithScope adds AccessScope to context.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns the AccessScope stored in ctx, deriving it from the user when absent.
func GetScope(ctx context.Context) *AccessScope {
	if s, ok := ctx.Value(scopeKey{}).(*AccessScope); ok && s != nil {
		return s
	}
	return NewAccessScope(ctx)
}
