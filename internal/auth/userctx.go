package auth

import (
	"context"

	"github.com/portfi/portfi-portal/internal/models"
)

type identityKey struct{}

// WithIdentity attaches the authenticated identity to ctx.
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by WithIdentity, or nil.
func IdentityFromContext(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(identityKey{}).(*models.Identity)
	return id
}
