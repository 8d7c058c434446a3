package middleware

import (
	"context"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity кладет identity вызывающего в контекст
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity достает identity, положенную middleware Auth
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}
