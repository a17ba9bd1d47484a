package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/buriane/taghiane/internal/auth"
)

type identityKey struct{}

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

// WithIdentity returns a context carrying the authenticated caller.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller stored by the auth interceptors.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok && id.UserID != ""
}

// GetUserID returns the caller's user ID, or "" for anonymous requests.
func GetUserID(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.UserID
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || token == "" || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return token, true
}

// authenticate resolves the Authorization header of req.
func authenticate(v TokenVerifier, req connect.AnyRequest) (auth.Identity, error) {
	header := req.Header().Get("Authorization")
	if header == "" {
		return auth.Identity{}, auth.ErrMissingToken
	}
	token, ok := bearerToken(header)
	if !ok {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return v.Verify(token)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(v TokenVerifier) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			id, err := authenticate(v, req)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(WithIdentity(ctx, id), req)
		}
	}
}

// OptionalAuth attaches the caller when the request carries a valid token
// and otherwise continues anonymously. Handlers that need a user check
// GetUserID themselves.
func OptionalAuth(v TokenVerifier) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id, err := authenticate(v, req); err == nil {
				ctx = WithIdentity(ctx, id)
			}
			return next(ctx, req)
		}
	}
}
