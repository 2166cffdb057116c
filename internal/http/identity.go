package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// UserIDHeader carries the authenticated user identity, set by the fronting
// auth layer. The service trusts it; verifying it is the proxy's job.
const UserIDHeader = "X-User-ID"

// UserNameHeader optionally carries the user's display name.
const UserNameHeader = "X-User-Name"

// userKey is an unexported context key type to avoid collisions across packages.
type userKey struct{}

// Identity holds the trusted caller identity extracted from request headers.
type Identity struct {
	UserID   string
	UserName string
}

// SetIdentityInContext returns a child context carrying the given identity.
func SetIdentityInContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

// IdentityFromContext returns the caller identity and a boolean indicating presence.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(userKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// RequireIdentity returns a middleware that extracts the caller identity from
// request headers and rejects requests without one.
func RequireIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if userID == "" {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}

			id := Identity{
				UserID:   userID,
				UserName: strings.TrimSpace(r.Header.Get(UserNameHeader)),
			}
			ctx := SetIdentityInContext(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
