// Package auth provides bearer-token authentication for the API.
//
// Every request passes through RequireAuth, which verifies the access
// token and loads the user fresh from storage so that profile changes and
// onboarding state take effect immediately. Handlers read the caller via
// CurrentUser; identity is always an explicit input, never ambient state.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/respond"
	"github.com/dalemusser/ideahub/internal/app/system/timeouts"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AuthUser is the authenticated caller injected into the request context.
type AuthUser struct {
	ID        primitive.ObjectID
	Name      string
	Username  string
	Onboarded bool
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the authenticated caller and a found flag.
func CurrentUser(r *http.Request) (*AuthUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*AuthUser)
	return u, ok
}

// MustCurrentUser returns the authenticated caller or a typed Unauthorized
// error. Handlers behind RequireAuth use it to avoid a second nil check.
func MustCurrentUser(r *http.Request) (*AuthUser, error) {
	u, ok := CurrentUser(r)
	if !ok {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return u, nil
}

// UserLoader loads a user by id. *userstore.Store satisfies it.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// BearerToken extracts the credential from an "Authorization: Bearer ..."
// header. Returns a typed Unauthorized error when the header is missing or
// malformed.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperr.Unauthorized("Authorization header missing")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", apperr.Unauthorized("Invalid authorization header; expected 'Bearer <token>'")
	}
	return parts[1], nil
}

// RequireAuth verifies the bearer access token and loads the caller into
// the request context. Unknown users (deleted after the token was minted)
// are rejected.
func RequireAuth(tm *TokenManager, users UserLoader, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				respond.Error(w, log, err)
				return
			}

			userID, err := tm.ParseAccess(token)
			if err != nil {
				respond.Error(w, log, err)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			defer cancel()

			user, err := users.GetByID(ctx, userID)
			if err != nil {
				// A stale token for a deleted account is a credential
				// problem, not a missing resource.
				respond.Error(w, log, apperr.Unauthorized("User not found; please sign in again"))
				return
			}

			next.ServeHTTP(w, withUser(r, &AuthUser{
				ID:        user.ID,
				Name:      user.Name,
				Username:  user.Username,
				Onboarded: user.Onboarded,
			}))
		})
	}
}

// RequireOnboarded gates routes on completed onboarding. It must run after
// RequireAuth.
func RequireOnboarded(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				respond.Error(w, log, apperr.Unauthorized("Authentication required"))
				return
			}
			if !u.Onboarded {
				respond.Error(w, log, apperr.Forbidden("Complete onboarding to continue"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTestUser injects a caller directly into the request context,
// bypassing token verification. Test helper only.
func WithTestUser(r *http.Request, u *AuthUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *AuthUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
