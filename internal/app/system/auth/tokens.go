package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "ideahub"

// TokenManager mints and verifies the two credential types:
//
//   - access tokens: short-lived HS256 JWTs carrying the user id, verified
//     on every request without a database hit
//   - refresh tokens: opaque random strings; only a bcrypt hash is stored
//     on the user document, so a database leak does not leak usable tokens
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager creates a TokenManager. The secret must be non-empty;
// short secrets are a deployment mistake the config layer warns about.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("access token secret is empty")
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// RefreshTTL returns the configured refresh-token lifetime.
func (tm *TokenManager) RefreshTTL() time.Duration { return tm.refreshTTL }

// IssueAccess mints a signed access token for userID.
func (tm *TokenManager) IssueAccess(userID primitive.ObjectID, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.accessTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", apperr.Internal("Something went wrong", err)
	}
	return signed, nil
}

// ParseAccess verifies a signed access token and returns the user id it
// carries. Every failure mode (bad signature, expiry, wrong algorithm,
// malformed subject) collapses into Unauthorized.
func (tm *TokenManager) ParseAccess(tokenStr string) (primitive.ObjectID, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return tm.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil || !token.Valid {
		return primitive.NilObjectID, apperr.Unauthorized("Invalid access token")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized("Invalid access token")
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized("Invalid access token")
	}
	return id, nil
}

// NewRefreshToken generates an opaque refresh token and the bcrypt hash to
// persist alongside it.
func (tm *TokenManager) NewRefreshToken() (raw, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", apperr.Internal("Something went wrong", err)
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", "", apperr.Internal("Something went wrong", err)
	}
	return raw, string(h), nil
}

// CheckRefreshToken reports whether raw matches the stored bcrypt hash.
func (tm *TokenManager) CheckRefreshToken(raw, hash string) bool {
	if raw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// FormatRefreshToken builds the wire form of a refresh token. The user id
// travels in the clear so the refresh endpoint can find the account; only
// the opaque half is secret.
func FormatRefreshToken(userID primitive.ObjectID, raw string) string {
	return userID.Hex() + "." + raw
}

// SplitRefreshToken parses the wire form back into the user id and the
// opaque half. Malformed tokens collapse into Unauthorized.
func SplitRefreshToken(wire string) (primitive.ObjectID, string, error) {
	id, raw, ok := strings.Cut(wire, ".")
	if !ok || raw == "" {
		return primitive.NilObjectID, "", apperr.Unauthorized("Invalid refresh token")
	}
	userID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, "", apperr.Unauthorized("Invalid refresh token")
	}
	return userID, raw, nil
}
