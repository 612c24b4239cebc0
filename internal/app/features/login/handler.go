// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	userstore "github.com/dalemusser/ideahub/internal/app/store/users"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/auth"
	"github.com/dalemusser/ideahub/internal/app/system/respond"
	"github.com/dalemusser/ideahub/internal/app/system/sanitize"
	"github.com/dalemusser/ideahub/internal/app/system/timeouts"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler handles OAuth sign-in, token refresh, onboarding, and logout.
type Handler struct {
	Users  *userstore.Store
	Tokens *auth.TokenManager
	Log    *zap.Logger

	// Google code-exchange configuration; empty ClientID disables the
	// /auth/google endpoint.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// NewHandler creates the auth handler.
func NewHandler(users *userstore.Store, tokens *auth.TokenManager, clientID, clientSecret, redirectURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:              users,
		Tokens:             tokens,
		Log:                logger,
		GoogleClientID:     clientID,
		GoogleClientSecret: clientSecret,
		GoogleRedirectURL:  redirectURL,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.GoogleClientID,
		ClientSecret: h.GoogleClientSecret,
		RedirectURL:  h.GoogleRedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// tokenPair is the credential payload returned by every sign-in and refresh.
type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User models.User `json:"user"`
	tokenPair
}

// mintPair issues both tokens and persists the refresh-token hash,
// revoking whatever token was active before.
func (h *Handler) mintPair(ctx context.Context, userID primitive.ObjectID) (tokenPair, error) {
	now := time.Now().UTC()

	access, err := h.Tokens.IssueAccess(userID, now)
	if err != nil {
		return tokenPair{}, err
	}

	raw, hash, err := h.Tokens.NewRefreshToken()
	if err != nil {
		return tokenPair{}, err
	}

	expires := now.Add(h.Tokens.RefreshTTL())
	if err := h.Users.SetRefreshToken(ctx, userID, hash, expires); err != nil {
		return tokenPair{}, apperr.Internal("Something went wrong", err)
	}

	return tokenPair{
		AccessToken:  access,
		RefreshToken: auth.FormatRefreshToken(userID, raw),
	}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/oauth                                                         |
| Signs in (or signs up) with identity details already verified by the         |
| client's OAuth provider. Body: { email, name, profile, provider }.           |
*─────────────────────────────────────────────────────────────────────────────*/

type oauthRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Profile  string `json:"profile"`
	Provider string `json:"provider"`
}

func (h *Handler) ServeOAuth(w http.ResponseWriter, r *http.Request) {
	var req oauthRequest
	if err := respond.DecodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	req.Email = sanitize.Text(req.Email)
	req.Name = sanitize.Text(req.Name)
	req.Profile = sanitize.Text(req.Profile)

	if req.Email == "" || req.Name == "" {
		respond.Error(w, h.Log, apperr.BadRequest("Email and name are required"))
		return
	}
	if req.Provider != models.ProviderGoogle && req.Provider != models.ProviderGitHub {
		respond.Error(w, h.Log, apperr.BadRequest("Unsupported provider"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	h.signIn(ctx, w, req.Email, req.Name, req.Profile, req.Provider)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/google                                                        |
| Exchanges a Google authorization code server-side, fetches the user's        |
| profile, and signs them in. Body: { code }.                                  |
*─────────────────────────────────────────────────────────────────────────────*/

type googleRequest struct {
	Code string `json:"code"`
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (h *Handler) ServeGoogle(w http.ResponseWriter, r *http.Request) {
	if h.GoogleClientID == "" || h.GoogleClientSecret == "" {
		h.Log.Warn("Google OAuth not configured")
		respond.Error(w, h.Log, apperr.BadRequest("Google sign-in is not available"))
		return
	}

	var req googleRequest
	if err := respond.DecodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if req.Code == "" {
		respond.Error(w, h.Log, apperr.BadRequest("Authorization code is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	token, err := h.oauth2Config().Exchange(ctx, req.Code)
	if err != nil {
		h.Log.Warn("failed to exchange OAuth code", zap.Error(err))
		respond.Error(w, h.Log, apperr.Unauthorized("Invalid authorization code"))
		return
	}

	info, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}
	if info.Email == "" {
		respond.Error(w, h.Log, apperr.Unauthorized("Google account has no email"))
		return
	}

	h.signIn(ctx, w, info.Email, info.Name, info.Picture, models.ProviderGoogle)
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}

// signIn upserts the account and writes the auth response.
func (h *Handler) signIn(ctx context.Context, w http.ResponseWriter, email, name, profile, provider string) {
	user, err := h.Users.UpsertOAuth(ctx, email, name, profile, provider)
	if err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}

	pair, err := h.mintPair(ctx, user.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("provider", provider))

	respond.JSON(w, http.StatusOK, authResponse{User: user, tokenPair: pair}, "Signed in")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/refresh                                                       |
| Rotates the refresh token. The current refresh token travels as the          |
| bearer credential; both tokens are reissued on success.                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRefresh(w http.ResponseWriter, r *http.Request) {
	wire, err := auth.BearerToken(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	userID, raw, err := auth.SplitRefreshToken(wire)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		respond.Error(w, h.Log, apperr.Unauthorized("Invalid refresh token"))
		return
	}

	now := time.Now().UTC()
	if !h.Tokens.CheckRefreshToken(raw, user.RefreshTokenHash) ||
		user.RefreshTokenExpiresAt == nil || now.After(*user.RefreshTokenExpiresAt) {
		respond.Error(w, h.Log, apperr.Unauthorized("Invalid refresh token"))
		return
	}

	pair, err := h.mintPair(ctx, user.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusOK, pair, "Token refreshed")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/on-board                                                      |
| Completes onboarding for the signed-in user: picks a unique username and     |
| lists skills. Gated by authentication only, not by onboarding itself.        |
*─────────────────────────────────────────────────────────────────────────────*/

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

type onboardRequest struct {
	Username string   `json:"username"`
	Skills   []string `json:"skills"`
}

func (h *Handler) ServeOnboard(w http.ResponseWriter, r *http.Request) {
	user, err := auth.MustCurrentUser(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	var req onboardRequest
	if err := respond.DecodeBody(r, &req); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	username := sanitize.Text(req.Username)
	if !usernameRe.MatchString(username) {
		respond.Error(w, h.Log, apperr.BadRequest("Username must be 3-30 characters: letters, digits, '-' or '_'"))
		return
	}

	skills := make([]models.Skill, 0, len(req.Skills))
	for _, s := range req.Skills {
		if s = sanitize.Text(s); s != "" {
			skills = append(skills, models.Skill{Name: s})
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Users.Onboard(ctx, user.ID, username, skills)
	switch err {
	case nil:
	case userstore.ErrDuplicateUsername:
		respond.Error(w, h.Log, apperr.Conflict("Username is already taken"))
		return
	case userstore.ErrNotFound:
		respond.Error(w, h.Log, apperr.Unauthorized("Account no longer exists"))
		return
	default:
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}

	h.Log.Info("user onboarded",
		zap.String("user_id", updated.ID.Hex()),
		zap.String("username", updated.Username))

	respond.JSON(w, http.StatusOK, updated, "Onboarding complete")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/logout                                                        |
| Revokes the caller's refresh token. Access tokens simply age out.            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	user, err := auth.MustCurrentUser(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.ClearRefreshToken(ctx, user.ID); err != nil {
		respond.Error(w, h.Log, apperr.Internal("Something went wrong", err))
		return
	}

	h.Log.Info("user logged out", zap.String("user_id", user.ID.Hex()))
	respond.JSON(w, http.StatusOK, nil, "Logged out")
}
