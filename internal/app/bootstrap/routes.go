// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/ideahub/internal/app/features/health"
	ideasfeature "github.com/dalemusser/ideahub/internal/app/features/ideas"
	loginfeature "github.com/dalemusser/ideahub/internal/app/features/login"
	usersfeature "github.com/dalemusser/ideahub/internal/app/features/users"
	ideastore "github.com/dalemusser/ideahub/internal/app/store/ideas"
	userstore "github.com/dalemusser/ideahub/internal/app/store/users"
	"github.com/dalemusser/ideahub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// IdeaHub is a bearer-token JSON API: sign-in endpoints are public, the
// idea and user routes sit behind the access-token middleware plus the
// onboarding gate.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.IdeaHubMongoDatabase
	users := userstore.New(db)
	ideas := ideastore.New(db)

	tokens, err := auth.NewTokenManager(appCfg.AccessTokenSecret, appCfg.AccessTokenTTL, appCfg.RefreshTokenTTL)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	requireAuth := auth.RequireAuth(tokens, users, logger)
	requireOnboarded := auth.RequireOnboarded(logger)

	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		// Health check endpoint for load balancers and orchestrators
		healthHandler := healthfeature.NewHandler(deps.IdeaHubMongoClient, logger)
		r.Mount("/health", healthfeature.Routes(healthHandler))

		// Authentication: sign-in and refresh are public, onboarding and
		// logout need a valid access token.
		loginHandler := loginfeature.NewHandler(users, tokens,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret,
			appCfg.BaseURL+"/auth/google/callback", logger)
		r.Mount("/auth", loginfeature.Routes(loginHandler, requireAuth))

		// Everything else requires a signed-in, onboarded user.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(requireOnboarded)

			ideasHandler := ideasfeature.NewHandler(ideas, users, logger)
			r.Mount("/idea", ideasfeature.Routes(ideasHandler))

			usersHandler := usersfeature.NewHandler(ideas, users, logger)
			r.Mount("/user", usersfeature.Routes(usersHandler))
		})
	})

	return r, nil
}
