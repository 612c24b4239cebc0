// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, CORS, and request limits. AppConfig is where
// everything specific to YOUR application lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Token configuration
	AccessTokenSecret string        // HMAC secret for signing access tokens (must be strong in production)
	AccessTokenTTL    time.Duration // Access token lifetime
	RefreshTokenTTL   time.Duration // Refresh token lifetime

	// Google OAuth (server-side code exchange)
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL of the deployment, used as the OAuth redirect base
	BaseURL string // e.g., "https://ideahub.dev" or "http://localhost:3000"
}
