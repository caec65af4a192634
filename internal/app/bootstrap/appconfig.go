// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// the framework side: ports, TLS, log level, CORS, body size limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Token authentication
	JWTSecret string        // HMAC secret for signing access tokens
	TokenTTL  time.Duration // Access token lifetime

	// Session cookie carrying the token for browser clients
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name (default: edu-events-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogAuth     string
	AuditLogWorkflow string

	// Login throttling. RedisAddr shares the counters between instances;
	// blank keeps them in memory.
	LoginRateLimit  int
	LoginRateWindow time.Duration
	RedisAddr       string

	// Handler database deadlines
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
