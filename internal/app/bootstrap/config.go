// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the events service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: EDUEVENTS_MONGO_URI, EDUEVENTS_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "edu_events", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "jwt_secret", Default: "dev-only-jwt-secret-change-me-0123456789", Desc: "Access token signing secret (at least 16 chars)"},
	{Name: "token_ttl", Default: "168h", Desc: "Access token lifetime (e.g., 168h, 90m)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "edu-events-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_workflow", Default: "all", Desc: "Workflow event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Login throttling
	{Name: "login_rate_limit", Default: 5, Desc: "Login attempts allowed per email per window"},
	{Name: "login_rate_window", Default: "5m", Desc: "Login rate limit window"},
	{Name: "redis_addr", Default: "", Desc: "Redis address for shared rate-limit counters (blank: in-memory)"},

	// Handler deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for multi-collection workflow steps"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, EDUEVENTS_* for app) and
// flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "EDUEVENTS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		TokenTTL:  appValues.Duration("token_ttl", auth.DefaultTokenTTL),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogWorkflow: appValues.String("audit_log_workflow"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", 0),
		RedisAddr:       appValues.String("redis_addr"),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI format is checked before any connection is attempted,
// and secrets that would be rejected later are caught here.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}
	if len(appCfg.JWTSecret) < 16 {
		return fmt.Errorf("jwt_secret must be at least 16 characters")
	}
	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key must be set")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters in production")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	for key, v := range map[string]string{
		"audit_log_auth":     appCfg.AuditLogAuth,
		"audit_log_workflow": appCfg.AuditLogWorkflow,
	} {
		switch v {
		case "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, v)
		}
	}
	if appCfg.LoginRateLimit < 0 {
		return fmt.Errorf("login_rate_limit must not be negative")
	}
	return nil
}
