package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/respond"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "edu_events",
		MongoMaxPoolSize: 100,
		MongoMinPoolSize: 10,
		JWTSecret:        "test-secret-0123456789",
		TokenTTL:         time.Hour,
		SessionKey:       "test-session-key-0123456789abcdef0123",
		SessionName:      "edu-events-session",
		AuditLogAuth:     "all",
		AuditLogWorkflow: "db",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", "dev", func(*AppConfig) {}, false},
		{"bad mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, true},
		{"missing database", "dev", func(c *AppConfig) { c.MongoDatabase = "" }, true},
		{"short jwt secret", "dev", func(c *AppConfig) { c.JWTSecret = "short" }, true},
		{"missing session key", "dev", func(c *AppConfig) { c.SessionKey = "" }, true},
		{"short session key in dev", "dev", func(c *AppConfig) { c.SessionKey = "short-key" }, false},
		{"short session key in prod", "prod", func(c *AppConfig) { c.SessionKey = "short-key" }, true},
		{"pool sizes inverted", "dev", func(c *AppConfig) { c.MongoMinPoolSize = 200 }, true},
		{"unknown audit mode", "dev", func(c *AppConfig) { c.AuditLogWorkflow = "verbose" }, true},
		{"negative rate limit", "dev", func(c *AppConfig) { c.LoginRateLimit = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoginLimits(t *testing.T) {
	def := loginLimits(AppConfig{})
	if def.EmailLimit != 5 || def.EmailWindow != 5*time.Minute {
		t.Errorf("defaults: got %+v", def)
	}

	cfg := loginLimits(AppConfig{LoginRateLimit: 8, LoginRateWindow: time.Minute})
	if cfg.EmailLimit != 8 || cfg.EmailWindow != time.Minute {
		t.Errorf("configured email window: got %+v", cfg)
	}
	if cfg.IPLimit < 2*cfg.EmailLimit {
		t.Errorf("ip limit %d should leave room for two emails at %d", cfg.IPLimit, cfg.EmailLimit)
	}
}

func TestStartup_ConfiguresTimeouts(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	cfg := validAppConfig()
	cfg.TimeoutShort = 2 * time.Second
	cfg.TimeoutLong = time.Minute
	if err := Startup(t.Context(), &config.CoreConfig{}, cfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	if got := timeouts.Short(); got != 2*time.Second {
		t.Errorf("short = %v, want 2s", got)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("medium = %v, want default", got)
	}
	if got := timeouts.Long(); got != time.Minute {
		t.Errorf("long = %v, want 1m", got)
	}
}

func TestBuildHandler_Routes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cfg := validAppConfig()
	core := &config.CoreConfig{Env: "dev"}
	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	if err := EnsureSchema(ctx, core, cfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	h, err := BuildHandler(core, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}

	do := func(method, target, token string, body any) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, method, target, body)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("GET", "/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("health: got %d", rec.Code)
	}

	rec := do("GET", "/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route: got %d", rec.Code)
	}
	var body respond.ErrorBody
	testutil.DecodeJSON(t, rec, &body)
	if body.Error != "not_found" {
		t.Errorf("unknown route kind = %q", body.Error)
	}

	if rec := do("GET", "/api/events", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous events: got %d", rec.Code)
	}

	rec = do("POST", "/api/auth/register", "", map[string]string{
		"name": "Stu", "email": "stu@example.com", "password": "password123", "role": models.RoleStudent,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d: %s", rec.Code, rec.Body.String())
	}
	var sess struct {
		Token string `json:"token"`
	}
	testutil.DecodeJSON(t, rec, &sess)

	if rec := do("GET", "/api/auth/profile", sess.Token, nil); rec.Code != http.StatusOK {
		t.Errorf("profile: got %d", rec.Code)
	}
	if rec := do("GET", "/api/students/me/open-events", sess.Token, nil); rec.Code != http.StatusOK {
		t.Errorf("open events: got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do("POST", "/api/resources", sess.Token, map[string]any{"name": "Chairs", "type": "furniture", "total": 5}); rec.Code != http.StatusForbidden {
		t.Errorf("student creating a resource: got %d", rec.Code)
	}
	if rec := do("DELETE", "/api/auth/profile", sess.Token, nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong verb: got %d", rec.Code)
	}
	if rec := do("POST", "/api/auth/logout", sess.Token, nil); rec.Code != http.StatusOK {
		t.Errorf("logout: got %d", rec.Code)
	}

	rec = do("GET", "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "edu_events_") {
		t.Errorf("metrics output missing service metrics")
	}
}
