// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (register, login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Workflow controls logging for inventory and event workflow actions.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Workflow string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

type requestInfo struct {
	ip        string
	userAgent string
}

type ctxKey struct{}

// WithRequest stores the caller's IP and user agent on ctx so that
// workflow code without access to the request can still attribute events.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestInfo{ip: ratelimit.ClientIP(r), userAgent: r.UserAgent()})
}

// Middleware applies WithRequest to every request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithRequest(r.Context(), r)))
	})
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.EventID != nil {
		fields = append(fields, zap.String("event_id", event.EventID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryWorkflow:
		setting = l.config.Workflow
	default:
		setting = "all"
	}
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if info, ok := ctx.Value(ctxKey{}).(requestInfo); ok {
		if event.IP == "" {
			event.IP = info.ip
		}
		if event.UserAgent == "" {
			event.UserAgent = info.userAgent
		}
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// UserRegistered logs a self-service account creation.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID, role, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventUserRegistered,
		UserID:    &userID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"role": role, "email": email},
	})
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// LoginFailedUserNotFound logs a failed login due to user not found.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "user not found",
		Details:       map[string]string{"attempted_email": attemptedEmail},
	})
}

// LoginFailedWrongPassword logs a failed login due to wrong password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "wrong password",
		Details:       map[string]string{"email": email},
	})
}

// LoginFailedUserDisabled logs a failed login due to disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserDisabled,
		UserID:        &userID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "user disabled",
		Details:       map[string]string{"email": email},
	})
}

// LoginFailedRateLimit logs a login refused by the rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "rate limit exceeded",
		Details:       map[string]string{"email": email},
	})
}

// Logout logs a user logout. Accepts the string ID from SessionUser.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- Workflow Events ---

// Action describes a successful workflow mutation.
type Action struct {
	Type    string
	Actor   primitive.ObjectID
	Event   *primitive.ObjectID // events document, when the action concerns one
	Subject *primitive.ObjectID // affected user (student, educator), if any
	Details map[string]string
}

// Workflow logs a workflow action. IP and user agent come from the
// request info attached by Middleware.
func (l *Logger) Workflow(ctx context.Context, a Action) {
	actor := a.Actor
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryWorkflow,
		EventType: a.Type,
		ActorID:   &actor,
		EventID:   a.Event,
		UserID:    a.Subject,
		Success:   true,
		Details:   a.Details,
	})
}
