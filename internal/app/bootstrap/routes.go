// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/auditlog"
	educatorsfeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/educators"
	errorsfeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/errors"
	eventrequestsfeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/eventrequests"
	eventsfeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/events"
	healthfeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/health"
	loginfeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/login"
	logoutfeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/logout"
	profilefeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/profile"
	resourcerequestsfeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/resourcerequests"
	resourcesfeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/resources"
	studentsfeature "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/features/students"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/audit"
	userstore "github.com/M-Jeevanantham/edu-event-management-erp/internal/app/store/users"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auditlog"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/auth"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/metrics"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/ratelimit"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/workflow"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The router resolves the caller once
// (bearer token or session cookie), then mounts the JSON feature routers
// under /api.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	tokens, err := auth.NewTokenManager(appCfg.JWTSecret, appCfg.TokenTTL)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, tokens, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Reload the user on each request so disabled accounts and role
	// changes take effect before the token expires.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Workflow: appCfg.AuditLogWorkflow,
	})
	m := metrics.New()
	svc := workflow.New(db, auditLog, m, logger)

	limiter := deps.LoginLimiter
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter(loginLimits(appCfg), logger)
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(auditlog.Middleware)
	r.Use(m.Middleware)

	// Loads the caller into context if a valid token is presented.
	r.Use(sessionMgr.LoadSessionUser)

	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, limiter, auditLog, errLog, logger)
	authRouter := loginfeature.Routes(loginHandler)

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	authRouter.Mount("/logout", logoutfeature.Routes(logoutHandler))

	profileHandler := profilefeature.NewHandler(db, errLog, logger)
	authRouter.Group(func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)
		pr.Mount("/profile", profilefeature.Routes(profileHandler))
	})
	r.Mount("/api/auth", authRouter)

	// Workflow endpoints accept only the three application roles.
	r.Group(func(api chi.Router) {
		api.Use(sessionMgr.RequireRole(models.RoleInstitution, models.RoleEducator, models.RoleStudent))

		resourcesHandler := resourcesfeature.NewHandler(svc, errLog, logger)
		api.Mount("/api/resources", resourcesfeature.Routes(resourcesHandler, sessionMgr))

		eventsHandler := eventsfeature.NewHandler(svc, errLog, logger)
		api.Mount("/api/events", eventsfeature.Routes(eventsHandler, sessionMgr))

		educatorsHandler := educatorsfeature.NewHandler(svc, errLog, logger)
		api.Mount("/api/educators", educatorsfeature.Routes(educatorsHandler, sessionMgr))

		studentsHandler := studentsfeature.NewHandler(svc, errLog, logger)
		api.Mount("/api/students/me", studentsfeature.Routes(studentsHandler, sessionMgr))

		eventRequestsHandler := eventrequestsfeature.NewHandler(svc, errLog, logger)
		api.Mount("/api/event-requests", eventrequestsfeature.Routes(eventRequestsHandler, sessionMgr))

		resourceRequestsHandler := resourcerequestsfeature.NewHandler(svc, errLog, logger)
		api.Mount("/api/resource-requests", resourcerequestsfeature.Routes(resourceRequestsHandler, sessionMgr))

		auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
		api.Mount("/api/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
	})

	return r, nil
}
