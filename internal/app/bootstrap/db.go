// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/indexes"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/ratelimit"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/timeouts"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and, when configured, the Redis
// client behind the login limiter.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.DefaultMedium)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
		zap.Uint64("min_pool", appCfg.MongoMinPoolSize))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	limits := loginLimits(appCfg)
	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: appCfg.RedisAddr})
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("login rate limits shared through Redis", zap.String("addr", appCfg.RedisAddr))
		deps.Redis = rdb
		deps.LoginLimiter = ratelimit.NewRedisLoginLimiter(rdb, limits, logger)
	} else {
		deps.LoginLimiter = ratelimit.NewLoginLimiter(limits, logger)
	}

	return deps, nil
}

// loginLimits sizes the per-email window from config; the per-IP window
// stays at its default.
func loginLimits(appCfg AppConfig) ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	if appCfg.LoginRateLimit > 0 {
		cfg.EmailLimit = appCfg.LoginRateLimit
		if cfg.IPLimit < 2*cfg.EmailLimit {
			cfg.IPLimit = 2 * cfg.EmailLimit
		}
	}
	if appCfg.LoginRateWindow > 0 {
		cfg.EmailWindow = appCfg.LoginRateWindow
	}
	return cfg
}

// EnsureSchema creates the collections with their JSON-Schema validators,
// then the indexes the workflow relies on (unique emails, one feedback
// per student per event).
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("schema ensured", zap.String("database", deps.MongoDatabase.Name()))
	return nil
}
