// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/app/system/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil unless redis_addr is configured.
	Redis redis.UniversalClient

	// LoginLimiter counts login attempts in Redis when it is available,
	// otherwise in memory.
	LoginLimiter *ratelimit.LoginLimiter
}
