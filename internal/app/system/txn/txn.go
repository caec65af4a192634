// Package txn runs multi-document workflow steps in a MongoDB transaction
// when the deployment supports one.
//
// Standalone servers reject transactions. There, Run executes the function
// directly and callers rely on their own compensation (the inventory store
// releases whatever it reserved before a failure).
package txn

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// unsupported latches once the server has refused a transaction so later
// calls skip straight to the direct path.
var unsupported atomic.Bool

// Run executes fn inside a transaction, or directly when transactions are
// not available. fn must be safe to re-run after an aborted attempt.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	if unsupported.Load() {
		return fn(ctx)
	}

	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			markUnsupported(log, err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		markUnsupported(log, err)
		return fn(ctx)
	}
	return err
}

// Active reports whether ctx carries a running transaction. Compensation
// steps are skipped there since the abort undoes every write.
func Active(ctx context.Context) bool {
	return mongo.SessionFromContext(ctx) != nil
}

func markUnsupported(log *zap.Logger, err error) {
	if unsupported.CompareAndSwap(false, true) && log != nil {
		log.Warn("mongo transactions unavailable, running workflow steps without them", zap.Error(err))
	}
}

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone mongod, some DocumentDB setups).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, ..., OperationNotSupportedInTransaction
			return true
		}
	}

	s := strings.ToLower(err.Error())
	hasTxn := strings.Contains(s, "transaction")
	switch {
	case hasTxn && (strings.Contains(s, "replica set") || strings.Contains(s, "session")):
		return true
	case strings.Contains(s, "not supported") && (hasTxn || strings.Contains(s, "session")):
		return true
	case strings.Contains(s, "illegal operation"):
		return true
	}
	return false
}
