// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each index set is reconciled idempotently
and problems are aggregated so startup fails with the full picture.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, set := range indexSets() {
		if err := ensureIndexSet(ctx, db.Collection(set.collection), set.models); err != nil {
			problems = append(problems, set.collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func idx(name string, unique bool, keys ...bson.E) mongo.IndexModel {
	opts := options.Index().SetName(name)
	if unique {
		opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: bson.D(keys), Options: opts}
}

func asc(k string) bson.E  { return bson.E{Key: k, Value: 1} }
func desc(k string) bson.E { return bson.E{Key: k, Value: -1} }

func indexSets() []collectionIndexes {
	return []collectionIndexes{
		{"users", []mongo.IndexModel{
			idx("uniq_users_email", true, asc("email")),
			idx("idx_users_role_nameci", false, asc("role"), asc("name_ci")),
		}},
		{"resources", []mongo.IndexModel{
			idx("idx_resources_nameci", false, asc("name_ci")),
			idx("idx_resources_type_nameci", false, asc("type"), asc("name_ci")),
		}},
		{"events", []mongo.IndexModel{
			idx("idx_events_creator_date", false, asc("created_by"), asc("date")),
			idx("idx_events_status_date", false, asc("status"), asc("date")),
			idx("idx_events_educator_status", false, asc("assigned_educator.educator_id"), asc("assigned_educator.status")),
			idx("idx_events_registered", false, asc("registered_students")),
			idx("idx_events_resources", false, asc("assigned_resources.resource_id")),
		}},
		{"event_requests", []mongo.IndexModel{
			idx("idx_evreq_requester_created", false, asc("requested_by"), desc("created_at")),
			idx("idx_evreq_status_created", false, asc("status"), desc("created_at")),
			idx("idx_evreq_event", false, asc("event_id")),
		}},
		{"resource_requests", []mongo.IndexModel{
			idx("idx_resreq_status_requested", false, asc("status"), desc("requested_at")),
			idx("idx_resreq_educator_requested", false, asc("educator_id"), desc("requested_at")),
			idx("idx_resreq_event", false, asc("event_id")),
		}},
		{"feedback", []mongo.IndexModel{
			idx("uniq_feedback_event_student", true, asc("event_id"), asc("student_id")),
			idx("idx_feedback_student", false, asc("student_id")),
		}},
		{"audit_events", []mongo.IndexModel{
			idx("idx_audit_timestamp", false, desc("timestamp")),
			idx("idx_audit_actor_timestamp", false, asc("actor_id"), desc("timestamp")),
			idx("idx_audit_event_timestamp", false, asc("event_id"), desc("timestamp")),
			idx("idx_audit_category_type_timestamp", false, asc("category"), asc("event_type"), desc("timestamp")),
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var ix existingIndex
		if err := cur.Decode(&ix); err != nil {
			zap.L().Warn("failed to decode existing index", zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(ix.Key)] = ix
	}
	return out, cur.Err()
}

// ensureIndexSet creates missing indexes, renames ones whose keys match
// under another name, and rebuilds ones whose uniqueness differs.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// Collection may not exist yet; CreateOne will create it.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		name := *m.Options.Name
		unique := boolVal(m.Options.Unique)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if ex.Name == name && boolVal(ex.Unique) == unique {
				zap.L().Debug("reusing existing index", zap.String("collection", coll.Name()), zap.String("name", name))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s failed: %v", name, ex.Name, err))
				continue
			}
			zap.L().Info("dropped index for rebuild",
				zap.String("collection", coll.Name()),
				zap.String("from", ex.Name),
				zap.String("to", name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present on %s)", name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
