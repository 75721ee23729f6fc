// Package mongodb contains the MongoDB implementations of the domain
// repository interfaces. One repository per collection; documents are flat
// bson structs converted to and from aggregates at the boundary.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/gigwork/internal/domain/errs"
)

// DefaultPaginationLimit applies when a caller passes no limit.
const DefaultPaginationLimit = 50

// Collection names.
const (
	UsersCollection         = "users"
	GigsCollection          = "gigs"
	ApplicationsCollection  = "applications"
	NotificationsCollection = "notifications"
)

// HandleMongoError maps a MongoDB error to a domain error:
// mongo.ErrNoDocuments becomes errs.ErrNotFound, duplicate-key violations
// become errs.ErrAlreadyExists, anything else is wrapped.
func HandleMongoError(err error, resourceType string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}
	return fmt.Errorf("failed to operate on %s: %w", resourceType, err)
}

// UpsertOptions returns the standard options for upsert writes.
func UpsertOptions() *options.UpdateOneOptionsBuilder {
	return options.UpdateOne().SetUpsert(true)
}

// FindNewestFirst returns find options sorted by created_at descending with
// pagination applied. A non-positive limit means no limit.
func FindNewestFirst(offset, limit int) *options.FindOptionsBuilder {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	return opts
}

// CountFilter counts documents matching filter.
func CountFilter(ctx context.Context, coll *mongo.Collection, filter bson.M) (int, error) {
	count, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// TimePtr returns a pointer to t, nil for the zero time. Useful for optional
// timestamp fields in documents.
func TimePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
