// Package mongodb provides MongoDB infrastructure components including index
// management.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names.
const (
	CollectionUsers         = "users"
	CollectionGigs          = "gigs"
	CollectionApplications  = "applications"
	CollectionNotifications = "notifications"
)

// IndexDefinition describes a MongoDB index to be created.
type IndexDefinition struct {
	Collection string
	Keys       bson.D
	Options    *options.IndexOptionsBuilder
}

// CreateAllIndexes creates all necessary indexes. Idempotent.
func CreateAllIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range GetAllIndexDefinitions() {
		coll := db.Collection(idx.Collection)
		model := mongo.IndexModel{
			Keys:    idx.Keys,
			Options: idx.Options,
		}
		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on collection %s: %w", idx.Collection, err)
		}
	}
	return nil
}

// GetAllIndexDefinitions returns all index definitions for all collections.
func GetAllIndexDefinitions() []IndexDefinition {
	var indexes []IndexDefinition
	indexes = append(indexes, GetUserIndexes()...)
	indexes = append(indexes, GetGigIndexes()...)
	indexes = append(indexes, GetApplicationIndexes()...)
	indexes = append(indexes, GetNotificationIndexes()...)
	return indexes
}

// GetUserIndexes returns index definitions for the users collection.
// Email and external identity are unique here, at the storage boundary,
// rather than policed by callers.
func GetUserIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionUsers,
			Keys:       bson.D{{Key: "user_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_users_id_unique"),
		},
		{
			Collection: CollectionUsers,
			Keys:       bson.D{{Key: "email", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_users_email_unique"),
		},
		{
			Collection: CollectionUsers,
			Keys:       bson.D{{Key: "external_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_users_external_unique"),
		},
		{
			Collection: CollectionUsers,
			Keys:       bson.D{{Key: "role", Value: 1}},
			Options:    options.Index().SetName("idx_users_role"),
		},
	}
}

// GetGigIndexes returns index definitions for the gigs collection.
func GetGigIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionGigs,
			Keys:       bson.D{{Key: "gig_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_gigs_id_unique"),
		},
		{
			// the open board: status filter sorted by recency
			Collection: CollectionGigs,
			Keys:       bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options:    options.Index().SetName("idx_gigs_status_time"),
		},
		{
			Collection: CollectionGigs,
			Keys:       bson.D{{Key: "poster_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options:    options.Index().SetName("idx_gigs_poster_time"),
		},
		{
			Collection: CollectionGigs,
			Keys:       bson.D{{Key: "assigned_to", Value: 1}, {Key: "created_at", Value: -1}},
			Options:    options.Index().SetSparse(true).SetName("idx_gigs_assignee_time"),
		},
		{
			// the deadline reminder sweep
			Collection: CollectionGigs,
			Keys:       bson.D{{Key: "deadline", Value: 1}, {Key: "status", Value: 1}},
			Options:    options.Index().SetName("idx_gigs_deadline_status"),
		},
	}
}

// GetApplicationIndexes returns index definitions for the applications
// collection.
func GetApplicationIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionApplications,
			Keys:       bson.D{{Key: "application_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_applications_id_unique"),
		},
		{
			// per-gig listing and the pending sweep on accept
			Collection: CollectionApplications,
			Keys:       bson.D{{Key: "gig_id", Value: 1}, {Key: "status", Value: 1}},
			Options:    options.Index().SetName("idx_applications_gig_status"),
		},
		{
			Collection: CollectionApplications,
			Keys:       bson.D{{Key: "applicant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options:    options.Index().SetName("idx_applications_applicant_time"),
		},
	}
}

// GetNotificationIndexes returns index definitions for the notifications
// collection.
func GetNotificationIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionNotifications,
			Keys:       bson.D{{Key: "notification_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_notifications_id_unique"),
		},
		{
			// the inbox: per-user listing, unread filter, recency sort
			Collection: CollectionNotifications,
			Keys:       bson.D{{Key: "user_id", Value: 1}, {Key: "read_at", Value: 1}, {Key: "created_at", Value: -1}},
			Options:    options.Index().SetName("idx_notifications_user_read_time"),
		},
		{
			// reminder deduplication lookup
			Collection: CollectionNotifications,
			Keys:       bson.D{{Key: "user_id", Value: 1}, {Key: "related_gig_id", Value: 1}, {Key: "type", Value: 1}},
			Options:    options.Index().SetName("idx_notifications_user_gig_type"),
		},
	}
}
