package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// MongoNotificationRepository implements notification.Repository over a
// notifications collection.
type MongoNotificationRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NotificationRepoOption configures MongoNotificationRepository.
type NotificationRepoOption func(*MongoNotificationRepository)

// WithNotificationRepoLogger sets the logger for the notification repository.
func WithNotificationRepoLogger(logger *slog.Logger) NotificationRepoOption {
	return func(r *MongoNotificationRepository) {
		r.logger = logger
	}
}

// NewMongoNotificationRepository creates a MongoDB notification repository.
func NewMongoNotificationRepository(collection *mongo.Collection, opts ...NotificationRepoOption) *MongoNotificationRepository {
	r := &MongoNotificationRepository{
		collection: collection,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByID implements notification.Repository.
func (r *MongoNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notifdomain.Notification, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"notification_id": id.String()}
	var doc notificationDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find notification by ID",
				slog.String("notification_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "notification")
	}
	return r.documentToNotification(&doc)
}

// ListByUser implements notification.Repository.
func (r *MongoNotificationRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	offset, limit int,
) ([]*notifdomain.Notification, error) {
	filter := bson.M{"user_id": userID.String()}
	if unreadOnly {
		filter["read_at"] = nil
	}
	return findDocuments(ctx, r.collection, filter,
		FindNewestFirst(offset, limit), r.documentToNotification, NotificationsCollection)
}

// CountByUser implements notification.Repository.
func (r *MongoNotificationRepository) CountByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int, error) {
	filter := bson.M{"user_id": userID.String()}
	if unreadOnly {
		filter["read_at"] = nil
	}
	count, err := CountFilter(ctx, r.collection, filter)
	if err != nil {
		return 0, HandleMongoError(err, NotificationsCollection)
	}
	return count, nil
}

// ExistsForGigSince implements notification.Repository. Deduplicates the
// deadline reminder sweep.
func (r *MongoNotificationRepository) ExistsForGigSince(
	ctx context.Context,
	userID, gigID uuid.UUID,
	typ notifdomain.Type,
	sinceHours int,
) (bool, error) {
	cutoff := time.Now().Add(-time.Duration(sinceHours) * time.Hour)
	filter := bson.M{
		"user_id":        userID.String(),
		"related_gig_id": gigID.String(),
		"type":           string(typ),
		"created_at":     bson.M{"$gt": cutoff},
	}
	count, err := CountFilter(ctx, r.collection, filter)
	if err != nil {
		return false, HandleMongoError(err, NotificationsCollection)
	}
	return count > 0, nil
}

// Save implements notification.Repository.
func (r *MongoNotificationRepository) Save(ctx context.Context, n *notifdomain.Notification) error {
	if n == nil || n.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	doc := r.notificationToDocument(n)
	filter := bson.M{"notification_id": n.ID().String()}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, UpsertOptions())
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save notification",
			slog.String("notification_id", n.ID().String()),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "notification")
}

// MarkAllRead implements notification.Repository.
func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID.IsZero() {
		return 0, errs.ErrInvalidInput
	}

	filter := bson.M{
		"user_id": userID.String(),
		"read_at": nil,
	}
	update := bson.M{"$set": bson.M{"read_at": time.Now().UTC()}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, HandleMongoError(err, NotificationsCollection)
	}
	return int(result.ModifiedCount), nil
}

// notificationDocument is the bson shape of a notification.
type notificationDocument struct {
	NotificationID string     `bson:"notification_id"`
	UserID         string     `bson:"user_id"`
	Type           string     `bson:"type"`
	Title          string     `bson:"title"`
	Message        string     `bson:"message"`
	RelatedGigID   string     `bson:"related_gig_id,omitempty"`
	ReadAt         *time.Time `bson:"read_at"`
	CreatedAt      time.Time  `bson:"created_at"`
}

func (r *MongoNotificationRepository) notificationToDocument(n *notifdomain.Notification) notificationDocument {
	doc := notificationDocument{
		NotificationID: n.ID().String(),
		UserID:         n.UserID().String(),
		Type:           string(n.Type()),
		Title:          n.Title(),
		Message:        n.Message(),
		ReadAt:         n.ReadAt(),
		CreatedAt:      n.CreatedAt(),
	}
	if !n.RelatedGigID().IsZero() {
		doc.RelatedGigID = n.RelatedGigID().String()
	}
	return doc
}

func (r *MongoNotificationRepository) documentToNotification(doc *notificationDocument) (*notifdomain.Notification, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}
	id, err := uuid.ParseUUID(doc.NotificationID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}
	userID, err := uuid.ParseUUID(doc.UserID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}
	var relatedGigID uuid.UUID
	if doc.RelatedGigID != "" {
		relatedGigID, err = uuid.ParseUUID(doc.RelatedGigID)
		if err != nil {
			return nil, errs.ErrInvalidInput
		}
	}

	return notifdomain.Reconstruct(
		id,
		userID,
		notifdomain.Type(doc.Type),
		doc.Title,
		doc.Message,
		relatedGigID,
		doc.ReadAt,
		doc.CreatedAt,
	), nil
}
