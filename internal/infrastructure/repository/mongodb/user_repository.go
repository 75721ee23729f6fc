package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// MongoUserRepository implements user.Repository over a users collection.
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// UserRepoOption configures MongoUserRepository.
type UserRepoOption func(*MongoUserRepository)

// WithUserRepoLogger sets the logger for the user repository.
func WithUserRepoLogger(logger *slog.Logger) UserRepoOption {
	return func(r *MongoUserRepository) {
		r.logger = logger
	}
}

// NewMongoUserRepository creates a MongoDB user repository.
func NewMongoUserRepository(collection *mongo.Collection, opts ...UserRepoOption) *MongoUserRepository {
	r := &MongoUserRepository{
		collection: collection,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByID implements user.Repository.
func (r *MongoUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*userdomain.User, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"user_id": id.String()}
	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find user by ID",
				slog.String("user_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "user")
	}
	return r.documentToUser(&doc)
}

// FindByExternalID implements user.Repository.
func (r *MongoUserRepository) FindByExternalID(ctx context.Context, externalID string) (*userdomain.User, error) {
	if externalID == "" {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"external_id": externalID}
	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find user by external ID",
				slog.String("external_id", externalID),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "user")
	}
	return r.documentToUser(&doc)
}

// FindByEmail implements user.Repository.
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	if email == "" {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"email": email}
	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "user")
	}
	return r.documentToUser(&doc)
}

// ListByRole implements user.Repository.
func (r *MongoUserRepository) ListByRole(
	ctx context.Context,
	role userdomain.Role,
	offset, limit int,
) ([]*userdomain.User, error) {
	filter := bson.M{"role": string(role)}
	return findDocuments(ctx, r.collection, filter,
		FindNewestFirst(offset, limit), r.documentToUser, UsersCollection)
}

// Save implements user.Repository. Uniqueness of email and external_id is
// enforced by indexes; violations surface as errs.ErrAlreadyExists.
func (r *MongoUserRepository) Save(ctx context.Context, u *userdomain.User) error {
	if u == nil || u.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	doc := r.userToDocument(u)
	filter := bson.M{"user_id": u.ID().String()}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, UpsertOptions())
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save user",
			slog.String("user_id", u.ID().String()),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "user")
}

// userDocument is the bson shape of a profile.
type userDocument struct {
	UserID        string    `bson:"user_id"`
	ExternalID    string    `bson:"external_id"`
	Email         string    `bson:"email"`
	DisplayName   string    `bson:"display_name"`
	Role          string    `bson:"role"`
	Skills        []string  `bson:"skills"`
	Rating        float64   `bson:"rating"`
	CompletedGigs int       `bson:"completed_gigs"`
	IsActive      bool      `bson:"is_active"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func (r *MongoUserRepository) userToDocument(u *userdomain.User) userDocument {
	return userDocument{
		UserID:        u.ID().String(),
		ExternalID:    u.ExternalID(),
		Email:         u.Email(),
		DisplayName:   u.DisplayName(),
		Role:          string(u.Role()),
		Skills:        u.Skills(),
		Rating:        u.Rating(),
		CompletedGigs: u.CompletedGigs(),
		IsActive:      u.IsActive(),
		CreatedAt:     u.CreatedAt(),
		UpdatedAt:     u.UpdatedAt(),
	}
}

func (r *MongoUserRepository) documentToUser(doc *userDocument) (*userdomain.User, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}
	id, err := uuid.ParseUUID(doc.UserID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	return userdomain.Reconstruct(
		id,
		doc.ExternalID,
		doc.Email,
		doc.DisplayName,
		userdomain.Role(doc.Role),
		doc.Skills,
		doc.Rating,
		doc.CompletedGigs,
		doc.IsActive,
		doc.CreatedAt,
		doc.UpdatedAt,
	), nil
}
