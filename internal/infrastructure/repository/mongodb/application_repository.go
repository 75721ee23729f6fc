package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	appdomain "github.com/lllypuk/gigwork/internal/domain/application"
	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// MongoApplicationRepository implements application.Repository over an
// applications collection.
type MongoApplicationRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// ApplicationRepoOption configures MongoApplicationRepository.
type ApplicationRepoOption func(*MongoApplicationRepository)

// WithApplicationRepoLogger sets the logger for the application repository.
func WithApplicationRepoLogger(logger *slog.Logger) ApplicationRepoOption {
	return func(r *MongoApplicationRepository) {
		r.logger = logger
	}
}

// NewMongoApplicationRepository creates a MongoDB application repository.
func NewMongoApplicationRepository(collection *mongo.Collection, opts ...ApplicationRepoOption) *MongoApplicationRepository {
	r := &MongoApplicationRepository{
		collection: collection,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByID implements application.Repository.
func (r *MongoApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*appdomain.Application, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"application_id": id.String()}
	var doc applicationDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find application by ID",
				slog.String("application_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "application")
	}
	return r.documentToApplication(&doc)
}

// ListByGig implements application.Repository.
func (r *MongoApplicationRepository) ListByGig(ctx context.Context, gigID uuid.UUID) ([]*appdomain.Application, error) {
	filter := bson.M{"gig_id": gigID.String()}
	return findDocuments(ctx, r.collection, filter,
		FindNewestFirst(0, 0), r.documentToApplication, ApplicationsCollection)
}

// ListByApplicant implements application.Repository.
func (r *MongoApplicationRepository) ListByApplicant(
	ctx context.Context,
	applicantID uuid.UUID,
	offset, limit int,
) ([]*appdomain.Application, error) {
	filter := bson.M{"applicant_id": applicantID.String()}
	return findDocuments(ctx, r.collection, filter,
		FindNewestFirst(offset, limit), r.documentToApplication, ApplicationsCollection)
}

// ListPendingByGig implements application.Repository.
func (r *MongoApplicationRepository) ListPendingByGig(ctx context.Context, gigID uuid.UUID) ([]*appdomain.Application, error) {
	filter := bson.M{
		"gig_id": gigID.String(),
		"status": string(appdomain.StatusPending),
	}
	return findDocuments(ctx, r.collection, filter,
		FindNewestFirst(0, 0), r.documentToApplication, ApplicationsCollection)
}

// CountByGigAndApplicant implements application.Repository.
func (r *MongoApplicationRepository) CountByGigAndApplicant(ctx context.Context, gigID, applicantID uuid.UUID) (int, error) {
	filter := bson.M{
		"gig_id":       gigID.String(),
		"applicant_id": applicantID.String(),
	}
	count, err := CountFilter(ctx, r.collection, filter)
	if err != nil {
		return 0, HandleMongoError(err, ApplicationsCollection)
	}
	return count, nil
}

// Save implements application.Repository.
func (r *MongoApplicationRepository) Save(ctx context.Context, a *appdomain.Application) error {
	if a == nil || a.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	doc := r.applicationToDocument(a)
	filter := bson.M{"application_id": a.ID().String()}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, UpsertOptions())
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save application",
			slog.String("application_id", a.ID().String()),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "application")
}

// applicationDocument is the bson shape of a gig application.
type applicationDocument struct {
	ApplicationID string     `bson:"application_id"`
	GigID         string     `bson:"gig_id"`
	ApplicantID   string     `bson:"applicant_id"`
	CoverLetter   string     `bson:"cover_letter"`
	Status        string     `bson:"status"`
	CreatedAt     time.Time  `bson:"created_at"`
	UpdatedAt     *time.Time `bson:"updated_at,omitempty"`
}

func (r *MongoApplicationRepository) applicationToDocument(a *appdomain.Application) applicationDocument {
	return applicationDocument{
		ApplicationID: a.ID().String(),
		GigID:         a.GigID().String(),
		ApplicantID:   a.ApplicantID().String(),
		CoverLetter:   a.CoverLetter(),
		Status:        string(a.Status()),
		CreatedAt:     a.CreatedAt(),
		UpdatedAt:     a.UpdatedAt(),
	}
}

func (r *MongoApplicationRepository) documentToApplication(doc *applicationDocument) (*appdomain.Application, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}
	id, err := uuid.ParseUUID(doc.ApplicationID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}
	gigID, err := uuid.ParseUUID(doc.GigID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}
	applicantID, err := uuid.ParseUUID(doc.ApplicantID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	return appdomain.Reconstruct(
		id,
		gigID,
		applicantID,
		doc.CoverLetter,
		appdomain.Status(doc.Status),
		doc.CreatedAt,
		doc.UpdatedAt,
	), nil
}
