package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// MongoGigRepository implements gig.Repository over a gigs collection.
type MongoGigRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// GigRepoOption configures MongoGigRepository.
type GigRepoOption func(*MongoGigRepository)

// WithGigRepoLogger sets the logger for the gig repository.
func WithGigRepoLogger(logger *slog.Logger) GigRepoOption {
	return func(r *MongoGigRepository) {
		r.logger = logger
	}
}

// NewMongoGigRepository creates a MongoDB gig repository.
func NewMongoGigRepository(collection *mongo.Collection, opts ...GigRepoOption) *MongoGigRepository {
	r := &MongoGigRepository{
		collection: collection,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByID implements gig.Repository.
func (r *MongoGigRepository) FindByID(ctx context.Context, id uuid.UUID) (*gigdomain.Gig, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"gig_id": id.String()}
	var doc gigDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find gig by ID",
				slog.String("gig_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "gig")
	}
	return r.documentToGig(&doc)
}

// List implements gig.Repository.
func (r *MongoGigRepository) List(ctx context.Context, filter gigdomain.Filter) ([]*gigdomain.Gig, error) {
	return findDocuments(ctx, r.collection, r.buildFilter(filter),
		FindNewestFirst(filter.Offset, filter.Limit), r.documentToGig, GigsCollection)
}

// Count implements gig.Repository.
func (r *MongoGigRepository) Count(ctx context.Context, filter gigdomain.Filter) (int, error) {
	count, err := CountFilter(ctx, r.collection, r.buildFilter(filter))
	if err != nil {
		return 0, HandleMongoError(err, GigsCollection)
	}
	return count, nil
}

// ListDueBefore implements gig.Repository: uncompleted gigs whose deadline
// falls before t, soonest first. Used by the reminder sweep.
func (r *MongoGigRepository) ListDueBefore(ctx context.Context, t time.Time, limit int) ([]*gigdomain.Gig, error) {
	filter := bson.M{
		"status":   bson.M{"$ne": string(gigdomain.StatusCompleted)},
		"deadline": bson.M{"$lt": t},
	}
	opts := FindNewestFirst(0, limit).SetSort(bson.D{{Key: "deadline", Value: 1}})
	return findDocuments(ctx, r.collection, filter, opts, r.documentToGig, GigsCollection)
}

// Save implements gig.Repository.
func (r *MongoGigRepository) Save(ctx context.Context, g *gigdomain.Gig) error {
	if g == nil || g.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	doc := r.gigToDocument(g)
	filter := bson.M{"gig_id": g.ID().String()}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, UpsertOptions())
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save gig",
			slog.String("gig_id", g.ID().String()),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "gig")
}

// SaveIfOpen implements gig.Repository: the update matches only while the
// stored document is still open, so concurrent accepts cannot both assign
// the gig. A miss is reported as errs.ErrConcurrentModification.
func (r *MongoGigRepository) SaveIfOpen(ctx context.Context, g *gigdomain.Gig) error {
	if g == nil || g.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	doc := r.gigToDocument(g)
	filter := bson.M{
		"gig_id": g.ID().String(),
		"status": string(gigdomain.StatusOpen),
	}
	update := bson.M{"$set": doc}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to conditionally save gig",
			slog.String("gig_id", g.ID().String()),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, "gig")
	}
	if result.MatchedCount == 0 {
		return errs.ErrConcurrentModification
	}
	return nil
}

func (r *MongoGigRepository) buildFilter(filter gigdomain.Filter) bson.M {
	out := bson.M{}
	if !filter.PosterID.IsZero() {
		out["poster_id"] = filter.PosterID.String()
	}
	if !filter.AssignedTo.IsZero() {
		out["assigned_to"] = filter.AssignedTo.String()
	}
	if filter.Status != "" {
		out["status"] = string(filter.Status)
	}
	return out
}

// gigDocument is the bson shape of a gig.
type gigDocument struct {
	GigID       string                `bson:"gig_id"`
	Title       string                `bson:"title"`
	Description string                `bson:"description"`
	Status      string                `bson:"status"`
	Priority    string                `bson:"priority"`
	PosterID    string                `bson:"poster_id"`
	AssignedTo  *string               `bson:"assigned_to,omitempty"`
	Budget      float64               `bson:"budget"`
	Deadline    time.Time             `bson:"deadline"`
	Skills      []string              `bson:"skills"`
	Progress    int                   `bson:"progress"`
	Milestones  []gigdomain.Milestone `bson:"milestones"`
	CreatedAt   time.Time             `bson:"created_at"`
	UpdatedAt   time.Time             `bson:"updated_at"`
}

func (r *MongoGigRepository) gigToDocument(g *gigdomain.Gig) gigDocument {
	doc := gigDocument{
		GigID:       g.ID().String(),
		Title:       g.Title(),
		Description: g.Description(),
		Status:      string(g.Status()),
		Priority:    string(g.Priority()),
		PosterID:    g.PosterID().String(),
		Budget:      g.Budget(),
		Deadline:    g.Deadline(),
		Skills:      g.Skills(),
		Progress:    g.Progress(),
		Milestones:  g.Milestones(),
		CreatedAt:   g.CreatedAt(),
		UpdatedAt:   g.UpdatedAt(),
	}
	if g.AssignedTo() != nil {
		s := g.AssignedTo().String()
		doc.AssignedTo = &s
	}
	return doc
}

func (r *MongoGigRepository) documentToGig(doc *gigDocument) (*gigdomain.Gig, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}
	id, err := uuid.ParseUUID(doc.GigID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}
	posterID, err := uuid.ParseUUID(doc.PosterID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}
	var assignedTo *uuid.UUID
	if doc.AssignedTo != nil {
		parsed, parseErr := uuid.ParseUUID(*doc.AssignedTo)
		if parseErr != nil {
			return nil, errs.ErrInvalidInput
		}
		assignedTo = &parsed
	}

	return gigdomain.Reconstruct(
		id,
		doc.Title,
		doc.Description,
		gigdomain.Status(doc.Status),
		gigdomain.Priority(doc.Priority),
		posterID,
		assignedTo,
		doc.Budget,
		doc.Deadline,
		doc.Skills,
		doc.Progress,
		doc.Milestones,
		doc.CreatedAt,
		doc.UpdatedAt,
	), nil
}
