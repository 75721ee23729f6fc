package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// findDocuments runs a filtered find and decodes every document through
// decoder. Documents that fail to decode or convert are skipped; the result
// is never nil.
func findDocuments[T any, R any](
	ctx context.Context,
	collection *mongo.Collection,
	filter bson.M,
	opts *options.FindOptionsBuilder,
	decoder func(*T) (R, error),
	collectionName string,
) ([]R, error) {
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, HandleMongoError(err, collectionName)
	}
	defer cursor.Close(ctx)

	var results []R
	for cursor.Next(ctx) {
		var doc T
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			continue
		}
		item, convErr := decoder(&doc)
		if convErr != nil {
			continue
		}
		results = append(results, item)
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	if results == nil {
		results = make([]R, 0)
	}
	return results, nil
}
