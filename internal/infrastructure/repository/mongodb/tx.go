package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoTxRunner runs functions inside a MongoDB multi-document transaction.
// Repository calls made with the session context join the transaction, so
// the accept workflow's writes commit or abort as one unit. Requires a
// replica set (single-node is enough).
type MongoTxRunner struct {
	client *mongo.Client
}

// NewMongoTxRunner creates a transaction runner over client.
func NewMongoTxRunner(client *mongo.Client) *MongoTxRunner {
	return &MongoTxRunner{client: client}
}

// WithinTransaction implements appcore.TxRunner.
func (r *MongoTxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx context.Context) (any, error) {
		return nil, fn(sessCtx)
	})
	return err
}
