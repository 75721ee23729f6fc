package appcore

import "context"

// TxRunner executes a function within a storage transaction. The context
// passed to fn carries the transaction; repository calls made with it join
// the transaction and commit or abort together.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTxRunner runs the function without any transaction. Used in tests and
// against stores that do not support transactions.
type NopTxRunner struct{}

// WithinTransaction invokes fn directly.
func (NopTxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
