package appcore

// Result is the generic envelope returned by use cases.
type Result[T any] struct {
	Value T
}
