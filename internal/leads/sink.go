package leads

import "context"

// Sink appends leads to a backing store. Sinks are insert-only.
type Sink interface {
	Name() string
	Append(ctx context.Context, lead *Lead) error
}

// Lister reads back stored leads, oldest first.
type Lister interface {
	List(ctx context.Context) ([]Lead, error)
}
