package subscription

import "context"

type Repo interface {
	// Upsert inserts or overwrites the record keyed by endpoint.
	Upsert(ctx context.Context, s *Subscription) error
	// Remove deletes the record if present. Absent is not an error: the
	// dispatcher's prune pass may race a client-initiated unsubscribe.
	Remove(ctx context.Context, endpoint string) (bool, error)
	// List returns a snapshot of all live subscriptions, optionally
	// skipping those owned by excludeOwner.
	List(ctx context.Context, excludeOwner *int64) ([]*Subscription, error)
}
