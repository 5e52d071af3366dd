package entitlement

import "context"

// StateStore holds the last refreshed State per user between explicit
// refreshes. Put replaces the stored value whole.
type StateStore interface {
	// Get returns the stored state. The bool is false on a miss.
	Get(ctx context.Context, userID string) (State, bool, error)

	// Put stores state, replacing any previous value for the same user
	Put(ctx context.Context, state State) error

	// Delete drops the stored state for userID
	Delete(ctx context.Context, userID string) error
}
