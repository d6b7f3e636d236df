package matchmaker

import "context"

// Repo abstracts the match pool storage.
type Repo interface {
	// Enqueue adds the identity to a pool; the TTL guards against
	// abandoned queue entries.
	Enqueue(ctx context.Context, pool, identity string, ttlSeconds int) error
	// PopN atomically removes and returns n random members once the pool
	// holds at least that many; fewer than n means "keep waiting".
	PopN(ctx context.Context, pool string, n int) ([]string, error)
	// Remove takes the identity out of whatever pool it sits in.
	Remove(ctx context.Context, identity string) error
	// Count returns the pool's current size.
	Count(ctx context.Context, pool string) (int64, error)
}
