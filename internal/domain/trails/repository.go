package trails

import "context"

// Repository reads trail reference data.
type Repository interface {
	// ListByDifficulty returns every trail ordered by ascending difficulty, then id.
	ListByDifficulty(ctx context.Context) ([]Trail, error)
}
