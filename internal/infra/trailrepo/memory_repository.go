package trailrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/trailfinder/internal/domain/trails"
)

// MemoryRepository is an in-memory trails.Repository used for tests/dev.
type MemoryRepository struct {
	mu     sync.RWMutex
	trails []trails.Trail
}

// NewMemoryRepository constructs a repo holding a copy of seed.
func NewMemoryRepository(seed []trails.Trail) *MemoryRepository {
	return &MemoryRepository{trails: append([]trails.Trail(nil), seed...)}
}

// ListByDifficulty implements trails.Repository.
func (r *MemoryRepository) ListByDifficulty(_ context.Context) ([]trails.Trail, error) {
	r.mu.RLock()
	out := append([]trails.Trail(nil), r.trails...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Difficulty == out[j].Difficulty {
			return out[i].ID < out[j].ID
		}
		return out[i].Difficulty < out[j].Difficulty
	})
	return out, nil
}

// Ping always succeeds.
func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

// SampleTrails mirrors the rows seeded by the initial migration.
func SampleTrails() []trails.Trail {
	return []trails.Trail{
		{ID: 1, Name: "Lakeside Loop", Description: "A flat gravel loop around the reservoir with benches every kilometre.", Difficulty: 1, LengthKm: 3.5, ElevationGainM: 25},
		{ID: 2, Name: "Fern Canyon Walk", Description: "Shaded creekside path through ferns and redwoods.", Difficulty: 2, LengthKm: 5.8, ElevationGainM: 140},
		{ID: 3, Name: "Meadow Ridge", Description: "Rolling ridge trail with wildflower meadows and open views.", Difficulty: 3, LengthKm: 9.2, ElevationGainM: 420},
		{ID: 4, Name: "Falls Overlook", Description: "Switchbacks to an overlook above a 60 metre waterfall.", Difficulty: 3, LengthKm: 7.4, ElevationGainM: 510},
		{ID: 5, Name: "Granite Dome Summit", Description: "Sustained climb over slabs to a bald granite summit.", Difficulty: 4, LengthKm: 13.1, ElevationGainM: 980},
		{ID: 6, Name: "High Traverse", Description: "Long exposed alpine traverse with scrambling sections.", Difficulty: 5, LengthKm: 21.6, ElevationGainM: 1650},
	}
}

var _ trails.Repository = (*MemoryRepository)(nil)
