package boat

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/FACorreiaa/owt-boats/internal/types"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is a process-local store used for development and tests.
// IDs start at 1 and are never reused.
type MemoryRepository struct {
	logger *slog.Logger

	mu     sync.RWMutex
	nextID int64
	boats  map[int64]types.Boat
}

func NewMemoryRepository(logger *slog.Logger) *MemoryRepository {
	return &MemoryRepository{
		logger: logger,
		nextID: 1,
		boats:  make(map[int64]types.Boat),
	}
}

func (r *MemoryRepository) FindAll(_ context.Context) ([]types.Boat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	boats := make([]types.Boat, 0, len(r.boats))
	for _, b := range r.boats {
		boats = append(boats, b)
	}
	sort.Slice(boats, func(i, j int) bool { return boats[i].ID < boats[j].ID })
	return boats, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (types.Boat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.boats[id]
	if !ok {
		return types.Boat{}, fmt.Errorf("boat %d: %w", id, types.ErrNotFound)
	}
	return b, nil
}

func (r *MemoryRepository) Save(ctx context.Context, boat types.Boat) (types.Boat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if boat.ID == 0 {
		boat.ID = r.nextID
		r.nextID++
		r.boats[boat.ID] = boat
		r.logger.DebugContext(ctx, "Boat inserted", slog.Int64("id", boat.ID))
		return boat, nil
	}

	existing, ok := r.boats[boat.ID]
	if !ok {
		return types.Boat{}, fmt.Errorf("boat %d: %w", boat.ID, types.ErrNotFound)
	}
	boat.CreatedAt = existing.CreatedAt
	r.boats[boat.ID] = boat
	return boat, nil
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.boats, id)
	return nil
}

func (r *MemoryRepository) ExistsByID(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.boats[id]
	return ok, nil
}
