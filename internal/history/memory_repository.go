package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory implementation of Repository for tests
// and local development.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryRepository creates an empty in-memory itinerary repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*Record)}
}

// Get retrieves a record by ID.
func (r *MemoryRepository) Get(_ context.Context, id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, ErrItineraryNotFound
	}
	copied := *record
	return &copied, nil
}

// List retrieves records newest first with cursor pagination.
func (r *MemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	all := make([]*Record, 0, len(r.records))
	for _, record := range r.records {
		copied := *record
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := 0
	if opts.Cursor != "" {
		for i, record := range all {
			if record.ID == opts.Cursor {
				start = i + 1
				break
			}
		}
	}

	result := &ListResult{}
	for i := start; i < len(all) && len(result.Items) < limit; i++ {
		result.Items = append(result.Items, all[i])
	}
	if start+len(result.Items) < len(all) && len(result.Items) > 0 {
		result.NextCursor = result.Items[len(result.Items)-1].ID
	}

	return result, nil
}

// Create stores a new record.
func (r *MemoryRepository) Create(_ context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *record
	r.records[record.ID] = &copied
	return nil
}

// Delete removes a record by ID.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}

// Ensure MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
