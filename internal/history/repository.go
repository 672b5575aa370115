package history

import "context"

// ListOptions contains options for listing itinerary records.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains one page of itinerary records.
type ListResult struct {
	Items      []*Record
	NextCursor string
}

// Repository defines the interface for itinerary persistence.
type Repository interface {
	// Get retrieves a record by ID. Returns ErrItineraryNotFound when absent.
	Get(ctx context.Context, id string) (*Record, error)

	// List retrieves records newest first with cursor pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Create stores a new record.
	Create(ctx context.Context, record *Record) error

	// Delete removes a record by ID.
	Delete(ctx context.Context, id string) error
}
