package history

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL itinerary repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const recordColumns = `
	id, plan_date, requested_tier, effective_tier,
	degraded, degraded_reason, truncated,
	stop_count, unscheduled_count,
	distance_km, travel_minutes, visit_minutes, efficiency,
	payload, created_at
`

// Get retrieves a record by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM itineraries WHERE id = $1`

	var record Record
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.Date,
		&record.RequestedTier,
		&record.EffectiveTier,
		&record.Degraded,
		&record.DegradedReason,
		&record.Truncated,
		&record.StopCount,
		&record.Unscheduled,
		&record.DistanceKm,
		&record.TravelMinutes,
		&record.VisitMinutes,
		&record.Efficiency,
		&record.Payload,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItineraryNotFound
		}
		return nil, err
	}

	return &record, nil
}

// List retrieves records newest first with cursor pagination. The cursor is
// the ID of the last record of the previous page.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT ` + recordColumns + `
		FROM itineraries
		WHERE ($1 = '' OR created_at < (SELECT created_at FROM itineraries WHERE id = $1))
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, opts.Cursor, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var record Record
		err := rows.Scan(
			&record.ID,
			&record.Date,
			&record.RequestedTier,
			&record.EffectiveTier,
			&record.Degraded,
			&record.DegradedReason,
			&record.Truncated,
			&record.StopCount,
			&record.Unscheduled,
			&record.DistanceKm,
			&record.TravelMinutes,
			&record.VisitMinutes,
			&record.Efficiency,
			&record.Payload,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Items: records}
	if len(records) > limit {
		result.Items = records[:limit]
		result.NextCursor = records[limit-1].ID
	}

	return result, nil
}

// Create stores a new record.
func (r *PostgresRepository) Create(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO itineraries (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Date,
		record.RequestedTier,
		record.EffectiveTier,
		record.Degraded,
		record.DegradedReason,
		record.Truncated,
		record.StopCount,
		record.Unscheduled,
		record.DistanceKm,
		record.TravelMinutes,
		record.VisitMinutes,
		record.Efficiency,
		record.Payload,
		record.CreatedAt,
	)
	return err
}

// Delete removes a record by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM itineraries WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
