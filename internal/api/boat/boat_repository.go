package boat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/owt-boats/app/observability/metrics"
	"github.com/FACorreiaa/owt-boats/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the keyed boat store.
type Repository interface {
	FindAll(ctx context.Context) ([]types.Boat, error)
	// FindByID returns types.ErrNotFound when no boat has the id.
	FindByID(ctx context.Context, id int64) (types.Boat, error)
	// Save inserts a boat with a zero ID and assigns one, otherwise it
	// overwrites the stored row.
	Save(ctx context.Context, boat types.Boat) (types.Boat, error)
	DeleteByID(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// DB is satisfied by *pgxpool.Pool and by pgxmock pools.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool DB
}

func NewRepository(pgpool DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const boatColumns = `id, name, description, capacity, size, type, created_at, updated_at`

func scanBoat(row pgx.Row) (types.Boat, error) {
	var (
		b                    types.Boat
		boatType             string
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Capacity, &b.Size, &boatType, &createdAt, &updatedAt)
	if err != nil {
		return types.Boat{}, err
	}
	b.Type = types.BoatType(boatType)
	b.CreatedAt = types.NewDisplayDate(createdAt)
	b.UpdatedAt = types.NewDisplayDate(updatedAt)
	return b, nil
}

// FindAll returns every boat ordered by id.
func (r *RepositoryImpl) FindAll(ctx context.Context) (boats []types.Boat, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery(ctx, "boats.find_all", start, err) }()

	query := `SELECT ` + boatColumns + ` FROM boats ORDER BY id`
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list boats", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list boats: %w", err)
	}
	defer rows.Close()

	boats = []types.Boat{}
	for rows.Next() {
		b, err := scanBoat(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan boat", slog.Any("error", err))
			return nil, fmt.Errorf("failed to scan boat: %w", err)
		}
		boats = append(boats, b)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating boat rows", slog.Any("error", err))
		return nil, fmt.Errorf("error iterating boat rows: %w", err)
	}
	return boats, nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id int64) (boat types.Boat, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, types.ErrNotFound) {
			metrics.ObserveQuery(ctx, "boats.find_by_id", start, nil)
			return
		}
		metrics.ObserveQuery(ctx, "boats.find_by_id", start, err)
	}()

	query := `SELECT ` + boatColumns + ` FROM boats WHERE id = $1`
	boat, err = scanBoat(r.pgpool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Boat{}, fmt.Errorf("boat %d: %w", id, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get boat", slog.Int64("id", id), slog.Any("error", err))
		return types.Boat{}, fmt.Errorf("failed to get boat: %w", err)
	}
	return boat, nil
}

func (r *RepositoryImpl) Save(ctx context.Context, boat types.Boat) (types.Boat, error) {
	if boat.ID == 0 {
		return r.insert(ctx, boat)
	}
	return r.update(ctx, boat)
}

func (r *RepositoryImpl) insert(ctx context.Context, boat types.Boat) (saved types.Boat, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery(ctx, "boats.insert", start, err) }()

	query := `
        INSERT INTO boats (name, description, capacity, size, type, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	err = r.pgpool.QueryRow(ctx, query,
		boat.Name, boat.Description, boat.Capacity, boat.Size, string(boat.Type),
		boat.CreatedAt.Time, boat.UpdatedAt.Time,
	).Scan(&boat.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert boat", slog.Any("error", err))
		return types.Boat{}, fmt.Errorf("failed to insert boat: %w", err)
	}
	return boat, nil
}

// update never writes created_at.
func (r *RepositoryImpl) update(ctx context.Context, boat types.Boat) (saved types.Boat, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery(ctx, "boats.update", start, err) }()

	query := `
        UPDATE boats
        SET name = $2, description = $3, capacity = $4, size = $5, type = $6, updated_at = $7
        WHERE id = $1
    `
	tag, err := r.pgpool.Exec(ctx, query,
		boat.ID, boat.Name, boat.Description, boat.Capacity, boat.Size, string(boat.Type),
		boat.UpdatedAt.Time,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update boat", slog.Int64("id", boat.ID), slog.Any("error", err))
		return types.Boat{}, fmt.Errorf("failed to update boat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.Boat{}, fmt.Errorf("boat %d: %w", boat.ID, types.ErrNotFound)
	}
	return boat, nil
}

func (r *RepositoryImpl) DeleteByID(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery(ctx, "boats.delete", start, err) }()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM boats WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete boat", slog.Int64("id", id), slog.Any("error", err))
		return fmt.Errorf("failed to delete boat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "No boat deleted", slog.Int64("id", id))
	}
	return nil
}

func (r *RepositoryImpl) ExistsByID(ctx context.Context, id int64) (exists bool, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery(ctx, "boats.exists", start, err) }()

	err = r.pgpool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM boats WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to check boat existence", slog.Int64("id", id), slog.Any("error", err))
		return false, fmt.Errorf("failed to check boat existence: %w", err)
	}
	return exists, nil
}
