package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"exposure-platform/internal/models"
	"exposure-platform/pkg/database"
	"exposure-platform/pkg/logging"
	"exposure-platform/pkg/metrics"
)

// RecordRepository stores study records as JSON documents keyed by kind and id
type RecordRepository interface {
	Upsert(ctx context.Context, rec *models.StoredRecord) error
	UpsertBatch(ctx context.Context, recs []*models.StoredRecord) error
	Get(ctx context.Context, kind models.Kind, id string) (*models.StoredRecord, error)
	List(ctx context.Context, kind models.Kind) ([]*models.StoredRecord, error)
	Count(ctx context.Context, kind models.Kind) (int, error)
	Delete(ctx context.Context, kind models.Kind, id string) error

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// recordRepository implements RecordRepository
type recordRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) RecordRepository {
	return &recordRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

const upsertRecord = `
	INSERT INTO records (kind, id, payload, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (kind, id) DO UPDATE SET
		payload = excluded.payload,
		updated_at = excluded.updated_at
`

// Upsert inserts a record or replaces the stored one
func (r *recordRepository) Upsert(ctx context.Context, rec *models.StoredRecord) error {
	_, err := r.db.ExecContext(ctx, "upsert_record", upsertRecord,
		string(rec.Kind),
		rec.ID,
		string(rec.Payload),
		rec.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_UPSERT] Record stored", logging.Fields{
		"kind": rec.Kind,
		"id":   rec.ID,
	})

	return nil
}

// UpsertBatch stores many records in a single transaction
func (r *recordRepository) UpsertBatch(ctx context.Context, recs []*models.StoredRecord) error {
	if len(recs) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		r.logger.Debug(ctx, "[REPO_BATCH_UPSERT] Batch upsert completed", logging.Fields{
			"count":       len(recs),
			"duration_ms": time.Since(timer).Milliseconds(),
		})
	}()

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareContext(ctx, tx.Rebind(upsertRecord))
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, rec := range recs {
			if _, err := stmt.ExecContext(ctx, string(rec.Kind), rec.ID, string(rec.Payload), rec.UpdatedAt.UTC()); err != nil {
				return fmt.Errorf("failed to upsert %s %s: %w", rec.Kind, rec.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		r.metrics.RecordDBError("batch_upsert_error")
		return err
	}

	return nil
}

// Get retrieves one record
func (r *recordRepository) Get(ctx context.Context, kind models.Kind, id string) (*models.StoredRecord, error) {
	query := `
		SELECT kind, id, payload, updated_at
		FROM records
		WHERE kind = ? AND id = ?
	`

	var rec models.StoredRecord
	err := r.db.GetContext(ctx, "get_record", &rec, query, string(kind), id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{
			Resource: string(kind),
			ID:       id,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return &rec, nil
}

// List retrieves every record of one kind, most recently updated first
func (r *recordRepository) List(ctx context.Context, kind models.Kind) ([]*models.StoredRecord, error) {
	query := `
		SELECT kind, id, payload, updated_at
		FROM records
		WHERE kind = ?
		ORDER BY updated_at DESC, id
	`

	var recs []*models.StoredRecord
	if err := r.db.SelectContext(ctx, "list_records", &recs, query, string(kind)); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return recs, nil
}

// Count returns the number of stored records of one kind
func (r *recordRepository) Count(ctx context.Context, kind models.Kind) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, "count_records", &n, `SELECT COUNT(*) FROM records WHERE kind = ?`, string(kind)); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Delete removes one record
func (r *recordRepository) Delete(ctx context.Context, kind models.Kind, id string) error {
	res, err := r.db.ExecContext(ctx, "delete_record", `DELETE FROM records WHERE kind = ? AND id = ?`, string(kind), id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n == 0 {
		return &NotFoundError{Resource: string(kind), ID: id}
	}

	r.logger.Debug(ctx, "[REPO_DELETE] Record deleted", logging.Fields{
		"kind": kind,
		"id":   id,
	})

	return nil
}

// HealthCheck performs a repository health check
func (r *recordRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
