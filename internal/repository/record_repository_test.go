package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"exposure-platform/internal/models"
	"exposure-platform/pkg/database"
	"exposure-platform/pkg/logging"
)

func newTestRepository(t *testing.T) RecordRepository {
	t.Helper()
	ctx := context.Background()
	logger := logging.NewDiscardLogger()

	db, err := database.Open(ctx, &database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "records.db"),
	}, logger, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Migrate(ctx, database.Up); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewRecordRepository(db, logger, nil)
}

func storedWorker(t *testing.T, workerID string, at time.Time) *models.StoredRecord {
	t.Helper()
	var w models.Worker
	w.Init()
	w.WorkerID = workerID
	rec, err := models.Encode(&w, at)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestRecordRepository_RoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := storedWorker(t, "W1", at)
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, models.KindWorker, rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Kind != models.KindWorker || got.ID != rec.ID {
		t.Errorf("Get() = %s/%s, want %s/%s", got.Kind, got.ID, models.KindWorker, rec.ID)
	}
	if string(got.Payload) != string(rec.Payload) {
		t.Errorf("Payload = %s, want %s", got.Payload, rec.Payload)
	}
	if !got.UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, at)
	}

	// upsert replaces
	later := at.Add(time.Hour)
	rec.Payload = []byte(`{"worker_id":"W1b"}`)
	rec.UpdatedAt = later
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatal(err)
	}
	n, err := repo.Count(ctx, models.KindWorker)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
	got, _ = repo.Get(ctx, models.KindWorker, rec.ID)
	if string(got.Payload) != `{"worker_id":"W1b"}` {
		t.Errorf("Payload after upsert = %s", got.Payload)
	}
}

func TestRecordRepository_ListIsScopedByKind(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	older := storedWorker(t, "W1", at)
	newer := storedWorker(t, "W2", at.Add(time.Minute))

	var p models.Product
	p.Init()
	product, _ := models.Encode(&p, at)

	if err := repo.UpsertBatch(ctx, []*models.StoredRecord{older, newer, product}); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	tests := []struct {
		kind        models.Kind
		checkValues func(t *testing.T, recs []*models.StoredRecord)
	}{
		{
			kind: models.KindWorker,
			checkValues: func(t *testing.T, recs []*models.StoredRecord) {
				if len(recs) != 2 {
					t.Fatalf("len = %d, want 2", len(recs))
				}
				if recs[0].ID != newer.ID {
					t.Error("List() should return the most recently updated record first")
				}
			},
		},
		{
			kind: models.KindProduct,
			checkValues: func(t *testing.T, recs []*models.StoredRecord) {
				if len(recs) != 1 || recs[0].ID != product.ID {
					t.Errorf("List(product) = %v", recs)
				}
			},
		},
		{
			kind: models.KindMixing,
			checkValues: func(t *testing.T, recs []*models.StoredRecord) {
				if len(recs) != 0 {
					t.Errorf("List(mixing) = %v, want none", recs)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			recs, err := repo.List(ctx, tt.kind)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			tt.checkValues(t, recs)
		})
	}
}

func TestRecordRepository_NotFound(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, models.KindWorker, "missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Get() error = %v, want *NotFoundError", err)
	}
	if nf.IsTransient() {
		t.Error("not found should not be transient")
	}

	if err := repo.Delete(ctx, models.KindWorker, "missing"); !errors.As(err, &nf) {
		t.Errorf("Delete() error = %v, want *NotFoundError", err)
	}

	rec := storedWorker(t, "W1", time.Now())
	repo.Upsert(ctx, rec)
	if err := repo.Delete(ctx, models.KindWorker, rec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, models.KindWorker, rec.ID); !errors.As(err, &nf) {
		t.Errorf("Get() after Delete error = %v", err)
	}
}

func TestRecordRepository_HealthCheck(t *testing.T) {
	repo := newTestRepository(t)
	if err := repo.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
