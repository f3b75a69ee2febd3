package services

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"exposure-platform/internal/editors"
	"exposure-platform/internal/lookup"
	"exposure-platform/internal/models"
	"exposure-platform/internal/repository"
	"exposure-platform/internal/validation"
	"exposure-platform/pkg/logging"
	"exposure-platform/pkg/metrics"
)

// ImportService loads study records from JSON lines files. Every record goes
// through its editor and is stored only when it validates.
type ImportService struct {
	repo    repository.RecordRepository
	lookups lookup.Source
	catalog validation.Catalog
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	now     func() time.Time
}

// ImportResult contains import statistics
type ImportResult struct {
	TotalFiles        int
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	Duration          time.Duration
	Errors            []string
}

// FileImportResult contains per-file import statistics
type FileImportResult struct {
	Kind              models.Kind
	TotalRecords      int
	SuccessfulRecords int
	FailedRecords     int
	Errors            []string
}

// NewImportService creates a new import service
func NewImportService(repo repository.RecordRepository, lookups lookup.Source, catalog validation.Catalog, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ImportService {
	return &ImportService{
		repo:    repo,
		lookups: lookups,
		catalog: catalog,
		logger:  logger,
		metrics: metricsCollector,
		now:     time.Now,
	}
}

// KindOfFile derives the record kind from a file name such as
// "worker.jsonl" or "application_2024.jsonl".
func KindOfFile(path string) (models.Kind, error) {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.IndexAny(name, "_-."); i >= 0 {
		name = name[:i]
	}
	return models.ParseKind(strings.ToLower(name))
}

// ImportDirectory imports every *.jsonl file of dir
func (s *ImportService) ImportDirectory(ctx context.Context, dir string, batchSize int) (*ImportResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[IMPORT_START] Starting record import", logging.Fields{
		"dir":        dir,
		"batch_size": batchSize,
	})

	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no record files found in %s", dir)
	}

	result := &ImportResult{TotalFiles: len(files), Errors: make([]string, 0)}

	for _, path := range files {
		kind, err := KindOfFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		fileResult, err := s.ImportFile(ctx, kind, path, batchSize)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to import %s: %v", path, err))
			s.logger.Error(ctx, "[IMPORT_FILE_ERROR] File import failed", logging.Fields{
				"file_path": path,
			}, err)
			continue
		}

		result.TotalRecords += fileResult.TotalRecords
		result.SuccessfulRecords += fileResult.SuccessfulRecords
		result.FailedRecords += fileResult.FailedRecords
		result.Errors = append(result.Errors, fileResult.Errors...)
	}

	result.Duration = time.Since(startTime)
	s.metrics.ObserveImport(result.Duration)

	s.logger.Info(ctx, "[IMPORT_COMPLETE] Record import completed", logging.Fields{
		"total_files":        result.TotalFiles,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
		"duration_seconds":   result.Duration.Seconds(),
		"error_count":        len(result.Errors),
	})

	return result, nil
}

// ImportFile imports one JSON lines file of kind. Blank lines are skipped.
func (s *ImportService) ImportFile(ctx context.Context, kind models.Kind, path string, batchSize int) (*FileImportResult, error) {
	f, err := editors.Lookup(kind)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	result := &FileImportResult{Kind: kind}
	batch := make([]*models.StoredRecord, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.repo.UpsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to store batch: %w", err)
		}
		result.SuccessfulRecords += len(batch)
		s.metrics.RecordImport("ok", len(batch))
		batch = batch[:0]
		return nil
	}
	reject := func(line int, reason string) {
		result.FailedRecords++
		result.Errors = append(result.Errors, fmt.Sprintf("%s:%d: %s", filepath.Base(path), line, reason))
		s.metrics.RecordImport("rejected", 1)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		result.TotalRecords++

		e, err := f.Decode([]byte(text), lookup.Take(s.lookups), s.catalog)
		if err != nil {
			reject(line, err.Error())
			continue
		}
		if e.ID() == uuid.Nil {
			reject(line, "record has no id")
			continue
		}
		if err := e.Save(); err != nil {
			all, _ := e.AllErrors()
			reject(line, strings.ReplaceAll(all, validation.LineSeparator, "; "))
			continue
		}

		at := s.now().UTC()
		e.Stamp(at)
		rec, err := models.Encode(e.OriginalDocument(), at)
		if err != nil {
			reject(line, err.Error())
			continue
		}
		batch = append(batch, rec)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "[IMPORT_FILE_SUCCESS] File imported", logging.Fields{
		"file_path":          path,
		"kind":               kind,
		"total_records":      result.TotalRecords,
		"successful_records": result.SuccessfulRecords,
		"failed_records":     result.FailedRecords,
	})

	return result, nil
}
