package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"catalog_importer/internal/catalog"
	"catalog_importer/internal/config"
	"catalog_importer/internal/domain"
)

const finishTimeout = 10 * time.Second

type SyncService struct {
	catalog    Catalog
	normalizer Normalizer
	reader     SheetReader
	publisher  Publisher
	runs       RunStore
	metrics    Metrics
	logger     *slog.Logger
	config     config.SyncConfig
}

// NewSyncService wires the pipeline. publisher, runs and metrics may be nil.
func NewSyncService(
	catalogAPI Catalog,
	normalizer Normalizer,
	reader SheetReader,
	publisher Publisher,
	runs RunStore,
	metrics Metrics,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		catalog:    catalogAPI,
		normalizer: normalizer,
		reader:     reader,
		publisher:  publisher,
		runs:       runs,
		metrics:    metrics,
		logger:     logger.With("component", "sync"),
		config:     cfg,
	}
}

// Import reads a spreadsheet and runs it. An unreadable spreadsheet fails
// the whole run before any record is synchronized.
func (s *SyncService) Import(ctx context.Context, source string, r io.Reader) (*domain.RunStats, error) {
	rows, err := s.reader.ReadRows(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}

	return s.Run(ctx, source, rows)
}

// Run normalizes rows and synchronizes the accepted records one at a time,
// in input order. Every record yields exactly one outcome; a failing record
// never stops the run. Cancelling ctx stops the run before the next record.
func (s *SyncService) Run(ctx context.Context, source string, rows []domain.RawRow) (*domain.RunStats, error) {
	stats := &domain.RunStats{
		RunID:     uuid.NewString(),
		Source:    source,
		Rows:      len(rows),
		StartedAt: time.Now(),
	}
	logger := s.logger.With("run_id", stats.RunID, "source", source)

	logger.Info("starting import", "rows", len(rows))

	var (
		events []domain.OutcomeEvent
		runErr error
	)
	for record, err := range s.normalizer.Normalize(rows) {
		if err != nil {
			stats.Rejected++
			continue
		}

		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		result := s.SyncRecord(ctx, record)
		stats.Record(result.Outcome)

		event := domain.OutcomeEvent{
			RunID:     stats.RunID,
			Row:       record.Row,
			Name:      record.Name,
			Article:   record.Article,
			Outcome:   result.Outcome,
			Detail:    result.Detail,
			Timestamp: time.Now().UTC(),
		}
		events = append(events, event)

		logger.Info("record processed",
			"row", record.Row,
			"article", record.Article,
			"outcome", result.Outcome,
		)

		if s.metrics != nil {
			s.metrics.ObserveOutcome(result.Outcome)
		}
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, &event); err != nil {
				logger.Warn("failed to publish outcome", "row", record.Row, "error", err)
			}
		}
	}

	stats.Duration = time.Since(stats.StartedAt)
	s.finish(ctx, logger, stats, events)

	logger.Info("import completed",
		"total", stats.Total,
		"created", stats.Created,
		"duplicate", stats.Duplicate,
		"errors", stats.Errors,
		"probe_degraded", stats.ProbeDegraded,
		"rejected", stats.Rejected,
		"duration", stats.Duration,
	)

	if runErr != nil {
		return stats, fmt.Errorf("import interrupted: %w", runErr)
	}
	return stats, nil
}

// SyncRecord probes the catalog for the record's article and creates the
// product when it is absent. No call is retried.
func (s *SyncService) SyncRecord(ctx context.Context, record domain.ProductRecord) domain.SyncResult {
	logger := s.logger.With("row", record.Row, "article", record.Article)

	count, err := s.catalog.CountByArticle(ctx, record.Article)
	switch {
	case err != nil && ctx.Err() != nil:
		return domain.SyncResult{Outcome: domain.OutcomeTransportError, Detail: err.Error()}
	case err != nil:
		logger.Warn("duplicate probe failed", statusAttrs(err)...)
		if !s.config.CreateOnProbeFailure {
			return domain.SyncResult{Outcome: domain.OutcomeProbeDegraded, Detail: err.Error()}
		}
	case count > 0:
		logger.Debug("article already in catalog", "matches", count)
		return domain.SyncResult{Outcome: domain.OutcomeDuplicate}
	}

	if err := s.catalog.Create(ctx, record); err != nil {
		if catalog.IsStatusError(err) {
			logger.Error("catalog rejected product", statusAttrs(err)...)
			return domain.SyncResult{Outcome: domain.OutcomeRemoteError}
		}
		logger.Error("failed to create product", "error", err)
		return domain.SyncResult{Outcome: domain.OutcomeTransportError, Detail: err.Error()}
	}

	return domain.SyncResult{Outcome: domain.OutcomeCreated}
}

// finish records the run summary. It runs even when ctx was cancelled so that
// a partial run still leaves a trace.
func (s *SyncService) finish(ctx context.Context, logger *slog.Logger, stats *domain.RunStats, events []domain.OutcomeEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	if s.metrics != nil {
		s.metrics.ObserveRejected(stats.Rejected)
		s.metrics.ObserveRun(stats)
	}

	if s.runs != nil {
		if err := s.runs.Save(ctx, stats, events); err != nil {
			logger.Error("failed to save run", "error", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSummary(ctx, stats); err != nil {
			logger.Warn("failed to publish summary", "error", err)
		}
	}
}

func statusAttrs(err error) []any {
	var statusErr *catalog.StatusError
	if !errors.As(err, &statusErr) {
		return []any{"error", err}
	}
	return []any{"status", statusErr.StatusCode, "body", statusErr.Body}
}
