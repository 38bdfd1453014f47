package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"io"
	"iter"

	"catalog_importer/internal/domain"
)

type Catalog interface {
	CountByArticle(ctx context.Context, article string) (int, error)
	Create(ctx context.Context, record domain.ProductRecord) error
}

type Normalizer interface {
	Normalize(rows []domain.RawRow) iter.Seq2[domain.ProductRecord, error]
}

type SheetReader interface {
	ReadRows(ctx context.Context, r io.Reader) ([]domain.RawRow, error)
}

type Publisher interface {
	Publish(ctx context.Context, event *domain.OutcomeEvent) error
	PublishSummary(ctx context.Context, stats *domain.RunStats) error
	Close() error
}

type RunStore interface {
	Save(ctx context.Context, stats *domain.RunStats, events []domain.OutcomeEvent) error
}

type Metrics interface {
	ObserveOutcome(outcome domain.Outcome)
	ObserveRejected(count int)
	ObserveRun(stats *domain.RunStats)
}
