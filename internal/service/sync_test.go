package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"catalog_importer/internal/catalog"
	"catalog_importer/internal/config"
	"catalog_importer/internal/domain"
	"catalog_importer/internal/normalizer"
	"catalog_importer/internal/service/mocks"
)

type SyncServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	catalog   *mocks.MockCatalog
	reader    *mocks.MockSheetReader
	publisher *mocks.MockPublisher
	runs      *mocks.MockRunStore
	metrics   *mocks.MockMetrics

	normalizer *normalizer.Normalizer
	service    *SyncService
	cfg        config.SyncConfig
	logger     *slog.Logger
}

func (s *SyncServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.catalog = mocks.NewMockCatalog(s.ctrl)
	s.reader = mocks.NewMockSheetReader(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.runs = mocks.NewMockRunStore(s.ctrl)
	s.metrics = mocks.NewMockMetrics(s.ctrl)

	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	n, err := normalizer.New(normalizer.LayoutNoSlug, s.logger)
	s.Require().NoError(err)
	s.normalizer = n

	s.cfg = config.SyncConfig{}
	s.service = s.newService(s.cfg)
}

func (s *SyncServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}

func (s *SyncServiceTestSuite) newService(cfg config.SyncConfig) *SyncService {
	return NewSyncService(s.catalog, s.normalizer, s.reader, s.publisher, s.runs, s.metrics, s.logger, cfg)
}

// row builds an 11-column row: name, article, description, category, ..., link.
func row(number int, name, article, category string) domain.RawRow {
	return domain.RawRow{
		Number: number,
		Cells:  []string{name, article, "", category, "", "", "", "", "Диаметр:280мм", "", "https://example.com/" + article},
	}
}

func record(article string) domain.ProductRecord {
	return domain.ProductRecord{
		Row:                    2,
		Name:                   "Тормозной диск",
		Slug:                   "tormoznoy-disk",
		Article:                article,
		Category:               1,
		Specifications:         []domain.SpecEntry{{Label: "Диаметр", Value: "280мм"}},
		DetailedSpecifications: []domain.SpecEntry{{Label: "General", Value: "Not specified"}},
		WhereToBuyLink:         "https://example.com/" + article,
	}
}

func (s *SyncServiceTestSuite) TestSyncRecord_Created() {
	ctx := context.Background()
	rec := record("BD-12345")

	s.catalog.EXPECT().CountByArticle(ctx, "BD-12345").Return(0, nil)
	s.catalog.EXPECT().Create(ctx, rec).Return(nil)

	result := s.service.SyncRecord(ctx, rec)

	s.Equal(domain.OutcomeCreated, result.Outcome)
	s.Empty(result.Detail)
}

func (s *SyncServiceTestSuite) TestSyncRecord_DuplicateSkipsCreate() {
	ctx := context.Background()

	s.catalog.EXPECT().CountByArticle(ctx, "BD-12345").Return(1, nil)

	result := s.service.SyncRecord(ctx, record("BD-12345"))

	s.Equal(domain.OutcomeDuplicate, result.Outcome)
}

func (s *SyncServiceTestSuite) TestSyncRecord_SecondSubmissionIsDuplicate() {
	ctx := context.Background()
	rec := record("BD-12345")

	gomock.InOrder(
		s.catalog.EXPECT().CountByArticle(ctx, "BD-12345").Return(0, nil),
		s.catalog.EXPECT().Create(ctx, rec).Return(nil),
		s.catalog.EXPECT().CountByArticle(ctx, "BD-12345").Return(1, nil),
	)

	s.Equal(domain.OutcomeCreated, s.service.SyncRecord(ctx, rec).Outcome)
	s.Equal(domain.OutcomeDuplicate, s.service.SyncRecord(ctx, rec).Outcome)
}

func (s *SyncServiceTestSuite) TestSyncRecord_RemoteError() {
	ctx := context.Background()
	rec := record("BD-1")

	s.catalog.EXPECT().CountByArticle(ctx, "BD-1").Return(0, nil)
	s.catalog.EXPECT().Create(ctx, rec).Return(&catalog.StatusError{
		Op:         "create product",
		StatusCode: 400,
		Body:       `{"error":{"message":"slug must be unique"}}`,
	})

	result := s.service.SyncRecord(ctx, rec)

	s.Equal(domain.OutcomeRemoteError, result.Outcome)
	s.Empty(result.Detail)
}

func (s *SyncServiceTestSuite) TestSyncRecord_TransportError() {
	ctx := context.Background()
	rec := record("BD-1")

	s.catalog.EXPECT().CountByArticle(ctx, "BD-1").Return(0, nil)
	s.catalog.EXPECT().Create(ctx, rec).Return(fmt.Errorf("execute request: %w", errors.New("connection refused")))

	result := s.service.SyncRecord(ctx, rec)

	s.Equal(domain.OutcomeTransportError, result.Outcome)
	s.Contains(result.Detail, "connection refused")
}

func (s *SyncServiceTestSuite) TestSyncRecord_ProbeFailureSkipsCreate() {
	ctx := context.Background()

	s.catalog.EXPECT().CountByArticle(ctx, "BD-1").Return(0, &catalog.StatusError{Op: "probe article", StatusCode: 502})

	result := s.service.SyncRecord(ctx, record("BD-1"))

	s.Equal(domain.OutcomeProbeDegraded, result.Outcome)
	s.Contains(result.Detail, "502")
}

func (s *SyncServiceTestSuite) TestSyncRecord_ProbeFailureFallsThroughWhenConfigured() {
	ctx := context.Background()
	rec := record("BD-1")
	service := s.newService(config.SyncConfig{CreateOnProbeFailure: true})

	s.catalog.EXPECT().CountByArticle(ctx, "BD-1").Return(0, errors.New("dial tcp: i/o timeout"))
	s.catalog.EXPECT().Create(ctx, rec).Return(nil)

	result := service.SyncRecord(ctx, rec)

	s.Equal(domain.OutcomeCreated, result.Outcome)
}

func (s *SyncServiceTestSuite) TestSyncRecord_CancelledDuringProbe() {
	ctx, cancel := context.WithCancel(context.Background())
	service := s.newService(config.SyncConfig{CreateOnProbeFailure: true})

	s.catalog.EXPECT().CountByArticle(ctx, "BD-1").DoAndReturn(
		func(ctx context.Context, article string) (int, error) {
			cancel()
			return 0, ctx.Err()
		},
	)

	result := service.SyncRecord(ctx, record("BD-1"))

	s.Equal(domain.OutcomeTransportError, result.Outcome)
}

func (s *SyncServiceTestSuite) TestRun_AggregatesOutcomes() {
	ctx := context.Background()

	rows := []domain.RawRow{
		row(2, "Тормозной диск", "A-1", "1"),
		row(3, "Колодки", "A-2", "1"),
		row(4, "Без категории", "A-3", ""),
		row(5, "Фильтр", "A-4", "2"),
		row(6, "Ремень", "A-5", "2"),
		row(7, "Свеча", "A-6", "2"),
	}

	var created []string
	s.catalog.EXPECT().CountByArticle(ctx, "A-1").Return(0, nil)
	s.catalog.EXPECT().CountByArticle(ctx, "A-2").Return(1, nil)
	s.catalog.EXPECT().CountByArticle(ctx, "A-4").Return(0, nil)
	s.catalog.EXPECT().CountByArticle(ctx, "A-5").Return(0, errors.New("unexpected EOF"))
	s.catalog.EXPECT().CountByArticle(ctx, "A-6").Return(0, nil)
	s.catalog.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, r domain.ProductRecord) error {
			created = append(created, r.Article)
			if r.Article == "A-4" {
				return &catalog.StatusError{StatusCode: 500}
			}
			if r.Article == "A-6" {
				return errors.New("connection reset by peer")
			}
			return nil
		},
	).Times(3)

	var published []domain.OutcomeEvent
	s.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, e *domain.OutcomeEvent) error {
			published = append(published, *e)
			return nil
		},
	).Times(5)
	s.publisher.EXPECT().PublishSummary(gomock.Any(), gomock.Any()).Return(nil)

	s.metrics.EXPECT().ObserveOutcome(gomock.Any()).Times(5)
	s.metrics.EXPECT().ObserveRejected(1)
	s.metrics.EXPECT().ObserveRun(gomock.Any())

	var savedEvents []domain.OutcomeEvent
	s.runs.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, stats *domain.RunStats, events []domain.OutcomeEvent) error {
			savedEvents = events
			return nil
		},
	)

	stats, err := s.service.Run(ctx, "products.xlsx", rows)

	s.Require().NoError(err)
	s.Equal("products.xlsx", stats.Source)
	s.NotEmpty(stats.RunID)
	s.Equal(6, stats.Rows)
	s.Equal(1, stats.Rejected)
	s.Equal(5, stats.Total)
	s.Equal(1, stats.Created)
	s.Equal(1, stats.Duplicate)
	s.Equal(3, stats.Errors)
	s.Equal(1, stats.ProbeDegraded)

	s.Equal([]string{"A-1", "A-4", "A-6"}, created)

	s.Require().Len(published, 5)
	outcomes := make([]domain.Outcome, len(published))
	for i, e := range published {
		outcomes[i] = e.Outcome
		s.Equal(stats.RunID, e.RunID)
	}
	s.Equal([]domain.Outcome{
		domain.OutcomeCreated,
		domain.OutcomeDuplicate,
		domain.OutcomeRemoteError,
		domain.OutcomeProbeDegraded,
		domain.OutcomeTransportError,
	}, outcomes)
	s.Equal(6, published[3].Row)
	s.Contains(published[4].Detail, "connection reset by peer")
	s.Equal(published, savedEvents)
}

func (s *SyncServiceTestSuite) TestRun_CollaboratorFailuresDoNotChangeOutcomes() {
	ctx := context.Background()

	s.catalog.EXPECT().CountByArticle(ctx, "A-1").Return(0, nil)
	s.catalog.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	s.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("channel closed"))
	s.publisher.EXPECT().PublishSummary(gomock.Any(), gomock.Any()).Return(errors.New("channel closed"))
	s.metrics.EXPECT().ObserveOutcome(domain.OutcomeCreated)
	s.metrics.EXPECT().ObserveRejected(0)
	s.metrics.EXPECT().ObserveRun(gomock.Any())
	s.runs.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	stats, err := s.service.Run(ctx, "products.xlsx", []domain.RawRow{row(2, "Диск", "A-1", "1")})

	s.NoError(err)
	s.Equal(1, stats.Created)
	s.Equal(0, stats.Errors)
}

func (s *SyncServiceTestSuite) TestRun_NilCollaborators() {
	ctx := context.Background()
	service := NewSyncService(s.catalog, s.normalizer, s.reader, nil, nil, nil, s.logger, s.cfg)

	s.catalog.EXPECT().CountByArticle(ctx, "A-1").Return(0, nil)
	s.catalog.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	stats, err := service.Run(ctx, "products.xlsx", []domain.RawRow{
		row(2, "Диск", "A-1", "1"),
		{Number: 3, Cells: []string{"", " "}},
	})

	s.NoError(err)
	s.Equal(1, stats.Total)
	s.Equal(1, stats.Created)
	s.Equal(0, stats.Rejected)
}

func (s *SyncServiceTestSuite) TestRun_StopsWhenCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service := NewSyncService(s.catalog, s.normalizer, s.reader, nil, s.runs, nil, s.logger, s.cfg)

	s.catalog.EXPECT().CountByArticle(ctx, "A-1").Return(0, nil)
	s.catalog.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(context.Context, domain.ProductRecord) error {
			cancel()
			return nil
		},
	)
	s.runs.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, stats *domain.RunStats, events []domain.OutcomeEvent) error {
			s.NoError(ctx.Err())
			s.Len(events, 1)
			return nil
		},
	)

	stats, err := service.Run(ctx, "products.xlsx", []domain.RawRow{
		row(2, "Диск", "A-1", "1"),
		row(3, "Колодки", "A-2", "1"),
	})

	s.ErrorIs(err, context.Canceled)
	s.Equal(1, stats.Total)
	s.Equal(1, stats.Created)
}

func (s *SyncServiceTestSuite) TestImport_ReadsSpreadsheet() {
	ctx := context.Background()
	service := NewSyncService(s.catalog, s.normalizer, s.reader, nil, nil, nil, s.logger, s.cfg)
	body := strings.NewReader("xlsx")

	s.reader.EXPECT().ReadRows(ctx, body).Return([]domain.RawRow{row(2, "Диск", "A-1", "1")}, nil)
	s.catalog.EXPECT().CountByArticle(ctx, "A-1").Return(1, nil)

	stats, err := service.Import(ctx, "upload.xlsx", body)

	s.NoError(err)
	s.Equal(1, stats.Duplicate)
}

func (s *SyncServiceTestSuite) TestImport_UnreadableSpreadsheet() {
	ctx := context.Background()
	var body io.Reader = strings.NewReader("garbage")

	s.reader.EXPECT().ReadRows(ctx, body).Return(nil, errors.New("invalid Excel file format"))

	stats, err := s.service.Import(ctx, "upload.xlsx", body)

	s.Error(err)
	s.Nil(stats)
	s.Contains(err.Error(), "read spreadsheet")
}
