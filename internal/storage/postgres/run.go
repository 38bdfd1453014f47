package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"catalog_importer/internal/domain"
)

// outcomeColumns is the number of bind parameters per import_outcomes row.
const outcomeColumns = 7

// maxOutcomesPerInsert keeps one statement under the postgres limit of
// 65535 bind parameters.
const maxOutcomesPerInsert = 5000

const runColumns = `run_id, source, rows, rejected, total, created, duplicate, errors,
	probe_degraded, started_at, duration`

type RunStore struct {
	db *sqlx.DB
	tx *TransactionManager
}

func NewRunStore(db *sqlx.DB) *RunStore {
	return &RunStore{db: db, tx: NewTransactionManager(db)}
}

// Save stores a run summary together with its per-record outcomes.
// Either both land or neither does.
func (s *RunStore) Save(ctx context.Context, stats *domain.RunStats, events []domain.OutcomeEvent) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.insertRun(ctx, stats); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for start := 0; start < len(events); start += maxOutcomesPerInsert {
			end := min(start+maxOutcomesPerInsert, len(events))
			if err := s.insertOutcomes(ctx, events[start:end]); err != nil {
				return fmt.Errorf("insert outcomes: %w", err)
			}
		}
		return nil
	})
}

func (s *RunStore) insertRun(ctx context.Context, stats *domain.RunStats) error {
	query := `INSERT INTO import_runs (` + runColumns + `) VALUES (
		:run_id, :source, :rows, :rejected, :total, :created, :duplicate, :errors,
		:probe_degraded, :started_at, :duration
	)`

	_, err := sqlx.NamedExecContext(ctx, GetExecutor(ctx, s.db), query, stats)
	return err
}

func (s *RunStore) insertOutcomes(ctx context.Context, events []domain.OutcomeEvent) error {
	if len(events) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO import_outcomes (run_id, sheet_row, name, article, outcome, detail, processed_at) VALUES ")
	args := make([]interface{}, 0, len(events)*outcomeColumns)

	for i, e := range events {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for col := 1; col <= outcomeColumns; col++ {
			if col > 1 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*outcomeColumns + col))
		}
		sb.WriteString(")")
		args = append(args, e.RunID, e.Row, e.Name, e.Article, string(e.Outcome), e.Detail, e.Timestamp)
	}

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, sb.String(), args...)
	return err
}

// Get returns the summary of one run.
func (s *RunStore) Get(ctx context.Context, runID string) (*domain.RunStats, error) {
	var stats domain.RunStats
	query := `SELECT ` + runColumns + ` FROM import_runs WHERE run_id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &stats, query, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select run: %w", err)
	}
	return &stats, nil
}

// Recent returns the latest runs, newest first.
func (s *RunStore) Recent(ctx context.Context, limit int) ([]domain.RunStats, error) {
	query := `SELECT ` + runColumns + ` FROM import_runs ORDER BY started_at DESC LIMIT $1`

	runs := []domain.RunStats{}
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &runs, query, limit); err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	return runs, nil
}

// Outcomes returns the per-record outcomes of a run in sheet order.
func (s *RunStore) Outcomes(ctx context.Context, runID string) ([]domain.OutcomeEvent, error) {
	query := `
		SELECT run_id, sheet_row, name, article, outcome, detail, processed_at
		FROM import_outcomes
		WHERE run_id = $1
		ORDER BY sheet_row, id`

	events := []domain.OutcomeEvent{}
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &events, query, runID); err != nil {
		return nil, fmt.Errorf("select outcomes: %w", err)
	}
	return events, nil
}
