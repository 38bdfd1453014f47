package inbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"catalog_importer/internal/domain"
)

const pattern = "*.xlsx"

type Importer interface {
	Import(ctx context.Context, source string, r io.Reader) (*domain.RunStats, error)
}

type Config struct {
	Dir       string
	DoneDir   string
	FailedDir string
}

// Inbox imports spreadsheets dropped into a directory. Each file is moved to
// the done directory after its run completes, or to the failed directory when
// it could not be read.
type Inbox struct {
	importer Importer
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

func New(importer Importer, cfg Config, logger *slog.Logger) (*Inbox, error) {
	for _, dir := range []string{cfg.Dir, cfg.DoneDir, cfg.FailedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return &Inbox{
		importer: importer,
		cfg:      cfg,
		logger:   logger.With("component", "inbox", "dir", cfg.Dir),
		now:      time.Now,
	}, nil
}

// Poll imports every pending file in name order. A cancelled run leaves its
// file in place for the next poll.
func (in *Inbox) Poll(ctx context.Context) error {
	files, err := filepath.Glob(filepath.Join(in.cfg.Dir, pattern))
	if err != nil {
		return fmt.Errorf("list inbox: %w", err)
	}
	slices.Sort(files)

	if len(files) == 0 {
		in.logger.Debug("inbox empty")
		return nil
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := in.process(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (in *Inbox) process(ctx context.Context, path string) error {
	name := filepath.Base(path)
	logger := in.logger.With("file", name)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}

	stats, importErr := in.importer.Import(ctx, name, f)
	f.Close()

	switch {
	case importErr != nil && ctx.Err() != nil:
		logger.Warn("import interrupted, file kept", "error", importErr)
		return ctx.Err()
	case importErr != nil:
		logger.Error("import failed", "error", importErr)
		return in.move(path, in.cfg.FailedDir)
	}

	logger.Info("file imported",
		"run_id", stats.RunID,
		"total", stats.Total,
		"created", stats.Created,
		"duplicate", stats.Duplicate,
		"errors", stats.Errors,
	)

	return in.move(path, in.cfg.DoneDir)
}

// move renames path into dir with a timestamp prefix so that a re-dropped
// file of the same name never overwrites an earlier one.
func (in *Inbox) move(path, dir string) error {
	stamp := in.now().UTC().Format("20060102T150405.000")
	target := filepath.Join(dir, strings.ReplaceAll(stamp, ".", "")+"-"+filepath.Base(path))

	if err := os.Rename(path, target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("move %s: %w", filepath.Base(path), err)
	}
	return nil
}
