package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nao1215/gravestash/internal/extract"
	"github.com/nao1215/gravestash/internal/model"
	"github.com/nao1215/gravestash/internal/pipeline"
	"github.com/nao1215/gravestash/internal/store"
)

// Builder extracts workbooks from the stash.
type Builder struct {
	store     *store.Store
	extractor *extract.Extractor
	batch     *pipeline.BatchProcessor
	workers   int
	logger    *slog.Logger
	now       func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBuilderLogger sets the logger.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithWorkers sets how many pages are parsed at once. Values below 1
// keep the default.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		b.workers = n
	}
}

// WithClock overrides the workbook creation time source.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder returns a Builder reading st and extracting rows within run.
func NewBuilder(st *store.Store, run *extract.Run, opts ...BuilderOption) *Builder {
	b := &Builder{
		store:     st,
		extractor: extract.NewExtractor(run),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.batch = pipeline.NewBatchProcessor(
		pipeline.WithConcurrency(b.workers),
		pipeline.WithBatchLogger(b.logger),
	)
	return b
}

// Build returns a workbook with one sheet per unit, in unit order.
func (b *Builder) Build(ctx context.Context, units []model.CemeteryUnit) (*Workbook, error) {
	wb := NewWorkbook(b.now())
	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet := wb.AddSheet(unit.SheetName(), unit.ID)
		rows, err := b.Rows(ctx, unit.ID)
		if err != nil {
			return nil, fmt.Errorf("cemetery %s: %w", unit.ID, err)
		}
		sheet.Rows = rows
		b.logger.Info("sheet built", "cemetery", unit.ID, "sheet", sheet.Name, "rows", len(rows))
	}
	return wb, nil
}

// Rows extracts one row per URL of the cemetery's burial list, in list
// order.
func (b *Builder) Rows(ctx context.Context, cemeteryID string) ([]model.Row, error) {
	cem, err := b.store.FindCemetery(cemeteryID)
	if err != nil {
		return nil, err
	}

	urls, err := store.ReadList(b.store.ListPath(cem, model.Burial))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingBurialList, cem.Name())
	}
	if err != nil {
		return nil, err
	}

	return pipeline.ProcessBatch(ctx, b.batch, urls, func(_ context.Context, _ int, url string) (model.Row, error) {
		return b.row(cem, url)
	})
}

func (b *Builder) row(cem store.CemeteryDir, url string) (model.Row, error) {
	ref, err := model.ParseMemorialURL(url)
	if err != nil {
		return model.Row{}, fmt.Errorf("burial list entry %q: %w", url, err)
	}

	body, err := b.store.Read(store.BurialKey(cem, ref))
	if errors.Is(err, store.ErrPageNotFound) {
		return model.Row{}, fmt.Errorf("%w: %s", ErrMissingBurialPage, url)
	}
	if err != nil {
		return model.Row{}, err
	}

	page, err := extract.ParsePage(ref, body)
	if err != nil {
		return model.Row{}, err
	}
	b.logger.Debug("extracting memorial", "memorial", ref.ID)
	return b.extractor.Row(page), nil
}
