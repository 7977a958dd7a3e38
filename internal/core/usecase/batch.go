package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/mail-triage/internal/core/domain"
	"github.com/kirillkom/mail-triage/internal/core/ports"
)

// BatchObserver receives per-file outcomes of a batch run.
type BatchObserver interface {
	ObserveBatchFile(outcome string)
}

type BatchClassifyUseCase struct {
	classifier ports.EmailClassifier
	source     ports.DocumentSource
	report     ports.ReportWriter
	workers    int
	observer   BatchObserver
	logger     *slog.Logger
}

func NewBatchClassifyUseCase(
	classifier ports.EmailClassifier,
	source ports.DocumentSource,
	report ports.ReportWriter,
	workers int,
	observer BatchObserver,
	logger *slog.Logger,
) *BatchClassifyUseCase {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchClassifyUseCase{
		classifier: classifier,
		source:     source,
		report:     report,
		workers:    workers,
		observer:   observer,
		logger:     logger,
	}
}

// Run classifies every supported document in the source and writes one report
// row per document. Rows are ordered by document key.
func (uc *BatchClassifyUseCase) Run(ctx context.Context, provider string, stemming bool) ([]domain.BatchRow, error) {
	keys, err := uc.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sort.Strings(keys)

	supported := keys[:0:0]
	for _, key := range keys {
		if _, ok := domain.FormatFromFilename(key); ok {
			supported = append(supported, key)
		}
	}

	rows := make([]domain.BatchRow, len(supported))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(uc.workers)
	for i, key := range supported {
		group.Go(func() error {
			rows[i] = uc.classifyOne(groupCtx, key, provider, stemming)
			return groupCtx.Err()
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if uc.report != nil {
		if err := uc.report.Write(ctx, rows); err != nil {
			return rows, fmt.Errorf("write report: %w", err)
		}
	}
	return rows, nil
}

func (uc *BatchClassifyUseCase) classifyOne(ctx context.Context, key, provider string, stemming bool) domain.BatchRow {
	row := domain.BatchRow{Filename: path.Base(key)}

	content, err := uc.source.Read(ctx, key)
	if err != nil {
		row.Error = err.Error()
		uc.observe("read_error")
		uc.logger.ErrorContext(ctx, "batch read failed", "file", key, "error", err)
		return row
	}

	result, err := uc.classifier.Classify(ctx, domain.ClassifyRequest{
		Document: domain.Document{Filename: row.Filename, Content: content},
		Provider: provider,
		Stemming: stemming,
	})
	if err != nil {
		row.Error = err.Error()
		uc.observe("rejected")
		uc.logger.WarnContext(ctx, "batch document rejected", "file", key, "error", err)
		return row
	}
	row.Result = result
	uc.observe("classified")
	return row
}

func (uc *BatchClassifyUseCase) observe(outcome string) {
	if uc.observer != nil {
		uc.observer.ObserveBatchFile(outcome)
	}
}
