package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/mail-triage/internal/bootstrap"
	"github.com/kirillkom/mail-triage/internal/config"
	"github.com/kirillkom/mail-triage/internal/core/usecase"
	"github.com/kirillkom/mail-triage/internal/infrastructure/report"
	"github.com/kirillkom/mail-triage/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/mail-triage/internal/observability/logging"
	"github.com/kirillkom/mail-triage/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	dir := flag.String("dir", "", "directory with .pdf/.txt e-mails (required)")
	out := flag.String("out", "report.xlsx", "output XLSX report path")
	provider := flag.String("provider", cfg.DefaultProvider, "backend: openai or huggingface")
	stemming := flag.Bool("stemming", false, "apply Portuguese stemming")
	workers := flag.Int("workers", cfg.BatchWorkers, "concurrent classifications")
	recursive := flag.Bool("recursive", false, "include nested directories")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	flag.Parse()

	logger := logging.NewJSONLogger(cfg.ServiceName+"-batch", cfg.LogLevel)
	slog.SetDefault(logger)

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "-dir is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batchMetrics := metrics.NewBatchMetrics(cfg.ServiceName)
	classificationMetrics := metrics.NewClassificationMetrics(cfg.ServiceName, batchMetrics.Registry())
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, batchMetrics.Handler(), logger)
	}

	app, err := bootstrap.New(cfg, logger, classificationMetrics)
	if err != nil {
		logger.Error("bootstrap error", "error", err)
		os.Exit(1)
	}

	storageOpts := []localfs.Option{localfs.WithMaxFileSize(int64(cfg.APIMaxUploadMB) << 20)}
	if *recursive {
		storageOpts = append(storageOpts, localfs.WithRecursive())
	}
	source, err := localfs.New(*dir, storageOpts...)
	if err != nil {
		logger.Error("open input dir", "error", err)
		os.Exit(1)
	}

	uc := usecase.NewBatchClassifyUseCase(app.ClassifyUC, source, report.NewXLSXWriter(*out), *workers, batchMetrics, logger)

	started := time.Now()
	rows, err := uc.Run(ctx, *provider, *stemming)
	batchMetrics.ObserveRun(time.Since(started))
	if err != nil {
		logger.Error("batch run failed", "error", err)
		os.Exit(1)
	}

	failed := 0
	for _, row := range rows {
		if row.Error != "" {
			failed++
		}
	}
	logger.Info("batch run complete",
		"files", len(rows),
		"failed", failed,
		"report", *out,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
}

func serveMetrics(addr string, handler http.Handler, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server error", "error", err)
	}
}
