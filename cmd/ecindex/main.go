package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oceanobs/ecindex/internal/adapter/catalog"
	"github.com/oceanobs/ecindex/internal/adapter/export"
	"github.com/oceanobs/ecindex/internal/adapter/gridcsv"
	httpadapter "github.com/oceanobs/ecindex/internal/adapter/http"
	"github.com/oceanobs/ecindex/internal/adapter/netcdf"
	"github.com/oceanobs/ecindex/internal/config"
	"github.com/oceanobs/ecindex/internal/domain"
	"github.com/oceanobs/ecindex/internal/observability"
	"github.com/oceanobs/ecindex/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ref, err := domain.NewReferencePeriod(cfg.RefStart, cfg.RefEnd)
	if err != nil {
		logger.Error("invalid reference period", "error", err)
		os.Exit(1)
	}

	source := catalog.NewReader(cfg.CatalogPath, catalog.Filter{
		Variable:   cfg.Variable,
		Experiment: cfg.Experiment,
		MemberID:   cfg.MemberID,
	})
	computer := pipeline.NewIndexComputer(map[string]pipeline.FieldLoader{
		"netcdf": netcdf.Loader{Variable: cfg.Variable},
		"csv":    gridcsv.Loader{},
	}, ref, logger)
	writer := export.NewWriter(cfg.OutputDir, logger)

	p := pipeline.New(source, computer, writer, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Observational endpoints are optional for a batch run; enable them by
	// setting HTTP_ADDR when running under an orchestrator.
	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	sum, runErr := p.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		cancel()
	}

	switch {
	case runErr != nil:
		logger.Error("run aborted", "error", runErr, "processed", sum.Processed, "failed", sum.Failed)
		os.Exit(1)
	case sum.Processed == 0 && sum.Failed > 0:
		logger.Error("all datasets failed", "failed", sum.Failed)
		os.Exit(1)
	default:
		logger.Info("run complete", "processed", sum.Processed, "failed", sum.Failed)
	}
}
