package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/vshulcz/ingestmon/internal/adapters/counter/httpjson"
	"github.com/vshulcz/ingestmon/internal/adapters/http/ginserver"
	"github.com/vshulcz/ingestmon/internal/adapters/http/ginserver/middlewares"
	"github.com/vshulcz/ingestmon/internal/adapters/report/console"
	"github.com/vshulcz/ingestmon/internal/adapters/report/file"
	"github.com/vshulcz/ingestmon/internal/adapters/report/postgres"
	"github.com/vshulcz/ingestmon/internal/config"
	"github.com/vshulcz/ingestmon/internal/services/monitor"
	"github.com/vshulcz/ingestmon/internal/services/report"
)

// postgresBacklog is how many events may wait for the database before new ones are dropped.
const postgresBacklog = 64

func run(ctx context.Context, args []string, stdout, stderr io.Writer, logger *zap.Logger) error {
	cfg, err := config.LoadMonitorConfig(args, stderr)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := httpjson.New(cfg.Endpoint, cfg.Resource, &http.Client{Timeout: cfg.RequestTimeout}, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("init counter client: %w", err)
	}

	subj := report.NewSubject(logger)
	printer := console.New(stdout)
	report.Attach(subj, "console", printer)

	if cfg.SamplesFile != "" {
		report.Attach(subj, "file", file.New(cfg.SamplesFile))
	}

	if cfg.DSN != "" {
		sink, err := postgres.Open(ctx, cfg.DSN, logger)
		if err != nil {
			logger.Warn("postgres sink disabled", zap.Error(err))
		} else {
			defer func() {
				if err := sink.Close(); err != nil {
					logger.Warn("close postgres", zap.Error(err))
				}
			}()
			q := report.NewQueue("postgres", sink, postgresBacklog, logger)
			defer func() {
				ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), monitor.DefaultStopTimeout)
				defer cancel()
				if err := q.Close(ctx); err != nil {
					logger.Warn("postgres backlog not flushed", zap.Error(err))
				}
			}()
			report.Attach(subj, "postgres", q)
			logger.Info("postgres sink enabled")
		}
	}

	if cfg.StatusAddress != "" {
		board := ginserver.NewBoard()
		r := ginserver.NewRouter(ginserver.NewHandler(board), middlewares.ZapLogger(logger))
		_, stopServer, err := ginserver.Serve(ctx, cfg.StatusAddress, r, logger)
		if err != nil {
			logger.Warn("status endpoint disabled", zap.Error(err))
		} else {
			defer stopServer()
			report.Attach(subj, "status", board)
		}
	}

	logger.Info("monitor started",
		zap.String("url", client.URL()),
		zap.Duration("interval", cfg.PollInterval),
		zap.Duration("timeout", cfg.RequestTimeout),
		zap.Strings("sinks", subj.Names()),
	)
	if err := printer.Banner(client.URL()); err != nil {
		return fmt.Errorf("write banner: %w", err)
	}

	return monitor.New(cfg.Resource, cfg.PollInterval, client, subj, logger).Run(ctx)
}
