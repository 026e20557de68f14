// Command ingestmon polls a search index document count and reports ingestion throughput until interrupted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vshulcz/ingestmon/pkg/util"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	_ = godotenv.Load(".env")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	build := util.BuildInfo{Version: buildVersion, Date: buildDate, Commit: buildCommit}
	logger.Info("ingestmon build", zap.Stringer("build", build))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, logger); err != nil {
		logger.Fatal("ingestmon failed", zap.Error(err))
	}
}
