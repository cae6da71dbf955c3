package main

import (
	"log"
	"log/slog"

	mcpadapter "github.com/kirillkom/docgraph/internal/adapters/mcp"
	"github.com/kirillkom/docgraph/internal/config"
	"github.com/kirillkom/docgraph/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/docgraph/internal/observability/logging"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()
	// MCP speaks JSON-RPC over stdout; logs go to stderr.
	slog.SetDefault(logging.NewJSONLoggerTo("mcp", cfg.LogLevel, logging.Stderr))

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer db.Close()

	srv := mcpadapter.NewServer(postgres.NewGraphRepository(db))
	if err := srv.ServeStdio(version); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
