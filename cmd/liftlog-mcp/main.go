// liftlog-mcp serves the LiftLog MCP tools over stdio. It reads either a
// local sqlite database directly, or a remote LiftLog server's REST API
// (typically over Tailscale).
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/liftlog/internal/mcp"
	"github.com/meltforce/liftlog/internal/storage/sqlite"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	dbPath := flag.String("db", "", "path to a local sqlite database")
	url := flag.String("url", "", "base URL of a remote LiftLog server (e.g. http://liftlog:8080)")
	apiKey := flag.String("api-key", os.Getenv("LIFTLOG_AUTH_API_KEY"), "API key for the remote server")
	flag.Parse()

	// stderr: stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	switch {
	case *url != "":
		ds = mcp.NewHTTPClient(*url, *apiKey)
		log.Info("mcp server starting", "mode", "remote", "url", *url)
	case *dbPath != "":
		store, err := sqlite.Open(*dbPath)
		if err != nil {
			log.Error("failed to open database", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		ds = store
		log.Info("mcp server starting", "mode", "local", "db", *dbPath)
	default:
		log.Error("either -db or -url is required")
		os.Exit(1)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}
