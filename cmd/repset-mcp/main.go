// Command repset-mcp runs the workout session engine behind a stdio MCP
// transport, for use as a local MCP server entry in a client config. Session
// state persists to SQLite; there is no Postgres history in this mode.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/repset/internal/mcp"
	"github.com/meltforce/repset/internal/persist"
	"github.com/meltforce/repset/internal/session"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	stateDir := flag.String("state-dir", "state", "directory for the session state database")
	appPrefix := flag.String("prefix", "repset", "key namespace for persisted session state")
	flag.Parse()

	// Logs go to stderr; stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	kv, err := persist.OpenSQLite(*stateDir)
	if err != nil {
		log.Error("failed to open session state", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	engine := session.New(session.Options{
		Adapter: persist.NewAdapter(kv, *appPrefix, log),
		Log:     log,
	})
	engine.Restore()
	defer engine.Close()

	srv := mcp.New(engine, nil, Version, log)
	if err := server.ServeStdio(srv); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
