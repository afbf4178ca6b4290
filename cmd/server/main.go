package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/agenthands/trellis/internal/config"
	"github.com/agenthands/trellis/internal/driver"
	"github.com/agenthands/trellis/internal/graph"
	"github.com/agenthands/trellis/internal/llm"
	"github.com/agenthands/trellis/internal/server"
)

func main() {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Warn("Could not load config file, using defaults", "path", cfgPath, "err", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	ctx := context.Background()

	// The service stays up without a graph store: ingestion and queries
	// degrade to skip-with-log until the store comes back at restart.
	var store *graph.Store
	d, err := driver.NewNeo4jDriver(cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password)
	if err != nil {
		log.Warn("Graph store unreachable, running degraded", "uri", cfg.Graph.URI, "err", err)
		store = graph.NewStore(nil, false)
	} else {
		defer d.Close(ctx)
		if err := d.EnsureSchema(ctx); err != nil {
			log.Warn("Could not ensure schema", "err", err)
		}
		store = graph.NewStore(d, true)
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Fatal("Failed to initialize LLM client", "provider", cfg.LLM.Provider, "err", err)
	}

	srv := server.NewServer(cfg, store, llmClient)
	r := srv.SetupRouter()

	addr := ":" + cfg.Server.Port
	log.Info("Server listening", "addr", addr, "store_available", store.Available)
	if err := r.Run(addr); err != nil {
		log.Fatal("Server exited", "err", err)
	}
}
