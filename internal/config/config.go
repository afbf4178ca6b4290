package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type GraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type IngestConfig struct {
	// MaxChars bounds the text handed to the extractor per document.
	// Longer documents are truncated, not chunked.
	MaxChars          int `toml:"max_chars"`
	ScrapeTimeoutSecs int `toml:"scrape_timeout_secs"`
	SourceDeleteBatch int `toml:"source_delete_batch"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	Server ServerConfig `toml:"server"`
	Graph  GraphConfig  `toml:"graph"`
	LLM    LLMConfig    `toml:"llm"`
	Ingest IngestConfig `toml:"ingest"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8000"},
		Graph: GraphConfig{
			URI:  "neo4j://127.0.0.1:7687",
			User: "neo4j",
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "deepseek-chat",
			BaseURL:  "https://api.deepseek.com/v1",
		},
		Ingest: IngestConfig{
			MaxChars:          8000,
			ScrapeTimeoutSecs: 10,
			SourceDeleteBatch: 1000,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file-based settings with environment variables. The
// resulting Config is the single process-wide configuration object; it is
// built once at startup and read-only afterwards.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Graph.URI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		c.Graph.User = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Graph.Password = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
}
