package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = "9090"

[llm]
provider = "ollama"
model = "llama3"
base_url = "http://localhost:11434"

[ingest]
max_chars = 4000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 4000, cfg.Ingest.MaxChars)
	// Sections absent from the file keep their defaults.
	assert.Equal(t, "neo4j://127.0.0.1:7687", cfg.Graph.URI)
	assert.Equal(t, 1000, cfg.Ingest.SourceDeleteBatch)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("NEO4J_URI", "neo4j://db:7687")
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "7777", cfg.Server.Port)
	assert.Equal(t, "neo4j://db:7687", cfg.Graph.URI)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}
