package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// 不存在的配置文件走默认值
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err, "Missing config file should fall back to defaults")

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, 1536, cfg.VectorDB.Dim)
	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "Llama-3.3-70b-Versatile", cfg.LLM.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.Embed.Model)
	assert.Equal(t, 1000, cfg.Document.ChunkSize)
	assert.Equal(t, 200, cfg.Document.ChunkOverlap)
	assert.Equal(t, 8, cfg.Search.Limit)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
document:
  chunk_size: 500
  chunk_overlap: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "File values should override defaults")
	assert.Equal(t, 500, cfg.Document.ChunkSize)
	assert.Equal(t, 100, cfg.Document.ChunkOverlap)
	assert.Equal(t, "local", cfg.Storage.Type, "Unset values keep defaults")
}

func TestExpandEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_RESUME_API_KEY", "secret-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  api_key: ${TEST_RESUME_API_KEY}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.LLM.APIKey, "Placeholder should expand from environment")
}
