package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/memberbridge/internal/member"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "direct", cfg.Migration.Strategy)
	assert.Equal(t, "relational", cfg.Database.Primary)
	assert.False(t, cfg.DualWrite.Enabled)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
migration:
  strategy: dual-write
database:
  primary: relational
  read_source: document
dual_write:
  enabled: true
  compare: true
relational:
  path: /tmp/members.db
document:
  path: /tmp/documents
http:
  addr: ":9090"
log:
  level: debug
  json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dual-write", cfg.Migration.Strategy)
	assert.Equal(t, "document", cfg.Database.ReadSource)
	assert.True(t, cfg.DualWrite.Enabled)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.True(t, cfg.Log.JSON)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
migration:
  strategy: dual-write
dual_write:
  enabled: true
  compare: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dual-write", cfg.Migration.Strategy)
	assert.Equal(t, "relational", cfg.Database.Primary)
	assert.Equal(t, "data/members.db", cfg.Relational.Path)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
dualwrite:
  enabled: true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoadRejectsInvalidStrategy(t *testing.T) {
	path := writeConfig(t, `
migration:
  strategy: big-bang
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
log:
  level: loud
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MEMBERBRIDGE_MIGRATION_STRATEGY", "dual-write")
	t.Setenv("MEMBERBRIDGE_DUAL_WRITE_ENABLED", "true")
	t.Setenv("MEMBERBRIDGE_DATABASE_READ_SOURCE", "document")
	t.Setenv("MEMBERBRIDGE_HTTP_ADDR", ":7070")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dual-write", cfg.Migration.Strategy)
	assert.True(t, cfg.DualWrite.Enabled)
	assert.Equal(t, "document", cfg.Database.ReadSource)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestEnvOverrideIsValidated(t *testing.T) {
	t.Setenv("MEMBERBRIDGE_DATABASE_PRIMARY", "graph")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestStrategyDirectByDefault(t *testing.T) {
	cfg := Default()
	st := cfg.Strategy()

	assert.False(t, st.DualWrite)
	assert.Equal(t, member.StoreRelational, st.Primary)
	assert.Equal(t, member.StoreRelational, st.ReadSource)
}

func TestStrategyDualWriteRequiresBothKeys(t *testing.T) {
	cfg := Default()
	cfg.Migration.Strategy = "dual-write"

	// Strategy key alone does not activate dual-write.
	assert.False(t, cfg.Strategy().DualWrite)

	cfg.DualWrite.Enabled = true
	cfg.DualWrite.Compare = true
	cfg.Database.ReadSource = "document"

	st := cfg.Strategy()
	assert.True(t, st.DualWrite)
	assert.True(t, st.CompareOnRead)
	assert.Equal(t, member.StoreDocument, st.ReadSource)
}

func TestStrategyEnableFlagAloneIsInert(t *testing.T) {
	cfg := Default()
	cfg.DualWrite.Enabled = true

	assert.False(t, cfg.Strategy().DualWrite)
}
