package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfigBytes(t *testing.T) {
	data := []byte(`
database:
  path: /var/lib/feeds.db
  namespace: nyc
validation:
  batchSize: 250
  storeMode: reconnect
  skipPatterns: true
feeds:
  - name: nyc
    namespace: nyc
  - name: bcn
    namespace: bcn
`)
	require.NoError(t, LoadAppConfigBytes(data))
	assert.Equal(t, "/var/lib/feeds.db", Config.Database.Path)
	assert.Equal(t, "nyc", Config.Database.Namespace)
	assert.Equal(t, 250, Config.Validation.BatchSize)
	assert.Equal(t, "reconnect", Config.Validation.StoreMode)
	assert.False(t, Config.Validation.SkipFlex)
	assert.True(t, Config.Validation.SkipPatterns)
	require.Len(t, Config.Feeds, 2)
}

func TestLoadAppConfigBytesDefaults(t *testing.T) {
	data := []byte(`
database:
  path: feeds.db
`)
	require.NoError(t, LoadAppConfigBytes(data))
	assert.Equal(t, "create", Config.Validation.StoreMode)
	assert.Equal(t, 0, Config.Validation.BatchSize)
	assert.False(t, Config.Validation.SkipFlex)
	assert.False(t, Config.Validation.SkipPatterns)
}

func TestLoadAppConfigBytesInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing database path", "validation:\n  batchSize: 10\n"},
		{"bad store mode", "database:\n  path: feeds.db\nvalidation:\n  storeMode: append\n"},
		{"negative batch size", "database:\n  path: feeds.db\nvalidation:\n  batchSize: -1\n"},
		{"feed without namespace", "database:\n  path: feeds.db\nfeeds:\n  - name: nyc\n"},
		{"not yaml", "{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, LoadAppConfigBytes([]byte(tt.yaml)))
		})
	}
}

func TestSelectNamespace(t *testing.T) {
	require.NoError(t, LoadAppConfigBytes([]byte(`
database:
  path: feeds.db
  namespace: default_ns
feeds:
  - name: nyc
    namespace: nyc_ns
`)))
	assert.Equal(t, "nyc_ns", SelectNamespace("nyc"))
	assert.Equal(t, "default_ns", SelectNamespace("unknown"))
	assert.Equal(t, "default_ns", SelectNamespace(""))
}
