package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nameparse/internal/config"
)

func TestOpen_SQLite(t *testing.T) {
	st, err := Open(context.Background(), config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	_, ok := st.(*SQLiteStore)
	assert.True(t, ok)
	assert.NoError(t, st.Migrate(context.Background()))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "mysql"`)
}

func TestOpen_PostgresBadURL(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{
		Driver:      "postgres",
		DatabaseURL: "://not a url",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: parse config")
}
