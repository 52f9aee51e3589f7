package main

import (
	"context"

	"github.com/sells-group/nameparse/internal/config"
	"github.com/sells-group/nameparse/internal/store"
)

// initStore validates the store section, opens the backend and makes sure
// its tables exist.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	if err := c.Validate("store"); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, c.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
