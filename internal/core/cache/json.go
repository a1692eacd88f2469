package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GetJSON loads key into out. It reports false, with no error, when the key is absent.
func GetJSON(ctx context.Context, c Cache, key string, out any) (bool, error) {
	data, err := c.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores the JSON encoding of value under key.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
