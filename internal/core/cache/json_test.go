package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

func TestJSONRoundTrip(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, adapter, "sample", sample{Code: "WELCOME10", Count: 2}, 0))

	var got sample
	found, err := GetJSON(ctx, adapter, "sample", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sample{Code: "WELCOME10", Count: 2}, got)
}

func TestGetJSON_Missing(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	var got sample
	found, err := GetJSON(context.Background(), adapter, "absent", &got)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSON_Corrupt(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()
	require.NoError(t, adapter.Set(ctx, "broken", []byte("{not json"), 0))

	var got sample
	found, err := GetJSON(ctx, adapter, "broken", &got)
	assert.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "failed to unmarshal broken")
}
