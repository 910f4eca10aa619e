package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusion-demo/internal/domain/entities"
)

func TestGenAIClientPool_MissingCredential(t *testing.T) {
	pool := NewGenAIClientPool("")

	assert.False(t, pool.HasCredential())

	client, err := pool.GetGenAIClient(context.Background())
	assert.ErrorIs(t, err, entities.ErrMissingCredential)
	assert.Nil(t, client)
}

func TestGenAIClientPool_ReusesClient(t *testing.T) {
	pool := NewGenAIClientPool("test-key")
	require.True(t, pool.HasCredential())

	first, err := pool.GetGenAIClient(context.Background())
	require.NoError(t, err)
	second, err := pool.GetGenAIClient(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)

	require.NoError(t, pool.Close())
	third, err := pool.GetGenAIClient(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, third, "Close drops the cached client")
}
