package keyvalue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, "cart", []byte(`[{"quantity":1}]`)))

	got, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"quantity":1}]`), got)
}

func TestMemoryGetMissingKey(t *testing.T) {
	store := NewMemory()

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, "cart", []byte("x")))
	require.NoError(t, store.Delete(ctx, "cart"))

	_, err := store.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	require.NoError(t, store.Set(ctx, "cart", []byte("abc")))

	first, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	first[0] = 'z'

	second, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), second)
}
