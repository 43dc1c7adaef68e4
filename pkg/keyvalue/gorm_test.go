package keyvalue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	store, err := NewGorm(conn)
	require.NoError(t, err)
	require.NoError(t, store.AutoMigrate(context.Background()))
	return store
}

func TestGormStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestGormStore(t)

	require.NoError(t, store.Set(ctx, "cartstate:items", []byte(`[]`)))

	got, err := store.Get(ctx, "cartstate:items")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)
}

func TestGormStoreUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestGormStore(t)

	require.NoError(t, store.Set(ctx, "cartstate:items", []byte("first")))
	require.NoError(t, store.Set(ctx, "cartstate:items", []byte("second")))

	got, err := store.Get(ctx, "cartstate:items")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	var count int64
	require.NoError(t, store.db.Model(&slotRow{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGormStoreGetMissingKey(t *testing.T) {
	store := newTestGormStore(t)

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestGormStore(t)

	require.NoError(t, store.Set(ctx, "cartstate:items", []byte("x")))
	require.NoError(t, store.Delete(ctx, "cartstate:items"))

	_, err := store.Get(ctx, "cartstate:items")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewGormRequiresHandle(t *testing.T) {
	_, err := NewGorm(nil)
	assert.Error(t, err)
}
