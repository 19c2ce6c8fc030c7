package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"petcare-backend-go/internal/models"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadgerStore(BadgerOptions{InMemory: true}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenBadgerStore_RequiresPath(t *testing.T) {
	_, err := OpenBadgerStore(BadgerOptions{}, zaptest.NewLogger(t))
	require.Error(t, err)
}

func TestBadgerStore_CreateGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.Create(ctx, ServicesCollection, "", &models.Service{Name: "Grooming", Price: 25, IsActive: true})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	var got models.Service
	require.NoError(t, store.Get(ctx, ServicesCollection, id, &got))
	assert.Equal(t, "Grooming", got.Name)
	assert.Equal(t, 25.0, got.Price)
	assert.False(t, got.CreatedAt.IsZero(), "createdAt should be stamped")
	assert.Empty(t, got.ID, "the document ID is not stored in the body")
}

func TestBadgerStore_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Create(ctx, UsersCollection, "user_1", map[string]interface{}{"name": "Ann"})
	require.NoError(t, err)

	_, err = store.Create(ctx, UsersCollection, "user_1", map[string]interface{}{"name": "Bob"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestBadgerStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	var doc map[string]interface{}
	err := store.Get(context.Background(), PetsCollection, "nope", &doc)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Get(context.Background(), PetsCollection, "", &doc)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore_Find(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	docs := map[string]map[string]interface{}{
		"a": {"ownerId": "u1", "name": "Rex", "originalId": 42},
		"b": {"ownerId": "u1", "name": "Tom", "originalId": "42"},
		"c": {"ownerId": "u2", "name": "Kit"},
	}
	for id, doc := range docs {
		_, err := store.Create(ctx, PetsCollection, id, doc)
		require.NoError(t, err)
	}
	// Same field values in another collection must not leak into the results.
	_, err := store.Create(ctx, ServicesCollection, "a", map[string]interface{}{"ownerId": "u1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		filters []Filter
		want    []string
	}{
		{"no filter", nil, []string{"a", "b", "c"}},
		{"single filter", []Filter{Where("ownerId", "u1")}, []string{"a", "b"}},
		{"conjunction", []Filter{Where("ownerId", "u1"), Where("name", "Tom")}, []string{"b"}},
		{"numeric matches numbers only", []Filter{Where("originalId", int64(42))}, []string{"a"}},
		{"string matches strings only", []Filter{Where("originalId", "42")}, []string{"b"}},
		{"no match", []Filter{Where("ownerId", "u3")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snaps, err := store.Find(ctx, PetsCollection, tt.filters...)
			require.NoError(t, err)
			var ids []string
			for _, s := range snaps {
				ids = append(ids, s.ID())
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestBadgerStore_Update(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	_, err := store.Create(ctx, BookingsCollection, "b1", &models.Booking{Status: models.BookingStatusPending, TotalPrice: 40})
	require.NoError(t, err)

	store.now = func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, store.Update(ctx, BookingsCollection, "b1", map[string]interface{}{"status": "confirmed"}))

	var got models.Booking
	require.NoError(t, store.Get(ctx, BookingsCollection, "b1", &got))
	assert.Equal(t, models.BookingStatusConfirmed, got.Status)
	assert.Equal(t, 40.0, got.TotalPrice, "untouched fields survive a partial update")
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	err = store.Update(ctx, BookingsCollection, "missing", map[string]interface{}{"status": "confirmed"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Create(ctx, PetsCollection, "p1", map[string]interface{}{"name": "Rex"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, PetsCollection, "p1"))
	require.NoError(t, store.Delete(ctx, PetsCollection, "p1"), "deleting twice is not an error")

	var doc map[string]interface{}
	assert.ErrorIs(t, store.Get(ctx, PetsCollection, "p1", &doc), ErrNotFound)
}

func TestBadgerStore_RunTransaction(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("commits all writes", func(t *testing.T) {
		err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
			if err := tx.Create(BookingsCollection, "tx1", map[string]interface{}{"status": "pending"}); err != nil {
				return err
			}
			return tx.Set(BookingKeysCollection, "key1", &models.BookingKey{BookingID: "tx1"})
		})
		require.NoError(t, err)

		var key models.BookingKey
		require.NoError(t, store.Get(ctx, BookingKeysCollection, "key1", &key))
		assert.Equal(t, "tx1", key.BookingID)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
			if err := tx.Create(BookingsCollection, "tx2", map[string]interface{}{"status": "pending"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var doc map[string]interface{}
		assert.ErrorIs(t, store.Get(ctx, BookingsCollection, "tx2", &doc), ErrNotFound)
	})

	t.Run("update inside transaction", func(t *testing.T) {
		err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
			var doc map[string]interface{}
			if err := tx.Get(BookingsCollection, "tx1", &doc); err != nil {
				return err
			}
			return tx.Update(BookingsCollection, "tx1", map[string]interface{}{"status": "confirmed"})
		})
		require.NoError(t, err)

		var doc map[string]interface{}
		require.NoError(t, store.Get(ctx, BookingsCollection, "tx1", &doc))
		assert.Equal(t, "confirmed", doc["status"])
	})
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(float64(3), 3))
	assert.True(t, valuesEqual("pending", models.BookingStatusPending))
	assert.True(t, valuesEqual(true, true))
	assert.False(t, valuesEqual(float64(3), "3"))
	assert.False(t, valuesEqual("3", 3))
	assert.False(t, valuesEqual(nil, "x"))
}
