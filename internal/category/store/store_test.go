package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/category/store"
	"github.com/MrJamesThe3rd/spendly/internal/database/dbtest"
)

var _ category.Repository = (*store.Store)(nil)

func TestStore_SeedDefaults(t *testing.T) {
	db, _ := dbtest.New(t)
	s := store.New(db)
	ctx := context.Background()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)

	for range 4 {
		wg.Go(func() {
			n, err := s.SeedDefaults(ctx, "u1", category.Defaults())
			assert.NoError(t, err)

			mu.Lock()
			total += n
			mu.Unlock()
		})
	}

	wg.Wait()

	assert.Equal(t, 7, total, "concurrent first sign-ins seed once")

	got, err := s.ListCategories(ctx, "u1", false)
	require.NoError(t, err)
	assert.Len(t, got, 7)

	for _, c := range got {
		assert.Equal(t, category.KindDefault, c.Kind)
		assert.NotEqual(t, uuid.Nil, c.ID)
	}
}

func TestStore(t *testing.T) {
	db, _ := dbtest.New(t)
	s := store.New(db)
	ctx := context.Background()

	pets := &category.Category{
		UserID: "u1", Label: "Pets", Color: "bg-teal-500", Icon: "Heart",
		Kind: category.KindCustom, State: category.StateActive,
	}
	require.NoError(t, s.CreateCategory(ctx, pets))
	require.NotEqual(t, uuid.Nil, pets.ID)

	t.Run("Get", func(t *testing.T) {
		got, err := s.GetCategory(ctx, "u1", pets.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pets", got.Label)
		assert.Equal(t, category.KindCustom, got.Kind)

		_, err = s.GetCategory(ctx, "u2", pets.ID)
		assert.ErrorIs(t, err, category.ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		pets.Label = "Pet care"
		require.NoError(t, s.UpdateCategory(ctx, pets))

		got, err := s.GetCategory(ctx, "u1", pets.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pet care", got.Label)
	})

	t.Run("ArchiveHidesFromActiveList", func(t *testing.T) {
		require.NoError(t, s.SetState(ctx, "u1", pets.ID, category.StateArchived))

		active, err := s.ListCategories(ctx, "u1", false)
		require.NoError(t, err)
		assert.Empty(t, active)

		all, err := s.ListCategories(ctx, "u1", true)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, category.StateArchived, all[0].State)
	})

	t.Run("SetStateUnknown", func(t *testing.T) {
		err := s.SetState(ctx, "u1", uuid.New(), category.StateArchived)
		assert.ErrorIs(t, err, category.ErrNotFound)
	})
}
