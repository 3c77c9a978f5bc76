package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.PutRecipe(ctx, createTestRecipe("B-2", 2, "pure"))
	require.NoError(t, err)
	_, err = s.PutRecipe(ctx, createTestRecipe("B-1", 1, "rustic"))
	require.NoError(t, err)
	for _, st := range []struct{ code, batch string }{{"s1", "B-1"}, {"s2", "B-2"}, {"s3", "B-1"}} {
		_, err = s.PutStarter(ctx, createTestStarter(st.code, st.batch, 100, 50, 200))
		require.NoError(t, err)
	}

	t.Run("recipes alias in key order", func(t *testing.T) {
		tbl, err := s.View(ctx, "Recipes", "", 0)
		require.NoError(t, err)
		assert.Equal(t, "recipe", tbl.Name)
		require.Len(t, tbl.Rows, 2)
		assert.Equal(t, "B-1", tbl.Rows[0]["batch_id"])
		assert.Equal(t, int64(1), tbl.Rows[0]["batch"])
		assert.Equal(t, 6.0, tbl.Rows[0]["ferment_temp_c"])
		assert.Nil(t, tbl.Rows[0]["abv"])
	})

	t.Run("batch filter and limit", func(t *testing.T) {
		tbl, err := s.View(ctx, "starters", "B-1", 1)
		require.NoError(t, err)
		require.Len(t, tbl.Rows, 1)
		assert.Equal(t, "s1", tbl.Rows[0]["starter_batch"])
	})

	t.Run("empty table", func(t *testing.T) {
		tbl, err := s.View(ctx, "publish_notes", "", 10)
		require.NoError(t, err)
		assert.NotNil(t, tbl.Rows)
		assert.Empty(t, tbl.Rows)
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := s.View(ctx, "sqlite_master", "", 0)
		assert.True(t, errors.Is(err, ErrUnknownTable))
	})

	t.Run("ingredients cannot filter by batch", func(t *testing.T) {
		_, err := s.View(ctx, "ingredients", "B-1", 0)
		assert.Error(t, err)
	})
}
