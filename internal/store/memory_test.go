package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"designcollab/internal/design"
)

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDesignStore()
	require.NoError(t, s.Create(ctx, &design.Design{
		ID:       "d1",
		Name:     "Untitled",
		Elements: []design.Element{{"id": "e1", "x": float64(1)}},
	}))

	d, err := s.ByID(ctx, "d1")
	require.NoError(t, err)

	// Mutating what the store handed out must not leak back in.
	d.Name = "hijacked"
	d.Elements[0]["x"] = float64(999)

	fresh, err := s.ByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", fresh.Name)
	assert.Equal(t, float64(1), fresh.Elements[0]["x"])
}

func TestMemoryStoreExists(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDesignStore()

	ok, err := s.Exists(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Create(ctx, &design.Design{ID: "d1", Name: "x"}))
	ok, err = s.Exists(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "d1"))
	ok, err = s.Exists(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreCreateDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDesignStore()
	d := &design.Design{ID: "d1", Name: "x"}
	require.NoError(t, s.Create(ctx, d))

	assert.Equal(t, design.DefaultWidth, d.Width)
	assert.Equal(t, design.DefaultHeight, d.Height)
	assert.Equal(t, design.DefaultBackground, d.CanvasBackground)
	assert.NotNil(t, d.Elements)
	assert.Equal(t, int64(0), d.Version)
}

func TestMemoryStoreListOrdersAndPages(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDesignStore()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Create(ctx, &design.Design{ID: id, Name: id}))
	}
	// Touch "a" so it becomes the most recently updated.
	_, err := s.MergeFields(ctx, "a", map[string]interface{}{"name": "a2"})
	require.NoError(t, err)

	page, total, err := s.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "a", page[0].ID)
	assert.Nil(t, page[0].Elements, "summaries exclude elements")

	page, _, err = s.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	page, _, err = s.List(ctx, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMemoryStoreDeleteMissing(t *testing.T) {
	s := NewMemoryDesignStore()
	err := s.Delete(context.Background(), "ghost")
	require.ErrorIs(t, err, design.ErrDesignNotFound)
}
