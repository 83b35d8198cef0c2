package design_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"designcollab/internal/design"
	"designcollab/internal/store"
)

func seedDesign(t *testing.T, s *store.MemoryDesignStore, id string, elements ...design.Element) *design.Design {
	t.Helper()
	d := &design.Design{ID: id, Name: "Untitled", Elements: elements}
	require.NoError(t, s.Create(context.Background(), d))
	return d
}

func TestReplaceFieldsBumpsVersion(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryDesignStore()
	a := design.NewApplier(s)
	seeded := seedDesign(t, s, "d1")

	d, err := a.ReplaceFields(ctx, "d1", map[string]interface{}{
		"name":  "Landing page",
		"width": float64(1920),
	})
	require.NoError(t, err)
	assert.Equal(t, "Landing page", d.Name)
	assert.Equal(t, 1920, d.Width)
	assert.Equal(t, int64(1), d.Version)
	assert.True(t, d.LastModifiedAt.After(seeded.LastModifiedAt) || d.LastModifiedAt.Equal(seeded.LastModifiedAt))
}

func TestReplaceFieldsDropsUnknownKeys(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryDesignStore()
	a := design.NewApplier(s)
	seedDesign(t, s, "d1")

	d, err := a.ReplaceFields(ctx, "d1", map[string]interface{}{
		"name":     "ok",
		"ownerId":  "intruder",
		"version":  int64(99),
		"elements": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Version, "version is server-owned")
}

func TestReplaceFieldsSanitizesStrings(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryDesignStore()
	a := design.NewApplier(s)
	seedDesign(t, s, "d1")

	d, err := a.ReplaceFields(ctx, "d1", map[string]interface{}{
		"name": `Poster<script>alert("x")</script>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "Poster", d.Name)
}

func TestReplaceFieldsDesignMissing(t *testing.T) {
	s := store.NewMemoryDesignStore()
	a := design.NewApplier(s)

	_, err := a.ReplaceFields(context.Background(), "nope", map[string]interface{}{"name": "x"})
	require.ErrorIs(t, err, design.ErrDesignNotFound)
}

func TestAppendElementAllowsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryDesignStore()
	a := design.NewApplier(s)
	seedDesign(t, s, "d1")

	el := design.Element{"id": "e1", "type": "rect"}
	_, err := a.AppendElement(ctx, "d1", el)
	require.NoError(t, err)
	d, err := a.AppendElement(ctx, "d1", el)
	require.NoError(t, err)

	assert.Len(t, d.Elements, 2, "double-send lands twice")
	assert.Equal(t, int64(2), d.Version)
}

func TestUpdateElementMergesFirstMatch(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryDesignStore()
	a := design.NewApplier(s)
	seedDesign(t, s, "d1",
		design.Element{"id": "e1", "type": "rect", "x": float64(0)},
		design.Element{"id": "e1", "type": "rect", "x": float64(10)},
	)

	d, err := a.UpdateElement(ctx, "d1", "e1", map[string]interface{}{"x": float64(50)})
	require.NoError(t, err)

	assert.Equal(t, float64(50), d.Elements[0]["x"])
	assert.Equal(t, "rect", d.Elements[0]["type"], "untouched fields survive the merge")
	assert.Equal(t, float64(10), d.Elements[1]["x"], "only the first match is updated")
	assert.Equal(t, int64(1), d.Version)
}

func TestUpdateElementMissing(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryDesignStore()
	a := design.NewApplier(s)
	seedDesign(t, s, "d1", design.Element{"id": "e1"})

	_, err := a.UpdateElement(ctx, "d1", "e9", map[string]interface{}{"x": float64(1)})
	require.ErrorIs(t, err, design.ErrElementNotFound)

	d, err := s.ByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), d.Version, "failed update leaves version unchanged")
	assert.Len(t, d.Elements, 1)
}

func TestDeleteElementRemovesAllMatches(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryDesignStore()
	a := design.NewApplier(s)
	seedDesign(t, s, "d1",
		design.Element{"id": "e1"},
		design.Element{"id": "e2"},
		design.Element{"id": "e1"},
	)

	d, err := a.DeleteElement(ctx, "d1", "e1")
	require.NoError(t, err)
	require.Len(t, d.Elements, 1)
	assert.Equal(t, "e2", d.Elements[0].ID())
}

func TestDeleteElementMissingStillBumps(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryDesignStore()
	a := design.NewApplier(s)
	seedDesign(t, s, "d1", design.Element{"id": "e1"})

	d, err := a.DeleteElement(ctx, "d1", "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Version, "filter-then-save always bumps")
	assert.Len(t, d.Elements, 1)
}

func TestSetBackgroundValidatesColor(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryDesignStore()
	a := design.NewApplier(s)
	seedDesign(t, s, "d1")

	d, err := a.SetBackground(ctx, "d1", "#FF8800")
	require.NoError(t, err)
	assert.Equal(t, "#ff8800", d.CanvasBackground)

	_, err = a.SetBackground(ctx, "d1", "chartreuse-ish")
	require.Error(t, err)

	d, err = s.ByID(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Version, "rejected color must not bump")
}

func TestSetDimensionsAndName(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryDesignStore()
	a := design.NewApplier(s)
	seedDesign(t, s, "d1")

	d, err := a.SetDimensions(ctx, "d1", 800, 600)
	require.NoError(t, err)
	assert.Equal(t, 800, d.Width)
	assert.Equal(t, 600, d.Height)

	d, err = a.SetName(ctx, "d1", "Spring campaign")
	require.NoError(t, err)
	assert.Equal(t, "Spring campaign", d.Name)
	assert.Equal(t, int64(2), d.Version)
}
