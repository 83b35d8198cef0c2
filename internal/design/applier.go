package design

import (
	"context"
	"fmt"
)

// Applier translates edit intents into atomic merge-and-bump writes against
// the store. One operation per mutation kind; each returns the updated design
// or ErrDesignNotFound if the design no longer exists.
type Applier struct {
	store  Store
	fields *FieldValidator
}

func NewApplier(store Store) *Applier {
	return &Applier{
		store:  store,
		fields: NewFieldValidator(),
	}
}

// ReplaceFields merges the given top-level fields into the design. Used for
// generic design updates.
func (a *Applier) ReplaceFields(ctx context.Context, id string, fields map[string]interface{}) (*Design, error) {
	clean, err := a.fields.Clean(fields)
	if err != nil {
		return nil, err
	}
	return a.store.MergeFields(ctx, id, clean)
}

// AppendElement appends the element to the design's element sequence. There
// is no uniqueness check on the element id: a double-sent element lands
// twice, and the client owns resolving that.
func (a *Applier) AppendElement(ctx context.Context, id string, el Element) (*Design, error) {
	if el == nil {
		return nil, fmt.Errorf("missing element")
	}
	return a.store.AppendElement(ctx, id, el)
}

// UpdateElement merges partial updates into the first element whose id
// matches. Fails with ErrElementNotFound if no element matches.
func (a *Applier) UpdateElement(ctx context.Context, id, elementID string, updates map[string]interface{}) (*Design, error) {
	if elementID == "" {
		return nil, fmt.Errorf("missing element id")
	}
	return a.store.MergeElement(ctx, id, elementID, updates)
}

// DeleteElement removes every element whose id matches. The version is
// bumped even when nothing matched; a delete against an absent element
// "succeeds" rather than erroring.
func (a *Applier) DeleteElement(ctx context.Context, id, elementID string) (*Design, error) {
	if elementID == "" {
		return nil, fmt.Errorf("missing element id")
	}
	return a.store.RemoveElement(ctx, id, elementID)
}

// SetBackground changes the canvas background color.
func (a *Applier) SetBackground(ctx context.Context, id, color string) (*Design, error) {
	return a.ReplaceFields(ctx, id, map[string]interface{}{"canvasBackground": color})
}

// SetDimensions resizes the canvas.
func (a *Applier) SetDimensions(ctx context.Context, id string, width, height int) (*Design, error) {
	return a.ReplaceFields(ctx, id, map[string]interface{}{"width": width, "height": height})
}

// SetName renames the design.
func (a *Applier) SetName(ctx context.Context, id, name string) (*Design, error) {
	return a.ReplaceFields(ctx, id, map[string]interface{}{"name": name})
}
