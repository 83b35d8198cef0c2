package design

import (
	"context"
	"errors"
	"time"
)

// Element is an opaque, client-defined drawable unit. The server only ever
// interprets its "id" field; everything else belongs to the client.
type Element map[string]interface{}

// ID returns the element's identifier, or "" if it has none.
func (e Element) ID() string {
	id, _ := e["id"].(string)
	return id
}

// Clone returns a shallow copy of the element.
func (e Element) Clone() Element {
	cp := make(Element, len(e))
	for k, v := range e {
		cp[k] = v
	}
	return cp
}

// Design is a persisted canvas document with ordered elements and a version
// counter that increments on every accepted mutation.
type Design struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	CanvasBackground string    `json:"canvasBackground"`
	Elements         []Element `json:"elements"`
	Version          int64     `json:"version"`
	LastModifiedAt   time.Time `json:"lastModifiedAt"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Canvas defaults for newly created designs.
const (
	DefaultWidth      = 1080
	DefaultHeight     = 1080
	DefaultBackground = "#FFFFFF"
)

var (
	// ErrDesignNotFound: the target design is absent at validation or
	// mutation time.
	ErrDesignNotFound = errors.New("design not found")

	// ErrElementNotFound: the target element is absent during an update.
	ErrElementNotFound = errors.New("element not found")
)

// Store is the durable storage the applier writes against. Every mutating
// operation merges its patch and bumps version/lastModifiedAt as a single
// atomic write; no intermediate state is observable to other readers.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
	ByID(ctx context.Context, id string) (*Design, error)
	MergeFields(ctx context.Context, id string, fields map[string]interface{}) (*Design, error)
	AppendElement(ctx context.Context, id string, el Element) (*Design, error)
	MergeElement(ctx context.Context, id, elementID string, updates map[string]interface{}) (*Design, error)
	RemoveElement(ctx context.Context, id, elementID string) (*Design, error)
}
