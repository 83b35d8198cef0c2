package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"designcollab/internal/design"
)

// MemoryDesignStore is a mutex-guarded in-memory design store with the same
// merge-and-bump semantics as the Postgres store. It backs tests and DB-less
// development.
type MemoryDesignStore struct {
	mu      sync.RWMutex
	designs map[string]*design.Design
}

func NewMemoryDesignStore() *MemoryDesignStore {
	return &MemoryDesignStore{
		designs: make(map[string]*design.Design),
	}
}

func (s *MemoryDesignStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.designs[id]
	return ok, nil
}

func (s *MemoryDesignStore) ByID(ctx context.Context, id string) (*design.Design, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.designs[id]
	if !ok {
		return nil, design.ErrDesignNotFound
	}
	return copyDesign(d), nil
}

func (s *MemoryDesignStore) MergeFields(ctx context.Context, id string, fields map[string]interface{}) (*design.Design, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.designs[id]
	if !ok {
		return nil, design.ErrDesignNotFound
	}

	if v, ok := fields["name"].(string); ok {
		d.Name = v
	}
	if v, ok := fields["description"].(string); ok {
		d.Description = v
	}
	if v, ok := asInt(fields["width"]); ok {
		d.Width = v
	}
	if v, ok := asInt(fields["height"]); ok {
		d.Height = v
	}
	if v, ok := fields["canvasBackground"].(string); ok {
		d.CanvasBackground = v
	}
	if v, ok := asElements(fields["elements"]); ok {
		d.Elements = v
	}

	s.bump(d)
	return copyDesign(d), nil
}

func (s *MemoryDesignStore) AppendElement(ctx context.Context, id string, el design.Element) (*design.Design, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.designs[id]
	if !ok {
		return nil, design.ErrDesignNotFound
	}

	d.Elements = append(d.Elements, el.Clone())
	s.bump(d)
	return copyDesign(d), nil
}

func (s *MemoryDesignStore) MergeElement(ctx context.Context, id, elementID string, updates map[string]interface{}) (*design.Design, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.designs[id]
	if !ok {
		return nil, design.ErrDesignNotFound
	}

	// First match in sequence order.
	idx := -1
	for i, el := range d.Elements {
		if el.ID() == elementID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, design.ErrElementNotFound
	}

	merged := d.Elements[idx].Clone()
	for k, v := range updates {
		merged[k] = v
	}
	d.Elements[idx] = merged

	s.bump(d)
	return copyDesign(d), nil
}

func (s *MemoryDesignStore) RemoveElement(ctx context.Context, id, elementID string) (*design.Design, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.designs[id]
	if !ok {
		return nil, design.ErrDesignNotFound
	}

	kept := d.Elements[:0]
	for _, el := range d.Elements {
		if el.ID() != elementID {
			kept = append(kept, el)
		}
	}
	d.Elements = kept

	// Version bumps whether or not anything matched.
	s.bump(d)
	return copyDesign(d), nil
}

func (s *MemoryDesignStore) Create(ctx context.Context, d *design.Design) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if d.Width == 0 {
		d.Width = design.DefaultWidth
	}
	if d.Height == 0 {
		d.Height = design.DefaultHeight
	}
	if d.CanvasBackground == "" {
		d.CanvasBackground = design.DefaultBackground
	}
	if d.Elements == nil {
		d.Elements = []design.Element{}
	}
	d.CreatedAt = now
	d.UpdatedAt = now
	d.LastModifiedAt = now

	s.designs[d.ID] = copyDesign(d)
	return nil
}

// List returns a page of designs ordered by most recently updated, elements
// excluded, plus the total count.
func (s *MemoryDesignStore) List(ctx context.Context, page, limit int) ([]design.Design, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]design.Design, 0, len(s.designs))
	for _, d := range s.designs {
		summary := *d
		summary.Elements = nil
		all = append(all, summary)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	total := len(all)
	start := (page - 1) * limit
	if start >= total {
		return []design.Design{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s *MemoryDesignStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.designs[id]; !ok {
		return design.ErrDesignNotFound
	}
	delete(s.designs, id)
	return nil
}

func (s *MemoryDesignStore) bump(d *design.Design) {
	now := time.Now()
	d.Version++
	d.LastModifiedAt = now
	d.UpdatedAt = now
}

func copyDesign(d *design.Design) *design.Design {
	cp := *d
	cp.Elements = make([]design.Element, len(d.Elements))
	for i, el := range d.Elements {
		cp.Elements[i] = el.Clone()
	}
	return &cp
}

func asElements(v interface{}) ([]design.Element, bool) {
	switch els := v.(type) {
	case []design.Element:
		return els, true
	case []interface{}:
		out := make([]design.Element, 0, len(els))
		for _, e := range els {
			m, ok := e.(map[string]interface{})
			if !ok {
				return nil, false
			}
			out = append(out, design.Element(m))
		}
		return out, true
	default:
		return nil, false
	}
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
