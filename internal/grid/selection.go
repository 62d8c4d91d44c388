package grid

// Selection is a set of selected row identifiers. The zero value is not
// usable; call NewSelection.
//
// Bulk operations take the visible ids explicitly: select-all covers the
// rows on screen and never reaches rows outside the current page or filter.
type Selection[K comparable] struct {
	ids map[K]struct{}
}

// NewSelection returns a selection holding ids.
func NewSelection[K comparable](ids ...K) *Selection[K] {
	s := &Selection[K]{ids: make(map[K]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Clone returns an independent copy.
func (s *Selection[K]) Clone() *Selection[K] {
	c := &Selection[K]{ids: make(map[K]struct{}, len(s.ids))}
	for id := range s.ids {
		c.ids[id] = struct{}{}
	}
	return c
}

func (s *Selection[K]) Has(id K) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection[K]) Len() int {
	return len(s.ids)
}

// Toggle flips id and reports whether it is now selected.
func (s *Selection[K]) Toggle(id K) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// SelectAll adds every visible id.
func (s *Selection[K]) SelectAll(visible []K) {
	for _, id := range visible {
		s.ids[id] = struct{}{}
	}
}

// DeselectAll removes every visible id.
func (s *Selection[K]) DeselectAll(visible []K) {
	for _, id := range visible {
		delete(s.ids, id)
	}
}

// IsAllSelected reports whether every visible id is selected. It is false
// when nothing is visible.
func (s *Selection[K]) IsAllSelected(visible []K) bool {
	if len(visible) == 0 {
		return false
	}
	for _, id := range visible {
		if _, ok := s.ids[id]; !ok {
			return false
		}
	}
	return true
}

func (s *Selection[K]) Clear() {
	clear(s.ids)
}

// Prune drops ids that are not in present and reports whether anything was
// removed.
func (s *Selection[K]) Prune(present map[K]struct{}) bool {
	removed := false
	for id := range s.ids {
		if _, ok := present[id]; !ok {
			delete(s.ids, id)
			removed = true
		}
	}
	return removed
}

// IDs returns the selected ids in no particular order.
func (s *Selection[K]) IDs() []K {
	out := make([]K, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}
