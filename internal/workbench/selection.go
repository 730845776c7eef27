package workbench

// SelectionSet is the working set of card ids. Membership is unique and
// enumeration follows insertion order.
type SelectionSet struct {
	ids   []int64
	index map[int64]struct{}
}

// NewSelectionSet creates an empty selection
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{index: make(map[int64]struct{})}
}

// Has reports membership
func (s *SelectionSet) Has(id int64) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of selected ids
func (s *SelectionSet) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the members in insertion order
func (s *SelectionSet) IDs() []int64 {
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// Toggle includes or excludes id and reports whether membership changed
func (s *SelectionSet) Toggle(id int64, included bool) bool {
	if included {
		return s.add(id)
	}
	return s.remove(id)
}

// AddMany adds ids in order, skipping members already present
func (s *SelectionSet) AddMany(ids []int64) int {
	added := 0
	for _, id := range ids {
		if s.add(id) {
			added++
		}
	}
	return added
}

// Clear empties the selection
func (s *SelectionSet) Clear() {
	s.ids = nil
	s.index = make(map[int64]struct{})
}

// Replace swaps the whole membership for ids
func (s *SelectionSet) Replace(ids []int64) {
	s.Clear()
	s.AddMany(ids)
}

func (s *SelectionSet) add(id int64) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

func (s *SelectionSet) remove(id int64) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}
