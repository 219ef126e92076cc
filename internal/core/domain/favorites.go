package domain

// FavoriteSet is an insertion-ordered set of product ids. The zero value is an
// empty set ready to use.
type FavoriteSet struct {
	ids   []string
	index map[string]struct{}
}

func NewFavoriteSet(ids ...string) FavoriteSet {
	var s FavoriteSet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id at the end and reports whether the set changed.
func (s *FavoriteSet) Add(id string) bool {
	if s.Contains(id) {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id and reports whether the set changed.
func (s *FavoriteSet) Remove(id string) bool {
	if !s.Contains(id) {
		return false
	}
	delete(s.index, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

func (s FavoriteSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s FavoriteSet) Len() int { return len(s.ids) }

// IDs returns the members in insertion order.
func (s FavoriteSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s FavoriteSet) Clone() FavoriteSet {
	return NewFavoriteSet(s.ids...)
}
