package interpreter

import "sort"

// Scope maps names to cells. Child scopes are snapshots: new bindings stay local,
// while inherited cells are shared with the parent.
type Scope struct {
	store map[string]*Cell
}

func NewScope() *Scope {
	return &Scope{store: make(map[string]*Cell)}
}

func (s *Scope) Get(name string) (*Cell, bool) {
	cell, ok := s.store[name]
	return cell, ok
}

func (s *Scope) Set(name string, cell *Cell) *Cell {
	s.store[name] = cell
	return cell
}

func (s *Scope) Snapshot() *Scope {
	store := make(map[string]*Cell, len(s.store))
	for k, v := range s.store {
		store[k] = v
	}
	return &Scope{store: store}
}

func (s *Scope) Len() int {
	return len(s.store)
}

func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.store))
	for k := range s.store {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
