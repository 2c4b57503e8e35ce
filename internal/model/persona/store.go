package persona

import "fmt"

// Store exposes persona retrieval for handlers and the prompt builder.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore keeps personas in declaration order with an id index.
type MemoryStore struct {
	items []Persona
	byID  map[string]int
}

func NewMemoryStore(items []Persona) *MemoryStore {
	s := &MemoryStore{
		items: append([]Persona(nil), items...),
		byID:  make(map[string]int, len(items)),
	}
	for i, item := range s.items {
		s.byID[item.ID] = i
	}
	return s
}

func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Persona{}, false
	}
	return s.items[i], true
}

// Resolve returns the persona for id, or an error naming the unknown id.
func Resolve(store Store, id string) (Persona, error) {
	if id == "" {
		id = DefaultID
	}
	p, ok := store.FindByID(id)
	if !ok {
		return Persona{}, fmt.Errorf("persona %q not found", id)
	}
	return p, nil
}
