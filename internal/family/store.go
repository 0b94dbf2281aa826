package family

import (
	"errors"
	"fmt"
)

var ErrDuplicateID = errors.New("member id already exists")

// Store holds the flat, mutable member collection in insertion order.
// It is not safe for concurrent use; callers serialize access.
type Store struct {
	records []Person
}

// NewStore builds a store from records, dropping later duplicates of an id.
func NewStore(records ...Person) *Store {
	s := &Store{}
	s.Replace(records)
	return s
}

// Replace swaps the whole collection. The first record per id wins; the ids
// of dropped duplicates are returned.
func (s *Store) Replace(records []Person) []string {
	seen := make(map[string]bool, len(records))
	out := make([]Person, 0, len(records))
	var dropped []string
	for _, record := range records {
		if seen[record.ID] {
			dropped = append(dropped, record.ID)
			continue
		}
		seen[record.ID] = true
		out = append(out, record)
	}
	s.records = out
	return dropped
}

// Add validates and appends a record. A partner named by SpouseID whose own
// SpouseID is empty gets the back link.
func (s *Store) Add(p Person) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if s.indexOf(p.ID) != -1 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
	}
	s.records = append(s.records, p)
	s.linkSpouse(p.ID, p.SpouseID)
	return nil
}

// Update applies a patch to the record with the given id. It returns false
// when no such record exists.
func (s *Store) Update(id string, patch Patch) bool {
	idx := s.indexOf(id)
	if idx == -1 {
		return false
	}
	patch.Apply(&s.records[idx])
	if patch.SpouseID != nil {
		s.linkSpouse(id, s.records[idx].SpouseID)
	}
	return true
}

// Delete removes a record and clears every parent or spouse reference to it.
func (s *Store) Delete(id string) bool {
	idx := s.indexOf(id)
	if idx == -1 {
		return false
	}
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	for i := range s.records {
		if s.records[i].ParentID == id {
			s.records[i].ParentID = ""
		}
		if s.records[i].SpouseID == id {
			s.records[i].SpouseID = ""
		}
	}
	return true
}

func (s *Store) Get(id string) (Person, bool) {
	idx := s.indexOf(id)
	if idx == -1 {
		return Person{}, false
	}
	return s.records[idx], true
}

// List returns a copy of every record in store order.
func (s *Store) List() []Person {
	out := make([]Person, len(s.records))
	copy(out, s.records)
	return out
}

// ListAdults returns the members old enough to be offered as parents.
func (s *Store) ListAdults() []Person {
	out := make([]Person, 0, len(s.records))
	for _, record := range s.records {
		if record.IsAdult() {
			out = append(out, record)
		}
	}
	return out
}

func (s *Store) Len() int {
	return len(s.records)
}

func (s *Store) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) linkSpouse(id, spouseID string) {
	if spouseID == "" || spouseID == id {
		return
	}
	idx := s.indexOf(spouseID)
	if idx == -1 {
		return
	}
	if s.records[idx].SpouseID == "" {
		s.records[idx].SpouseID = id
	}
}
