package graph

import "github.com/morozRed/lineage/internal/family"

// Pairing is the authoritative spouse mapping for one build. It is symmetric
// and holds at most one partner per person.
type Pairing struct {
	partner map[string]string
	order   [][2]string
}

func NewPairing() *Pairing {
	return &Pairing{partner: make(map[string]string)}
}

// SpouseOf returns the partner id of id, if paired.
func (p *Pairing) SpouseOf(id string) (string, bool) {
	if p == nil {
		return "", false
	}
	partner, ok := p.partner[id]
	return partner, ok
}

func (p *Pairing) Paired(id string) bool {
	_, ok := p.SpouseOf(id)
	return ok
}

// Pairs returns every pair in discovery order.
func (p *Pairing) Pairs() [][2]string {
	if p == nil {
		return nil
	}
	out := make([][2]string, len(p.order))
	copy(out, p.order)
	return out
}

func (p *Pairing) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// pair records a and b as partners unless either is already taken.
func (p *Pairing) pair(a, b string) bool {
	if a == b || p.Paired(a) || p.Paired(b) {
		return false
	}
	p.partner[a] = b
	p.partner[b] = a
	p.order = append(p.order, [2]string{a, b})
	return true
}

// ResolveSpouses pairs people, first from explicit SpouseID references, then
// by inference from relation labels. Discovered pairs write SpouseID back on
// the given records where it is empty; a set SpouseID is never overwritten.
func ResolveSpouses(people []*family.Person) *Pairing {
	pairing := NewPairing()
	byID := make(map[string]*family.Person, len(people))
	for _, person := range people {
		if _, exists := byID[person.ID]; !exists {
			byID[person.ID] = person
		}
	}

	// First pass: explicit references, mutual or repairable one-sided.
	for _, person := range people {
		if person.SpouseID == "" || pairing.Paired(person.ID) {
			continue
		}
		spouse, ok := byID[person.SpouseID]
		if !ok || spouse.ID == person.ID {
			continue
		}
		if spouse.SpouseID != "" && spouse.SpouseID != person.ID {
			continue
		}
		if pairing.pair(person.ID, spouse.ID) {
			writeBack(person, spouse)
		}
	}

	// Second pass: label inference under the family-boundary constraint.
	for _, person := range people {
		if pairing.Paired(person.ID) {
			continue
		}
		for _, candidate := range people {
			if candidate.ID == person.ID || pairing.Paired(candidate.ID) {
				continue
			}
			if !inferableCouple(person, candidate) {
				continue
			}
			if pairing.pair(person.ID, candidate.ID) {
				writeBack(person, candidate)
			}
			break
		}
	}

	return pairing
}

// inferableCouple applies the structural constraint: traditional couples
// share a parent (or are both parentless), in-law couples do not.
func inferableCouple(a, b *family.Person) bool {
	switch family.Couple(a.Relation, b.Relation) {
	case family.CoupleTraditional:
		return a.ParentID == b.ParentID
	case family.CoupleInLaw:
		return a.ParentID != b.ParentID
	default:
		return false
	}
}

func writeBack(a, b *family.Person) {
	if a.SpouseID == "" {
		a.SpouseID = b.ID
	}
	if b.SpouseID == "" {
		b.SpouseID = a.ID
	}
}
