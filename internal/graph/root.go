package graph

import "github.com/morozRed/lineage/internal/family"

// SelectRoot picks the anchor person. Parentless candidates are preferred
// in order: a Patriarch, a Matriarch, then the eldest (first wins on ties).
// With no parentless candidate the first record is used, and with no records
// at all a synthetic placeholder is returned so the root is never nil.
func SelectRoot(people []*family.Person) *family.Person {
	candidates := make([]*family.Person, 0, len(people))
	for _, person := range people {
		if !person.HasParent() {
			candidates = append(candidates, person)
		}
	}

	switch len(candidates) {
	case 0:
		if len(people) > 0 {
			return people[0]
		}
		placeholder := family.Placeholder()
		return &placeholder
	case 1:
		return candidates[0]
	}

	for _, want := range []family.Relation{family.RelationPatriarch, family.RelationMatriarch} {
		for _, candidate := range candidates {
			if candidate.Relation == want {
				return candidate
			}
		}
	}

	eldest := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.Age > eldest.Age {
			eldest = candidate
		}
	}
	return eldest
}
