package graph

import "github.com/morozRed/lineage/internal/family"

// Member is a working copy of a person annotated with its resolved children.
type Member struct {
	family.Person
	Children []*Member
}

// Tree is the derived family structure. It owns every Member; spouse links
// live in the Pairing side map rather than on the members.
type Tree struct {
	Root    *Member
	Members []*Member

	byID    map[string]*Member
	pairing *Pairing
}

// Build runs the full pipeline over a snapshot of the store: copy, resolve
// spouses, select the root, assemble.
func Build(records []family.Person) *Tree {
	if len(records) == 0 {
		placeholder := &Member{Person: family.Placeholder()}
		return Assemble([]*Member{placeholder}, NewPairing(), placeholder.ID)
	}

	members := make([]*Member, 0, len(records))
	for _, record := range records {
		members = append(members, &Member{Person: record})
	}
	people := make([]*family.Person, len(members))
	for i, member := range members {
		people[i] = &member.Person
	}

	pairing := ResolveSpouses(people)
	root := SelectRoot(people)
	return Assemble(members, pairing, root.ID)
}

// Assemble indexes members, links each child under its resolvable parent and
// attaches the pairing. A ParentID naming no member is treated as parentless.
func Assemble(members []*Member, pairing *Pairing, rootID string) *Tree {
	t := &Tree{
		Members: members,
		byID:    make(map[string]*Member, len(members)),
		pairing: pairing,
	}
	if t.pairing == nil {
		t.pairing = NewPairing()
	}

	// First pass: index members and reset children.
	for _, member := range members {
		member.Children = make([]*Member, 0)
		if _, exists := t.byID[member.ID]; !exists {
			t.byID[member.ID] = member
		}
	}

	// Second pass: parent-child links in store order.
	for _, member := range members {
		if parent := t.Parent(member); parent != nil {
			parent.Children = append(parent.Children, member)
		}
	}

	t.Root = t.byID[rootID]
	if t.Root == nil && len(members) > 0 {
		t.Root = members[0]
	}
	return t
}

// Member looks up a member by id.
func (t *Tree) Member(id string) *Member {
	if t == nil {
		return nil
	}
	return t.byID[id]
}

// Parent returns the resolvable parent of m, or nil.
func (t *Tree) Parent(m *Member) *Member {
	if m == nil || !m.HasParent() {
		return nil
	}
	return t.byID[m.ParentID]
}

// Spouse returns the resolved partner of the member with the given id.
func (t *Tree) Spouse(id string) *Member {
	partnerID, ok := t.pairing.SpouseOf(id)
	if !ok {
		return nil
	}
	return t.byID[partnerID]
}

// Pairing exposes the resolved spouse mapping.
func (t *Tree) Pairing() *Pairing {
	return t.pairing
}

// Len returns the number of members.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Members)
}
