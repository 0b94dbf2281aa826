package graph

import "github.com/morozRed/lineage/internal/family"

// Levels maps a member id to its generation number (1 at the root).
type Levels map[string]int

// Of returns the generation of id, defaulting to 1 for unknown ids.
func (l Levels) Of(id string) int {
	if level, ok := l[id]; ok && level > 0 {
		return level
	}
	return 1
}

// ComputeLevels assigns each member a generation from its parent chain and
// then aligns every spouse pair onto one shared generation.
func ComputeLevels(t *Tree) Levels {
	levels := make(Levels, t.Len())
	if t.Len() == 0 {
		return levels
	}
	if t.Root != nil {
		levels[t.Root.ID] = 1
	}
	for _, member := range t.Members {
		baseLevel(t, member, levels)
	}
	for _, pair := range alignmentPairs(t) {
		alignCouple(t, pair, levels)
	}
	return levels
}

// baseLevel walks up the parent chain of start with an explicit stack. The
// visited set covers this call only. A node revisited while still on the
// stack closes a cycle: it is assigned 1 and the chain unwinds from it.
func baseLevel(t *Tree, start *Member, levels Levels) int {
	if level, ok := levels[start.ID]; ok {
		return level
	}

	stack := make([]*Member, 0, 4)
	visited := make(map[string]bool)
	for current := start; current != nil; {
		if _, ok := levels[current.ID]; ok {
			break
		}
		if visited[current.ID] {
			levels[current.ID] = 1
			break
		}
		visited[current.ID] = true
		stack = append(stack, current)

		parent := t.Parent(current)
		if parent == nil {
			levels[current.ID] = 1
			break
		}
		current = parent
	}

	for i := len(stack) - 1; i >= 0; i-- {
		member := stack[i]
		delete(visited, member.ID)
		if _, ok := levels[member.ID]; ok {
			continue
		}
		levels[member.ID] = levels[member.ParentID] + 1
	}
	return levels[start.ID]
}

// alignmentPairs lists the couples to reconcile: the resolved pairing first,
// then label-compatible leftovers found without the family-boundary check.
func alignmentPairs(t *Tree) [][2]string {
	processed := make(map[string]bool, len(t.Members))
	pairs := make([][2]string, 0, t.pairing.Len())

	for _, member := range t.Members {
		if processed[member.ID] {
			continue
		}
		spouse := t.Spouse(member.ID)
		if spouse == nil || processed[spouse.ID] {
			continue
		}
		pairs = append(pairs, [2]string{member.ID, spouse.ID})
		processed[member.ID] = true
		processed[spouse.ID] = true
	}

	for _, member := range t.Members {
		if processed[member.ID] {
			continue
		}
		candidate := firstCompatible(t, member)
		if candidate == nil || processed[candidate.ID] {
			continue
		}
		pairs = append(pairs, [2]string{member.ID, candidate.ID})
		processed[member.ID] = true
		processed[candidate.ID] = true
	}
	return pairs
}

// firstCompatible returns the first other member whose label forms a
// traditional or in-law couple with member's, processed or not.
func firstCompatible(t *Tree, member *Member) *Member {
	for _, candidate := range t.Members {
		if candidate.ID == member.ID {
			continue
		}
		switch family.Couple(member.Relation, candidate.Relation) {
		case family.CoupleTraditional, family.CoupleInLaw:
			return candidate
		}
	}
	return nil
}

// alignCouple gives an in-law the partner's generation; a same-family couple
// takes the generation closer to the root.
func alignCouple(t *Tree, pair [2]string, levels Levels) {
	a, b := t.Member(pair[0]), t.Member(pair[1])
	if a == nil || b == nil {
		return
	}
	levelA, levelB := levels.Of(a.ID), levels.Of(b.ID)

	target := min(levelA, levelB)
	switch {
	case a.Relation.IsInLaw():
		target = levelB
	case b.Relation.IsInLaw():
		target = levelA
	}
	levels[a.ID] = target
	levels[b.ID] = target
}
