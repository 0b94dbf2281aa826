package graph

import (
	"fmt"
	"sort"
)

// GenerationLevel is one display row: the members sharing a generation.
type GenerationLevel struct {
	Level   int
	Members []*Member
	Title   string
}

var generationTitles = []string{
	"",
	"First Generation (Founders)",
	"Second Generation (Children)",
	"Third Generation (Grandchildren)",
	"Fourth Generation (Great-Grandchildren)",
	"Fifth Generation (Great-Great-Grandchildren)",
	"Sixth Generation",
}

// GenerationTitle names a generation level.
func GenerationTitle(level int) string {
	if level > 0 && level < len(generationTitles) {
		return generationTitles[level]
	}
	return fmt.Sprintf("Generation %d", level)
}

// GroupSpouses reorders members so that each resolved partner present in the
// input directly follows the first-seen member of the pair. Everything else
// keeps its relative order.
func (t *Tree) GroupSpouses(members []*Member) []*Member {
	if len(members) == 0 {
		return []*Member{}
	}

	present := make(map[string]bool, len(members))
	for _, member := range members {
		present[member.ID] = true
	}

	processed := make(map[string]bool, len(members))
	grouped := make([]*Member, 0, len(members))
	for _, member := range members {
		if processed[member.ID] {
			continue
		}
		grouped = append(grouped, member)
		processed[member.ID] = true

		spouse := t.Spouse(member.ID)
		if spouse != nil && present[spouse.ID] && !processed[spouse.ID] {
			grouped = append(grouped, spouse)
			processed[spouse.ID] = true
		}
	}
	return grouped
}

// GenerationLevels groups the tree by generation, ascending, with spouses
// adjacent inside each level.
func GenerationLevels(t *Tree) []GenerationLevel {
	return LevelsFrom(t, ComputeLevels(t))
}

// LevelsFrom groups the tree using precomputed levels.
func LevelsFrom(t *Tree, levels Levels) []GenerationLevel {
	if t.Len() == 0 {
		return []GenerationLevel{}
	}

	byLevel := make(map[int][]*Member)
	for _, member := range t.Members {
		level := levels.Of(member.ID)
		byLevel[level] = append(byLevel[level], member)
	}

	keys := make([]int, 0, len(byLevel))
	for level := range byLevel {
		keys = append(keys, level)
	}
	sort.Ints(keys)

	out := make([]GenerationLevel, 0, len(keys))
	for _, level := range keys {
		members := t.GroupSpouses(byLevel[level])
		if len(members) == 0 {
			continue
		}
		out = append(out, GenerationLevel{
			Level:   level,
			Members: members,
			Title:   GenerationTitle(level),
		})
	}
	return out
}
