package graph

import (
	"fmt"

	"github.com/morozRed/lineage/internal/family"
)

// FamilyName derives a display name for the tree from its founding male line.
func FamilyName(t *Tree) string {
	if t.Len() == 0 {
		return "Family Tree"
	}
	for _, member := range t.Members {
		founder := member.Relation == family.RelationPatriarch ||
			(member.Relation == family.RelationFather && !member.HasParent())
		if founder && member.Surname() != "" {
			return fmt.Sprintf("%s Family Tree", member.Surname())
		}
	}
	for _, member := range t.Members {
		if !member.HasParent() && member.Gender == family.GenderMale && member.Surname() != "" {
			return fmt.Sprintf("%s Family Tree", member.Surname())
		}
	}
	return "Family Tree"
}

// MemberView is the serializable projection of a tree member.
type MemberView struct {
	family.Person
	Children   []string `json:"children"`
	Spouse     string   `json:"spouse,omitempty"`
	Generation int      `json:"generation"`
}

// LevelView is the serializable projection of a generation level.
type LevelView struct {
	Level   int      `json:"level"`
	Title   string   `json:"title"`
	Members []string `json:"members"`
}

// TreeView is the serializable projection of a derived tree.
type TreeView struct {
	FamilyName  string       `json:"familyName"`
	Root        string       `json:"root"`
	Members     []MemberView `json:"members"`
	Generations []LevelView  `json:"generations"`
}

// View projects the tree, its generation numbers and its display levels.
func (t *Tree) View() TreeView {
	levels := ComputeLevels(t)
	view := TreeView{
		FamilyName:  FamilyName(t),
		Members:     make([]MemberView, 0, t.Len()),
		Generations: make([]LevelView, 0),
	}
	if t.Root != nil {
		view.Root = t.Root.ID
	}
	for _, member := range t.Members {
		view.Members = append(view.Members, t.memberView(member, levels))
	}
	for _, level := range LevelsFrom(t, levels) {
		view.Generations = append(view.Generations, LevelView{
			Level:   level.Level,
			Title:   level.Title,
			Members: memberIDs(level.Members),
		})
	}
	return view
}

// MemberView projects a single member.
func (t *Tree) MemberView(id string, levels Levels) (MemberView, bool) {
	member := t.Member(id)
	if member == nil {
		return MemberView{}, false
	}
	return t.memberView(member, levels), true
}

func (t *Tree) memberView(member *Member, levels Levels) MemberView {
	view := MemberView{
		Person:     member.Person,
		Children:   memberIDs(member.Children),
		Generation: levels.Of(member.ID),
	}
	if spouse := t.Spouse(member.ID); spouse != nil {
		view.Spouse = spouse.ID
	}
	return view
}

func memberIDs(members []*Member) []string {
	out := make([]string, 0, len(members))
	for _, member := range members {
		out = append(out, member.ID)
	}
	return out
}
