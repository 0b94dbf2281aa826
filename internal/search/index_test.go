package search

import (
	"testing"

	"github.com/morozRed/lineage/internal/family"
)

func sampleMembers() []family.Person {
	return []family.Person{
		{ID: "1", Name: "John Smith", Relation: family.RelationPatriarch, Occupation: "Engineer"},
		{ID: "2", Name: "Mary Smith", Relation: family.RelationMatriarch, Occupation: "Teacher", PlaceOfBirth: "Boston"},
		{ID: "3", Name: "Tom Baker", Relation: family.RelationSonInLaw, Notes: "Loves sailing near Boston"},
	}
}

func TestSearchRanksNameMatchesFirst(t *testing.T) {
	index := Build(sampleMembers())

	results := Search(index, "tom", 5)
	if len(results) == 0 || results[0].ID != "3" {
		t.Fatalf("expected Tom Baker to rank first, got %#v", results)
	}

	results = Search(index, "baker boston", 5)
	if len(results) < 2 {
		t.Fatalf("expected name and place matches, got %#v", results)
	}
	if results[0].ID != "3" {
		t.Fatalf("expected name match to outrank place match, got %#v", results)
	}
}

func TestSearchMatchesOccupationAndRelation(t *testing.T) {
	index := Build(sampleMembers())

	results := Search(index, "teacher", 5)
	if len(results) != 1 || results[0].ID != "2" {
		t.Fatalf("expected occupation match on Mary, got %#v", results)
	}

	results = Search(index, "son-in-law", 5)
	if len(results) == 0 || results[0].ID != "3" {
		t.Fatalf("expected relation match on Tom, got %#v", results)
	}
}

func TestSearchTypoFallback(t *testing.T) {
	index := Build(sampleMembers())

	results := Search(index, "Jonh", 5)
	if len(results) != 1 || results[0].ID != "1" {
		t.Fatalf("expected fuzzy fallback to find John, got %#v", results)
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	index := Build(sampleMembers())

	results := Search(index, "smith", 1)
	if len(results) != 1 {
		t.Fatalf("expected limit of 1, got %d", len(results))
	}
}

func TestSearchEmptyInputs(t *testing.T) {
	if results := Search(Build(nil), "john", 5); results != nil {
		t.Fatalf("expected nil results for empty index, got %#v", results)
	}
	if results := Search(Build(sampleMembers()), "   ", 5); results != nil {
		t.Fatalf("expected nil results for blank query, got %#v", results)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"same", "same", 0},
		{"józef", "jozef", 1},
	}
	for _, tc := range cases {
		if got := levenshteinDistance(tc.a, tc.b); got != tc.want {
			t.Fatalf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
