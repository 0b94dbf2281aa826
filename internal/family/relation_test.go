package family

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRelationCaseInsensitive(t *testing.T) {
	cases := map[string]Relation{
		"Patriarch":       RelationPatriarch,
		"daughter-in-law": RelationDaughterInLaw,
		" SON ":           RelationSon,
		"great-grandson":  RelationGreatGrandson,
	}
	for label, want := range cases {
		got, err := ParseRelation(label)
		if err != nil {
			t.Fatalf("parse %q: %v", label, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", label, want, got)
		}
	}

	if _, err := ParseRelation("Godparent"); err == nil {
		t.Fatalf("expected error for unknown label")
	}
}

func TestRelationInLawClassification(t *testing.T) {
	inLaws := map[Relation]bool{
		RelationSonInLaw:      true,
		RelationDaughterInLaw: true,
		RelationFatherInLaw:   true,
		RelationMotherInLaw:   true,
		RelationBrotherInLaw:  true,
		RelationSisterInLaw:   true,
	}
	for _, relation := range Relations() {
		if relation.IsInLaw() != inLaws[relation] {
			t.Fatalf("unexpected in-law classification for %s", relation)
		}
	}
}

func TestCoupleTableIsSymmetric(t *testing.T) {
	if Couple(RelationMother, RelationFather) != CoupleTraditional {
		t.Fatalf("expected Mother/Father to be traditional")
	}
	if Couple(RelationDaughterInLaw, RelationSon) != CoupleInLaw {
		t.Fatalf("expected Daughter-in-law/Son to be in-law")
	}
	if Couple(RelationSister, RelationBrother) != CoupleSibling {
		t.Fatalf("expected Sister/Brother to be sibling")
	}
	if Couple(RelationSon, RelationDaughter) != CoupleNone {
		t.Fatalf("expected Son/Daughter to be unrelated")
	}
}

func TestRelationJSONUsesLabels(t *testing.T) {
	data, err := json.Marshal(Person{ID: "1", Name: "A", Relation: RelationSonInLaw, Gender: GenderMale})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["relation"] != "Son-in-law" {
		t.Fatalf("expected label on the wire, got %v", raw["relation"])
	}

	var decoded Person
	if err := json.Unmarshal([]byte(`{"id":"2","name":"B","relation":"Godparent"}`), &decoded); err != nil {
		t.Fatalf("expected decode to defer to validation, got %v", err)
	}
	if decoded.Relation != RelationUnknown || decoded.Relation.Valid() {
		t.Fatalf("expected unknown label to decode as RelationUnknown, got %s", decoded.Relation)
	}
	if decoded.Relation.Normalize() != RelationOther {
		t.Fatalf("expected unknown relation to normalize to Other")
	}
}

func TestValidateRejectsUnknownRelation(t *testing.T) {
	var person Person
	if err := json.Unmarshal([]byte(`{"id":"9","name":"Typo","age":10,"gender":"male","relation":"Sonn"}`), &person); err != nil {
		t.Fatalf("unmarshal person: %v", err)
	}
	assertRelationRejected(t, person.Validate())

	var patch Patch
	if err := json.Unmarshal([]byte(`{"relation":"Matriach"}`), &patch); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}
	assertRelationRejected(t, patch.Validate())
}

func assertRelationRejected(t *testing.T, err error) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0] != "relation is not a known relation" {
		t.Fatalf("unexpected fields %v", verr.Fields)
	}
}

func TestPatchIsEmpty(t *testing.T) {
	if !(Patch{}).IsEmpty() {
		t.Fatalf("expected zero patch to be empty")
	}
	name := "x"
	if (Patch{Name: &name}).IsEmpty() {
		t.Fatalf("expected patch with a field to be non-empty")
	}
}
