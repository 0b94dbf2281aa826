package family

import (
	"errors"
	"testing"
)

func member(id, name string, relation Relation) Person {
	return Person{ID: id, Name: name, Age: 40, Relation: relation, Gender: GenderMale}
}

func TestStoreAddRejectsDuplicateID(t *testing.T) {
	store := NewStore(member("1", "John Smith", RelationPatriarch))

	err := store.Add(member("1", "Someone Else", RelationSon))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected store to keep one record, got %d", store.Len())
	}
}

func TestStoreAddValidates(t *testing.T) {
	store := NewStore()

	err := store.Add(Person{ID: "x", Age: 200, Gender: "robot", Email: "nope"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{
		"name is required",
		"age must be at most 150",
		"gender must be one of: male female",
		"email must be a valid email",
	}
	got := make(map[string]bool, len(verr.Fields))
	for _, field := range verr.Fields {
		got[field] = true
	}
	for _, field := range want {
		if !got[field] {
			t.Fatalf("expected validation message %q in %v", field, verr.Fields)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("expected invalid record to be rejected")
	}
}

func TestStoreAddLinksSpouseBack(t *testing.T) {
	store := NewStore(member("1", "John Smith", RelationPatriarch))

	wife := member("2", "Mary Smith", RelationMatriarch)
	wife.Gender = GenderFemale
	wife.SpouseID = "1"
	if err := store.Add(wife); err != nil {
		t.Fatalf("add: %v", err)
	}

	john, _ := store.Get("1")
	if john.SpouseID != "2" {
		t.Fatalf("expected back link on partner, got %q", john.SpouseID)
	}
}

func TestStoreAddDoesNotOverwriteExistingSpouse(t *testing.T) {
	first := member("1", "John Smith", RelationFather)
	first.SpouseID = "2"
	store := NewStore(first, member("2", "Mary Smith", RelationMother))

	other := member("3", "Other Person", RelationFriend)
	other.SpouseID = "1"
	if err := store.Add(other); err != nil {
		t.Fatalf("add: %v", err)
	}

	john, _ := store.Get("1")
	if john.SpouseID != "2" {
		t.Fatalf("expected existing spouse to be kept, got %q", john.SpouseID)
	}
}

func TestStoreDeleteCascadesReferences(t *testing.T) {
	parent := member("1", "John Smith", RelationPatriarch)
	parent.SpouseID = "2"
	spouse := member("2", "Mary Smith", RelationMatriarch)
	spouse.SpouseID = "1"
	child := member("3", "Tom Smith", RelationSon)
	child.ParentID = "1"
	store := NewStore(parent, spouse, child)

	if !store.Delete("1") {
		t.Fatalf("expected delete to succeed")
	}
	if store.Delete("1") {
		t.Fatalf("expected second delete to report missing record")
	}

	for _, record := range store.List() {
		if record.ParentID == "1" || record.SpouseID == "1" {
			t.Fatalf("dangling reference to deleted member on %s", record.ID)
		}
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 records after delete, got %d", store.Len())
	}
}

func TestStoreUpdatePatchesFields(t *testing.T) {
	store := NewStore(member("1", "John Smith", RelationPatriarch), member("2", "Mary Smith", RelationMatriarch))

	name := "  John A. Smith "
	spouse := "2"
	if !store.Update("1", Patch{Name: &name, SpouseID: &spouse}) {
		t.Fatalf("expected update to find record")
	}
	if store.Update("missing", Patch{Name: &name}) {
		t.Fatalf("expected update of unknown id to report false")
	}

	john, _ := store.Get("1")
	if john.Name != "John A. Smith" {
		t.Fatalf("expected trimmed name, got %q", john.Name)
	}
	if john.Age != 40 || john.Relation != RelationPatriarch {
		t.Fatalf("expected untouched fields preserved, got %+v", john)
	}
	mary, _ := store.Get("2")
	if mary.SpouseID != "1" {
		t.Fatalf("expected spouse back link after update, got %q", mary.SpouseID)
	}

	empty := ""
	store.Update("1", Patch{SpouseID: &empty})
	john, _ = store.Get("1")
	if john.SpouseID != "" {
		t.Fatalf("expected empty patch value to clear spouse, got %q", john.SpouseID)
	}
}

func TestStoreReplaceDropsDuplicates(t *testing.T) {
	store := NewStore()
	dropped := store.Replace([]Person{
		member("1", "First", RelationFather),
		member("1", "Second", RelationSon),
		member("2", "Third", RelationSon),
	})

	if len(dropped) != 1 || dropped[0] != "1" {
		t.Fatalf("expected duplicate id 1 dropped, got %v", dropped)
	}
	record, _ := store.Get("1")
	if record.Name != "First" {
		t.Fatalf("expected first record per id to win, got %q", record.Name)
	}
}

func TestStoreListIsACopy(t *testing.T) {
	store := NewStore(member("1", "John Smith", RelationPatriarch))

	list := store.List()
	list[0].Name = "Changed"

	record, _ := store.Get("1")
	if record.Name != "John Smith" {
		t.Fatalf("expected store unaffected by caller mutation, got %q", record.Name)
	}
}

func TestStoreListAdults(t *testing.T) {
	kid := member("2", "Kid Smith", RelationSon)
	kid.Age = 17
	adult := member("3", "Adult Smith", RelationSon)
	adult.Age = AdultAge
	store := NewStore(member("1", "John Smith", RelationPatriarch), kid, adult)

	adults := store.ListAdults()
	if len(adults) != 2 || adults[0].ID != "1" || adults[1].ID != "3" {
		t.Fatalf("unexpected adults %v", adults)
	}
}
