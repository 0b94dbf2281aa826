package family

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Gender is the member's gender category.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func ParseGender(value string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(value))) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	}
	return "", fmt.Errorf("unsupported gender %q (supported: male, female)", value)
}

// AdultAge is the minimum age for a member to be offered as a parent.
const AdultAge = 18

// Person is the only persisted entity: one family member.
type Person struct {
	ID           string   `json:"id" validate:"required"`
	Name         string   `json:"name" validate:"required"`
	Age          int      `json:"age" validate:"gte=0,lte=150"`
	Designation  string   `json:"designation,omitempty"`
	Relation     Relation `json:"relation" validate:"relation"`
	Gender       Gender   `json:"gender" validate:"oneof=male female"`
	ParentID     string   `json:"parentId,omitempty"`
	SpouseID     string   `json:"spouseId,omitempty"`
	Photo        string   `json:"photo,omitempty"`
	DateOfBirth  string   `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PlaceOfBirth string   `json:"placeOfBirth,omitempty"`
	Occupation   string   `json:"occupation,omitempty"`
	Email        string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string   `json:"phone,omitempty"`
	Address      string   `json:"address,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

func (p Person) HasParent() bool {
	return p.ParentID != ""
}

func (p Person) IsAdult() bool {
	return p.Age >= AdultAge
}

// Surname returns the last whitespace-separated token of the name.
func (p Person) Surname() string {
	parts := strings.Fields(p.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// Placeholder is the synthetic member used when the store is empty.
func Placeholder() Person {
	return Person{
		ID:          "default",
		Name:        "Default Member",
		Age:         50,
		Designation: "Family Member",
		Relation:    RelationPatriarch,
		Gender:      GenderMale,
	}
}

// Patch carries a partial update. Nil fields are left untouched; the ID is
// not patchable. An empty ParentID or SpouseID clears the reference.
type Patch struct {
	Name         *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Age          *int      `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	Designation  *string   `json:"designation,omitempty"`
	Relation     *Relation `json:"relation,omitempty" validate:"omitempty,relation"`
	Gender       *Gender   `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	ParentID     *string   `json:"parentId,omitempty"`
	SpouseID     *string   `json:"spouseId,omitempty"`
	Photo        *string   `json:"photo,omitempty"`
	DateOfBirth  *string   `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PlaceOfBirth *string   `json:"placeOfBirth,omitempty"`
	Occupation   *string   `json:"occupation,omitempty"`
	Email        *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string   `json:"phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (u Patch) IsEmpty() bool {
	return u == Patch{}
}

// Apply copies every set field onto p.
func (u Patch) Apply(p *Person) {
	setString(&p.Name, u.Name)
	if u.Age != nil {
		p.Age = *u.Age
	}
	setString(&p.Designation, u.Designation)
	if u.Relation != nil {
		p.Relation = *u.Relation
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	setString(&p.ParentID, u.ParentID)
	setString(&p.SpouseID, u.SpouseID)
	setString(&p.Photo, u.Photo)
	setString(&p.DateOfBirth, u.DateOfBirth)
	setString(&p.PlaceOfBirth, u.PlaceOfBirth)
	setString(&p.Occupation, u.Occupation)
	setString(&p.Email, u.Email)
	setString(&p.Phone, u.Phone)
	setString(&p.Address, u.Address)
	setString(&p.Notes, u.Notes)
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

// NewID returns a fresh random member id.
func NewID() string {
	return uuid.New().String()
}
