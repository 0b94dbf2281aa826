package family

import (
	"fmt"
	"strings"
)

// Relation classifies how a member relates to the family.
type Relation uint8

const (
	RelationOther Relation = iota
	RelationPatriarch
	RelationMatriarch
	RelationFather
	RelationMother
	RelationSon
	RelationDaughter
	RelationGrandfather
	RelationGrandmother
	RelationGrandson
	RelationGranddaughter
	RelationGreatGrandson
	RelationGreatGranddaughter
	RelationBrother
	RelationSister
	RelationUncle
	RelationAunt
	RelationNephew
	RelationNiece
	RelationCousin
	RelationSonInLaw
	RelationDaughterInLaw
	RelationFatherInLaw
	RelationMotherInLaw
	RelationBrotherInLaw
	RelationSisterInLaw
	RelationSpouse
	RelationHusband
	RelationWife
	RelationFriend
)

// RelationUnknown holds a label outside the vocabulary. It is not Valid, so
// records carrying it fail validation until normalized.
const RelationUnknown Relation = 255

type relationInfo struct {
	label string
	inLaw bool
}

var relations = [...]relationInfo{
	RelationOther:              {label: "Other"},
	RelationPatriarch:          {label: "Patriarch"},
	RelationMatriarch:          {label: "Matriarch"},
	RelationFather:             {label: "Father"},
	RelationMother:             {label: "Mother"},
	RelationSon:                {label: "Son"},
	RelationDaughter:           {label: "Daughter"},
	RelationGrandfather:        {label: "Grandfather"},
	RelationGrandmother:        {label: "Grandmother"},
	RelationGrandson:           {label: "Grandson"},
	RelationGranddaughter:      {label: "Granddaughter"},
	RelationGreatGrandson:      {label: "Great-grandson"},
	RelationGreatGranddaughter: {label: "Great-granddaughter"},
	RelationBrother:            {label: "Brother"},
	RelationSister:             {label: "Sister"},
	RelationUncle:              {label: "Uncle"},
	RelationAunt:               {label: "Aunt"},
	RelationNephew:             {label: "Nephew"},
	RelationNiece:              {label: "Niece"},
	RelationCousin:             {label: "Cousin"},
	RelationSonInLaw:           {label: "Son-in-law", inLaw: true},
	RelationDaughterInLaw:      {label: "Daughter-in-law", inLaw: true},
	RelationFatherInLaw:        {label: "Father-in-law", inLaw: true},
	RelationMotherInLaw:        {label: "Mother-in-law", inLaw: true},
	RelationBrotherInLaw:       {label: "Brother-in-law", inLaw: true},
	RelationSisterInLaw:        {label: "Sister-in-law", inLaw: true},
	RelationSpouse:             {label: "Spouse"},
	RelationHusband:            {label: "Husband"},
	RelationWife:               {label: "Wife"},
	RelationFriend:             {label: "Friend"},
}

var relationsByLabel = func() map[string]Relation {
	out := make(map[string]Relation, len(relations))
	for i, info := range relations {
		out[strings.ToLower(info.label)] = Relation(i)
	}
	return out
}()

// ParseRelation resolves a label case-insensitively. Unknown labels are an error.
func ParseRelation(label string) (Relation, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if r, ok := relationsByLabel[key]; ok {
		return r, nil
	}
	return RelationOther, fmt.Errorf("unknown relation %q", label)
}

// Relations returns the full vocabulary in declaration order.
func Relations() []Relation {
	out := make([]Relation, len(relations))
	for i := range relations {
		out[i] = Relation(i)
	}
	return out
}

func (r Relation) Valid() bool {
	return int(r) < len(relations)
}

func (r Relation) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Relation(%d)", uint8(r))
	}
	return relations[r].label
}

// IsInLaw reports whether the relation denotes marriage into the family.
func (r Relation) IsInLaw() bool {
	return r.Valid() && relations[r].inLaw
}

func (r Relation) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid relation %d", uint8(r))
	}
	return []byte(relations[r].label), nil
}

// UnmarshalText decodes an unknown label as RelationUnknown rather than
// failing, so validation can report the field by name.
func (r *Relation) UnmarshalText(text []byte) error {
	parsed, err := ParseRelation(string(text))
	if err != nil {
		*r = RelationUnknown
		return nil
	}
	*r = parsed
	return nil
}

// Normalize maps a relation outside the vocabulary to RelationOther.
func (r Relation) Normalize() Relation {
	if !r.Valid() {
		return RelationOther
	}
	return r
}

// CoupleKind tags an entry of the couple compatibility table.
type CoupleKind uint8

const (
	CoupleNone CoupleKind = iota
	// CoupleTraditional couples belong to the same branch (equal parent).
	CoupleTraditional
	// CoupleInLaw couples join two branches (different parents).
	CoupleInLaw
	// CoupleSibling pairs are label-compatible but never inferred as spouses.
	CoupleSibling
)

func (k CoupleKind) String() string {
	switch k {
	case CoupleTraditional:
		return "traditional"
	case CoupleInLaw:
		return "in-law"
	case CoupleSibling:
		return "sibling"
	default:
		return "none"
	}
}

type relationPair [2]Relation

func pairKey(a, b Relation) relationPair {
	if a > b {
		a, b = b, a
	}
	return relationPair{a, b}
}

var coupleTable = map[relationPair]CoupleKind{
	pairKey(RelationFather, RelationMother):           CoupleTraditional,
	pairKey(RelationPatriarch, RelationMatriarch):     CoupleTraditional,
	pairKey(RelationSon, RelationDaughterInLaw):       CoupleInLaw,
	pairKey(RelationDaughter, RelationSonInLaw):       CoupleInLaw,
	pairKey(RelationBrother, RelationSister):          CoupleSibling,
	pairKey(RelationGrandfather, RelationGrandmother): CoupleSibling,
	pairKey(RelationBrother, RelationWife):            CoupleSibling,
	pairKey(RelationSister, RelationHusband):          CoupleSibling,
}

// Couple looks up the compatibility table. The lookup is symmetric.
func Couple(a, b Relation) CoupleKind {
	return coupleTable[pairKey(a, b)]
}
