package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/lineage/internal/family"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string, defaultValue bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalIntFlag(cmd *cobra.Command, name string, defaultValue int) (int, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// changedString returns a pointer to the flag value only when the flag was
// set on the command line.
func changedString(cmd *cobra.Command, name string) (*string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return nil, nil
	}
	value, err := OptionalStringFlag(cmd, name)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// memberStringFlags maps the free-text member flags onto patch fields.
var memberStringFlags = []struct {
	flag  string
	field func(*family.Patch) **string
}{
	{"name", func(p *family.Patch) **string { return &p.Name }},
	{"designation", func(p *family.Patch) **string { return &p.Designation }},
	{"parent", func(p *family.Patch) **string { return &p.ParentID }},
	{"spouse", func(p *family.Patch) **string { return &p.SpouseID }},
	{"photo", func(p *family.Patch) **string { return &p.Photo }},
	{"dob", func(p *family.Patch) **string { return &p.DateOfBirth }},
	{"place", func(p *family.Patch) **string { return &p.PlaceOfBirth }},
	{"occupation", func(p *family.Patch) **string { return &p.Occupation }},
	{"email", func(p *family.Patch) **string { return &p.Email }},
	{"phone", func(p *family.Patch) **string { return &p.Phone }},
	{"address", func(p *family.Patch) **string { return &p.Address }},
	{"notes", func(p *family.Patch) **string { return &p.Notes }},
}

func addMemberFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Full name")
	cmd.Flags().Int("age", 0, "Age in years")
	cmd.Flags().String("gender", "", "Gender: male|female")
	cmd.Flags().String("relation", "", "Relation label, e.g. Son or Daughter-in-law")
	cmd.Flags().String("designation", "", "Display designation")
	cmd.Flags().String("parent", "", "Parent member id (empty clears)")
	cmd.Flags().String("spouse", "", "Spouse member id (empty clears)")
	cmd.Flags().String("photo", "", "Photo URL")
	cmd.Flags().String("dob", "", "Date of birth (YYYY-MM-DD)")
	cmd.Flags().String("place", "", "Place of birth")
	cmd.Flags().String("occupation", "", "Occupation")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().String("address", "", "Postal address")
	cmd.Flags().String("notes", "", "Free-form notes")
}

// PatchFromFlags builds a patch from the member flags that were set.
func PatchFromFlags(cmd *cobra.Command) (family.Patch, error) {
	var patch family.Patch
	for _, f := range memberStringFlags {
		value, err := changedString(cmd, f.flag)
		if err != nil {
			return family.Patch{}, err
		}
		if value != nil {
			*f.field(&patch) = value
		}
	}

	if cmd.Flags().Lookup("age") != nil && cmd.Flags().Changed("age") {
		age, err := OptionalIntFlag(cmd, "age", 0)
		if err != nil {
			return family.Patch{}, err
		}
		patch.Age = &age
	}

	gender, err := changedString(cmd, "gender")
	if err != nil {
		return family.Patch{}, err
	}
	if gender != nil {
		parsed, err := family.ParseGender(*gender)
		if err != nil {
			return family.Patch{}, err
		}
		patch.Gender = &parsed
	}

	relation, err := changedString(cmd, "relation")
	if err != nil {
		return family.Patch{}, err
	}
	if relation != nil {
		parsed, err := family.ParseRelation(*relation)
		if err != nil {
			return family.Patch{}, err
		}
		patch.Relation = &parsed
	}
	return patch, nil
}
