package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/lineage/internal/family"
	"github.com/morozRed/lineage/internal/fileutil"
)

func RunAdd(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	id, err := OptionalStringFlag(cmd, "id")
	if err != nil {
		return err
	}
	patch, err := PatchFromFlags(cmd)
	if err != nil {
		return err
	}
	if id == "" {
		id = family.NewID()
	}
	person := family.Person{ID: id}
	patch.Apply(&person)

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.checkReference(id, "parent", patch.ParentID); err != nil {
		return err
	}
	if err := sess.checkReference(id, "spouse", patch.SpouseID); err != nil {
		return err
	}
	if err := sess.svc.Add(person); err != nil {
		return describeMutationError(err)
	}

	view, err := sess.memberView(id)
	if err != nil {
		return err
	}
	if asJSON {
		return fileutil.PrintJSON(view)
	}
	fmt.Printf("added %s (%s) generation=%d\n", view.Name, view.ID, view.Generation)
	return nil
}

func RunUpdate(cmd *cobra.Command, args []string) error {
	id := strings.TrimSpace(args[0])
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	patch, err := PatchFromFlags(cmd)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return fmt.Errorf("no fields to update; pass at least one member flag")
	}
	if err := patch.Validate(); err != nil {
		return describeMutationError(err)
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if _, ok := sess.svc.MemberByID(id); !ok {
		return fmt.Errorf("member %q not found", id)
	}
	if err := sess.checkReference(id, "parent", patch.ParentID); err != nil {
		return err
	}
	if err := sess.checkReference(id, "spouse", patch.SpouseID); err != nil {
		return err
	}
	if !sess.svc.Update(id, patch) {
		return fmt.Errorf("member %q not found", id)
	}

	view, err := sess.memberView(id)
	if err != nil {
		return err
	}
	if asJSON {
		return fileutil.PrintJSON(view)
	}
	fmt.Printf("updated %s (%s) generation=%d\n", view.Name, view.ID, view.Generation)
	return nil
}

func RunDelete(cmd *cobra.Command, args []string) error {
	id := strings.TrimSpace(args[0])
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if !sess.svc.Delete(id) {
		return fmt.Errorf("member %q not found", id)
	}
	fmt.Printf("deleted %s (%d members remain)\n", id, len(sess.svc.ListAllMembers()))
	return nil
}

func RunMember(cmd *cobra.Command, args []string) error {
	id := strings.TrimSpace(args[0])
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if _, ok := sess.svc.MemberByID(id); !ok {
		return fmt.Errorf("member %q not found", id)
	}
	view, err := sess.memberView(id)
	if err != nil {
		return err
	}
	if asJSON {
		return fileutil.PrintJSON(view)
	}

	fmt.Printf("%s (%s)\n", view.Name, view.ID)
	fmt.Printf("  relation: %s  gender: %s  age: %d  generation: %d\n", view.Relation, view.Gender, view.Age, view.Generation)
	if view.ParentID != "" {
		fmt.Printf("  parent: %s\n", view.ParentID)
	}
	if view.Spouse != "" {
		fmt.Printf("  spouse: %s\n", view.Spouse)
	}
	if len(view.Children) > 0 {
		fmt.Printf("  children: %s\n", strings.Join(view.Children, ", "))
	}
	for _, field := range []struct{ label, value string }{
		{"designation", view.Designation},
		{"born", strings.TrimSpace(view.DateOfBirth + " " + view.PlaceOfBirth)},
		{"occupation", view.Occupation},
		{"email", view.Email},
		{"phone", view.Phone},
		{"address", view.Address},
		{"notes", view.Notes},
	} {
		if field.value != "" {
			fmt.Printf("  %s: %s\n", field.label, field.value)
		}
	}
	return nil
}

func RunList(cmd *cobra.Command, args []string) error {
	adults, err := OptionalBoolFlag(cmd, "adults", false)
	if err != nil {
		return err
	}
	return listMembers(cmd, adults)
}

func RunParents(cmd *cobra.Command, args []string) error {
	return listMembers(cmd, true)
}

func listMembers(cmd *cobra.Command, adultsOnly bool) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	members := sess.svc.ListAllMembers()
	if adultsOnly {
		members = sess.svc.PotentialParents()
	}
	if asJSON {
		return fileutil.PrintJSON(members)
	}

	levels := sess.svc.Levels()
	fmt.Printf("members (%d)\n", len(members))
	for _, member := range members {
		fmt.Printf("- %s [%s] %s age=%d gen=%d\n", member.ID, member.Relation, member.Name, member.Age, levels.Of(member.ID))
	}
	return nil
}

func describeMutationError(err error) error {
	var verr *family.ValidationError
	if errors.As(err, &verr) || errors.Is(err, family.ErrDuplicateID) {
		return err
	}
	return fmt.Errorf("failed to save member: %w", err)
}
