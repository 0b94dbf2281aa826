package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/lineage/internal/fileutil"
	"github.com/morozRed/lineage/internal/graph"
)

func RunTree(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if asJSON {
		return fileutil.PrintJSON(sess.svc.View())
	}
	RenderTree(os.Stdout, sess.svc.Tree(), sess.svc.Levels())
	return nil
}

func RunGenerations(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if asJSON {
		return fileutil.PrintJSON(sess.svc.View().Generations)
	}
	for _, level := range sess.svc.Generations() {
		names := make([]string, 0, len(level.Members))
		for _, member := range level.Members {
			names = append(names, fmt.Sprintf("%s (%s)", member.Name, member.ID))
		}
		fmt.Printf("%d. %s: %s\n", level.Level, level.Title, strings.Join(names, ", "))
	}
	return nil
}

// RenderTree writes the tree as an indented outline from the root, partners
// inline. Members not reachable from the root follow as extra outlines.
func RenderTree(w io.Writer, t *graph.Tree, levels graph.Levels) {
	fmt.Fprintln(w, graph.FamilyName(t))
	if t.Root == nil {
		return
	}

	seen := make(map[string]bool, t.Len())
	var walk func(m *graph.Member, depth int)
	walk = func(m *graph.Member, depth int) {
		if seen[m.ID] {
			return
		}
		seen[m.ID] = true
		line := fmt.Sprintf("%s%s (%s) [%s] gen=%d", strings.Repeat("  ", depth), m.Name, m.ID, m.Relation, levels.Of(m.ID))
		if spouse := t.Spouse(m.ID); spouse != nil && !seen[spouse.ID] {
			seen[spouse.ID] = true
			line += fmt.Sprintf(" + %s (%s) [%s]", spouse.Name, spouse.ID, spouse.Relation)
			defer walkChildren(spouse, depth+1, walk)
		}
		fmt.Fprintln(w, line)
		walkChildren(m, depth+1, walk)
	}

	walk(t.Root, 0)
	for _, member := range t.Members {
		if !seen[member.ID] && t.Parent(member) == nil {
			walk(member, 0)
		}
	}
	for _, member := range t.Members {
		if !seen[member.ID] {
			walk(member, 0)
		}
	}
}

func walkChildren(m *graph.Member, depth int, walk func(*graph.Member, int)) {
	for _, child := range m.Children {
		walk(child, depth)
	}
}
