package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/lineage/internal/events"
	"github.com/morozRed/lineage/internal/fileutil"
	"github.com/morozRed/lineage/internal/graph"
	"github.com/morozRed/lineage/internal/search"
)

func RunFind(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	fuzzy, err := OptionalBoolFlag(cmd, "fuzzy", false)
	if err != nil {
		return err
	}
	limit, err := OptionalIntFlag(cmd, "limit", search.DefaultLimit)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	results := sess.svc.Search(query, limit, fuzzy)
	if len(results) == 0 {
		return fmt.Errorf("no members match %q", query)
	}
	if asJSON {
		return fileutil.PrintJSON(map[string]any{
			"query":   query,
			"matches": results,
		})
	}

	fmt.Printf("member matches for %q (%d)\n", query, len(results))
	for _, result := range results {
		fmt.Printf("- %s %s (score %.3f)\n", result.ID, result.Name, result.Score)
	}
	return nil
}

func RunPath(cmd *cobra.Command, args []string) error {
	from, to := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	for _, id := range []string{from, to} {
		if _, ok := sess.svc.MemberByID(id); !ok {
			return fmt.Errorf("member %q not found", id)
		}
	}

	steps := sess.svc.Path(from, to)
	if asJSON {
		if steps == nil {
			steps = []graph.PathStep{}
		}
		return fileutil.PrintJSON(map[string]any{
			"from":  from,
			"to":    to,
			"found": len(steps) > 0,
			"steps": steps,
		})
	}

	if len(steps) == 0 {
		fmt.Printf("no kinship path from %s to %s\n", from, to)
		return nil
	}
	tree := sess.svc.Tree()
	fmt.Printf("kinship path %s -> %s (%d hops)\n", from, to, len(steps)-1)
	for _, step := range steps {
		name := step.ID
		if member := tree.Member(step.ID); member != nil {
			name = member.Name
		}
		fmt.Printf("- [%s] %s (%s)\n", step.Via, name, step.ID)
	}
	return nil
}

func RunUpcoming(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	days, err := OptionalIntFlag(cmd, "days", events.DefaultWindowDays)
	if err != nil {
		return err
	}
	if days < 1 {
		return fmt.Errorf("--days must be >= 1")
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	upcoming := sess.svc.Upcoming(days)
	if asJSON {
		return fileutil.PrintJSON(upcoming)
	}
	if len(upcoming) == 0 {
		fmt.Printf("no birthdays in the next %d days\n", days)
		return nil
	}
	fmt.Printf("upcoming birthdays (%d)\n", len(upcoming))
	for _, occurrence := range upcoming {
		fmt.Printf("- %s %s turns %d (in %d days)\n", occurrence.Next, occurrence.MemberName, occurrence.Turning, occurrence.DaysUntil)
	}
	return nil
}
