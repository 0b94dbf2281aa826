package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/lineage/internal/family"
	"github.com/morozRed/lineage/internal/fileutil"
	"github.com/morozRed/lineage/internal/graph"
	"github.com/morozRed/lineage/internal/logging"
	"github.com/morozRed/lineage/internal/state"
)

// Snapshot states reported by doctor.
const (
	snapshotPresent   = "present"
	snapshotMissing   = "missing"
	snapshotMalformed = "malformed"
	snapshotError     = "unreadable"
)

func RunDoctor(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	summary := DoctorSummary{
		Mode:       "doctor",
		Backend:    cfg.Store.Backend,
		DataDir:    cfg.Store.DataDir,
		ConfigFrom: cfg.LoadedFrom,
		SeedFile:   cfg.Store.SeedFile,
	}

	if cfg.Store.SeedFile != "" {
		if _, err := state.LoadSeed(cfg.Store.SeedFile); err != nil {
			summary.Missing = append(summary.Missing, "readable seed file")
			summary.Suggestions = append(summary.Suggestions, fmt.Sprintf("fix or remove seed file %s", cfg.Store.SeedFile))
		}
	}

	blob, err := state.Open(cfg.Store.Backend, cfg.Store.DataDir, logger)
	if err != nil {
		summary.Snapshot = snapshotError
		summary.Missing = append(summary.Missing, "openable store")
		summary.Suggestions = append(summary.Suggestions, fmt.Sprintf("check %s permissions", cfg.Store.DataDir))
		return printDoctor(summary, asJSON)
	}
	repo := state.NewRepository(blob)
	defer repo.Close()

	snapshot, err := repo.Load()
	switch {
	case err == nil:
		summary.Snapshot = snapshotPresent
		inspectSnapshot(&summary, snapshot)
	case errors.Is(err, state.ErrNotFound):
		summary.Snapshot = snapshotMissing
		summary.Suggestions = append(summary.Suggestions, "run lineage init")
	case errors.Is(err, state.ErrMalformedSnapshot):
		summary.Snapshot = snapshotMalformed
		summary.Missing = append(summary.Missing, "valid persisted snapshot")
		summary.Suggestions = append(summary.Suggestions, "run lineage reset or lineage import <file>")
	default:
		summary.Snapshot = snapshotError
		summary.Missing = append(summary.Missing, "readable persisted snapshot")
	}

	return printDoctor(summary, asJSON)
}

// inspectSnapshot counts members and generations and reports references
// that name no stored member.
func inspectSnapshot(summary *DoctorSummary, snapshot *family.Snapshot) {
	store := family.NewStore()
	if dropped := store.Replace(snapshot.FamilyMembers); len(dropped) > 0 {
		summary.DuplicateIDs = dropped
		summary.Suggestions = append(summary.Suggestions, "duplicate ids are dropped on load; re-import a cleaned snapshot")
	}

	members := store.List()
	for _, member := range members {
		for _, ref := range []struct{ field, id string }{
			{"parentId", member.ParentID},
			{"spouseId", member.SpouseID},
		} {
			if ref.id == "" {
				continue
			}
			if _, ok := store.Get(ref.id); !ok {
				summary.DanglingRefs = append(summary.DanglingRefs, fmt.Sprintf("%s.%s=%s", member.ID, ref.field, ref.id))
			}
		}
	}
	if len(summary.DanglingRefs) > 0 {
		summary.Suggestions = append(summary.Suggestions, "update members whose parent or spouse no longer exists")
	}

	tree := graph.Build(members)
	summary.Members = len(members)
	summary.Generations = len(graph.GenerationLevels(tree))
	summary.Root = tree.Root.ID
}

func printDoctor(summary DoctorSummary, asJSON bool) error {
	summary.Missing = dedupeStrings(summary.Missing)
	summary.Suggestions = dedupeStrings(summary.Suggestions)
	summary.Healthy = summary.Snapshot == snapshotPresent &&
		len(summary.Missing) == 0 &&
		len(summary.DanglingRefs) == 0 &&
		len(summary.DuplicateIDs) == 0

	if asJSON {
		return fileutil.WriteJSON(os.Stdout, summary)
	}

	status := "issues"
	if summary.Healthy {
		status = "ok"
	}
	fmt.Printf("doctor: %s\n", status)
	fmt.Printf("store: backend=%s data_dir=%s snapshot=%s\n", summary.Backend, summary.DataDir, summary.Snapshot)
	fmt.Printf("config: %s\n", strings.Join(summary.ConfigFrom, " < "))
	if summary.Snapshot == snapshotPresent {
		fmt.Printf("family: members=%d generations=%d root=%s\n", summary.Members, summary.Generations, summary.Root)
	}
	if len(summary.DuplicateIDs) > 0 {
		fmt.Printf("duplicate ids (%d): %s\n", len(summary.DuplicateIDs), SummarizeList(summary.DuplicateIDs, 8))
	}
	if len(summary.DanglingRefs) > 0 {
		fmt.Printf("dangling references (%d): %s\n", len(summary.DanglingRefs), SummarizeList(summary.DanglingRefs, 8))
	}
	if len(summary.Missing) > 0 {
		fmt.Printf("missing (%d): %s\n", len(summary.Missing), strings.Join(summary.Missing, ", "))
	}
	for _, suggestion := range summary.Suggestions {
		fmt.Printf("next: %s\n", suggestion)
	}
	return nil
}

func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}
	sort.Strings(out)
	return out
}
