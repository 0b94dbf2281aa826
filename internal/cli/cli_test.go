package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/morozRed/lineage/internal/family"
	"github.com/morozRed/lineage/internal/graph"
	"github.com/morozRed/lineage/internal/state"
)

func TestInitAddUpdateDeleteFlow(t *testing.T) {
	root := t.TempDir()

	withWorkingDir(t, root, func() {
		runLineage(t, "init")
		assertExists(t, filepath.Join(root, ".lineage", state.SnapshotKey+".json"))

		out := runLineage(t, "add", "--id", "3", "--name", "Tom Smith", "--age", "45",
			"--gender", "male", "--relation", "Son", "--parent", "1", "--json")
		var added graph.MemberView
		if err := json.Unmarshal([]byte(out), &added); err != nil {
			t.Fatalf("failed to decode add output: %v\n%s", err, out)
		}
		if added.ID != "3" || added.Generation != 2 {
			t.Fatalf("expected member 3 at generation 2, got %+v", added)
		}

		var listed []family.Person
		if err := json.Unmarshal([]byte(runLineage(t, "list", "--json")), &listed); err != nil {
			t.Fatalf("failed to decode list output: %v", err)
		}
		if len(listed) != 3 || listed[2].Name != "Tom Smith" {
			t.Fatalf("expected persisted member in a new session, got %+v", listed)
		}

		runLineage(t, "update", "3", "--occupation", "Pilot", "--parent", "")
		var member graph.MemberView
		if err := json.Unmarshal([]byte(runLineage(t, "member", "3", "--json")), &member); err != nil {
			t.Fatalf("failed to decode member output: %v", err)
		}
		if member.Occupation != "Pilot" || member.ParentID != "" {
			t.Fatalf("expected occupation set and parent cleared, got %+v", member.Person)
		}

		out = runLineage(t, "delete", "3")
		if !strings.Contains(out, "deleted 3 (2 members remain)") {
			t.Fatalf("unexpected delete output: %s", out)
		}

		err := runLineageErr(t, "member", "3")
		if err == nil || err.Error() != `member "3" not found` {
			t.Fatalf("expected not found error, got %v", err)
		}
	})
}

func TestAddRejectsInvalidInput(t *testing.T) {
	root := t.TempDir()

	withWorkingDir(t, root, func() {
		err := runLineageErr(t, "add", "--name", "Orphan", "--gender", "female", "--parent", "ghost")
		if err == nil || !strings.Contains(err.Error(), `unknown member "ghost"`) {
			t.Fatalf("expected unknown parent error, got %v", err)
		}

		err = runLineageErr(t, "add", "--name", "No Gender")
		if err == nil || !strings.Contains(err.Error(), "gender") {
			t.Fatalf("expected gender validation error, got %v", err)
		}

		err = runLineageErr(t, "add", "--id", "1", "--name", "Clone", "--gender", "male")
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Fatalf("expected duplicate id error, got %v", err)
		}

		err = runLineageErr(t, "add", "--name", "Odd", "--gender", "male", "--relation", "Stranger")
		if err == nil || !strings.Contains(err.Error(), `unknown relation "Stranger"`) {
			t.Fatalf("expected unknown relation error, got %v", err)
		}
	})
}

func TestUpdateRequiresAtLeastOneField(t *testing.T) {
	root := t.TempDir()

	withWorkingDir(t, root, func() {
		err := runLineageErr(t, "update", "1")
		if err == nil || !strings.Contains(err.Error(), "no fields to update") {
			t.Fatalf("expected empty update error, got %v", err)
		}

		err = runLineageErr(t, "update", "missing", "--name", "Nobody")
		if err == nil || err.Error() != `member "missing" not found` {
			t.Fatalf("expected not found error, got %v", err)
		}
	})
}

func TestTreeAndGenerationsOutput(t *testing.T) {
	root := t.TempDir()

	withWorkingDir(t, root, func() {
		runLineage(t, "add", "--id", "3", "--name", "Tom Smith", "--age", "45", "--gender", "male", "--relation", "Son", "--parent", "1")

		out := runLineage(t, "tree")
		for _, expected := range []string{
			"Smith Family Tree",
			"John Smith (1) [Patriarch] gen=1 + Mary Smith (2) [Matriarch]",
			"  Tom Smith (3) [Son] gen=2",
		} {
			if !strings.Contains(out, expected) {
				t.Fatalf("expected tree output to contain %q, got:\n%s", expected, out)
			}
		}

		out = runLineage(t, "generations")
		if !strings.Contains(out, "1. ") || !strings.Contains(out, "2. ") {
			t.Fatalf("expected two generation lines, got:\n%s", out)
		}
	})
}

func TestFindPathAndUpcomingJSON(t *testing.T) {
	root := t.TempDir()

	withWorkingDir(t, root, func() {
		var found struct {
			Matches []struct {
				ID string `json:"id"`
			} `json:"matches"`
		}
		if err := json.Unmarshal([]byte(runLineage(t, "find", "Jhon", "--fuzzy", "--json")), &found); err != nil {
			t.Fatalf("failed to decode find output: %v", err)
		}
		if len(found.Matches) != 1 || found.Matches[0].ID != "1" {
			t.Fatalf("expected fuzzy match for John, got %+v", found)
		}

		var path struct {
			Found bool             `json:"found"`
			Steps []graph.PathStep `json:"steps"`
		}
		if err := json.Unmarshal([]byte(runLineage(t, "path", "1", "2", "--json")), &path); err != nil {
			t.Fatalf("failed to decode path output: %v", err)
		}
		if !path.Found || len(path.Steps) != 2 || path.Steps[1].Via != graph.EdgeSpouse {
			t.Fatalf("expected direct spouse path, got %+v", path)
		}

		var upcoming []struct {
			MemberID string `json:"memberId"`
		}
		if err := json.Unmarshal([]byte(runLineage(t, "upcoming", "--days", "366", "--json")), &upcoming); err != nil {
			t.Fatalf("failed to decode upcoming output: %v", err)
		}
		if len(upcoming) != 2 {
			t.Fatalf("expected both birthdays within a year, got %+v", upcoming)
		}

		if err := runLineageErr(t, "upcoming", "--days", "0"); err == nil {
			t.Fatalf("expected --days 0 to be rejected")
		}
	})
}

func TestExportImportReset(t *testing.T) {
	root := t.TempDir()

	withWorkingDir(t, root, func() {
		exportPath := filepath.Join(root, "out", "family.json")
		runLineage(t, "export", "--out", exportPath)
		data, err := os.ReadFile(exportPath)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		exported, err := state.Decode(data)
		if err != nil {
			t.Fatalf("export is not a valid snapshot: %v", err)
		}
		if exported.FamilyInfo.TotalMembers != 2 {
			t.Fatalf("expected two exported members, got %+v", exported.FamilyInfo)
		}

		importPath := filepath.Join(root, "import.json")
		mustWriteFile(t, importPath, `{"familyMembers":[
			{"id":"a","name":"Ada Byron","gender":"female","relation":"Matriarch","age":36},
			{"id":"b","name":"Ralph Byron","gender":"male","relation":"Son","parentId":"a"}
		]}`)
		out := runLineage(t, "import", importPath)
		if !strings.Contains(out, "imported 2 members across 2 generations") {
			t.Fatalf("unexpected import output: %s", out)
		}

		malformed := filepath.Join(root, "bad.json")
		mustWriteFile(t, malformed, `{"familyMembers": 3}`)
		if err := runLineageErr(t, "import", malformed); err == nil || !strings.Contains(err.Error(), "import rejected") {
			t.Fatalf("expected malformed import to be rejected, got %v", err)
		}

		out = runLineage(t, "reset")
		if !strings.Contains(out, "reset family data (2 members)") {
			t.Fatalf("unexpected reset output: %s", out)
		}
		assertNotExists(t, filepath.Join(root, ".lineage", state.SnapshotKey+".json"))
	})
}

func TestMemoryStoreKeepsNothingBetweenCommands(t *testing.T) {
	root := t.TempDir()

	withWorkingDir(t, root, func() {
		runLineage(t, "--store", "memory", "add", "--name", "Ephemeral", "--gender", "male")

		var listed []family.Person
		if err := json.Unmarshal([]byte(runLineage(t, "--store", "memory", "list", "--json")), &listed); err != nil {
			t.Fatalf("failed to decode list output: %v", err)
		}
		if len(listed) != 2 {
			t.Fatalf("expected only built-in members, got %d", len(listed))
		}
		assertNotExists(t, filepath.Join(root, ".lineage"))
	})
}

func TestDoctorReportsMalformedSnapshot(t *testing.T) {
	root := t.TempDir()

	withWorkingDir(t, root, func() {
		mustWriteFile(t, filepath.Join(root, ".lineage", state.SnapshotKey+".json"), `{"familyMembers": "nope"}`)

		var summary DoctorSummary
		if err := json.Unmarshal([]byte(runLineage(t, "doctor", "--json")), &summary); err != nil {
			t.Fatalf("failed to decode doctor output: %v", err)
		}
		if summary.Healthy || summary.Snapshot != snapshotMalformed {
			t.Fatalf("expected malformed snapshot report, got %+v", summary)
		}

		mustWriteFile(t, filepath.Join(root, ".lineage", state.SnapshotKey+".json"), `{"familyMembers":[
			{"id":"a","name":"Ada Byron","gender":"female","spouseId":"gone"}
		]}`)
		summary = DoctorSummary{}
		if err := json.Unmarshal([]byte(runLineage(t, "doctor", "--json")), &summary); err != nil {
			t.Fatalf("failed to decode doctor output: %v", err)
		}
		if summary.Healthy || len(summary.DanglingRefs) != 1 || summary.DanglingRefs[0] != "a.spouseId=gone" {
			t.Fatalf("expected dangling spouse reference, got %+v", summary)
		}
	})
}

func TestPatchFromFlagsOnlyIncludesChangedFlags(t *testing.T) {
	cmd := newUpdateCmdForTest()
	mustSetFlag(t, cmd, "name", "  Thomas Smith ")
	mustSetFlag(t, cmd, "parent", "")
	mustSetFlag(t, cmd, "relation", "son-in-law")

	patch, err := PatchFromFlags(cmd)
	if err != nil {
		t.Fatalf("PatchFromFlags failed: %v", err)
	}
	if patch.Name == nil || *patch.Name != "Thomas Smith" {
		t.Fatalf("expected trimmed name, got %v", patch.Name)
	}
	if patch.ParentID == nil || *patch.ParentID != "" {
		t.Fatalf("expected explicit empty parent to clear the reference")
	}
	if patch.Relation == nil || *patch.Relation != family.RelationSonInLaw {
		t.Fatalf("expected Son-in-law relation, got %v", patch.Relation)
	}
	if patch.Age != nil || patch.Gender != nil || patch.SpouseID != nil {
		t.Fatalf("expected unset flags to stay nil, got %+v", patch)
	}

	bad := newUpdateCmdForTest()
	mustSetFlag(t, bad, "gender", "robot")
	if _, err := PatchFromFlags(bad); err == nil {
		t.Fatalf("expected unsupported gender error")
	}
}

func TestRenderTreeTerminatesOnParentCycle(t *testing.T) {
	tree := graph.Build([]family.Person{
		{ID: "a", Name: "Ann Loop", Gender: family.GenderFemale, ParentID: "b"},
		{ID: "b", Name: "Bob Loop", Gender: family.GenderMale, ParentID: "a"},
	})

	var buf bytes.Buffer
	RenderTree(&buf, tree, graph.ComputeLevels(tree))
	out := buf.String()
	if strings.Count(out, "Ann Loop") != 1 || strings.Count(out, "Bob Loop") != 1 {
		t.Fatalf("expected each member exactly once, got:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out := captureStdout(t, func() {
		cmd := NewRootCommand("1.2.3")
		cmd.SetArgs([]string{"version"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("version failed: %v", err)
		}
	})
	if strings.TrimSpace(out) != "lineage 1.2.3" {
		t.Fatalf("unexpected version output %q", out)
	}
}

func runLineage(t *testing.T, args ...string) string {
	t.Helper()
	var runErr error
	out := captureStdout(t, func() {
		runErr = executeRoot(args)
	})
	if runErr != nil {
		t.Fatalf("lineage %s failed: %v", strings.Join(args, " "), runErr)
	}
	return out
}

func runLineageErr(t *testing.T, args ...string) error {
	t.Helper()
	var runErr error
	captureStdout(t, func() {
		runErr = executeRoot(args)
	})
	return runErr
}

func executeRoot(args []string) error {
	cmd := NewRootCommand("test")
	cmd.SetArgs(args)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func newUpdateCmdForTest() *cobra.Command {
	cmd := &cobra.Command{}
	addMemberFlags(cmd)
	cmd.Flags().Bool("json", false, "")
	return cmd
}

func withWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()

	originalWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	fn()
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected %s to not exist", path)
	} else if !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent: %v", path, err)
	}
}

func mustSetFlag(t *testing.T, cmd *cobra.Command, key, value string) {
	t.Helper()
	if err := cmd.Flags().Set(key, value); err != nil {
		t.Fatalf("failed to set --%s=%s: %v", key, value, err)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	original := os.Stdout
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = writer
	defer func() {
		os.Stdout = original
		_ = writer.Close()
		_ = reader.Close()
	}()

	fn()

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close stdout writer: %v", err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("failed to read captured stdout: %v", err)
	}
	return string(data)
}
