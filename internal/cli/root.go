package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/lineage/internal/config"
	"github.com/morozRed/lineage/internal/events"
	"github.com/morozRed/lineage/internal/search"
	"github.com/morozRed/lineage/internal/state"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lineage",
		Short: "Build and explore a family relationship graph",
		Long: `Lineage keeps a flat list of family members and derives the family tree
from it: spouse pairings, a root ancestor, generation levels and titles.

Data is stored under --data-dir (default .lineage/) and can be exported
and imported as a JSON snapshot.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", fmt.Sprintf("Config file (default ./%s when present)", config.DefaultFile))
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding persisted family data")
	rootCmd.PersistentFlags().String("store", "", "Storage backend: "+strings.Join(state.Backends(), "|"))
	rootCmd.PersistentFlags().String("seed", "", "Snapshot file used when nothing is persisted")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: "+strings.Join(config.LogLevels(), "|"))

	// Data Commands
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and write the initial snapshot",
		Args:  cobra.NoArgs,
		RunE:  RunInit,
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a family member",
		Args:  cobra.NoArgs,
		RunE:  RunAdd,
	}
	addCmd.Flags().String("id", "", "Member id (default: generated UUID)")
	addMemberFlags(addCmd)
	addCmd.Flags().Bool("json", false, "Print the added member as JSON")

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update only the fields passed as flags",
		Args:  cobra.ExactArgs(1),
		RunE:  RunUpdate,
	}
	addMemberFlags(updateCmd)
	updateCmd.Flags().Bool("json", false, "Print the updated member as JSON")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a member and clear references to it",
		Args:  cobra.ExactArgs(1),
		RunE:  RunDelete,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the family snapshot as JSON",
		Args:  cobra.NoArgs,
		RunE:  RunExport,
	}
	exportCmd.Flags().String("out", "", "Output file (default: stdout)")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all members with a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunImport,
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore seed or built-in data and clear persisted state",
		Args:  cobra.NoArgs,
		RunE:  RunReset,
	}

	// Inspect Commands
	memberCmd := &cobra.Command{
		Use:   "member <id>",
		Short: "Show one member with its derived relations",
		Args:  cobra.ExactArgs(1),
		RunE:  RunMember,
	}
	memberCmd.Flags().Bool("json", false, "Print machine-readable member")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List members in store order",
		Args:  cobra.NoArgs,
		RunE:  RunList,
	}
	listCmd.Flags().Bool("adults", false, "Only members old enough to be a parent")
	listCmd.Flags().Bool("json", false, "Print machine-readable member list")

	parentsCmd := &cobra.Command{
		Use:   "parents",
		Short: "List members eligible as parents",
		Args:  cobra.NoArgs,
		RunE:  RunParents,
	}
	parentsCmd.Flags().Bool("json", false, "Print machine-readable member list")

	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Render the derived family tree from the root",
		Args:  cobra.NoArgs,
		RunE:  RunTree,
	}
	treeCmd.Flags().Bool("json", false, "Print machine-readable tree view")

	generationsCmd := &cobra.Command{
		Use:   "generations",
		Short: "Show generation levels with titles",
		Args:  cobra.NoArgs,
		RunE:  RunGenerations,
	}
	generationsCmd.Flags().Bool("json", false, "Print machine-readable generation levels")

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration and persisted family data",
		Args:  cobra.NoArgs,
		RunE:  RunDoctor,
	}
	doctorCmd.Flags().Bool("json", false, "Print machine-readable doctor output")

	// Navigate Commands
	findCmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Search members by name, relation, occupation and places",
		Args:  cobra.MinimumNArgs(1),
		RunE:  RunFind,
	}
	findCmd.Flags().Bool("fuzzy", false, "Match names by edit distance only")
	findCmd.Flags().Int("limit", search.DefaultLimit, "Maximum number of matches to return")
	findCmd.Flags().Bool("json", false, "Print machine-readable matches")

	pathCmd := &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Find the shortest kinship path between two members",
		Args:  cobra.ExactArgs(2),
		RunE:  RunPath,
	}
	pathCmd.Flags().Bool("json", false, "Print machine-readable path")

	upcomingCmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List birthdays in the coming days",
		Args:  cobra.NoArgs,
		RunE:  RunUpcoming,
	}
	upcomingCmd.Flags().Int("days", events.DefaultWindowDays, "Window size in days (>=1)")
	upcomingCmd.Flags().Bool("json", false, "Print machine-readable events")

	// Additional Commands
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  newServeRunner(version),
	}
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lineage %s\n", version)
		},
	}

	rootCmd.AddCommand(
		initCmd,
		addCmd,
		updateCmd,
		deleteCmd,
		exportCmd,
		importCmd,
		resetCmd,
		memberCmd,
		listCmd,
		parentsCmd,
		treeCmd,
		generationsCmd,
		doctorCmd,
		findCmd,
		pathCmd,
		upcomingCmd,
		serveCmd,
		versionCmd,
	)

	return rootCmd
}
