package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/lineage/internal/fileutil"
	"github.com/morozRed/lineage/internal/state"
)

func RunInit(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.cfg.Store.Backend != state.BackendMemory {
		if err := os.MkdirAll(sess.cfg.Store.DataDir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	if err := sess.svc.Save(); err != nil {
		return fmt.Errorf("failed to write initial snapshot: %w", err)
	}

	info := sess.svc.Info()
	fmt.Printf("Initialized %s store at %s (%s data, %d members)\n",
		sess.cfg.Store.Backend, sess.cfg.Store.DataDir, sess.source, info.TotalMembers)
	return nil
}

func RunExport(cmd *cobra.Command, args []string) error {
	out, err := OptionalStringFlag(cmd, "out")
	if err != nil {
		return err
	}
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	data, err := sess.svc.Export()
	if err != nil {
		return fmt.Errorf("failed to export family data: %w", err)
	}
	if out == "" || out == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	written, err := fileutil.WriteIfChangedTracked(out, data)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if written {
		fmt.Printf("exported %d members to %s\n", sess.svc.Info().TotalMembers, out)
	} else {
		fmt.Printf("%s is already up to date\n", out)
	}
	return nil
}

func RunImport(cmd *cobra.Command, args []string) error {
	path := strings.TrimSpace(args[0])
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.svc.Import(data); err != nil {
		return err
	}
	info := sess.svc.Info()
	fmt.Printf("imported %d members across %d generations from %s\n", info.TotalMembers, info.Generations, path)
	return nil
}

func RunReset(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.svc.Reset(); err != nil {
		return err
	}
	fmt.Printf("reset family data (%d members)\n", sess.svc.Info().TotalMembers)
	return nil
}
