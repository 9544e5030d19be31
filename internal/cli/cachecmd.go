package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"erunner/internal/cache"
	"erunner/internal/core"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the registry document",
	}
	cmd.AddCommand(
		newCachePurgeCmd(a),
		newCacheCleanCmd(a),
		newCacheRecompileCmd(a),
	)
	return cmd
}

func newCachePurgeCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Drop every registered file, keeping the config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.store.Config()
			if err != nil {
				return err
			}
			if !yes && !a.confirm(fmt.Sprintf("drop all %d registered files?", len(reg.Files))) {
				fmt.Fprintln(a.stdout, "aborted")
				return nil
			}

			reg.Files = map[string]cache.FileCache{}
			if err := a.store.PutConfig(reg); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "registry purged")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// newCacheCleanCmd drops entries whose source file no longer exists next to
// the registry. Only base names are stored, so the check is against the
// current directory.
func newCacheCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Drop entries whose source file is gone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.store.Config()
			if err != nil {
				return err
			}

			dropped := 0
			for name := range reg.Files {
				if _, err := os.Stat(name); os.IsNotExist(err) {
					delete(reg.Files, name)
					fmt.Fprintln(a.stdout, "dropped", name)
					dropped++
				}
			}
			if dropped == 0 {
				fmt.Fprintln(a.stdout, "nothing to clean")
				return nil
			}
			return a.store.PutConfig(reg)
		},
	}
}

// newCacheRecompileCmd rebuilds stale entries, or every entry with --all.
// Staleness follows the same decision the runner makes: a fingerprint
// mismatch or the recompilation sentinel.
func newCacheRecompileCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "recompile",
		Short: "Rebuild stale binaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := a.runner()
			if err != nil {
				return err
			}
			reg, err := a.store.Config()
			if err != nil {
				return err
			}

			for name, entry := range reg.Files {
				if _, err := os.Stat(name); os.IsNotExist(err) {
					fmt.Fprintln(a.stdout, "skipping", name, "(source missing)")
					continue
				}
				if !all && !stale(name, entry) {
					continue
				}
				fmt.Fprintln(a.stdout, "rebuilding", name)
				if _, err := runner.EnsureEntry(cmd.Context(), name, all); err != nil {
					return fmt.Errorf("rebuilding %s: %w", name, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "rebuild every entry, stale or not")
	return cmd
}

func stale(name string, entry cache.FileCache) bool {
	if entry.SourceHash == cache.PendingRecompilation {
		return true
	}
	hash, err := core.FingerprintFile(name)
	if err != nil {
		return true
	}
	return hash != entry.SourceHash
}
