package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"erunner/internal/cache"
	"erunner/internal/ui"
)

// macroReadme documents the build-command macro set for people editing
// languages_config by hand.
const macroReadme = `# erunner

Build commands in erunner_cache.json may use these macros:

    $(FILE)      full source path
    $(FILENAME)  base name, extension included
    $(DIR)       parent directory path
    $(DIRNAME)   parent directory's own name
    $(BIN_DIR)   configured binary directory
    $(EXE_EXT)   platform binary extension (exe on Windows, out elsewhere)

Binaries are expected at $(BIN_DIR)/$(FILENAME).$(EXE_EXT).
`

func newInitCmd(a *app) *cobra.Command {
	var yes, readme bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the registry document in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.store.Initialized() {
				return fmt.Errorf("%s already exists", a.store.Path())
			}
			if !yes && !a.confirm("initialize erunner in the current directory?") {
				fmt.Fprintln(a.stdout, "aborted")
				return nil
			}

			reg := cache.Registry{
				BinaryDir: cache.DefaultBinaryDir,
				Languages: cache.DefaultLanguages(),
			}
			if err := a.store.Init(reg); err != nil {
				return err
			}
			if err := os.MkdirAll(reg.BinaryDir, 0o755); err != nil {
				return fmt.Errorf("creating binary directory: %w", err)
			}
			if readme {
				if err := os.WriteFile("README.md", []byte(macroReadme), 0o644); err != nil {
					return fmt.Errorf("writing README.md: %w", err)
				}
			}

			styles := ui.DefaultStyles()
			fmt.Fprintln(a.stdout, styles.Pass.Render("initialized"), a.store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&readme, "readme", false, "also write a README.md describing the build-command macros")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the registry config and every tracked file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.store.Config()
			if err != nil {
				return err
			}
			ui.RenderStatus(a.stdout, reg)
			return nil
		},
	}
}
