package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"erunner/internal/core"
	"erunner/internal/ui"
)

// roundTo keeps reported durations readable.
const roundTo = time.Millisecond

func newRunCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run <source-file>",
		Short: "Compile if needed and run the binary interactively",
		Long: "Compiles the source when its fingerprint changed (or --force is given)\n" +
			"and runs the binary with this terminal's stdin and stdout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := a.runner()
			if err != nil {
				return err
			}

			outcome, err := runner.RunInteractive(cmd.Context(), args[0], force)
			if err != nil {
				return err
			}

			styles := ui.DefaultStyles()
			switch o := outcome.(type) {
			case core.Successful:
				fmt.Fprintln(a.stdout, styles.Muted.Render(
					fmt.Sprintf("finished in %s", o.Elapsed.Round(roundTo))))
				return nil
			case core.Failed:
				return fmt.Errorf("program failed: %s", o.Reason)
			default:
				return fmt.Errorf("unexpected outcome %T", outcome)
			}
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "recompile even if the source is unchanged")
	return cmd
}
