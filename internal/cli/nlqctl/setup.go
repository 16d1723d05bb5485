package nlqctl

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/alikhantareen/natural-language-query-finder/internal/setup"
)

func newSetupCommand(opts Options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactively write database and LLM settings to an env file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompter := opts.Prompter
			if prompter == nil {
				prompter = setup.TerminalPrompter{}
			}
			wizard, err := setup.NewWizard(prompter, file)
			if err != nil {
				return err
			}
			result, err := wizard.Run()
			if errors.Is(err, setup.ErrCancelled) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Setup cancelled.")
				return nil
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, pterm.Green("Environment configuration saved to "+result.Path))
			_, _ = fmt.Fprintln(out, "Next steps:")
			_, _ = fmt.Fprintln(out, "  1. Make sure PostgreSQL is running and the database exists")
			_, _ = fmt.Fprintln(out, "  2. nlq-migrate -direction up")
			_, _ = fmt.Fprintln(out, "  3. nlqctl seed")
			_, _ = fmt.Fprintln(out, "  4. nlq-api")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", setup.DefaultEnvFile, "env file to write")
	return cmd
}
