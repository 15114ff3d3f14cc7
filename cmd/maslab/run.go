package main

import (
	"context"
	"errors"
	"os"

	"github.com/Tendo1904/mas-lab"
	"github.com/Tendo1904/mas-lab/internal/cli"
	"github.com/Tendo1904/mas-lab/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive question loop",
	Long: `Reads one question per line and prints the answer, the activated agents and the
session history length. An empty line, "exit" or "quit" ends the loop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		dumpDir, _ := cmd.Flags().GetString("dump")
		quiet, _ := cmd.Flags().GetBool("quiet")

		if !quiet && tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, maslab.Version)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		err = cli.RunInteractive(sigCtx, app, cli.InteractiveOptions{
			In:        os.Stdin,
			Out:       os.Stdout,
			Render:    tui.NewRenderer(os.Stdout),
			SessionID: sessionID,
			DumpDir:   dumpDir,
			Quiet:     quiet,
		})
		if errors.Is(err, context.Canceled) {
			// Exit 0 for interruptions
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("session", "", "Persist the conversation under this session id")
	runCmd.Flags().String("dump", "", "Directory receiving a state_<timestamp>.json snapshot per answer")
	runCmd.Flags().BoolP("quiet", "q", false, "Print answers only")

	// 'run' is the default when no command is provided
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
