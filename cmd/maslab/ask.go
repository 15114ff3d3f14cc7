package main

import (
	"context"
	"os"
	"strings"

	"github.com/Tendo1904/mas-lab/internal/cli"
	"github.com/Tendo1904/mas-lab/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Answer a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		jsonMode, _ := cmd.Flags().GetBool("json")
		sessionID, _ := cmd.Flags().GetString("session")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		var render cli.Renderer
		if !jsonMode {
			render = tui.NewRenderer(os.Stdout)
		}
		return cli.AskOnce(sigCtx, app, os.Stdout, sessionID, strings.Join(args, " "), jsonMode, render)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().Bool("json", false, "Print the full state snapshot as JSON")
	askCmd.Flags().String("session", "", "Persist the answer under this session id")
}
