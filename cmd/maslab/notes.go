package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Inspect and extend the long-term note memory",
}

var notesListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List every note in insertion order",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		notes, err := app.Memory.List(cmd.Context())
		if err != nil {
			return err
		}
		return printNotes(cmd, notes)
	},
}

var notesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank notes by keyword overlap with the query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		k, _ := cmd.Flags().GetInt("k")
		if k <= 0 {
			k = app.Config.Memory.TopK
		}
		notes, err := app.Memory.Search(cmd.Context(), strings.Join(args, " "), k)
		if err != nil {
			return err
		}
		return printNotes(cmd, notes)
	},
}

var notesAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Append a note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		tags, _ := cmd.Flags().GetStringSlice("tags")
		note, err := app.Memory.Append(cmd.Context(), strings.Join(args, " "), tags)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), note.ID)
		return nil
	},
}

func printNotes(cmd *cobra.Command, notes []domain.Note) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(notes)
	}
	if len(notes) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No notes.")
		return nil
	}
	for _, n := range notes {
		tags := ""
		if len(n.Tags) > 0 {
			tags = " [" + strings.Join(n.Tags, ",") + "]"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s%s\n  %s\n", n.ID, n.CreatedAt.Format("2006-01-02 15:04"), tags, n.Text)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(notesCmd)
	notesCmd.AddCommand(notesListCmd, notesSearchCmd, notesAddCmd)

	notesCmd.PersistentFlags().Bool("json", false, "Print notes as JSON")
	notesSearchCmd.Flags().Int("k", 0, "Maximum number of notes (defaults to memory.top_k)")
	notesAddCmd.Flags().StringSlice("tags", nil, "Comma separated tags")
}
