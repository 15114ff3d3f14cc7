package main

import (
	"fmt"
	"slices"

	"github.com/Tendo1904/mas-lab/internal/runtime"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the step registry",
	Long: `Loads and validates the configuration, builds the pipeline and reports any static
plan step that has no registered handler. With --print the effective configuration is
written to stdout as YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		defer app.Close()

		if missing := missingSteps(app.Pipeline.Steps()); len(missing) > 0 {
			return fmt.Errorf("validation failed: unregistered steps %v", missing)
		}

		if show, _ := cmd.Flags().GetBool("print"); show {
			cfg := app.Config
			if cfg.Completion.APIKey != "" {
				cfg.Completion.APIKey = "***"
			}
			if cfg.Redis.Password != "" {
				cfg.Redis.Password = "***"
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Configuration is valid! ✅")
		return nil
	},
}

// missingSteps returns the static plan steps that registered does not contain.
func missingSteps(registered []string) []string {
	var missing []string
	classes := []string{domain.ClassCode, domain.ClassArchitecture, domain.ClassConceptual, domain.ClassGeneral}
	for _, class := range classes {
		for _, step := range runtime.StaticPlan(class).Steps {
			if !slices.Contains(registered, step) && !slices.Contains(missing, step) {
				missing = append(missing, step)
			}
		}
	}
	for _, step := range runtime.FallbackPlan().Steps {
		if !slices.Contains(registered, step) && !slices.Contains(missing, step) {
			missing = append(missing, step)
		}
	}
	return missing
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("print", false, "Print the effective configuration")
}
