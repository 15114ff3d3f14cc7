package main

import (
	"fmt"
	"os"

	"github.com/Tendo1904/mas-lab/internal/cli"
	"github.com/Tendo1904/mas-lab/internal/config"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "maslab",
	Short: "maslab answers questions with a pipeline of cooperating agents",
	Long: `maslab routes each question to specialised agents (code, architecture,
science, general), grounds them in a long-term note memory and supervises the final
answer. Without a subcommand it starts the interactive loop.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the YAML or JSON configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().Bool("offline", false, "Use the local echo completion service instead of the configured endpoint")
}

// loadConfig reads the configuration and applies the global flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		cfg.Completion.Offline = true
	}
	return cfg, nil
}

// loadApp builds the application from the configuration and global flags.
func loadApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger := cli.NewLogger(cfg.Log.Level, debug)

	var hooks []domain.LifecycleHooks
	if debug {
		hooks = append(hooks, cli.DebugHooks(logger))
	}
	return cli.NewApp(cfg, logger, hooks...)
}
