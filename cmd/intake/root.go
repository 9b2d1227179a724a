package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/cli"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "Intake runs questionnaire flows and ranks program recommendations",
	Long: `Intake walks respondents through branching questionnaires, scores their answers
against configurable rules and delivers the submission to storage and notification backends.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "intake.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads the configuration named by --config, exiting on error.
func loadConfig(cmd *cobra.Command) *config.Config {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// loadEngine builds the engine described by the configuration, exiting on error.
func loadEngine(ctx context.Context, cmd *cobra.Command, extra ...intake.Option) (*cli.Resources, *config.Config, *slog.Logger) {
	cfg := loadConfig(cmd)
	debug, _ := cmd.Flags().GetBool("debug")

	logger, err := cli.NewLogger(cfg.LogLevel, debug)
	if err != nil {
		fmt.Printf("Error configuring logger: %v\n", err)
		os.Exit(1)
	}

	res, err := cli.NewEngine(ctx, cfg, logger, extra...)
	if err != nil {
		fmt.Printf("Error initializing intake: %v\n", err)
		os.Exit(1)
	}
	return res, cfg, logger
}
