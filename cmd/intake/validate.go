package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/config"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/http"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/recommend"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/steps"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flow-file]...",
	Short: "Check configuration, flow definitions and scoring rules",
	Long: `Loads the configuration, every flow file in flows_dir (plus any given as arguments)
and the scoring rules, and reports the first inconsistency found.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	for _, file := range args {
		if _, err := steps.LoadFile(file); err != nil {
			return err
		}
	}
	if cfg.FlowsDir != "" {
		if _, err := steps.LoadDir(steps.NewGraph(), cfg.FlowsDir); err != nil {
			return err
		}
	}

	if cfg.ScoringPath != "" {
		// LoadConfig validates the rules it reads.
		if _, err := recommend.LoadConfig(cfg.ScoringPath); err != nil {
			return err
		}
	} else if err := recommend.DefaultConfig().Validate(); err != nil {
		return err
	}

	doc, err := http.LoadSpec()
	if err != nil {
		return err
	}
	return doc.Validate(context.Background())
}
