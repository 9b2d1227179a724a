package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/cli"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flows"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flow]",
	Short: "Answer a questionnaire in the terminal",
	Long: `Walks through a questionnaire flow interactively. Progress is saved after every
answer, so rerunning with the same --session resumes where you left off.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.RunOptions{FlowID: flows.PersonalTraining}
		if len(args) > 0 {
			opts.FlowID = args[0]
		}
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Headless, _ = cmd.Flags().GetBool("headless")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		if err := cli.Execute(sigCtx, opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", cli.DefaultSessionID, "Session ID to create or resume")
	runCmd.Flags().Bool("fresh", false, "Discard the saved session before starting")
	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no prompts)")
}
