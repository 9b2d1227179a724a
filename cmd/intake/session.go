package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved sessions",
	Long:  `List, inspect, and remove sessions kept by the configured session store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all saved sessions",
	Run: func(cmd *cobra.Command, args []string) {
		res, _, _ := loadEngine(cmd.Context(), cmd)
		defer res.Close()

		keys, err := res.Engine.Sessions(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}

		if len(keys) == 0 {
			fmt.Println("No saved sessions found.")
			return
		}

		fmt.Println("Saved Sessions:")
		for _, k := range keys {
			fmt.Println("- " + k)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <flow:session>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flowID, sessionID := splitKey(args[0])
		res, _, _ := loadEngine(cmd.Context(), cmd)
		defer res.Close()

		view, err := res.Engine.Open(cmd.Context(), flowID, sessionID)
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling session: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <flow:session>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		res, _, _ := loadEngine(ctx, cmd)
		hasError := false

		for _, key := range args {
			flowID, sessionID := splitKey(key)
			if err := res.Engine.Discard(ctx, flowID, sessionID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", key, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", key)
			}
		}

		if err := res.Close(); err != nil {
			fmt.Printf("Error closing store: %v\n", err)
			hasError = true
		}
		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

// splitKey splits a "flow:session" key as printed by "session ls".
func splitKey(key string) (flowID, sessionID string) {
	flowID, sessionID, ok := strings.Cut(key, ":")
	if !ok {
		fmt.Printf("Invalid session key '%s': expected <flow>:<session>\n", key)
		os.Exit(1)
	}
	return flowID, sessionID
}
