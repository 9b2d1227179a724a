package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/presentation/graph"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flows"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [flow]",
	Short: "Export the step graph of a flow",
	Long: `Outputs a Mermaid diagram (graph TD) of the flow's steps. Conditional steps get a
dotted skip edge. With --session the saved progress is highlighted.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flowID := flows.PersonalTraining
		if len(args) > 0 {
			flowID = args[0]
		}
		ctx := context.Background()

		res, _, _ := loadEngine(ctx, cmd)
		defer res.Close()

		list, err := res.Engine.Steps(flowID)
		if err != nil {
			fmt.Printf("Error inspecting flow: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.Overlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			view, err := res.Engine.Open(ctx, flowID, sessionID)
			if err != nil {
				fmt.Printf("Error loading session '%s': %v\n", sessionID, err)
				os.Exit(1)
			}
			overlay = &graph.Overlay{Current: view.Step.ID}
			for id, done := range view.Progress.Completed {
				if done {
					overlay.Completed = append(overlay.Completed, id)
				}
			}
			sort.Strings(overlay.Completed)
		}

		fmt.Print(graph.GenerateMermaid(list, overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the progress of a saved session")
}
