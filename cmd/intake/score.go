package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/cli"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/presentation/tui"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/answers"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

var scoreCmd = &cobra.Command{
	Use:   "score [answers-file]",
	Short: "Rank recommendations for an answers file",
	Long: `Reads an answers document (YAML or JSON, '-' or no argument for stdin) and prints the
ranked recommendations. Scoring rules come from scoring_path in the configuration.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "-"
		if len(args) > 0 {
			path = args[0]
		}
		a, err := readAnswers(path)
		if err != nil {
			fmt.Printf("Error reading answers: %v\n", err)
			os.Exit(1)
		}

		res, _, _ := loadEngine(context.Background(), cmd)
		defer res.Close()

		jsonMode, _ := cmd.Flags().GetBool("json")
		explain, _ := cmd.Flags().GetBool("explain")

		recs := res.Engine.Score(a)
		if jsonMode {
			out := map[string]any{"candidates": recs}
			if explain {
				out["breakdown"] = res.Engine.Explain(a)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(out)
			return
		}

		markdown := intake.RecommendationsMarkdown(recs)
		if explain {
			markdown += "\n## Breakdown\n\n"
			for _, b := range res.Engine.Explain(a) {
				markdown += fmt.Sprintf("- **%s**: %.0f (included: %t)\n", b.Category, b.Score, b.Included)
			}
		}
		if cli.IsTerminal(os.Stdout) {
			if rendered, err := tui.NewRenderer(80)(markdown); err == nil {
				markdown = rendered
			}
		}
		fmt.Print(markdown)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().Bool("json", false, "Print JSON instead of markdown")
	scoreCmd.Flags().Bool("explain", false, "Include the per-category score breakdown")
}

func readAnswers(path string) (domain.Answers, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	// yaml.v3 also reads JSON documents.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}
	return answers.AnswersFrom(raw)
}
