package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/config"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/presentation/tui"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flows"
)

// DefaultSessionID names the terminal session when none is given, so a rerun resumes it.
const DefaultSessionID = "terminal"

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ConfigPath string
	FlowID     string
	SessionID  string
	Fresh      bool
	Debug      bool

	// Headless disables banners and prompts. It is forced on when Input is not a terminal.
	Headless bool

	Input  io.Reader
	Output io.Writer
}

// Execute walks a respondent through a flow in the terminal.
func Execute(ctx context.Context, opts RunOptions) error {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.FlowID == "" {
		opts.FlowID = flows.PersonalTraining
	}
	if opts.SessionID == "" {
		opts.SessionID = DefaultSessionID
	}
	headless := opts.Headless || !IsTerminal(opts.Input)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger, err := NewLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return err
	}

	res, err := NewEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer res.Close()
	eng := res.Engine

	if opts.Fresh {
		if err := eng.Discard(ctx, opts.FlowID, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	r := intake.NewRunner()
	r.Input = opts.Input
	r.Output = opts.Output
	r.Headless = headless
	if !headless {
		tui.PrintBanner(opts.Output, intake.Version)
		if IsTerminal(opts.Output) {
			r.Renderer = tui.NewRenderer(80)
		}
	}

	logger.Info("Session active", "flow", opts.FlowID, "session_id", opts.SessionID)
	runErr := r.Run(ctx, eng, opts.FlowID, opts.SessionID)
	if sc, ok := ctx.(*SignalContext); ok && sc.Signal() != nil && !headless {
		fmt.Fprintln(opts.Output)
		printSystemMessage(opts.Output, "Interrupted. Progress saved in session '%s'.", opts.SessionID)
	}
	return handleExecutionError(runErr)
}
