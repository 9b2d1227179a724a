package intake

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/flow"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/session"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/submission"
)

// Runner walks a respondent through a flow over line-oriented IO.
// It is a reference UI collaborator: it only mutates answers and asks to move.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms markdown before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

var (
	errQuit = errors.New("quit")
	errBack = errors.New("back")
)

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the questionnaire loop until the submission succeeds or the
// input ends. An existing session is resumed where it was left.
func (r *Runner) Run(ctx context.Context, eng *Engine, flowID, sessionID string) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)

	view, err := eng.Open(ctx, flowID, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		view, err = eng.Start(ctx, flowID, sessionID)
	}
	if err != nil {
		return err
	}
	sessionID = view.SessionID

	if !r.Headless {
		fmt.Fprintf(r.Output, "--- %s (session %s) ---\n", flowID, sessionID)
		fmt.Fprintln(r.Output, "Type 'back' to return to the previous step, 'quit' to stop.")
	}

	update := func(fn func(*session.Session) error) (session.View, error) {
		return eng.Update(ctx, flowID, sessionID, fn)
	}

	for !view.Done {
		r.printStep(view)

		err := r.collect(lines, view.Step, update)
		switch {
		case errors.Is(err, errQuit):
			fmt.Fprintln(r.Output, "Progress saved. Bye!")
			return nil
		case errors.Is(err, errBack):
			view, err = update(func(s *session.Session) error {
				s.Retreat()
				return nil
			})
			if err != nil {
				return err
			}
			continue
		case err != nil:
			return err
		}

		var outcome flow.Outcome
		view, err = update(func(s *session.Session) error {
			outcome = s.Advance()
			return nil
		})
		if err != nil {
			return err
		}
		if outcome == flow.Blocked {
			fmt.Fprintln(r.Output, "Please answer the required questions to continue.")
		}
	}

	return r.submit(ctx, eng, lines, view, update)
}

func (r *Runner) submit(ctx context.Context, eng *Engine, lines *bufio.Reader, view session.View, update func(func(*session.Session) error) (session.View, error)) error {
	if view.Submission.Status == domain.SubmissionSucceeded {
		r.printRecommendations(view.Recommendations)
		return nil
	}

	for {
		var res submission.Result
		var err error
		view, err = update(func(s *session.Session) error {
			res, err = s.Submit(ctx)
			return err
		})
		if errors.Is(err, domain.ErrAlreadySubmitted) {
			r.printRecommendations(view.Recommendations)
			return nil
		}
		if err != nil {
			return err
		}

		if res.Success {
			fmt.Fprintf(r.Output, "Submitted (reference %s).\n", res.SubmissionID)
			r.printRecommendations(res.Recommendations)
			return nil
		}

		if len(res.FieldErrors) > 0 {
			for _, fe := range res.FieldErrors {
				fmt.Fprintf(r.Output, "  %s: %s\n", fe.Field, fe.Message)
			}
			contact, ok := eng.Graph().Question(view.FlowID, domain.ContactKey)
			if !ok {
				contact = domain.Question{Key: domain.ContactKey, Kind: domain.KindContact}
			}
			if err := r.askContact(lines, contact, update); err != nil {
				if errors.Is(err, errQuit) || errors.Is(err, errBack) {
					return nil
				}
				return err
			}
			continue
		}

		fmt.Fprintln(r.Output, res.Error)
		ok, err := r.confirm(lines, "Try again?")
		if err != nil || !ok {
			return nil
		}
	}
}

func (r *Runner) printStep(view session.View) {
	fmt.Fprintln(r.Output)
	title := view.Step.Title
	if title == "" {
		title = view.Step.ID
	}
	r.print(fmt.Sprintf("## %s\n\n_Step %d of %d_", title, view.Progress.Position+1, view.Progress.Total))
}

func (r *Runner) print(markdown string) {
	output := markdown
	if r.Renderer != nil {
		if rendered, err := r.Renderer(markdown); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}

// collect asks every question of the step and applies the answers.
func (r *Runner) collect(lines *bufio.Reader, step domain.Step, update func(func(*session.Session) error) (session.View, error)) error {
	for _, q := range step.Questions {
		var err error
		switch q.Kind {
		case domain.KindContact:
			err = r.askContact(lines, q, update)
		case domain.KindMulti:
			err = r.askMulti(lines, q, update)
		default:
			err = r.askSingle(lines, q, update)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) askSingle(lines *bufio.Reader, q domain.Question, update func(func(*session.Session) error) (session.View, error)) error {
	r.printOptions(q)
	for {
		text, err := r.readLine(lines)
		if err != nil {
			return err
		}
		if text == "" {
			if q.Required {
				fmt.Fprintln(r.Output, "This question is required.")
				continue
			}
			return nil
		}

		var v domain.Value
		if q.Kind == domain.KindText {
			v = domain.TextValue(text)
		} else {
			choice, ok := pick(q.Options, text)
			if !ok {
				fmt.Fprintln(r.Output, "Invalid choice.")
				continue
			}
			v = domain.ScalarValue(choice)
		}
		_, err = update(func(s *session.Session) error { return s.SetAnswer(q.Key, v) })
		return ignoreInapplicable(err)
	}
}

func (r *Runner) askMulti(lines *bufio.Reader, q domain.Question, update func(func(*session.Session) error) (session.View, error)) error {
	r.printOptions(q)
	if q.MaxSelect > 0 {
		fmt.Fprintf(r.Output, "(choose up to %d, comma separated)\n", q.MaxSelect)
	} else {
		fmt.Fprintln(r.Output, "(comma separated)")
	}
	for {
		text, err := r.readLine(lines)
		if err != nil {
			return err
		}
		if text == "" && !q.Required {
			return nil
		}

		var picks []string
		valid := text != ""
		for _, part := range strings.Split(text, ",") {
			choice, ok := pick(q.Options, strings.TrimSpace(part))
			if !ok {
				valid = false
				break
			}
			picks = append(picks, choice)
		}
		if !valid {
			fmt.Fprintln(r.Output, "Invalid choice.")
			continue
		}

		_, err = update(func(s *session.Session) error {
			if err := s.ClearAnswer(q.Key); err != nil {
				return err
			}
			for _, p := range picks {
				if err := s.AddToMultiSelect(q.Key, p); err != nil {
					return err
				}
			}
			return nil
		})
		return ignoreInapplicable(err)
	}
}

func (r *Runner) askContact(lines *bufio.Reader, q domain.Question, update func(func(*session.Session) error) (session.View, error)) error {
	if q.Prompt != "" {
		fmt.Fprintln(r.Output, q.Prompt)
	}
	var patch domain.ContactPatch
	for _, field := range []struct {
		label string
		dst   **string
	}{
		{"Name", &patch.Name},
		{"Email", &patch.Email},
		{"Phone", &patch.Phone},
	} {
		r.prompt(field.label + ": ")
		text, err := r.readRaw(lines)
		if err != nil {
			return err
		}
		if text != "" {
			*field.dst = &text
		}
	}
	_, err := update(func(s *session.Session) error { return s.SetContactInfo(patch) })
	return ignoreInapplicable(err)
}

func (r *Runner) confirm(lines *bufio.Reader, question string) (bool, error) {
	fmt.Fprintf(r.Output, "%s [y/N]\n", question)
	text, err := r.readLine(lines)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(text, "y") || strings.EqualFold(text, "yes"), nil
}

func (r *Runner) printOptions(q domain.Question) {
	prompt := q.Prompt
	if prompt == "" {
		prompt = q.Key
	}
	if !q.Required {
		prompt += " (optional)"
	}
	fmt.Fprintln(r.Output, prompt)
	for i, opt := range q.Options {
		fmt.Fprintf(r.Output, "  %d) %s\n", i+1, opt)
	}
}

func (r *Runner) printRecommendations(recs []domain.Candidate) {
	r.print(RecommendationsMarkdown(recs))
}

func (r *Runner) prompt(p string) {
	if !r.Headless {
		fmt.Fprint(r.Output, p)
	}
}

// readLine reads one command-aware line.
func (r *Runner) readLine(lines *bufio.Reader) (string, error) {
	r.prompt("> ")
	text, err := r.readRaw(lines)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(text) {
	case "quit", "exit":
		return "", errQuit
	case "back":
		return "", errBack
	}
	return text, nil
}

func (r *Runner) readRaw(lines *bufio.Reader) (string, error) {
	text, err := lines.ReadString('\n')
	if err != nil {
		if err == io.EOF && text == "" {
			// Graceful exit on EOF
			return "", errQuit
		}
		if err != io.EOF {
			return "", fmt.Errorf("input error: %w", err)
		}
	}
	return strings.TrimSpace(text), nil
}

// pick resolves a 1-based option number or a literal option value.
func pick(options []string, text string) (string, bool) {
	if len(options) == 0 {
		return text, text != ""
	}
	if n, err := strconv.Atoi(text); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	if slices.Contains(options, text) {
		return text, true
	}
	return "", false
}

func ignoreInapplicable(err error) error {
	if errors.Is(err, domain.ErrInapplicableField) {
		return nil
	}
	return err
}

// RecommendationsMarkdown formats ranked candidates for display.
func RecommendationsMarkdown(recs []domain.Candidate) string {
	var sb strings.Builder
	sb.WriteString("# Your recommendations\n")
	for _, c := range recs {
		sb.WriteString("\n## ")
		sb.WriteString(c.Title)
		if c.IsFeatured {
			sb.WriteString(" ★")
		}
		fmt.Fprintf(&sb, "\n\n**Match: %.0f%%**. %s\n", c.MatchScore, c.MatchReason)
		if c.Description != "" {
			fmt.Fprintf(&sb, "\n%s\n", c.Description)
		}
		for _, f := range c.Features {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		if c.PriceRange != "" || c.Duration != "" {
			fmt.Fprintf(&sb, "\n_%s", c.PriceRange)
			if c.PriceRange != "" && c.Duration != "" {
				sb.WriteString(" · ")
			}
			fmt.Fprintf(&sb, "%s_\n", c.Duration)
		}
	}
	return sb.String()
}
