package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Tendo1904/mas-lab/pkg/domain"
)

// Renderer turns an answer into terminal output (e.g. markdown to ANSI).
type Renderer func(string) (string, error)

// InteractiveOptions configures the question loop.
type InteractiveOptions struct {
	In  io.Reader
	Out io.Writer

	// Render, when set, formats answers before printing.
	Render Renderer

	// SessionID, when set, persists every run through the session manager.
	SessionID string

	// DumpDir, when set, receives a state_<timestamp>.json snapshot per run.
	DumpDir string

	// Quiet suppresses the audit lines after each answer.
	Quiet bool
}

// exitWords end the loop, case-insensitively. An empty line also ends it.
var exitWords = map[string]bool{"exit": true, "quit": true}

// RunInteractive reads one question per line and answers it until the input ends, an
// exit word or empty line is read, or ctx is cancelled.
func RunInteractive(ctx context.Context, app *App, opts InteractiveOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := readLines(ctx, opts.In)
	var history []domain.SessionEntry

	for {
		fmt.Fprint(opts.Out, "> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(opts.Out)
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(opts.Out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" || exitWords[strings.ToLower(line)] {
			printSystemMessage(opts.Out, "Bye!")
			return nil
		}

		state, err := ask(ctx, app, opts.SessionID, line, history)
		if err != nil {
			if IsInterrupted(err) {
				return err
			}
			printSystemMessage(opts.Out, "Error: %v", err)
			continue
		}
		history = state.SessionHistory

		printAnswer(opts.Out, opts.Render, state)
		if !opts.Quiet {
			printSystemMessage(opts.Out, "Agents: %s", strings.Join(state.AgentsActivated, ", "))
			printSystemMessage(opts.Out, "History: %d", len(state.SessionHistory))
		}

		if opts.DumpDir != "" {
			path, err := DumpState(opts.DumpDir, state)
			if err != nil {
				app.Logger.Warn("failed to dump state", "err", err)
			} else if !opts.Quiet {
				printSystemMessage(opts.Out, "State written to %s", path)
			}
		}
	}
}

func ask(ctx context.Context, app *App, sessionID, query string, history []domain.SessionEntry) (*domain.State, error) {
	if sessionID != "" {
		return app.Sessions.Ask(ctx, sessionID, query)
	}
	return app.Pipeline.RunSession(ctx, query, history)
}

// readLines feeds lines from r until EOF or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func printAnswer(w io.Writer, render Renderer, state *domain.State) {
	answer := state.Answer()
	if render != nil {
		if out, err := render(answer); err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprintln(w, answer)
}

// DumpState writes the state snapshot to dir/state_<timestamp>.json.
func DumpState(dir string, state *domain.State) (string, error) {
	data, err := state.ToSnapshot()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create dump dir: %w", err)
	}
	name := fmt.Sprintf("state_%s.json", time.Now().UTC().Format("20060102T150405.000000000"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write state dump: %w", err)
	}
	return path, nil
}

// AskOnce answers a single query. In JSON mode the full snapshot is printed.
func AskOnce(ctx context.Context, app *App, w io.Writer, sessionID, query string, jsonMode bool, render Renderer) error {
	state, err := ask(ctx, app, sessionID, query, nil)
	if err != nil {
		return err
	}
	if jsonMode {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}
	printAnswer(w, render, state)
	return nil
}
