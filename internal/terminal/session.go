// Package terminal implements the interactive finterm shell. Every input
// line is split into words and dispatched through a cobra command tree
// that fetches vendor data, manages datasets and runs the econometrics.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seenimoa/finterm/internal/config"
	"github.com/seenimoa/finterm/internal/econometrics"
	"github.com/seenimoa/finterm/internal/provider"
)

const banner = `
╔═══════════════════════════════════════════════════╗
║               finterm interactive shell            ║
║  e.g. fetch EquityHistorical -s AAPL --as aapl     ║
║  Commands: help  .history  .clear  .quit           ║
╚═══════════════════════════════════════════════════╝
`

// errQuit ends the loop.
var errQuit = errors.New("quit")

// Session is one interactive shell: its datasets, fitted models and
// command history.
type Session struct {
	id      string
	cfg     *config.Config
	reg     *provider.Registry
	ws      *econometrics.Workspace
	log     *zap.Logger
	in      io.Reader
	out     io.Writer
	history []string
}

// NewSession creates a session reading stdin and writing stdout.
func NewSession(cfg *config.Config, reg *provider.Registry, log *zap.Logger) *Session {
	return NewSessionWithIO(cfg, reg, log, os.Stdin, os.Stdout)
}

// NewSessionWithIO creates a session with explicit reader/writer (useful for testing).
func NewSessionWithIO(cfg *config.Config, reg *provider.Registry, log *zap.Logger, in io.Reader, out io.Writer) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &Session{
		id:  id,
		cfg: cfg,
		reg: reg,
		ws:  econometrics.NewWorkspace(),
		log: log.Named("terminal").With(zap.String("session", id)),
		in:  in,
		out: out,
	}
}

// ID returns the session id attached to every log line.
func (s *Session) ID() string { return s.id }

// Workspace returns the datasets and fitted models of the session.
func (s *Session) Workspace() *econometrics.Workspace { return s.ws }

// History returns the executed lines, oldest first.
func (s *Session) History() []string { return append([]string(nil), s.history...) }

func (s *Session) prompt() string {
	if s.cfg != nil && s.cfg.Terminal.Prompt != "" {
		return s.cfg.Terminal.Prompt
	}
	return "finterm> "
}

func (s *Session) maxRows() int {
	if s.cfg != nil && s.cfg.Terminal.MaxRows > 0 {
		return s.cfg.Terminal.MaxRows
	}
	return 20
}

// Run starts the interactive loop. Blocks until EOF, .quit or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprint(s.out, banner)
	s.log.Info("session started")
	defer s.log.Info("session ended", zap.Int("commands", len(s.history)))
	return s.loop(ctx, s.in, true)
}

// RunScript executes every line of r without banner or prompt. Lines
// starting with # are comments. Failing lines are reported and skipped.
func (s *Session) RunScript(ctx context.Context, r io.Reader) error {
	return s.loop(ctx, r, false)
}

// RunFile executes a script file.
func (s *Session) RunFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	s.log.Info("running script", zap.String("path", path))
	return s.RunScript(ctx, f)
}

func (s *Session) loop(ctx context.Context, r io.Reader, interactive bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if interactive {
			fmt.Fprint(s.out, s.prompt())
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !interactive {
			fmt.Fprintf(s.out, "%s%s\n", s.prompt(), line)
		}

		if strings.HasPrefix(line, ".") {
			if s.handleCommand(line) {
				return nil
			}
			continue
		}

		s.remember(line)
		if err := s.execute(ctx, line); errors.Is(err, errQuit) {
			return nil
		}
	}
	return scanner.Err()
}

// handleCommand processes dot-commands. Returns true if the session should exit.
func (s *Session) handleCommand(cmd string) bool {
	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case ".quit", ".exit", ".q":
		fmt.Fprintln(s.out, "Goodbye!")
		return true

	case ".help":
		_ = s.Execute(context.Background(), "help")

	case ".history":
		for i, h := range s.history {
			fmt.Fprintf(s.out, "  %d  %s\n", i+1, h)
		}

	case ".clear":
		s.history = nil
		fmt.Fprintln(s.out, "History cleared.")

	default:
		fmt.Fprintf(s.out, "Unknown command: %s  (type .help for help)\n", cmd)
	}
	return false
}

func (s *Session) remember(line string) {
	s.history = append(s.history, line)
	if limit := s.historySize(); limit > 0 && len(s.history) > limit {
		s.history = s.history[len(s.history)-limit:]
	}
}

func (s *Session) historySize() int {
	if s.cfg == nil {
		return 0
	}
	return s.cfg.Terminal.HistorySize
}

// execute runs one line, reports a failure as "error: ..." and prints the
// elapsed time.
func (s *Session) execute(ctx context.Context, line string) error {
	start := time.Now()
	err := s.Execute(ctx, line)
	switch {
	case errors.Is(err, errQuit):
		fmt.Fprintln(s.out, "Goodbye!")
		return err
	case err != nil:
		fmt.Fprintf(s.out, "error: %v\n", err)
		s.log.Debug("command failed", zap.String("line", line), zap.Error(err))
		return err
	}
	fmt.Fprintf(s.out, "  (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// splitWords splits a command line into words with shell quoting and
// escapes. A "#" at the start of a word comments out the rest of the line.
func splitWords(line string) ([]string, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", line, err)
	}
	return words, nil
}

// Execute runs a single command line against a fresh command tree.
func (s *Session) Execute(ctx context.Context, line string) error {
	words, err := splitWords(line)
	if err != nil {
		return err
	}
	return s.ExecuteArgs(ctx, words)
}

// ExecuteArgs runs one command given as already split words.
func (s *Session) ExecuteArgs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	root := s.commands()
	root.SetArgs(args)
	root.SetOut(s.out)
	root.SetErr(s.out)
	root.SetIn(s.in)
	_, err := root.ExecuteContextC(ctx)
	return err
}
