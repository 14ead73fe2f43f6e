// Package app wires the composer, its configuration and the optional
// config watcher into one interactive session, and runs the command
// loop behind the quill-repl binary.
package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/dshills/quill/internal/composer"
	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/suggestion"
)

// ErrQuit signals that the session should exit normally.
var ErrQuit = errors.New("quit requested")

// Application owns one composer session: the composer itself, the
// resolved settings, and the command loop reading from In.
type Application struct {
	mu sync.RWMutex

	composer *composer.Composer
	settings config.Settings
	watcher  *config.Watcher

	reader *bufio.Reader
	out    io.Writer

	// Cached from the latest update so menu and accept work between
	// commands.
	menu    composer.MenuState
	pattern *composer.Pattern

	closed bool
	opts   Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. A missing
	// file is fine; defaults apply.
	ConfigPath string

	// CRDT selects the collaborative backend.
	CRDT bool

	// Replica is the replica id for the CRDT backend. Empty means a
	// generated id.
	Replica string

	// Watch reloads the configuration file when it changes.
	Watch bool

	// In and Out are the session streams. They default to stdin and
	// stdout.
	In  io.Reader
	Out io.Writer
}

// New creates an application: settings are loaded, the composer built
// from them, and the watcher started when requested.
func New(opts Options) (*Application, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	c, err := buildComposer(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("initializing composer: %w", err)
	}

	a := &Application{
		composer: c,
		settings: cfg,
		reader:   bufio.NewReader(opts.In),
		out:      opts.Out,
		opts:     opts,
	}
	// Seed the cached menu so `menu` works before the first edit.
	a.remember(c.Select(0, 0))

	if opts.Watch {
		w, err := config.NewWatcher(opts.ConfigPath, a.applySettings)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("watching config: %w", err)
		}
		a.watcher = w
		fmt.Fprintf(a.out, "Watching %s for changes\n", w.Path())
	}

	return a, nil
}

// buildComposer translates settings into composer options.
func buildComposer(cfg config.Settings, opts Options) (*composer.Composer, error) {
	copts := []composer.Option{
		composer.WithMaxHistoryEntries(cfg.MaxHistoryEntries),
	}
	rules, err := buildRules(cfg.Patterns)
	if err != nil {
		return nil, err
	}
	for _, r := range rules {
		copts = append(copts, composer.WithSuggestionRule(r))
	}
	if opts.CRDT {
		copts = append(copts, composer.WithCRDTBackend())
		if opts.Replica != "" {
			copts = append(copts, composer.WithReplicaID(opts.Replica))
		}
	}
	return composer.New(copts...)
}

func buildRules(patterns []config.PatternRule) ([]suggestion.Rule, error) {
	rules := make([]suggestion.Rule, 0, len(patterns))
	for _, p := range patterns {
		var r suggestion.Rule
		var err error
		if p.Regex != "" {
			r, err = suggestion.NewRegexpRule(p.Name, p.Regex)
		} else {
			r, err = suggestion.NewLuaRule(p.Name, p.LuaSource)
		}
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p.Name, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// Run reads and executes commands until quit or end of input. A quit
// command surfaces as ErrQuit; end of input returns nil.
func (a *Application) Run() error {
	fmt.Fprintln(a.out, "Quill REPL - Interactive Message Composer")
	fmt.Fprintln(a.out, "Type 'help' for available commands, 'quit' to exit")
	fmt.Fprintln(a.out)

	for {
		fmt.Fprint(a.out, "quill> ")
		input, err := a.reader.ReadString('\n')
		if err != nil {
			fmt.Fprintln(a.out, "\nGoodbye!")
			return nil
		}
		if err := a.handleCommand(input); err != nil {
			return err
		}
	}
}

// Shutdown releases the watcher and the composer. Safe to call more
// than once.
func (a *Application) Shutdown() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			slog.Error("closing config watcher", "error", err)
		}
	}
	a.composer.Close()
}

// applySettings takes over reloaded settings. Link schemes and mention
// hosts apply to the next command; pattern rules unknown to the
// composer are registered on the fly. The history bound is fixed at
// construction.
func (a *Application) applySettings(s config.Settings) {
	a.mu.Lock()
	defer a.mu.Unlock()

	known := a.composer.SuggestionRuleNames()
	for _, p := range s.Patterns {
		if slices.Contains(known, p.Name) {
			continue
		}
		rules, err := buildRules([]config.PatternRule{p})
		if err != nil {
			slog.Error("skipping reloaded pattern", "name", p.Name, "error", err)
			continue
		}
		a.composer.RegisterRule(rules[0])
	}
	if s.MaxHistoryEntries != a.settings.MaxHistoryEntries {
		slog.Info("history size change applies to the next session",
			"current", a.settings.MaxHistoryEntries, "new", s.MaxHistoryEntries)
	}
	a.settings = s
}

// Settings returns the currently effective settings.
func (a *Application) Settings() config.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}
