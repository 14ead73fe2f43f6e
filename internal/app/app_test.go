package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runScript executes a newline-separated command script against a fresh
// application and returns everything it printed.
func runScript(t *testing.T, opts Options, script string) string {
	t.Helper()
	var out bytes.Buffer
	opts.In = strings.NewReader(script)
	opts.Out = &out
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(t.TempDir(), "quill.toml")
	}

	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	if err := a.Run(); err != nil && !errors.Is(err, ErrQuit) {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestRunTypeAndQuit(t *testing.T) {
	out := runScript(t, Options{}, "type hello\nquit\n")

	if !strings.Contains(out, "content:   hello") {
		t.Errorf("expected typed content in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Errorf("expected quit farewell, got:\n%s", out)
	}
}

func TestRunEndOfInputExits(t *testing.T) {
	out := runScript(t, Options{}, "type hi\n")

	if !strings.Contains(out, "Goodbye!") {
		t.Errorf("expected farewell on end of input, got:\n%s", out)
	}
}

func TestRunBoldRange(t *testing.T) {
	out := runScript(t, Options{}, "type ab\nselect 0 2\nbold\nhtml\nquit\n")

	if !strings.Contains(out, "<strong>ab</strong>") {
		t.Errorf("expected bolded content, got:\n%s", out)
	}
}

func TestRunSuggestionAccept(t *testing.T) {
	script := "type @ali\naccept https://matrix.to/#/@alice:ex.org Alice\nhtml\nquit\n"
	out := runScript(t, Options{}, script)

	if !strings.Contains(out, `suggest:   at "ali"`) {
		t.Errorf("expected an at-suggestion, got:\n%s", out)
	}
	if !strings.Contains(out, `data-mention-type="user"`) {
		t.Errorf("expected accepted mention in content, got:\n%s", out)
	}
	if !strings.Contains(out, ">Alice</a>") {
		t.Errorf("expected mention display text, got:\n%s", out)
	}
}

func TestRunLinkSchemeRefused(t *testing.T) {
	out := runScript(t, Options{}, "type hi\nselect 0 2\nlink ftp://files.example.com\nquit\n")

	if !strings.Contains(out, "Refused: scheme") {
		t.Errorf("expected link refusal for ftp, got:\n%s", out)
	}
	if strings.Contains(out, "<a href") {
		t.Errorf("expected no link in content, got:\n%s", out)
	}
}

func TestRunMentionHostRefused(t *testing.T) {
	out := runScript(t, Options{}, "mention https://evil.example/@x X\nquit\n")

	if !strings.Contains(out, "Refused: host") {
		t.Errorf("expected mention refusal, got:\n%s", out)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	out := runScript(t, Options{}, "bogus\nquit\n")

	if !strings.Contains(out, "Unknown command: bogus") {
		t.Errorf("expected unknown command notice, got:\n%s", out)
	}
}

func TestRunMenuOnEmptyDocument(t *testing.T) {
	out := runScript(t, Options{}, "menu\nquit\n")

	if !strings.Contains(out, "link action:   create-with-text") {
		t.Errorf("expected create-with-text link action at empty caret, got:\n%s", out)
	}
}

func TestNewRegistersConfigRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.toml")
	content := `[[patterns]]
name = "issue"
regex = '^[A-Z]+-\d+$'
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	out := runScript(t, Options{ConfigPath: path}, "rules\nquit\n")

	if !strings.Contains(out, "issue") {
		t.Errorf("expected configured rule to be registered, got:\n%s", out)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.toml")
	if err := os.WriteFile(path, []byte("maxHistoryEntries = 0\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := New(Options{ConfigPath: path, In: strings.NewReader(""), Out: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("expected an error for invalid settings")
	}
}

func TestRunOutboundRequiresCRDT(t *testing.T) {
	out := runScript(t, Options{}, "outbound\nquit\n")

	if !strings.Contains(out, "Outbound error:") {
		t.Errorf("expected outbound refusal on tree backend, got:\n%s", out)
	}
}

func TestRunOutboundOnCRDT(t *testing.T) {
	out := runScript(t, Options{CRDT: true, Replica: "alpha"}, "type hi\noutbound\nstatus\nquit\n")

	if !strings.Contains(out, "pending ops") {
		t.Errorf("expected pending op count, got:\n%s", out)
	}
	if strings.Contains(out, "Outbound error:") {
		t.Errorf("expected no outbound error on crdt backend, got:\n%s", out)
	}
	if !strings.Contains(out, "replica:   alpha") {
		t.Errorf("expected replica id in status, got:\n%s", out)
	}
}

func TestNewWithWatch(t *testing.T) {
	var out bytes.Buffer
	a, err := New(Options{
		ConfigPath: filepath.Join(t.TempDir(), "quill.toml"),
		Watch:      true,
		In:         strings.NewReader(""),
		Out:        &out,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	if !strings.Contains(out.String(), "Watching") {
		t.Errorf("expected watch notice, got:\n%s", out.String())
	}
}

func TestShutdownIdempotent(t *testing.T) {
	a, err := New(Options{
		ConfigPath: filepath.Join(t.TempDir(), "quill.toml"),
		In:         strings.NewReader(""),
		Out:        &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a.Shutdown()
	a.Shutdown()
}
