package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"login", []string{"login"}},
		{"  compliance   list ", []string{"compliance", "list"}},
		{`compliance create --title "GDPR audit"`, []string{"compliance", "create", "--title", "GDPR audit"}},
		{`say 'it "is"'`, []string{"say", `it "is"`}},
		{`a\ b c`, []string{"a b", "c"}},
		{`empty ""`, []string{"empty", ""}},
	}
	for _, tt := range tests {
		got, err := Split(tt.line)
		if err != nil {
			t.Fatalf("Split(%q) error: %v", tt.line, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}

	if _, err := Split(`open "quote`); !errors.Is(err, ErrUnterminatedQuote) {
		t.Errorf("open quote error = %v", err)
	}
}

func TestREPLRun(t *testing.T) {
	in := strings.NewReader("whoami\n\n# comment\ncompliance list --status open\nexit\nnever\n")
	var out bytes.Buffer
	var got [][]string

	r := New(Config{
		In:     in,
		Out:    &out,
		Prompt: func() string { return "/dashboard> " },
		Exec: func(_ context.Context, args []string) error {
			got = append(got, args)
			return nil
		},
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := [][]string{{"whoami"}, {"compliance", "list", "--status", "open"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("executed %q, want %q", got, want)
	}
	if !strings.Contains(out.String(), "/dashboard> ") {
		t.Errorf("prompt missing from output: %q", out.String())
	}
}

func TestREPLErrors(t *testing.T) {
	var out bytes.Buffer
	r := New(Config{
		In:  strings.NewReader("fail\nstop\nafter\n"),
		Out: &out,
		Exec: func(_ context.Context, args []string) error {
			switch args[0] {
			case "fail":
				return errors.New("boom")
			case "stop":
				return ErrExit
			}
			t.Errorf("unexpected command %q", args[0])
			return nil
		},
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(out.String(), "Error: boom") {
		t.Errorf("output = %q", out.String())
	}
}

func TestREPLEOF(t *testing.T) {
	r := New(Config{
		In:   strings.NewReader("one\n"),
		Out:  io.Discard,
		Exec: func(context.Context, []string) error { return nil },
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestREPLCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	r := New(Config{
		In:   pr,
		Out:  io.Discard,
		Exec: func(context.Context, []string) error { return nil },
	})
	go func() { done <- r.Run(ctx) }()

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestREPLHistoryBuiltin(t *testing.T) {
	var out bytes.Buffer
	r := New(Config{
		In:   strings.NewReader("whoami\nhistory\n"),
		Out:  &out,
		Exec: func(context.Context, []string) error { return nil },
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(out.String(), "1  whoami") {
		t.Errorf("history output = %q", out.String())
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory("", 3)
	for _, cmd := range []string{"a", "b", "b", "c", "d"} {
		h.Add(cmd)
	}
	if got := h.Entries(); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("Entries() = %q", got)
	}
	if got := h.Get(0); got != "d" {
		t.Errorf("Get(0) = %q", got)
	}
	if got := h.Get(5); got != "" {
		t.Errorf("Get(5) = %q", got)
	}

	h.Add("login --email a@b.c --password hunter2")
	if got := h.Get(0); got != "d" {
		t.Errorf("password line recorded: %q", got)
	}
}

func TestHistoryPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "history")

	h := NewHistory(path, 10)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() missing file error: %v", err)
	}
	h.Add("whoami")
	h.Add("compliance list")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded := NewHistory(path, 10)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := reloaded.Entries(); !reflect.DeepEqual(got, []string{"whoami", "compliance list"}) {
		t.Errorf("Entries() = %q", got)
	}
}

func TestCompleter(t *testing.T) {
	c := NewCompleter("compliance list", "compliance get", "config show", "login")

	got := c.Complete("compl")
	want := []string{"compliance get", "compliance list"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Complete(compl) = %q, want %q", got, want)
	}
	if got := c.Complete("ex"); !reflect.DeepEqual(got, []string{"exit"}) {
		t.Errorf("Complete(ex) = %q", got)
	}
	if got := c.Complete("zzz"); got != nil {
		t.Errorf("Complete(zzz) = %q", got)
	}

	r := New(Config{Out: io.Discard, Completer: c})
	if got := r.Suggest("log"); !reflect.DeepEqual(got, []string{"login"}) {
		t.Errorf("Suggest(log) = %q", got)
	}
}

func TestREPLReadLine(t *testing.T) {
	var out bytes.Buffer
	var r *REPL
	var got string
	r = New(Config{
		In:  strings.NewReader("login\nsecret\nexit\n"),
		Out: &out,
		Exec: func(ctx context.Context, args []string) error {
			line, err := r.ReadLine(ctx, "Password: ")
			if err != nil {
				return err
			}
			got = line
			return nil
		},
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got != "secret" {
		t.Errorf("ReadLine() = %q, want %q", got, "secret")
	}
	if !strings.Contains(out.String(), "Password: ") {
		t.Errorf("prompt missing: %q", out.String())
	}
	if h := r.cfg.History.Entries(); len(h) != 1 || h[0] != "login" {
		t.Errorf("history = %q", h)
	}
}
