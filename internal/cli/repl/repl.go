package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrExit ends the loop when returned by Exec.
var ErrExit = errors.New("repl: exit")

// Config configures a REPL.
type Config struct {
	In  io.Reader
	Out io.Writer

	// Prompt renders the prompt before each line.
	Prompt func() string
	// Exec runs one parsed line.
	Exec func(ctx context.Context, args []string) error
	// OnError reports an Exec error. The default prints "Error: ...".
	OnError func(err error)

	History   *History
	Completer *Completer
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	cfg   Config
	lines *lineSource
}

// New creates a new REPL instance.
func New(cfg Config) *REPL {
	if cfg.Prompt == nil {
		cfg.Prompt = func() string { return "> " }
	}
	if cfg.History == nil {
		cfg.History = NewHistory("", 0)
	}
	r := &REPL{cfg: cfg}
	if r.cfg.OnError == nil {
		r.cfg.OnError = func(err error) {
			fmt.Fprintf(r.cfg.Out, "Error: %v\n", err)
		}
	}
	if cfg.In != nil {
		r.lines = newLineSource(cfg.In)
	}
	return r
}

// Run reads lines until EOF, an exit command, ErrExit or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	for {
		fmt.Fprint(r.cfg.Out, r.cfg.Prompt())

		line, err := r.lines.next(ctx)
		if err != nil {
			fmt.Fprintln(r.cfg.Out)
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		args, err := Split(line)
		if err != nil {
			r.cfg.OnError(err)
			continue
		}
		r.cfg.History.Add(line)

		switch args[0] {
		case "exit", "quit":
			return nil
		case "history":
			r.printHistory()
			continue
		}

		err = r.cfg.Exec(ctx, args)
		if errors.Is(err, ErrExit) {
			return nil
		}
		if err != nil {
			r.cfg.OnError(err)
		}
	}
}

// ReadLine prints prompt and reads the next input line. Commands running
// inside the loop use it so they share the loop's input.
func (r *REPL) ReadLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(r.cfg.Out, prompt)
	line, err := r.lines.next(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r"), nil
}

// Suggest returns completions for an unrecognized command word.
func (r *REPL) Suggest(word string) []string {
	if r.cfg.Completer == nil {
		return nil
	}
	return r.cfg.Completer.Complete(word)
}

func (r *REPL) printHistory() {
	for i, entry := range r.cfg.History.Entries() {
		fmt.Fprintf(r.cfg.Out, "%4d  %s\n", i+1, entry)
	}
}

type lineResult struct {
	line string
	err  error
}

// lineSource reads one line per request so that a blocked read never
// swallows input meant for a later caller. It is used from one goroutine.
type lineSource struct {
	req     chan struct{}
	resp    chan lineResult
	pending bool
}

func newLineSource(in io.Reader) *lineSource {
	s := &lineSource{
		req:  make(chan struct{}),
		resp: make(chan lineResult),
	}
	go func() {
		scanner := bufio.NewScanner(in)
		for range s.req {
			if scanner.Scan() {
				s.resp <- lineResult{line: scanner.Text()}
				continue
			}
			err := scanner.Err()
			if err == nil {
				err = io.EOF
			}
			s.resp <- lineResult{err: err}
		}
	}()
	return s
}

func (s *lineSource) next(ctx context.Context) (string, error) {
	if s == nil {
		return "", io.EOF
	}
	if !s.pending {
		select {
		case s.req <- struct{}{}:
			s.pending = true
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	select {
	case r := <-s.resp:
		s.pending = false
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
