package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShellReplaysCommandAfterLogin(t *testing.T) {
	e := newCLIEnv(t)

	input := strings.Join([]string{
		"compliance stats",
		"login --email " + testEmail + " --password " + testPassword,
		"whoami",
		"/compliance",
		"bogus",
		"exit",
	}, "\n") + "\n"

	r := e.run(input, "shell")
	if r.err != nil {
		t.Fatalf("shell error: %v\nstderr: %s", r.err, r.stderr)
	}

	for _, want := range []string{
		"Not logged in",
		"complitracker /login> ",
		"Login required. 'compliance stats' will run after you log in.",
		"Logged in as Alice <alice@example.com>",
		"Resuming: compliance stats",
		"compliant",
		"complitracker /compliance> ",
		"GDPR audit",
		`unknown command "bogus"`,
	} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("shell output missing %q\n%s", want, r.stdout)
		}
	}
	if n := e.backend.callCount("GET /compliance/stats"); n != 1 {
		t.Errorf("stats calls = %d, want 1", n)
	}

	history, err := os.ReadFile(filepath.Join(e.storeDir, "history"))
	if err != nil {
		t.Fatalf("history not saved: %v", err)
	}
	if strings.Contains(string(history), testPassword) {
		t.Error("history recorded a password")
	}
	if !strings.Contains(string(history), "compliance stats") {
		t.Errorf("history = %q", history)
	}
}

func TestShellEphemeralSession(t *testing.T) {
	e := newCLIEnv(t)

	input := "login --email " + testEmail + " --password " + testPassword + "\nwhoami\nlogout\nwhoami\n"
	r := e.run(input, "--ephemeral", "shell")
	if r.err != nil {
		t.Fatalf("shell error: %v", r.err)
	}
	if n := strings.Count(r.stdout, "Login required. 'whoami' will run after you log in."); n != 1 {
		t.Errorf("whoami refused %d times, want once (after logout):\n%s", n, r.stdout)
	}
	if !strings.Contains(r.stdout, "Logged out") {
		t.Errorf("logout output missing:\n%s", r.stdout)
	}

	// Nothing was persisted.
	if r := e.run("", "whoami"); r.err == nil {
		t.Error("ephemeral session leaked to the file store")
	}
}

func TestShellRejectsNesting(t *testing.T) {
	e := newCLIEnv(t)
	r := e.run("shell\nexit\n", "--ephemeral", "shell")
	if r.err != nil {
		t.Fatalf("shell error: %v", r.err)
	}
	if !strings.Contains(r.stdout, "already running a shell") {
		t.Errorf("nested shell not rejected:\n%s", r.stdout)
	}
}

func TestShellLogoutIsNotAnnouncedAsSessionEnd(t *testing.T) {
	e := newCLIEnv(t)

	input := "login --email " + testEmail + " --password " + testPassword + "\n/dashboard\nlogout\nexit\n"
	r := e.run(input, "--ephemeral", "shell")
	if r.err != nil {
		t.Fatalf("shell error: %v", r.err)
	}
	if !strings.Contains(r.stdout, "complitracker /dashboard> ") {
		t.Fatalf("shell never reached /dashboard:\n%s", r.stdout)
	}
	if !strings.Contains(r.stdout, "Logged out") {
		t.Errorf("logout output missing:\n%s", r.stdout)
	}
	if strings.Contains(r.stderr, "Session ended") || strings.Contains(r.stdout, "Session ended") {
		t.Errorf("own logout reported as an ended session:\nstdout: %s\nstderr: %s", r.stdout, r.stderr)
	}
}
