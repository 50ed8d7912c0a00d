package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func TestCLI_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	mustRun := func(args ...string) map[string]any {
		t.Helper()
		stdout, stderr, err := runCLI(t, args)
		if err != nil {
			t.Fatalf("command failed: coursetree %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
		}
		var env map[string]any
		if err := json.Unmarshal(stdout, &env); err != nil {
			t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
		}
		if _, ok := env["data"]; !ok {
			t.Fatalf("expected JSON envelope to contain data key; got: %v\nstdout:\n%s", env, string(stdout))
		}
		return env
	}
	dataOf := func(env map[string]any) map[string]any {
		t.Helper()
		d, ok := env["data"].(map[string]any)
		if !ok {
			t.Fatalf("data is not an object: %#v", env["data"])
		}
		return d
	}

	// Init an isolated workspace.
	initEnv := mustRun("--dir", dir, "init", "--title", "Intro to Go")
	outline, _ := dataOf(initEnv)["outline"].(map[string]any)
	if title, _ := outline["title"].(string); title != "Intro to Go" {
		t.Fatalf("init outline: %#v", outline)
	}

	// Build a small outline: two modules, one lesson under the first.
	modA, _ := dataOf(mustRun("--dir", dir, "add", "--type", "module", "Basics"))["id"].(string)
	modB, _ := dataOf(mustRun("--dir", dir, "add", "--type", "module", "Advanced"))["id"].(string)
	lesson, _ := dataOf(mustRun("--dir", dir, "add", "--type", "lesson", "--parent", modA, "--tier", "free", "Hello, world"))["id"].(string)
	if modA == "" || modB == "" || lesson == "" {
		t.Fatalf("add did not return ids: %q %q %q", modA, modB, lesson)
	}

	topIDs := func() []string {
		t.Helper()
		items, _ := dataOf(mustRun("--dir", dir, "show"))["items"].([]any)
		var ids []string
		for _, raw := range items {
			m, _ := raw.(map[string]any)
			id, _ := m["id"].(string)
			ids = append(ids, id)
		}
		return ids
	}

	if got := topIDs(); len(got) != 2 || got[0] != modA || got[1] != modB {
		t.Fatalf("initial top-level order: %v", got)
	}

	// Reorder: Advanced above Basics.
	mustRun("--dir", dir, "move", modB, "--above", modA)
	if got := topIDs(); got[0] != modB || got[1] != modA {
		t.Fatalf("order after move --above: %v", got)
	}

	// Modal move: lesson to the top level at index 0.
	mustRun("--dir", dir, "move", lesson, "--parent", "", "--index", "0")
	if got := topIDs(); len(got) != 3 || got[0] != lesson {
		t.Fatalf("order after modal move: %v", got)
	}

	// And back into Basics.
	mustRun("--dir", dir, "move", lesson, "--into", modA)

	// Moving a module into its own lesson must be rejected (lesson is
	// inside the module's subtree).
	if _, _, err := runCLI(t, []string{"--dir", dir, "move", modA, "--into", lesson}); err == nil {
		t.Fatal("move into own subtree should fail")
	}

	// Targets for the lesson exclude the lesson itself.
	targets, _ := mustRun("--dir", dir, "targets", lesson)["data"].([]any)
	for _, raw := range targets {
		m, _ := raw.(map[string]any)
		if m["id"] == lesson {
			t.Fatal("targets include the item itself")
		}
	}
	if len(targets) != 2 {
		t.Fatalf("expected both modules as targets, got %v", targets)
	}

	// Rename and retier.
	mustRun("--dir", dir, "set", lesson, "--title", "Hello again", "--tier", "paid")
	showEnv := mustRun("--dir", dir, "show")
	if !strings.Contains(mustJSON(t, showEnv), "Hello again") {
		t.Fatal("set --title not reflected in show")
	}

	// Toggle round trip.
	tog := dataOf(mustRun("--dir", dir, "toggle", modA))
	if open, _ := tog["open"].(bool); !open {
		t.Fatalf("first toggle should open: %#v", tog)
	}
	tog = dataOf(mustRun("--dir", dir, "toggle", modA))
	if open, _ := tog["open"].(bool); open {
		t.Fatalf("second toggle should close: %#v", tog)
	}

	// The event log saw the whole session.
	evs, _ := mustRun("--dir", dir, "events")["data"].([]any)
	if len(evs) < 5 {
		t.Fatalf("expected a populated event log, got %d events", len(evs))
	}

	// Remove and verify.
	mustRun("--dir", dir, "remove", modB)
	if got := topIDs(); len(got) != 1 || got[0] != modA {
		t.Fatalf("order after remove: %v", got)
	}

	// Docs are embedded.
	docsEnv := dataOf(mustRun("docs"))
	if topics, _ := docsEnv["topics"].([]any); len(topics) == 0 {
		t.Fatal("no docs topics")
	}
}

func TestCLI_UnknownIDsAreErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, _, err := runCLI(t, []string{"--dir", dir, "init"}); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{
		{"--dir", dir, "move", "nope", "--parent", ""},
		{"--dir", dir, "targets", "nope"},
		{"--dir", dir, "remove", "nope"},
		{"--dir", dir, "toggle", "nope"},
	} {
		if _, _, err := runCLI(t, args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestCLI_ShowBeforeInitFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, stderr, err := runCLI(t, []string{"--dir", dir, "show"})
	if err == nil {
		t.Fatal("show before init should fail")
	}
	if !strings.Contains(string(stderr), "not initialized") {
		t.Fatalf("stderr: %s", stderr)
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
