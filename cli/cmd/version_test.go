package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/kordless/mystic/types"
)

// captureStdout redirects os.Stdout during fn and returns what was written.
// render.Renderer always targets os.Stdout, so exercising a full command
// action through render.NewRenderer needs this rather than app.Writer.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func runApp(t *testing.T, cmds []*cli.Command, args []string) error {
	t.Helper()
	app := &cli.App{
		Name:     "mystic",
		Writer:   io.Discard,
		Commands: cmds,
	}
	return app.Run(append([]string{"mystic"}, args...))
}

func TestVersionAction_RendersVersionAndCommit(t *testing.T) {
	var runErr error
	out := captureStdout(t, func() {
		runErr = runApp(t, []*cli.Command{VersionCommand("", "abc123")}, []string{"version", "--format", "json"})
	})
	if runErr != nil {
		t.Fatalf("unexpected error: %v", runErr)
	}

	var resp VersionResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("failed to decode output: %v (output: %s)", err, out)
	}
	if resp.Version != types.Version {
		t.Errorf("version = %q, want %q", resp.Version, types.Version)
	}
	if resp.Commit != "abc123" {
		t.Errorf("commit = %q, want abc123", resp.Commit)
	}
}

func TestVersionAction_RejectsTUI(t *testing.T) {
	err := runApp(t, []*cli.Command{VersionCommand("", "abc123")}, []string{"version", "--tui"})
	if err == nil {
		t.Fatal("expected error for --tui on version command")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("error = %v, want mention of unsupported --tui", err)
	}
}
