//go:build unix

package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/rgsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	beginLine = `{"type":"begin","data":{"path":{"text":"src/a.go"}}}`
	matchLine = `{"type":"match","data":{"path":{"text":"src/a.go"},"lines":{"text":"the needle here\n"},"line_number":3,"submatches":[{"match":{"text":"needle"},"start":4,"end":10}]}}`
	endLine   = `{"type":"end","data":{"path":{"text":"src/a.go"}}}`
)

// fakeRipgrep writes a script that prints a fixed ripgrep JSON stream.
func fakeRipgrep(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rg")
	script := "#!/bin/sh\n" +
		"printf '%s\\n' '" + beginLine + "'\n" +
		"printf '%s\\n' '" + matchLine + "'\n" +
		"printf '%s\\n' '" + endLine + "'\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// endlessRipgrep writes a script that prints the same line forever.
func endlessRipgrep(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexec yes line\n"), 0755))
	return path
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("stdout closed")
}

func TestSearchCommand_Raw(t *testing.T) {
	out, _, err := runApp(t, "search", "--executable", fakeRipgrep(t), "--raw", "needle")
	require.NoError(t, err)

	assert.Equal(t, beginLine+"\n"+matchLine+"\n"+endLine+"\n", out)
}

func TestSearchCommand_Pretty(t *testing.T) {
	out, errOut, err := runApp(t, "search", "--executable", fakeRipgrep(t), "needle", "src")
	require.NoError(t, err)

	assert.Contains(t, out, "src/a.go")
	assert.Contains(t, out, "needle")
	assert.NotContains(t, out, `"type":"begin"`)
	assert.Contains(t, errOut, "1 matches in 1 files")
}

func TestSearchCommand_JSON(t *testing.T) {
	out, _, err := runApp(t, "search", "--executable", fakeRipgrep(t), "--json", "needle")
	require.NoError(t, err)

	var events []core.SearchEvent
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var event core.SearchEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.True(t, last.IsFinished())
	assert.Empty(t, last.Lines)

	var lines []string
	for _, e := range events {
		lines = append(lines, e.Lines...)
	}
	assert.Equal(t, []string{beginLine, matchLine, endLine}, lines)
}

func TestSearchCommand_RecordsHistory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")

	_, _, err := runApp(t, "search", "--executable", fakeRipgrep(t), "--db", dir, "needle", "src")
	require.NoError(t, err)

	out, _, err := runApp(t, "history", "list", "--db", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "needle")
}

func TestInteractiveCommand(t *testing.T) {
	var stdout, stderr strings.Builder
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader("needle\n\n")

	err := app.Run([]string{"rgsearch", "interactive", "--executable", fakeRipgrep(t), "src"})
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "search 1")
	assert.Contains(t, out, "src/a.go")
	assert.Contains(t, out, "-- done --")
}

func TestSearchCommand_EndingAtCapIsNotCapped(t *testing.T) {
	// The fake prints exactly three lines, the same as the cap.
	_, errOut, err := runApp(t, "search", "--executable", fakeRipgrep(t), "--match-cap", "3", "needle")
	require.NoError(t, err)

	assert.Contains(t, errOut, "1 matches in 1 files")
	assert.NotContains(t, errOut, "result limit reached")
}

func TestSearchCommand_CapReported(t *testing.T) {
	_, errOut, err := runApp(t, "search", "--executable", endlessRipgrep(t), "--raw", "--match-cap", "50", "needle")
	require.NoError(t, err)

	assert.Contains(t, errOut, "result limit reached")
}

func TestSearchCommand_WriteErrorDoesNotStallShutdown(t *testing.T) {
	app := newApp()
	app.Writer = failingWriter{}
	app.ErrWriter = &strings.Builder{}

	start := time.Now()
	err := app.Run([]string{"rgsearch", "search",
		"--executable", endlessRipgrep(t), "--raw", "--batch-size", "1", "needle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdout closed")

	// The session is left blocked delivering events unless the sink is closed
	// before the controller waits for it.
	assert.Less(t, time.Since(start), 3*time.Second)
}
