package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig points the CLI at a file store in a temp directory
func writeConfig(t *testing.T) (configPath, eventsPath string) {
	t.Helper()
	dir := t.TempDir()
	eventsPath = filepath.Join(dir, "events.json")
	configPath = filepath.Join(dir, "config.yaml")
	data := "storage:\n  type: file\n  path: " + eventsPath + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(data), 0o644))
	return configPath, eventsPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_Preview(t *testing.T) {
	cfg, _ := writeConfig(t)

	out, err := runCLI(t, "-c", cfg, "preview", "--repeat", "weekly", "--interval", "2")
	require.NoError(t, err)
	assert.Equal(t, "2주마다\n", out)

	_, err = runCLI(t, "-c", cfg, "preview", "--repeat", "daily", "--interval", "100")
	assert.Error(t, err)
}

func TestRun_Generate(t *testing.T) {
	cfg, _ := writeConfig(t)

	out, err := runCLI(t, "-c", cfg, "generate",
		"--date", "2024-01-01", "--repeat", "weekly", "--interval", "2",
		"--weekdays", "1,4", "--until", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-04", "2024-01-15", "2024-01-18", "2024-01-29"},
		strings.Fields(out))
}

func TestRun_CreateListDelete(t *testing.T) {
	cfg, eventsPath := writeConfig(t)

	out, err := runCLI(t, "-c", cfg, "create",
		"--title", "Standup", "--date", "2024-01-01", "--start", "09:00", "--end", "09:15",
		"--repeat", "daily")
	require.NoError(t, err)
	assert.Contains(t, out, "created 10 events in group ")
	_, err = os.Stat(eventsPath)
	require.NoError(t, err)

	out, err = runCLI(t, "-c", cfg, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[0], "2024-01-01 09:00-09:15 Standup"))

	group := lines[0][strings.Index(lines[0], "group=")+len("group="):]

	out, err = runCLI(t, "-c", cfg, "exclude", "--group", group, "--from", "2024-01-03", "--to", "2024-01-04")
	require.NoError(t, err)
	assert.Equal(t, "removed 2 events\n", out)

	out, err = runCLI(t, "-c", cfg, "delete-group", group)
	require.NoError(t, err)
	assert.Equal(t, "deleted 8 events\n", out)

	out, err = runCLI(t, "-c", cfg, "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_ExportImport(t *testing.T) {
	cfg, _ := writeConfig(t)
	icsPath := filepath.Join(t.TempDir(), "out.ics")

	_, err := runCLI(t, "-c", cfg, "create",
		"--title", "Review", "--date", "2024-03-04", "--start", "14:00", "--end", "15:00")
	require.NoError(t, err)

	_, err = runCLI(t, "-c", cfg, "export", "--format", "ics", "-o", icsPath)
	require.NoError(t, err)
	data, err := os.ReadFile(icsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SUMMARY:Review")

	other, _ := writeConfig(t)
	out, err := runCLI(t, "-c", other, "import", icsPath)
	require.NoError(t, err)
	assert.Equal(t, "imported 1 events\n", out)

	out, err = runCLI(t, "-c", other, "list")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2024-03-04 14:00-15:00 Review"))

	out, err = runCLI(t, "-c", cfg, "export", "--format", "xcal")
	require.NoError(t, err)
	assert.Contains(t, out, "<icalendar xmlns=\"urn:ietf:params:xml:ns:icalendar-2.0\">")
}

func TestRun_Errors(t *testing.T) {
	cfg, _ := writeConfig(t)

	_, err := runCLI(t)
	assert.Error(t, err)

	_, err = runCLI(t, "-c", cfg, "bogus")
	assert.Error(t, err)

	_, err = runCLI(t, "-c", cfg, "create", "--title", "Bad", "--date", "2024-01-01", "--start", "10:00", "--end", "09:00")
	assert.Error(t, err)

	_, err = runCLI(t, "-c", cfg, "delete", "missing")
	assert.Error(t, err)

	_, err = runCLI(t, "-c", cfg, "export", "--format", "pdf")
	assert.Error(t, err)
}
