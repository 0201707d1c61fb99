package app

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

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New("test", "none", "today")
	require.NoError(t, err)
	return a
}

func runCommand(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	rootCmd := a.createRootCommand()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, newTestApp(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "regrecon test")
	assert.Contains(t, out, "commit: none")
}

func TestValidateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	catalog := `
anchor_field: enct.arrival_date
reporting_window:
  year: 2024
fields:
  - name: enct.arrival_date
    type: date
  - name: enct.sex
    type: string
`
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))

	out, err := runCommand(t, newTestApp(t), "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "fields:  2")
	assert.Contains(t, out, "anchor:  enct.arrival_date")
}

func TestValidateCommandRejectsBadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	catalog := `
fields:
  - name: enct.sex
    type: quaternion
`
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))

	_, err := runCommand(t, newTestApp(t), "validate", path)
	require.Error(t, err)
}

func TestRunCommandRequiresInputFlags(t *testing.T) {
	_, err := runCommand(t, newTestApp(t), "run")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "required flag"))
}

func TestRunCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	fieldspecPath := write("catalog.yaml", `
anchor_field: enct.arrival_date
reporting_window:
  year: 2024
fields:
  - name: enct.arrival_date
    type: date
  - name: enct.sex
    type: string
    mapping:
      "1": Male
      "2": Female
`)
	idlogPath := write("idlog.csv",
		"Fall-Nr.,SSR Identification\n100,7\n200,8\n")
	write("epic/encounters.csv",
		"PAT_ENC_CSN_ID,FID,arrival_date,sex\nC1,100,2024-06-15,1\nC2,200,2024-07-01,2\n")
	secutrialPath := write("registry.csv",
		"Case ID,enct.arrival_date,enct.sex\nSSR-07,15.06.2024,Male\nSSR-08,01.07.2024,Male\n")
	outDir := filepath.Join(dir, "out")

	out, err := runCommand(t, newTestApp(t),
		"run",
		"--epic-dir", filepath.Join(dir, "epic"),
		"--secutrial", secutrialPath,
		"--idlog", idlogPath,
		"--fieldspec", fieldspecPath,
		"--out-dir", outDir,
		"--format", "json",
		"--quiet",
	)
	require.NoError(t, err)

	// One of the two records disagrees on sex.
	assert.Contains(t, out, `"matched_pairs": 2`)
	assert.Contains(t, out, `"mismatch": 1`)

	for _, name := range []string{"report.md", "result.json", "result.yaml"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestDelimiterRune(t *testing.T) {
	assert.Equal(t, rune(0), delimiterRune(""))
	assert.Equal(t, ';', delimiterRune(";"))
	assert.Equal(t, '\t', delimiterRune("tab"))
	assert.Equal(t, '\t', delimiterRune(`\t`))
}
