package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/sakemonkey/sakemonkey/internal/sheets"
	"github.com/sakemonkey/sakemonkey/internal/testutil"
)

var testEpoch = time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)

// cliEnv runs commands against a temp database and config with
// deterministic history ids and timestamps.
type cliEnv struct {
	t      *testing.T
	dir    string
	db     string
	config string
	ids    *testutil.SequenceIDs
	clock  *testutil.StepClock
	sheets sheets.Client
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "sakemonkey.yaml")
	require.NoError(t, os.WriteFile(config, []byte("log_level: warn\n"), 0o644))
	return &cliEnv{
		t:      t,
		dir:    dir,
		db:     filepath.Join(dir, "brew.db"),
		config: config,
		ids:    testutil.NewSequenceIDs("calc"),
		clock:  testutil.NewStepClock(testEpoch, time.Minute),
	}
}

// run executes one command line and returns stdout, stderr and the error.
func (e *cliEnv) run(args ...string) (string, string, error) {
	e.t.Helper()
	cmd := newRootCommand(&RootOptions{IDs: e.ids, Clock: e.clock, SheetsClient: e.sheets})
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--db", e.db, "--config", e.config}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRun executes a command line that must succeed and returns stdout.
func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, stderr, err := e.run(args...)
	require.NoError(e.t, err, "stdout:\n%s\nstderr:\n%s", out, stderr)
	return out
}

func (e *cliEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *cliEnv) writeFile(name, content string) string {
	e.t.Helper()
	p := e.path(name)
	require.NoError(e.t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}

// seedIngredients adds one ingredient of each role.
func (e *cliEnv) seedIngredients() {
	e.t.Helper()
	e.mustRun("ingredient", "add", "Yamada-60", "--type", "kake_rice", "--description", "Yamada Nishiki 60%")
	e.mustRun("ingredient", "add", "Koji-Omachi", "--type", "koji_rice", "--source", "Okayama")
	e.mustRun("ingredient", "add", "K9", "--type", "yeast", "--acc-date", "2024-01-15")
	e.mustRun("ingredient", "add", "Spring", "--type", "water", "--source", "Local spring")
}
