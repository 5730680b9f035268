package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-care-service/internal/auth"
	"traffic-care-service/internal/service"
)

func setupCLIEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_ENV", "test")
	t.Setenv("STATE_BACKEND", "file")
	t.Setenv("STATE_DIR", dir)
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVehiclesAddThenList(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCLI(t, "vehicles", "add", "30g46044")
	require.NoError(t, err)
	assert.Contains(t, out, "30G-460.44")
	assert.Contains(t, out, "has-violation")

	out, err = runCLI(t, "vehicles", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "30G-460.44")

	_, err = runCLI(t, "vehicles", "add", "30G-460.44")
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestCheckPrintsReport(t *testing.T) {
	setupCLIEnv(t)

	_, err := runCLI(t, "vehicles", "add", "11A07378")
	require.NoError(t, err)

	out, err := runCLI(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "11A-073.78")
	assert.Contains(t, out, "clean")
}

func TestLogsShowAndClear(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCLI(t, "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "System log is empty")

	_, err = runCLI(t, "vehicles", "add", "11A07378")
	require.NoError(t, err)

	out, err = runCLI(t, "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "Sync completed.")

	_, err = runCLI(t, "logs", "--clear")
	require.NoError(t, err)
	out, err = runCLI(t, "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "System log is empty")
}

func TestTestRunStreamsLines(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCLI(t, "test-run", "11A07378,30G46044", "--email", "qa@example.com")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[len(lines)-1], "Test cycle finished.")
	// no EmailJS credentials are configured
	assert.Contains(t, out, "email skipped")
}

func TestTokenRequiresSecret(t *testing.T) {
	setupCLIEnv(t)

	_, err := runCLI(t, "token", "operator-1")
	assert.Error(t, err)

	t.Setenv("JWT_ACCESS_SECRET", "s3cret")
	out, err := runCLI(t, "token", "operator-1", "--email", "op@example.com")
	require.NoError(t, err)

	claims, err := auth.NewParser("s3cret").Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "operator-1", claims.Subject)
	assert.Equal(t, "op@example.com", claims.Email)
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "only")
	assert.Empty(t, renderTable(nil, nil, nil))
}
