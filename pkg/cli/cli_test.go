package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/gmail-signin/pkg/locator"
	"github.com/devicelab-dev/gmail-signin/pkg/report"
)

// fastConfig keeps mock runs quick.
const fastConfig = `
timeouts:
  find: 30ms
  poll: 2ms
  appLaunchSettle: 10ms
  passwordSettle: 10ms
  inboxSyncSettle: 10ms
`

type runResult struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
}

// run executes the app with args, capturing output and the exit code
// instead of exiting the process.
func run(t *testing.T, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	res := runResult{}
	app.ExitErrHandler = func(_ *cli.Context, err error) {
		if coder, ok := err.(cli.ExitCoder); ok {
			res.exitCode = coder.ExitCode()
		}
	}
	res.err = app.Run(append([]string{"gmail-signin"}, args...))
	res.stdout = stdout.String()
	res.stderr = stderr.String()
	return res
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mockArgs(t *testing.T, scenario string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", fastConfig)
	return dir, []string{"--config", cfg, "--driver", "mock", "--mock-scenario", scenario}
}

func TestLogin_MockShortcut(t *testing.T) {
	dir, args := mockArgs(t, "signed-in")
	out := filepath.Join(dir, "reports")

	r := run(t, append(args, "login", "--email", "user@gmail.com", "--password", "pw", "--output", out)...)

	require.NoError(t, r.err)
	assert.Equal(t, 0, r.exitCode)
	assert.Contains(t, r.stdout, "authenticated")
	assert.Contains(t, r.stdout, "shortcut")
	assert.Contains(t, r.stdout, "Report:")

	matches, err := filepath.Glob(filepath.Join(out, "*", report.ReportFile))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	rep, err := report.Load(matches[0])
	require.NoError(t, err)
	assert.Equal(t, report.StatusPassed, rep.Status)
	assert.Equal(t, "mock", rep.Session.Driver)
	assert.Empty(t, rep.Artifacts)
}

func TestLogin_MockErroredExitCode(t *testing.T) {
	dir, args := mockArgs(t, "broken-terms")
	out := filepath.Join(dir, "reports")

	r := run(t, append(args, "login", "--email", "user@gmail.com", "--password", "hunter2-secret", "--output", out)...)

	require.Error(t, r.err)
	assert.Equal(t, exitErrored, r.exitCode)
	assert.Contains(t, r.stdout, "errored")
	assert.Contains(t, r.stdout, "MinuteMaidActivity")
	assert.NotContains(t, r.stdout, "hunter2-secret")
	assert.NotContains(t, r.stderr, "hunter2-secret")

	matches, _ := filepath.Glob(filepath.Join(out, "*", report.ScreenshotFile))
	assert.Len(t, matches, 1)
}

func TestLogin_MockNotAuthenticated(t *testing.T) {
	_, args := mockArgs(t, "empty-inbox")

	r := run(t, append(args, "login", "--email", "user@gmail.com", "--password", "pw", "--no-report")...)

	require.Error(t, r.err)
	assert.Equal(t, exitNotAuthenticated, r.exitCode)
	assert.Contains(t, r.stdout, "not_authenticated")
	assert.NotContains(t, r.stdout, "Report:")
}

func TestLogin_GuardedPermissionFlag(t *testing.T) {
	_, args := mockArgs(t, "no-permission")

	strict := run(t, append(args, "login", "--email", "a@b.com", "--password", "pw", "--no-report")...)
	assert.Equal(t, exitErrored, strict.exitCode)

	guarded := run(t, append(args, "login", "--email", "a@b.com", "--password", "pw", "--no-report",
		"--permission-dialog", "guarded")...)
	require.NoError(t, guarded.err)
	assert.Equal(t, 0, guarded.exitCode)
	assert.Contains(t, guarded.stdout, "(skipped)")
}

func TestLogin_CredentialsFromEnv(t *testing.T) {
	_, args := mockArgs(t, "fresh")
	t.Setenv("GMAIL_EMAIL", "env@gmail.com")
	t.Setenv("GMAIL_PASSWORD", "from-env")

	r := run(t, append(args, "login", "--no-report")...)
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "credentials")
}

func TestLogin_MissingCredentials(t *testing.T) {
	_, args := mockArgs(t, "fresh")
	t.Setenv("GMAIL_EMAIL", "")
	t.Setenv("GMAIL_PASSWORD", "")

	r := run(t, append(args, "login", "--email", "not-an-email", "--password", "pw")...)
	require.Error(t, r.err)
	assert.Equal(t, exitUsage, r.exitCode)
}

func TestLogin_InvalidPermissionPolicy(t *testing.T) {
	_, args := mockArgs(t, "fresh")

	r := run(t, append(args, "login", "--email", "a@b.com", "--password", "pw", "--permission-dialog", "sometimes")...)
	require.Error(t, r.err)
	assert.Equal(t, exitUsage, r.exitCode)
}

func TestUnknownDriver(t *testing.T) {
	r := run(t, "--driver", "selenium", "screen")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "unknown driver")
}

func TestScreen_Mock(t *testing.T) {
	tests := []struct {
		scenario string
		want     string
	}{
		{"welcome", "welcome"},
		{"signed-in", "already_logged_in"},
		{"fresh", "credential_entry"},
	}
	for _, tt := range tests {
		t.Run(tt.scenario, func(t *testing.T) {
			_, args := mockArgs(t, tt.scenario)
			r := run(t, append(args, "screen", "--activate")...)
			require.NoError(t, r.err)
			assert.Equal(t, tt.want, strings.TrimSpace(r.stdout))
		})
	}
}

func TestScreen_UnknownScenario(t *testing.T) {
	_, args := mockArgs(t, "nope")
	r := run(t, append(args, "screen")...)
	require.Error(t, r.err)
}

func TestLocators(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "locators:\n  composeButton: com.example:id/compose\n")

	r := run(t, "--config", cfg, "locators")
	require.NoError(t, r.err)

	var got map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(r.stdout), &got))
	assert.Len(t, got, len(locator.Names()))
	assert.Equal(t, "com.example:id/compose", got["composeButton"])
	assert.Equal(t, locator.Default().Get(locator.WelcomeGotIt), got["welcomeGotIt"])
}

func TestLocatorsResolved(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "{}\n")

	r := run(t, "--config", cfg, "locators", "--resolved")
	require.NoError(t, r.err)

	var got map[string]resolvedEntry
	require.NoError(t, yaml.Unmarshal([]byte(r.stdout), &got))
	assert.Equal(t, locator.StrategyID, got[string(locator.ComposeButton)].Strategy)
	assert.Equal(t, locator.StrategyXPath, got[string(locator.InboxLabel)].Strategy)
}

func TestLoadCapabilities(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "caps.json", `{"platformName":"Android","appium:udid":"emulator-5554","noReset":true}`)

	caps, err := loadCapabilities(path)
	require.NoError(t, err)
	assert.Equal(t, "Android", caps["platformName"])
	assert.Equal(t, "emulator-5554", caps["appium:udid"])
	assert.Equal(t, true, caps["noReset"])

	_, err = loadCapabilities(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.json", "{not json")
	_, err = loadCapabilities(bad)
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0ms"},
		{999, "999ms"},
		{1500, "1.5s"},
		{61000, "1m 1s"},
	}
	for _, tt := range tests {
		got := formatDuration(time.Duration(tt.ms) * time.Millisecond)
		assert.Equal(t, tt.want, got)
	}
}
