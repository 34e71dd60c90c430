package indicator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/courtside/internal/config"
	"github.com/rbright/courtside/internal/fsm"
	"github.com/rbright/courtside/internal/session"
)

func TestNotifierFollowsSubmissionLifecycle(t *testing.T) {
	argsFile := installBusctlStub(t, `echo "u 7"`)
	t.Setenv("LANG", "en_US.UTF-8")

	cfg := config.Default().Notify
	cfg.Enable = true
	cfg.ErrorTimeoutMS = 0

	n := NewNotifier(cfg, nil)
	ctx := context.Background()
	n.StatusChanged(ctx, session.Status{State: fsm.StateInFlight})
	n.StatusChanged(ctx, session.Status{State: fsm.StateFailed, Message: "Missing transcript."})
	n.StatusChanged(ctx, session.Status{State: fsm.StateInFlight})
	n.StatusChanged(ctx, session.Status{State: fsm.StateSucceeded})
	n.StatusChanged(ctx, session.Status{State: fsm.StateIdle})

	lines := readLines(t, argsFile)
	require.Len(t, lines, 5)
	prefix := "--user call org.freedesktop.Notifications /org/freedesktop/Notifications org.freedesktop.Notifications "
	require.Equal(t, prefix+"Notify susssasa{sv}i courtside 0  Analyzing…  0 0 300000", lines[0])
	require.Equal(t, prefix+"Notify susssasa{sv}i courtside 7  Analysis failed Missing transcript. 0 0 8000", lines[1])
	require.Equal(t, prefix+"Notify susssasa{sv}i courtside 7  Analyzing…  0 0 300000", lines[2])
	require.Equal(t, prefix+"Notify susssasa{sv}i courtside 7  Analysis complete  0 0 4000", lines[3])
	require.Equal(t, prefix+"CloseNotification u 7", lines[4])
}

func TestNotifierDisabledSkipsBusctl(t *testing.T) {
	argsFile := installBusctlStub(t, `echo "u 1"`)

	n := NewNotifier(config.NotifyConfig{Enable: false}, nil)
	n.StatusChanged(context.Background(), session.Status{State: fsm.StateInFlight})
	n.StatusChanged(context.Background(), session.Status{State: fsm.StateSucceeded})

	_, err := os.Stat(argsFile)
	require.True(t, os.IsNotExist(err))
}

func TestNotifierSwallowsBusctlFailure(t *testing.T) {
	argsFile := installBusctlStub(t, `echo "no session bus" >&2; exit 1`)

	n := NewNotifier(config.NotifyConfig{Enable: true, AppName: "courtside-test"}, nil)
	n.StatusChanged(context.Background(), session.Status{State: fsm.StateInFlight})
	n.StatusChanged(context.Background(), session.Status{State: fsm.StateIdle})

	// Dismiss is skipped because no notification ID was ever assigned.
	lines := readLines(t, argsFile)
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "courtside-test 0")
}

func TestDesktopNotifyRejectsMalformedReply(t *testing.T) {
	installBusctlStub(t, `echo "s nope"`)

	_, err := desktopNotify(context.Background(), "courtside", 0, "x", "", 100)
	require.ErrorContains(t, err, "invalid response")
}

// installBusctlStub puts a busctl on PATH that logs its args and then runs body.
func installBusctlStub(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	argsFile := filepath.Join(t.TempDir(), "busctl-args.log")
	script := "#!/usr/bin/env bash\nprintf '%s\\n' \"$*\" >> " + argsFile + "\n" + body + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "busctl"), []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
	return argsFile
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
