package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landokit/landokit/pkg/core"
)

// fakeTool writes a shell script standing in for the lando binary.
func fakeTool(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lando")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func newTestDispatcher(t *testing.T, script string) *Dispatcher {
	t.Helper()
	d := New(NewQueue(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.Tool = fakeTool(t, script)
	return d
}

// awaitTerminal drains the queue until the next terminal outcome, returning
// it along with the concatenation of all LogChunk payloads seen before it.
func awaitTerminal(t *testing.T, q *Queue) (core.Outcome, []byte) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var logs []byte
	for {
		o, err := q.Next(ctx)
		require.NoError(t, err, "timed out waiting for terminal outcome")
		if chunk, ok := o.(core.LogChunk); ok {
			logs = append(logs, chunk.Data...)
			continue
		}
		return o, logs
	}
}

const listScript = `case "$1" in
list) printf '[{"name":"site1","location":"/a","urls":[],"running":true}]' ;;
*) exit 2 ;;
esac`

func TestListApps(t *testing.T) {
	d := newTestDispatcher(t, listScript)
	d.ListApps()

	o, logs := awaitTerminal(t, d.Queue())
	require.Empty(t, logs, "listing must not emit LogChunk")

	apps, ok := o.(core.AppList)
	require.True(t, ok, "got %T", o)
	require.Len(t, apps.Apps, 1)
	assert.Equal(t, core.App{Name: "site1", Location: "/a", URLs: []string{}, Running: true}, apps.Apps[0])
}

func TestListAppsIdempotent(t *testing.T) {
	d := newTestDispatcher(t, listScript)

	d.ListApps()
	first, _ := awaitTerminal(t, d.Queue())
	d.ListApps()
	second, _ := awaitTerminal(t, d.Queue())

	assert.Equal(t, first, second)
}

func TestListAppsDecodeFailure(t *testing.T) {
	d := newTestDispatcher(t, `printf 'this is not json'`)
	d.ListApps()

	o, _ := awaitTerminal(t, d.Queue())
	f, ok := o.(core.Failure)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, core.FailDecode, f.Kind)
}

func TestListAppsSpawnFailure(t *testing.T) {
	d := New(NewQueue(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.Tool = "/no/such/lando"
	d.ListApps()

	o, _ := awaitTerminal(t, d.Queue())
	f, ok := o.(core.Failure)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, core.FailSpawn, f.Kind)
	assert.Contains(t, f.Message, "/no/such/lando")
}

func TestListAppsExitFailure(t *testing.T) {
	d := newTestDispatcher(t, `echo "lando blew up" >&2; exit 1`)
	d.ListApps()

	o, _ := awaitTerminal(t, d.Queue())
	f, ok := o.(core.Failure)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, core.FailExit, f.Kind)
	assert.Equal(t, "lando blew up", f.Message)
}

func TestInspectProject(t *testing.T) {
	d := newTestDispatcher(t, `case "$1" in
info) printf '[{"service":"database","type":"mysql","version":"8.0","creds":{"user":"root"}}]' ;;
*) exit 2 ;;
esac`)
	d.InspectProject(t.TempDir())

	o, _ := awaitTerminal(t, d.Queue())
	info, ok := o.(core.ServiceInfo)
	require.True(t, ok, "got %T", o)
	require.Len(t, info.Services, 1)
	assert.Equal(t, core.KindDatabase, info.Services[0].Kind)
	require.NotNil(t, info.Services[0].Creds)
	assert.Equal(t, "root", info.Services[0].Creds.User)
}

func TestRunLifecycleSuccess(t *testing.T) {
	d := newTestDispatcher(t, `echo "Starting app..."; exit 0`)
	d.RunLifecycle("start", t.TempDir())

	o, logs := awaitTerminal(t, d.Queue())
	s, ok := o.(core.Success)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, "start", s.Command)
	assert.Contains(t, string(logs), "Starting app...")
}

func TestRunLifecycleFailure(t *testing.T) {
	d := newTestDispatcher(t, `echo "config error" >&2; exit 1`)
	d.RunLifecycle("stop", t.TempDir())

	o, logs := awaitTerminal(t, d.Queue())
	f, ok := o.(core.Failure)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, core.FailExit, f.Kind)
	assert.Contains(t, f.Message, "stop")
	assert.Contains(t, string(logs), "config error")
}

func TestRunLifecycleStreamsBothPipes(t *testing.T) {
	d := newTestDispatcher(t, `printf 'from-stdout'; printf 'from-stderr' >&2`)
	d.RunLifecycle("restart", t.TempDir())

	o, logs := awaitTerminal(t, d.Queue())
	_, ok := o.(core.Success)
	require.True(t, ok, "got %T", o)
	assert.Contains(t, string(logs), "from-stdout")
	assert.Contains(t, string(logs), "from-stderr")
}

func TestRunLifecycleWorkingDir(t *testing.T) {
	d := newTestDispatcher(t, `pwd`)
	dir := t.TempDir()
	d.RunLifecycle("rebuild", dir)

	o, logs := awaitTerminal(t, d.Queue())
	_, ok := o.(core.Success)
	require.True(t, ok, "got %T", o)
	// Resolve symlinks: on some systems TempDir goes through /private etc.
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, string(logs), filepath.Base(resolved))
}

func TestRunLifecycleUnknownCommand(t *testing.T) {
	d := newTestDispatcher(t, `exit 0`)
	d.RunLifecycle("destroy-everything", t.TempDir())

	o, _ := awaitTerminal(t, d.Queue())
	f, ok := o.(core.Failure)
	require.True(t, ok, "got %T", o)
	assert.Contains(t, f.Message, "destroy-everything")
}

func TestRunShell(t *testing.T) {
	// Echo back the wrapper arguments so the invocation shape is visible.
	d := newTestDispatcher(t, `echo "$@"`)
	d.RunShell("appserver", t.TempDir(), "ls -la")

	o, logs := awaitTerminal(t, d.Queue())
	_, ok := o.(core.Success)
	require.True(t, ok, "got %T", o)
	assert.Contains(t, string(logs), "ssh -s appserver -c ls -la")
}

func queryScript(t *testing.T) (script, callLog string) {
	t.Helper()
	callLog = filepath.Join(t.TempDir(), "calls")
	script = fmt.Sprintf(`case "$*" in
*"-u root"*) echo root >> %q; echo "access denied" >&2; exit 1 ;;
*) echo fallback >> %q; printf 'query ok' ;;
esac`, callLog, callLog)
	return script, callLog
}

func TestRunQueryFallback(t *testing.T) {
	script, callLog := queryScript(t)
	d := newTestDispatcher(t, script)
	d.RunQuery("database", t.TempDir(), "SELECT 1")

	o, _ := awaitTerminal(t, d.Queue())
	res, ok := o.(core.QueryResult)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, "query ok", res.Text)

	data, err := os.ReadFile(callLog)
	require.NoError(t, err)
	calls := strings.Fields(string(data))
	// Privileged attempt first, then exactly one credential-less retry.
	assert.Equal(t, []string{"root", "fallback"}, calls)
}

func TestRunQueryFirstAttemptSucceeds(t *testing.T) {
	callLog := filepath.Join(t.TempDir(), "calls")
	d := newTestDispatcher(t, fmt.Sprintf(`echo call >> %q; printf '1'`, callLog))
	d.RunQuery("database", t.TempDir(), "SELECT 1")

	o, _ := awaitTerminal(t, d.Queue())
	res, ok := o.(core.QueryResult)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, "1", res.Text)

	data, err := os.ReadFile(callLog)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(string(data)), 1, "no retry after success")
}

func TestRunQueryBothAttemptsFail(t *testing.T) {
	d := newTestDispatcher(t, `echo "no such table" >&2; exit 1`)
	d.RunQuery("database", t.TempDir(), "SELECT nope")

	o, _ := awaitTerminal(t, d.Queue())
	f, ok := o.(core.Failure)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, core.FailExit, f.Kind)
	assert.Equal(t, "no such table", f.Message)
}

func TestTestConnectionHealthy(t *testing.T) {
	d := newTestDispatcher(t, `printf 'mysqld is alive'`)
	d.TestConnection("database", t.TempDir())

	o, _ := awaitTerminal(t, d.Queue())
	res, ok := o.(core.QueryResult)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, "connection OK", res.Text)
}

func TestTestConnectionSemanticFailure(t *testing.T) {
	// Clean exit but the liveness marker is missing.
	d := newTestDispatcher(t, `printf 'mysqld is resting'`)
	d.TestConnection("database", t.TempDir())

	o, _ := awaitTerminal(t, d.Queue())
	f, ok := o.(core.Failure)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, core.FailSemantic, f.Kind)
}

func TestTestConnectionExitFailure(t *testing.T) {
	d := newTestDispatcher(t, `echo "cannot connect" >&2; exit 1`)
	d.TestConnection("database", t.TempDir())

	o, _ := awaitTerminal(t, d.Queue())
	f, ok := o.(core.Failure)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, core.FailExit, f.Kind)
}

func TestNotifyIdle(t *testing.T) {
	d := New(NewQueue(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.NotifyIdle()

	o, _ := awaitTerminal(t, d.Queue())
	_, ok := o.(core.Idle)
	assert.True(t, ok, "got %T", o)
}
