package shell

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const ring6Topo = `0 0 1 1
1 0 2 1
2 0 3 1
3 0 4 1
4 0 5 1
5 0 0 1
`

const twoFlowComm = `0 1 a
2 3 b
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newSession(t *testing.T) (*Prompt, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	p := NewPrompt("> ", bufio.NewReader(strings.NewReader("")), bufio.NewWriter(&out), 1)
	return p, &out
}

func TestInitRequiresATopologyFile(t *testing.T) {
	p, out := newSession(t)
	dir := t.TempDir()
	topoPath := writeFile(t, dir, "topo.txt", ring6Topo)

	status := p.RunCmdString("init " + topoPath)
	require.Equal(t, csOk, status)
	require.Contains(t, out.String(), "initialized: 6 cores")
}

func TestAddAppThenShowAppsAndStatus(t *testing.T) {
	p, out := newSession(t)
	dir := t.TempDir()
	topoPath := writeFile(t, dir, "topo.txt", ring6Topo)
	commPath := writeFile(t, dir, "comm.txt", twoFlowComm)

	require.Equal(t, csOk, p.RunCmdString("init "+topoPath))
	out.Reset()

	require.Equal(t, csOk, p.RunCmdString("add_app "+commPath))
	require.Contains(t, out.String(), "added app from")
	out.Reset()

	require.Equal(t, csOk, p.RunCmdString("show_apps"))
	require.Contains(t, out.String(), "4")
	out.Reset()

	require.Equal(t, csOk, p.RunCmdString("status"))
	require.Contains(t, out.String(), "apps: 1, vNodes: 4")
}

func TestRmAppAll(t *testing.T) {
	p, out := newSession(t)
	dir := t.TempDir()
	topoPath := writeFile(t, dir, "topo.txt", ring6Topo)
	commPath := writeFile(t, dir, "comm.txt", twoFlowComm)

	require.Equal(t, csOk, p.RunCmdString("init "+topoPath))
	require.Equal(t, csOk, p.RunCmdString("add_app "+commPath))
	out.Reset()

	require.Equal(t, csOk, p.RunCmdString("rm_app --all"))
	require.Contains(t, out.String(), "removed app 0")

	out.Reset()
	require.Equal(t, csOk, p.RunCmdString("status"))
	require.Contains(t, out.String(), "apps: 0, vNodes: 0")
}

func TestSaveLoadRoundTripThroughShell(t *testing.T) {
	p, out := newSession(t)
	dir := t.TempDir()
	topoPath := writeFile(t, dir, "topo.txt", ring6Topo)
	commPath := writeFile(t, dir, "comm.txt", twoFlowComm)
	snapPath := filepath.Join(dir, "snap.yaml")

	require.Equal(t, csOk, p.RunCmdString("init "+topoPath))
	require.Equal(t, csOk, p.RunCmdString("add_app "+commPath))
	require.Equal(t, csOk, p.RunCmdString("save "+snapPath))

	p2, out2 := newSession(t)
	require.Equal(t, csOk, p2.RunCmdString("load "+snapPath))
	out.Reset()
	out2.Reset()

	require.Equal(t, csOk, p2.RunCmdString("status"))
	require.Contains(t, out2.String(), "apps: 1, vNodes: 4")
}

func TestUnknownCommandIsReported(t *testing.T) {
	p, out := newSession(t)
	status := p.RunCmdString("frobnicate")
	require.Equal(t, csUnknownCommand, status)
	require.Contains(t, out.String(), "unknown command")
}

func TestCommandsBeforeInitRequireAllocator(t *testing.T) {
	p, out := newSession(t)
	status := p.RunCmdString("status")
	require.Equal(t, csOk, status)
	require.Contains(t, out.String(), "no allocator")

	status = p.RunCmdString("show_apps")
	require.Equal(t, csError, status)
}

func TestDriverCommandRejectsNonPositiveBudget(t *testing.T) {
	p, out := newSession(t)
	dir := t.TempDir()
	topoPath := writeFile(t, dir, "topo.txt", ring6Topo)
	commPath := writeFile(t, dir, "comm.txt", twoFlowComm)

	require.Equal(t, csOk, p.RunCmdString("init "+topoPath))
	require.Equal(t, csOk, p.RunCmdString("add_app "+commPath))
	out.Reset()

	status := p.RunCmdString("alns")
	require.Equal(t, csError, status)
	require.Contains(t, out.String(), "time budget must be greater than 0")
}

func TestTwoOptRunsWithABudgetAndUpdatesTheCurrentAllocator(t *testing.T) {
	p, out := newSession(t)
	dir := t.TempDir()
	topoPath := writeFile(t, dir, "topo.txt", ring6Topo)
	commPath := writeFile(t, dir, "comm.txt", twoFlowComm)

	require.Equal(t, csOk, p.RunCmdString("init "+topoPath))
	require.Equal(t, csOk, p.RunCmdString("add_app "+commPath))
	out.Reset()

	status := p.RunCmdString("twoopt -s 1")
	require.Equal(t, csOk, status)
	require.Contains(t, out.String(), "twoopt:")
}

func TestWhereFilterEqualityOnApp(t *testing.T) {
	w := parseWhere("app=0")
	require.True(t, w.matches("app", "0"))
	require.False(t, w.matches("app", "1"))

	require.True(t, whereFilter{}.matches("app", "anything"))
}
