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

const validGraph = "4 4\n2 3\n1 3 4\n1 2\n2\n"

// testEnv is a temp dir with a config file whose catalog lives in the dir
type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "graphtools.yaml")
	content := "log:\n  level: error\ncatalog:\n  path: " + filepath.Join(dir, "runs.db") + "\n"
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o644))
	return testEnv{dir: dir, config: cfg}
}

func (e testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e testEnv) run(args ...string) (int, string) {
	var out bytes.Buffer
	code := run(context.Background(), append([]string{"--config", e.config}, args...), &out)
	return code, out.String()
}

func TestExitCodes(t *testing.T) {
	env := newTestEnv(t)
	valid := env.write(t, "ok.graph", validGraph)
	loop := env.write(t, "loop.graph", "2 1\n1 2\n1\n")
	junk := env.write(t, "junk.graph", "x\n")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"valid graph", []string{"chkmetis", valid}, 0},
		{"invalid graph", []string{"chkmetis", loop}, 5},
		{"invalid graph permissive", []string{"chkmetis", "--permissive", loop}, 5},
		{"missing input", []string{"chkmetis", filepath.Join(env.dir, "absent.graph")}, 3},
		{"malformed input", []string{"chkmetis", junk}, 4},
		{"missing argument", []string{"chkmetis"}, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"no command", nil, 2},
		{"bad id width", []string{"--id-bits", "16", "chkmetis", valid}, 2},
		{"help", []string{"--help"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := env.run(tt.args...)
			assert.Equal(t, tt.code, code)
		})
	}

	t.Run("missing config file", func(t *testing.T) {
		code := run(context.Background(), []string{"--config", filepath.Join(env.dir, "none.yaml"), "chkmetis", valid}, &bytes.Buffer{})
		assert.Equal(t, 3, code)
	})
}

func TestChkmetisOutput(t *testing.T) {
	env := newTestEnv(t)
	valid := env.write(t, "ok.graph", validGraph)

	code, out := env.run("chkmetis", valid)
	require.Equal(t, 0, code)
	assert.Contains(t, out, valid+": valid (n=4 m=4 format=0")
}

func TestConversionCommands(t *testing.T) {
	env := newTestEnv(t)
	input := env.write(t, "g.edgelist", "p 4 8\ne 1 2\ne 1 3\ne 2 1\ne 2 3\ne 2 4\ne 3 1\ne 3 2\ne 4 2\n")

	code, out := env.run("edgelist2metis", input)
	require.Equal(t, 0, code)
	graph := filepath.Join(env.dir, "g.graph")
	assert.Contains(t, out, "edgelist2metis: wrote "+graph)

	code, _ = env.run("metis2binary", "-o", filepath.Join(env.dir, "g.bgf"), graph)
	require.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(env.dir, "g.bgf"))

	code, _ = env.run("metis2xtrapulp", "--64", graph)
	require.Equal(t, 0, code)
	info, err := os.Stat(filepath.Join(env.dir, "g.xtrapulp"))
	require.NoError(t, err)
	assert.Equal(t, int64(8*16), info.Size())

	code, out = env.run("statmetis", "--csv", "--csv-header", "--fast", graph)
	require.Equal(t, 0, code)
	assert.Equal(t, "Graph,N,M\n"+graph+",4,4\n", out)

	code, out = env.run("statmetis", "-H")
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "Graph,N,M,MinDegree"))

	code, _ = env.run("statmetis")
	assert.Equal(t, 2, code)
}

func TestPartitionCommands(t *testing.T) {
	env := newTestEnv(t)
	graph := env.write(t, "g.graph", validGraph)

	code, out := env.run("chkmetispart", graph, env.write(t, "g.part", "0\n0\n1\n1\n"))
	require.Equal(t, 0, code)
	assert.Contains(t, out, "k=2 cut=3 imbalance=1.00000")
	assert.Contains(t, out, "block 1: 2 nodes")

	code, out = env.run("chkmetisclustering", graph, env.write(t, "g.clustering", "0\n0\n2\n2\n"))
	require.Equal(t, 0, code)
	assert.Contains(t, out, "clusters=2 cut=3")
}

func TestRunsCommand(t *testing.T) {
	env := newTestEnv(t)
	graph := env.write(t, "g.graph", validGraph)

	code, _ := env.run("--catalog", "trimmetis", graph)
	require.Equal(t, 0, code)
	code, _ = env.run("trimmetis", "-o", filepath.Join(env.dir, "unrecorded.graph"), graph)
	require.Equal(t, 0, code)

	code, out := env.run("runs")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, "header and one recorded run")
	assert.Contains(t, lines[1], "trimmetis")
	assert.Contains(t, lines[1], "success")

	id := strings.Fields(lines[1])[0]
	code, out = env.run("runs", id)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "outcome success")
	assert.Contains(t, out, "digest: ")

	code, _ = env.run("runs", "no-such-run")
	assert.Equal(t, 3, code)
}

func TestConfigCommand(t *testing.T) {
	env := newTestEnv(t)

	code, out := env.run("config")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Config: "+env.config)
	assert.Contains(t, out, "Limits: id=64bit weight=64bit, Check: strict")

	t.Setenv("GRAPHTOOLS_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(env.dir, "xdg"))
	t.Setenv("HOME", env.dir)
	var buf bytes.Buffer
	t.Chdir(env.dir)
	require.NoError(t, os.Remove(env.config))
	code = run(context.Background(), []string{"config", "--init"}, &buf)
	require.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(env.dir, "xdg", "graphtools", "config.yaml"))
}

func TestEventStream(t *testing.T) {
	env := newTestEnv(t)
	graph := env.write(t, "g.graph", validGraph)
	events := filepath.Join(env.dir, "events.jsonl")

	code, _ := env.run("--events", events, "trimmetis", graph)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(events)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], `"type":"run_started"`)
	assert.Contains(t, lines[len(lines)-1], `"type":"run_finished"`)
	assert.Contains(t, lines[len(lines)-1], `"outcome":"success"`)
}
