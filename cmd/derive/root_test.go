package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/derive/compiler/load"
)

const pointSource = `package shapes

//derive:debug
type Point struct {
	X, Y int
}

type Plain struct{ Z int }
`

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["go.mod"] = "module example.com/shapes\n\ngo 1.24\n"
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := RootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestGenerateCommand(t *testing.T) {
	dir := writeModule(t, map[string]string{"point.go": pointSource})

	_, logs, err := execute(t, "-C", dir, "--log-level", "debug", "generate", ".")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "point_derive.go"))
	assert.Contains(t, logs, "generated")

	_, _, err = execute(t, "-C", dir, "generate", "--suffix", "_gen", "--type", "Plain", "--feature", "debug", ".")
	require.NoError(t, err)
	buf, err := os.ReadFile(filepath.Join(dir, "point_gen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(buf), "func DebugPlain(_v Plain) string {")
}

func TestGenerateCommandConfigFile(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"point.go":     pointSource,
		".derive.yaml": "suffix: _gen\nfeatures: [debug]\n",
	})
	_, _, err := execute(t, "-C", dir, "generate")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "point_gen.go"))
	assert.NoFileExists(t, filepath.Join(dir, "point_derive.go"))

	// Flags win over the file.
	_, _, err = execute(t, "-C", dir, "generate", "--suffix", "_derive")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "point_derive.go"))
}

func TestGenerateCommandErrors(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"color.go": "package shapes\n\n//derive:debug\ntype Color int\n",
	})
	_, errOut, err := execute(t, "-C", dir, "generate", ".")
	require.Error(t, err)
	assert.Contains(t, errOut, "unsupported shape for type Color")

	_, _, err = execute(t, "-C", dir, "generate", "--feature", "clone", ".")
	require.Error(t, err)

	_, _, err = execute(t, "-C", dir, "--log-level", "loud", "generate", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown log level "loud"`)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".derive.yaml"), []byte("workers: -1\n"), 0o644))
	_, _, err = execute(t, "-C", dir, "generate", ".")
	require.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	dir := writeModule(t, map[string]string{"point.go": pointSource})

	out, _, err := execute(t, "-C", dir, "inspect", ".")
	require.NoError(t, err)
	pkgs, err := load.UnmarshalRecords([]byte(out))
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	require.Len(t, pkgs[0].Records, 1)
	assert.Equal(t, "Point", pkgs[0].Records[0].Name)

	out, _, err = execute(t, "-C", dir, "inspect", "--format", "yaml", "--type", "Plain", ".")
	require.NoError(t, err)
	assert.Contains(t, out, "- name: shapes\n")
	assert.Contains(t, out, "name: Plain")
	assert.NotContains(t, out, "{")

	out, _, err = execute(t, "-C", dir, "inspect", "--check", ".")
	require.NoError(t, err)
	assert.Contains(t, out, "point_derive.go: 1 types")
	assert.NoFileExists(t, filepath.Join(dir, "point_derive.go"))

	_, _, err = execute(t, "-C", dir, "inspect", "--format", "toml", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "toml"`)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, WarnLevel, true)
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown", "file", "point.go")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"file":"point.go"`)

	for _, level := range []LogLevel{DebugLevel, InfoLevel, WarnLevel, ErrorLevel, ""} {
		_, err := newLogger(&buf, level, false)
		assert.NoError(t, err, level)
	}
	_, err = newLogger(&buf, "trace", false)
	require.Error(t, err)
}

func TestIsSourceEvent(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "point.go", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "point_test.go", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "point.go", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "point.go", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "point_derive.go", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "point_derive_test.go", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "README.md", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isSourceEvent(tt.event, "_derive"), tt.event.String())
	}
}

func TestWatchDirs(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"a/b", ".git/objects", "vendor/x", "testdata", "_examples/y"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "f.go"), nil, 0o644))

	dirs, err := watchDirs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{dir, filepath.Join(dir, "a"), filepath.Join(dir, "a", "b")}, dirs)

	_, err = watchDirs(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestWatchStopsOnCancel(t *testing.T) {
	dir := writeModule(t, map[string]string{"point.go": pointSource})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	cmd := RootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-C", dir, "generate", "--watch", "."})
	require.NoError(t, cmd.ExecuteContext(ctx))
}
