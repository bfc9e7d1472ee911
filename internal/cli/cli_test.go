package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tapScript = `{
	"name": "tap",
	"nodes": [
		{"name": "button", "width": 100, "height": 40,
		 "detectors": [{"id": 1, "kind": "tap"}]}
	],
	"steps": [
		{"action": "tap", "x": 10, "y": 10},
		{"action": "expect", "label": "tapped", "node": "button", "gesture": 1, "state": "end"}
	]
}`

const wrongStateScript = `{
	"name": "wrong",
	"nodes": [
		{"name": "button", "width": 100, "height": 40,
		 "detectors": [{"id": 1, "kind": "tap"}]}
	],
	"steps": [
		{"action": "tap", "x": 10, "y": 10},
		{"action": "expect", "label": "expected failure", "node": "button", "gesture": 1, "state": "fail"}
	]
}`

const invalidScript = `{
	"name": "broken",
	"nodes": [{"name": "a", "width": 10, "height": 10}],
	"steps": [{"action": "jump"}]
}`

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

type replayResponse struct {
	Status string       `json:"status"`
	Data   ReplayReport `json:"data"`
}

func TestReplayCommand_Passes(t *testing.T) {
	path := writeScript(t, t.TempDir(), "tap.json", tapScript)

	out, err := execute(t, "replay", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Replayed 1 script(s)")
	assert.Contains(t, out, "tapped")
	assert.Contains(t, out, "1 passed, 0 failed")
}

func TestReplayCommand_JSON(t *testing.T) {
	path := writeScript(t, t.TempDir(), "tap.json", tapScript)

	out, err := execute(t, "replay", "--format", "json", path)
	require.NoError(t, err)

	var resp replayResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scripts, 1)

	s := resp.Data.Scripts[0]
	assert.Equal(t, "tap", s.Name)
	assert.True(t, s.Passed)
	assert.Positive(t, s.Events)
	assert.NotEmpty(t, s.Elapsed)
	assert.Equal(t, []ExpectationResult{{Step: 1, Label: "tapped", Passed: true}}, s.Expectations)
}

func TestReplayCommand_FailingExpectation(t *testing.T) {
	path := writeScript(t, t.TempDir(), "wrong.json", wrongStateScript)

	out, err := execute(t, "replay", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "expected failure")
	assert.Contains(t, out, "0 passed, 1 failed")
}

func TestReplayCommand_Directory(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "b.json", wrongStateScript)
	writeScript(t, dir, "a.json", tapScript)
	writeScript(t, dir, "notes.txt", "ignored")

	out, err := execute(t, "replay", "--format", "json", "--parallel", "2", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp replayResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "failed", resp.Status)
	require.Len(t, resp.Data.Scripts, 2)
	assert.Equal(t, "tap", resp.Data.Scripts[0].Name)
	assert.Equal(t, "wrong", resp.Data.Scripts[1].Name)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
}

func TestReplayCommand_UnparsableScript(t *testing.T) {
	path := writeScript(t, t.TempDir(), "bad.json", "not json")

	out, err := execute(t, "replay", "--format", "json", path)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp replayResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Scripts, 1)
	assert.Contains(t, resp.Data.Scripts[0].Error, "parse script")
}

func TestReplayCommand_CommandErrors(t *testing.T) {
	path := writeScript(t, t.TempDir(), "tap.json", tapScript)

	tests := []struct {
		name string
		args []string
	}{
		{"invalid format", []string{"replay", "--format", "xml", path}},
		{"missing path", []string{"replay", filepath.Join(t.TempDir(), "nope.json")}},
		{"empty dir", []string{"replay", t.TempDir()}},
		{"missing config", []string{"replay", "--config", filepath.Join(t.TempDir(), "gesture.yaml"), path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestReplayCommand_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "tap.json", tapScript)
	cfg := writeScript(t, dir, "gesture.yaml", "replay:\n  parallel: 0\n")

	_, err := execute(t, "replay", "--config", cfg, path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorContains(t, err, "failed to load config")
}

func TestReplayCommand_ConfigTunesArena(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "tap.json", tapScript)
	// A tap shorter than one frame cannot be completed.
	cfg := writeScript(t, dir, "gesture.yaml", "arena:\n  tap_max_duration: 1ms\n")

	_, err := execute(t, "replay", "--config", cfg, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeScript(t, dir, "tap.json", tapScript)
	bad := writeScript(t, dir, "broken.json", invalidScript)

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "(1 nodes, 2 steps)")

	out, err = execute(t, "validate", "--format", "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string             `json:"status"`
		Data   []ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "invalid", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, bad, resp.Data[0].Path)
	assert.False(t, resp.Data[0].Valid)
	require.NotEmpty(t, resp.Data[0].Errors)
	assert.Contains(t, resp.Data[0].Errors[0], `unknown action "jump"`)
	assert.True(t, resp.Data[1].Valid)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	inner := errors.New("inner")
	wrapped := WrapExitError(ExitCommandError, "outer", inner)
	assert.ErrorIs(t, wrapped, inner)
	assert.Equal(t, "outer: inner", wrapped.Error())
}

func TestCollectScripts(t *testing.T) {
	dir := t.TempDir()
	a := writeScript(t, dir, "a.json", tapScript)
	b := writeScript(t, dir, "b.json", tapScript)

	got, err := collectScripts([]string{dir, a})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, a}, got)

	got, err = collectScripts([]string{a, a})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, got)
}

func TestWatchTargets(t *testing.T) {
	dir := t.TempDir()
	a := writeScript(t, dir, "a.json", tapScript)
	b := writeScript(t, dir, "b.json", tapScript)

	got, err := watchTargets([]string{a, b, dir})
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, got)

	assert.True(t, isTarget(a, []string{a}))
	assert.True(t, isTarget(b, []string{dir}))
	assert.False(t, isTarget(b, []string{a}))
}

func TestChangedScripts(t *testing.T) {
	dir := t.TempDir()
	a := writeScript(t, dir, "a.json", tapScript)
	gone := filepath.Join(dir, "gone.json")

	got, err := changedScripts(map[string]struct{}{a: {}, gone: {}}, false, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, got)

	writeScript(t, dir, "b.json", tapScript)
	got, err = changedScripts(nil, true, []string{dir})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
