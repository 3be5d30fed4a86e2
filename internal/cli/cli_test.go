package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/argo-float-etl/internal/adapter/source"
	"github.com/couchcryptid/argo-float-etl/internal/cli"
	"github.com/couchcryptid/argo-float-etl/internal/domain"
	"github.com/couchcryptid/argo-float-etl/internal/index"
	"github.com/couchcryptid/argo-float-etl/internal/pipeline"
)

const fixture = "PLATFORM_NUMBER,PROFILE,JULD,LATITUDE,LONGITUDE,PRES,TEMP,PSAL\n" +
	"2901001,0,25872.25,10.0,70.0,5.0,28.1,35.0\n" +
	"2901001,0,25872.25,10.0,70.0,50.0,25.3,\n" +
	"2902002,1,25872.5,-12.5,45.0,10.0,26.0,34.9\n"

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20201101_prof.csv"), []byte(fixture), 0o644))
	return dir
}

// execute runs argoctl with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rc := cli.NewRootCommand(bytes.NewReader(nil), &stdout, &stderr)
	rc.SetArgs(args)
	err := rc.Execute()
	return stdout.String(), err
}

func floatIDs(t *testing.T, out string) []string {
	t.Helper()
	var floats []domain.FloatRecord
	require.NoError(t, json.Unmarshal([]byte(out), &floats))
	ids := make([]string, 0, len(floats))
	for _, f := range floats {
		ids = append(ids, f.FloatID)
	}
	return ids
}

func TestRootCommandHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "Available Commands:")
	for _, name := range []string{"floats", "spatial", "export", "profiles", "trajectory", "measurements", "summary", "genmock"} {
		assert.Contains(t, out, name)
	}
}

func TestFloats(t *testing.T) {
	dir := fixtureDir(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"all", nil, []string{"2901001", "2902002"}},
		{"inactive", []string{"--status", "inactive"}, []string{}},
		{"bbox", []string{"--bbox", "0,40,-20,50"}, []string{"2902002"}},
		{"ids", []string{"--float-id", "2901001"}, []string{"2901001"}},
		{"range", []string{"--start", "2020-11-02"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"floats", "--source-dir", dir}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, floatIDs(t, out))
		})
	}
}

func TestFloats_InvalidFilter(t *testing.T) {
	dir := fixtureDir(t)
	for _, args := range [][]string{
		{"--status", "lost"},
		{"--bbox", "1,2,3"},
		{"--start", "2020-13-40"},
	} {
		_, err := execute(t, append([]string{"floats", "--source-dir", dir}, args...)...)
		assert.Error(t, err, args)
	}
}

func TestSourceDirFromEnvironment(t *testing.T) {
	t.Setenv("SOURCE_DIR", fixtureDir(t))

	out, err := execute(t, "floats")
	require.NoError(t, err)
	assert.Equal(t, []string{"2901001", "2902002"}, floatIDs(t, out))
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("SOURCE_DIR", filepath.Join(t.TempDir(), "missing"))

	out, err := execute(t, "floats", "--source-dir", fixtureDir(t))
	require.NoError(t, err)
	assert.Len(t, floatIDs(t, out), 2)
}

func TestConfigFile(t *testing.T) {
	dataDir := fixtureDir(t)
	cfgPath := filepath.Join(t.TempDir(), "argoctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("source-dir: "+dataDir+"\ningest-workers: 2\n"), 0o644))

	out, err := execute(t, "floats", "--config", cfgPath)
	require.NoError(t, err)
	assert.Len(t, floatIDs(t, out), 2)
}

func TestConfigFile_UnknownOption(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "argoctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("bogus: 1\n"), 0o644))

	_, err := execute(t, "floats", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestMissingSourceDir(t *testing.T) {
	_, err := execute(t, "floats", "--source-dir", filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, source.ErrSourceDir)
}

func TestInvalidWorkers(t *testing.T) {
	_, err := execute(t, "floats", "--source-dir", fixtureDir(t), "--ingest-workers", "0")
	require.Error(t, err)
}

func TestSpatial(t *testing.T) {
	dir := fixtureDir(t)

	out, err := execute(t, "spatial", "20,80,0,60", "--source-dir", dir)
	require.NoError(t, err)
	var res index.SpatialResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, index.SpatialResult{Count: 1, FloatIDs: []string{"2901001"}}, res)

	_, err = execute(t, "spatial", "20,80", "--source-dir", dir)
	require.Error(t, err)

	_, err = execute(t, "spatial", "--source-dir", dir)
	require.Error(t, err, "bbox argument is required")
}

func TestExport(t *testing.T) {
	out, err := execute(t, "export", "2901001", "--source-dir", fixtureDir(t))
	require.NoError(t, err)
	assert.Equal(t,
		"float_id,profile_id,pressure,temperature,salinity\n"+
			"2901001,2901001_20201101_0,5,28.1,35\n"+
			"2901001,2901001_20201101_0,50,25.3,\n",
		out)
}

func TestSequenceCommands(t *testing.T) {
	dir := fixtureDir(t)

	tests := []struct {
		args  []string
		count int
	}{
		{[]string{"profiles", "2901001"}, 1},
		{[]string{"trajectory", "2901001"}, 1},
		{[]string{"measurements", "2901001_20201101_0"}, 2},
		{[]string{"summary", "2902002"}, 1},
		{[]string{"profiles", "unknown"}, 0},
		{[]string{"measurements", "unknown"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.args[0]+"/"+tt.args[1], func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--source-dir", dir)...)
			require.NoError(t, err)
			var items []json.RawMessage
			require.NoError(t, json.Unmarshal([]byte(out), &items))
			assert.NotNil(t, items)
			assert.Len(t, items, tt.count)
		})
	}
}

func TestSequenceCommands_RequireID(t *testing.T) {
	for _, name := range []string{"profiles", "trajectory", "measurements", "summary", "export"} {
		_, err := execute(t, name, "--source-dir", fixtureDir(t))
		assert.Error(t, err, name)
	}
}

func TestGenMock(t *testing.T) {
	out := filepath.Join(t.TempDir(), "mock")

	stdout, err := execute(t, "genmock", "--out", out, "--floats", "3", "--days", "4", "--levels", "2", "--seed", "7")
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"20201101_prof.csv", "20201102_prof.tsv", "20201103_prof.txt", "20201104_prof.csv"}, names)

	var rep pipeline.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, 4, rep.FilesDiscovered)
	assert.Equal(t, 4, rep.FilesIngested)
	assert.Equal(t, 0, rep.FilesFailed)
	assert.Equal(t, 24, rep.RowsRead)
	assert.Equal(t, 0, rep.RowsDropped)
	assert.Equal(t, 12, rep.Profiles)
	assert.Equal(t, 24, rep.Measurements)
	assert.Equal(t, 3, rep.Floats)
}

func TestGenMock_FilesComplete(t *testing.T) {
	out := t.TempDir()
	_, err := execute(t, "genmock", "--out", out, "--floats", "2", "--days", "3", "--levels", "3")
	require.NoError(t, err)

	for _, name := range []string{"20201101_prof.csv", "20201102_prof.tsv", "20201103_prof.txt"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		text := string(data)
		assert.True(t, strings.HasSuffix(text, "\n"), name)
		// comment, header, then floats*levels rows
		assert.Equal(t, 2+2*3, strings.Count(text, "\n"), name)
	}
}

func TestGenMock_Deterministic(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	_, err := execute(t, "genmock", "--out", a, "--days", "3", "--seed", "42")
	require.NoError(t, err)
	_, err = execute(t, "genmock", "--out", b, "--days", "3", "--seed", "42")
	require.NoError(t, err)

	for _, name := range []string{"20201101_prof.csv", "20201102_prof.tsv", "20201103_prof.txt"} {
		want, err := os.ReadFile(filepath.Join(a, name))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(b, name))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), name)
	}
}

func TestGenMock_InvalidOptions(t *testing.T) {
	_, err := execute(t, "genmock", "--out", t.TempDir(), "--floats", "0")
	require.Error(t, err)

	_, err = execute(t, "genmock", "--out", t.TempDir(), "--start", "yesterday")
	require.Error(t, err)
}
