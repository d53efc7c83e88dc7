package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tse-eval/resampler/internal/resample"
)

func writeConfig(t *testing.T, body string) (cfgPath, dataPath string) {
	t.Helper()
	root := t.TempDir()
	dataPath = filepath.Join(root, "fcd.db")
	require.NoError(t, os.WriteFile(dataPath, nil, 0o644))

	cfgPath = filepath.Join(root, "resampler.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.ReplaceAll(body, "$DATA", dataPath)), 0o644))
	return cfgPath, dataPath
}

func TestLoad_ValidConfig(t *testing.T) {
	cfgPath, dataPath := writeConfig(t, `
input:
  type: "sqlite"
  path: "$DATA"
  cache_path: "/tmp/traversal.snapshot"
resample:
  preset: "traversal"
  window: "15Min"
  time_frame: [6, 18]
  reindex: true
  fill_method: "bfill"
  rolling_window: "30min"
  per_edge: true
  workers: 4
output:
  csv_path: "out.csv"
server:
  enabled: true
  port: 9090
  host: "127.0.0.1"
  mode: "debug"
`)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, dataPath, cfg.Input.Path)
	require.Equal(t, "SELECT * FROM traversal_metrics ORDER BY timeStamp", cfg.Input.EffectiveQuery())
	require.True(t, cfg.Resample.PerEdge)
	require.Equal(t, 9090, cfg.Server.Port)

	opts := cfg.Options
	require.Equal(t, []string{"temporalMeanSpeed", "spatialMeanSpeed", "samples"}, opts.Spec.Columns())
	require.Equal(t, &resample.TimeFrame{Start: 6, End: 18}, opts.TimeFrame)
	require.Equal(t, resample.FillBackward, opts.FillMethod)
	require.Equal(t, "30min", opts.RollingWindow)
	require.Equal(t, resample.EntityColumn, opts.EntityColumn)
	require.Equal(t, 4, opts.Workers)

	size, err := opts.WindowSize()
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, size)
}

func TestLoad_CustomGrouper(t *testing.T) {
	cfgPath, _ := writeConfig(t, `
input:
  type: "loop"
  path: "$DATA"
resample:
  preset: "custom"
  grouper:
    flow: "sum"
    speed: "median"
`)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, []string{"flow", "speed"}, cfg.Options.Spec.Columns())
}

func TestLoad_ZeroWidthTimeFrame(t *testing.T) {
	cfgPath, _ := writeConfig(t, `
input:
  type: "edge"
  path: "$DATA"
resample:
  time_frame: [0, 0]
`)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, &resample.TimeFrame{Start: 0, End: 0}, cfg.Options.TimeFrame)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	cfgPath, _ := writeConfig(t, `
input:
  type: "edge"
  path: "$DATA"
resample:
  preset: "edge"
  window: "15min"
`)
	t.Setenv("RESAMPLER_RESAMPLE__WINDOW", "1h")
	t.Setenv("RESAMPLER_RESAMPLE__REINDEX", "true")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "1h", cfg.Resample.Window)
	require.True(t, cfg.Options.Reindex)
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown input type",
			body:    "input:\n  type: \"csv\"\n  path: \"$DATA\"\n",
			wantErr: "unsupported input.type",
		},
		{
			name:    "missing input file",
			body:    "input:\n  type: \"edge\"\n  path: \"/does/not/exist.xml\"\n",
			wantErr: "is not accessible",
		},
		{
			name:    "postgres without dsn",
			body:    "input:\n  type: \"postgres\"\n",
			wantErr: "input.dsn is required",
		},
		{
			name:    "bad window",
			body:    "input:\n  path: \"$DATA\"\nresample:\n  window: \"fortnight\"\n",
			wantErr: "resample parse: window",
		},
		{
			name:    "unknown aggregation",
			body:    "input:\n  path: \"$DATA\"\nresample:\n  preset: \"custom\"\n  grouper:\n    speed: \"variance\"\n",
			wantErr: "unknown aggregation kind",
		},
		{
			name:    "custom without grouper",
			body:    "input:\n  path: \"$DATA\"\nresample:\n  preset: \"custom\"\n",
			wantErr: "needs a grouper mapping",
		},
		{
			name:    "time frame shape",
			body:    "input:\n  path: \"$DATA\"\nresample:\n  time_frame: [6]\n",
			wantErr: "exactly 2 hours",
		},
		{
			name:    "inverted time frame",
			body:    "input:\n  path: \"$DATA\"\nresample:\n  time_frame: [18, 6]\n",
			wantErr: "invalid time frame",
		},
		{
			name:    "fill method",
			body:    "input:\n  path: \"$DATA\"\nresample:\n  fill_method: \"linear\"\n",
			wantErr: "invalid resample.fill_method",
		},
		{
			name:    "database without dsn",
			body:    "input:\n  path: \"$DATA\"\ndatabase:\n  enabled: true\n",
			wantErr: "database.dsn is required",
		},
		{
			name:    "server port",
			body:    "input:\n  path: \"$DATA\"\nserver:\n  enabled: true\n  port: -1\n",
			wantErr: "invalid server.port",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfgPath, _ := writeConfig(t, tc.body)
			_, err := Load(cfgPath)
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
