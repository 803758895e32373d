package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/hydroloc/internal/monitoring"
	"github.com/banshee-data/hydroloc/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallConfig = `{
  "receiver_count": 4,
  "bound_half_width": 5,
  "start_temperature": 10,
  "start_acceptance_rate": 0,
  "stop_acceptance_rate": 0,
  "stop_cost": 0,
  "perturbations_per_step": 8,
  "perturbation_std": 0.1,
  "reduction_factor": 0.9,
  "max_temperature_steps": 3,
  "grid_kind": "sphere-surface",
  "grid_count": 12,
  "grid_radius": 20,
  "seed": 5,
  "iterations": 1
}`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "array.json")
	require.NoError(t, os.WriteFile(path, []byte(smallConfig), 0o644))
	return path
}

func TestRunWritesOutputsAndStoresRuns(t *testing.T) {
	monitoring.SetLogger(t.Logf)
	t.Cleanup(func() { monitoring.SetLogger(log.Printf) })

	out := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	seed := uint64(40)
	opts := options{
		configPath: writeConfig(t),
		outDir:     out,
		dbPath:     dbPath,
		label:      "test",
		seed:       &seed,
		iterations: 2,
		html:       true,
		plots:      true,
	}
	require.NoError(t, run(context.Background(), opts))

	for _, it := range []string{"1", "2"} {
		for _, f := range []string{
			"trace_iteration-" + it + ".csv",
			"acceptance_iteration-" + it + ".csv",
			"layout_iteration-" + it + ".csv",
			"uncertainty_iteration-" + it + ".csv",
			"dashboard_iteration-" + it + ".html",
			"Cost_iteration-" + it + ".png",
			"UncertaintyMap_iteration-" + it + ".png",
		} {
			assert.FileExists(t, filepath.Join(out, f))
		}
	}

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	runs, err := store.NewRunStore(db).List(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	seeds := map[uint64]int{}
	for _, r := range runs {
		seeds[r.Seed] = r.Iteration
		assert.Equal(t, "test", r.Label)
		assert.Equal(t, 3, r.Steps)
		assert.LessOrEqual(t, r.BestCost, r.InitialCost)
		assert.Contains(t, string(r.ConfigJSON), `"grid_kind":"sphere-surface"`)
	}
	assert.Equal(t, map[uint64]int{40: 1, 41: 2}, seeds)
}

func TestRunSkipsOptionalOutputs(t *testing.T) {
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(log.Printf) })

	out := t.TempDir()
	opts := options{configPath: writeConfig(t), outDir: out}
	require.NoError(t, run(context.Background(), opts))

	assert.FileExists(t, filepath.Join(out, "trace_iteration-1.csv"))
	assert.NoFileExists(t, filepath.Join(out, "dashboard_iteration-1.html"))
	assert.NoFileExists(t, filepath.Join(out, "Cost_iteration-1.png"))
}

func TestRunRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "array.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"reduction_factor": 1.5}`), 0o644))

	err := run(context.Background(), options{configPath: path, outDir: t.TempDir()})
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(log.Printf) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := run(ctx, options{configPath: writeConfig(t), outDir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}
