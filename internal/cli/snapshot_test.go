package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/provider"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with an empty HOME so no
// config file is found.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)

	old := cfgFile
	cfgFile = ""
	t.Cleanup(func() { cfgFile = old })
	return dir
}

func sampleState() telemetry.State {
	return telemetry.State{
		CPU: &telemetry.CPUSnapshot{
			Tick:             3,
			Taken:            time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Cores:            [][]float64{{0, 10, 20}, {0, 90, 95}},
			Average:          []float64{0, 50, 57.5},
			Memory:           []float64{25, 25, 25},
			UsedMemoryBytes:  4 << 30,
			TotalMemoryBytes: 16 << 30,
		},
		GPU: &telemetry.GPUSnapshot{
			Tick:           3,
			Brand:          "GeForce",
			Name:           "NVIDIA GeForce RTX 3080",
			Temperature:    []float64{58, 60, 61},
			Fans:           [][]float64{{50, 50, 50}},
			VRAM:           []float64{20, 25, 25},
			UsedVRAMBytes:  2560 << 20,
			TotalVRAMBytes: 10 << 30,
		},
		GPUAvailable: true,
		System:       telemetry.SystemInfo{Hostname: "rig", OS: "linux", Uptime: 90 * time.Minute},
	}
}

func TestBuildSnapshotOutput(t *testing.T) {
	cfg := testConfig()
	out := buildSnapshotOutput(sampleState(), provider.BackendNVML, cfg, 3)

	assert.Equal(t, "rig", out.Host.Hostname)
	assert.Equal(t, int64(5400), out.Host.UptimeSeconds)
	assert.Equal(t, 3, out.Ticks)

	assert.Equal(t, 2, out.CPU.Cores)
	assert.Equal(t, 57.5, out.CPU.Average)
	assert.Equal(t, []float64{20, 95}, out.CPU.PerCore)
	assert.Equal(t, 25.0, out.CPU.MemoryPercent)
	assert.Equal(t, uint64(16<<30), out.CPU.MemoryTotalBytes)

	require.NotNil(t, out.GPU)
	assert.Equal(t, provider.BackendNVML, out.GPU.Backend)
	assert.Equal(t, 61.0, out.GPU.Temperature)
	assert.Equal(t, []FanOutput{{Percent: 50, RPM: 1650}}, out.GPU.Fans)
	assert.Equal(t, 25.0, out.GPU.VRAMPercent)

	assert.Equal(t, "50ms", out.Config.Interval)
}

func TestBuildSnapshotOutputWithoutGPU(t *testing.T) {
	state := sampleState()
	state.GPUAvailable = false
	state.GPU = nil

	out := buildSnapshotOutput(state, "", testConfig(), 3)
	assert.Nil(t, out.GPU)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"gpu"`)
}

func TestRenderSnapshot(t *testing.T) {
	got := ansi.Strip(renderSnapshot(sampleState(), testConfig(), 3))

	for _, want := range []string{
		"hwdash snapshot · rig · 3 ticks @ 50ms",
		"Average",
		"57.5%",
		"Core 2",
		"95.0%",
		"Memory",
		"4.0 GB / 16.0 GB",
		"NVIDIA GeForce RTX 3080",
		"Fan 1",
		"1650 RPM",
		"61°C",
	} {
		assert.Contains(t, got, want)
	}
}

func TestRenderSnapshotWithoutGPU(t *testing.T) {
	state := sampleState()
	state.GPUAvailable = false

	got := ansi.Strip(renderSnapshot(state, testConfig(), 3))
	assert.Contains(t, got, "no GPU")
	assert.NotContains(t, got, "RTX 3080")
}

func TestRenderSnapshotDefaultsHostname(t *testing.T) {
	state := sampleState()
	state.System.Hostname = ""

	got := ansi.Strip(renderSnapshot(state, testConfig(), 3))
	assert.True(t, strings.HasPrefix(got, "hwdash snapshot · localhost"))
}

func TestSnapshotCommandTicksBounds(t *testing.T) {
	for _, ticks := range []int{0, -1, MaxSnapshotTicks + 1} {
		err := snapshotCommand(context.Background(), &bytes.Buffer{}, SamplingFlags{}, ticks, true)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
		assert.Contains(t, err.Error(), "--ticks must be between")
	}
}

func TestSnapshotCommandJSON(t *testing.T) {
	isolate(t)
	fakeProviders(t, &fakeCPU{usage: []float64{30, 70}}, &fakeGPU{}, nil)

	var buf bytes.Buffer
	flags := SamplingFlags{Interval: "50ms"}
	require.NoError(t, snapshotCommand(context.Background(), &buf, flags, 2, true))

	var env struct {
		Success bool           `json:"success"`
		Data    SnapshotOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.True(t, env.Success)
	assert.Equal(t, "rig", env.Data.Host.Hostname)
	assert.Equal(t, 2, env.Data.Ticks)
	assert.Equal(t, 2, env.Data.CPU.Cores)
	assert.InDelta(t, 50, env.Data.CPU.Average, 0.001)
	require.NotNil(t, env.Data.GPU)
	assert.Equal(t, "NVIDIA GeForce RTX 3080", env.Data.GPU.Name)
	assert.Len(t, env.Data.GPU.Fans, 2)
}

func TestSnapshotCommandNoGPUFlag(t *testing.T) {
	isolate(t)
	fakeProviders(t, &fakeCPU{usage: []float64{30, 70}}, &fakeGPU{}, nil)

	var buf bytes.Buffer
	flags := SamplingFlags{Interval: "50ms", NoGPU: true}
	require.NoError(t, snapshotCommand(context.Background(), &buf, flags, 1, false))

	got := ansi.Strip(buf.String())
	assert.Contains(t, got, "no GPU")
	assert.Contains(t, got, "1 ticks @ 50ms")
}

func TestSnapshotCommandRequiredGPUMissing(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir+"/.hwdash.yaml", "gpu:\n  required: true\n")
	fakeProviders(t, &fakeCPU{usage: []float64{30}}, nil, provider.ErrNoGPU)

	err := snapshotCommand(context.Background(), &bytes.Buffer{}, SamplingFlags{}, 1, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrNoGPU)
}

// chdir changes the working directory for the rest of the test and restores
// it on cleanup (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
