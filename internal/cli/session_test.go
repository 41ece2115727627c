package cli

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/hwdash/internal/config"
	"github.com/rileyhilliard/hwdash/internal/logger"
	"github.com/rileyhilliard/hwdash/internal/provider"
	"github.com/rileyhilliard/hwdash/internal/sampler"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCPU reports fixed per-core usage and 4 of 16 GiB memory in use.
type fakeCPU struct {
	mu    sync.Mutex
	usage []float64
	err   error
	calls int
}

func (f *fakeCPU) CoreCount() (int, error) { return len(f.usage), nil }

func (f *fakeCPU) CoreUsage(context.Context) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]float64(nil), f.usage...), nil
}

func (f *fakeCPU) Memory(context.Context) (uint64, uint64, error) {
	return 4 << 30, 16 << 30, nil
}

// fakeGPU has two fans at 1650 RPM, 61°C and a quarter of 10 GiB VRAM used.
type fakeGPU struct {
	mu     sync.Mutex
	closed bool
}

func (g *fakeGPU) Brand() (string, error)          { return "GeForce", nil }
func (g *fakeGPU) Name() (string, error)           { return "NVIDIA GeForce RTX 3080", nil }
func (g *fakeGPU) FanCount() (int, error)          { return 2, nil }
func (g *fakeGPU) Temperature() (float64, error)   { return 61, nil }
func (g *fakeGPU) FanSpeed(int) (float64, error)   { return 1650, nil }
func (g *fakeGPU) Memory() (uint64, uint64, error) { return 2560 << 20, 10 << 30, nil }

func (g *fakeGPU) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

func (g *fakeGPU) isClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// fakeProviders swaps the provider entry points for the duration of a test.
func fakeProviders(t *testing.T, cpu *fakeCPU, gpu *fakeGPU, gpuErr error) {
	t.Helper()
	oldCPU, oldGPU, oldHost := openCPU, openGPU, hostInfo
	t.Cleanup(func() { openCPU, openGPU, hostInfo = oldCPU, oldGPU, oldHost })

	openCPU = func(backend, procRoot string) (sampler.CPUSource, error) {
		return cpu, nil
	}
	openGPU = func(ctx context.Context, opts provider.GPUOptions) (sampler.GPUDevice, string, error) {
		if gpuErr != nil {
			return nil, "", gpuErr
		}
		return gpu, provider.BackendNVML, nil
	}
	hostInfo = func(context.Context) telemetry.SystemInfo {
		return telemetry.SystemInfo{Hostname: "rig", OS: "linux", CPUModel: "Ryzen 9"}
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.CPU.Interval = config.MinInterval
	cfg.GPU.Interval = config.MinInterval
	cfg.GPU.MaxFanRPM = 3300
	cfg.History.Depth = 10
	return cfg
}

func TestOpenSession(t *testing.T) {
	cpu := &fakeCPU{usage: []float64{10, 20, 30, 40}}
	gpu := &fakeGPU{}
	fakeProviders(t, cpu, gpu, nil)

	s, err := openSession(context.Background(), testConfig(), logger.Noop())
	require.NoError(t, err)

	assert.Equal(t, 4, s.cpu.Cores())
	require.NotNil(t, s.gpu)
	assert.Equal(t, provider.BackendNVML, s.gpuBackend)
	assert.Equal(t, 2, s.gpu.Fans())

	assert.True(t, s.state.GPUAvailable)
	assert.Equal(t, "rig", s.state.System.Hostname)
	assert.Equal(t, 4, s.state.CPU.CoreCount())
	assert.Len(t, s.state.CPU.Average, 10, "initial histories are full depth")
	assert.Equal(t, 2, s.state.GPU.FanCount())

	s.close()
	assert.True(t, gpu.isClosed())
}

func TestOpenSessionWithoutGPU(t *testing.T) {
	noGPU := fmt.Errorf("%w (nvml: driver not loaded)", provider.ErrNoGPU)

	t.Run("optional gpu continues", func(t *testing.T) {
		fakeProviders(t, &fakeCPU{usage: []float64{5, 5}}, nil, noGPU)

		s, err := openSession(context.Background(), testConfig(), logger.Noop())
		require.NoError(t, err)
		assert.Nil(t, s.gpu)
		assert.False(t, s.state.GPUAvailable)
		assert.Nil(t, s.state.GPU)
		s.close()
	})

	t.Run("required gpu fails", func(t *testing.T) {
		fakeProviders(t, &fakeCPU{usage: []float64{5, 5}}, nil, noGPU)

		cfg := testConfig()
		cfg.GPU.Required = true
		_, err := openSession(context.Background(), cfg, logger.Noop())
		require.Error(t, err)
		assert.ErrorIs(t, err, provider.ErrNoGPU)
	})

	t.Run("nil device is treated as absent", func(t *testing.T) {
		fakeProviders(t, &fakeCPU{usage: []float64{5, 5}}, nil, nil)
		openGPU = func(context.Context, provider.GPUOptions) (sampler.GPUDevice, string, error) {
			return nil, provider.BackendNone, nil
		}

		s, err := openSession(context.Background(), testConfig(), logger.Noop())
		require.NoError(t, err)
		assert.Nil(t, s.gpu)
		assert.False(t, s.state.GPUAvailable)
		s.close()
	})

	t.Run("backend none never opens a device", func(t *testing.T) {
		fakeProviders(t, &fakeCPU{usage: []float64{5, 5}}, &fakeGPU{}, nil)
		openGPU = func(context.Context, provider.GPUOptions) (sampler.GPUDevice, string, error) {
			t.Fatal("openGPU called with backend none")
			return nil, "", nil
		}

		cfg := testConfig()
		cfg.GPU.Backend = provider.BackendNone
		s, err := openSession(context.Background(), cfg, logger.Noop())
		require.NoError(t, err)
		assert.Nil(t, s.gpu)
		s.close()
	})
}

func TestOpenSessionNoCores(t *testing.T) {
	fakeProviders(t, &fakeCPU{}, nil, nil)

	_, err := openSession(context.Background(), testConfig(), logger.Noop())
	require.Error(t, err)
	assert.ErrorIs(t, err, sampler.ErrNoCores)
}

func TestSessionSample(t *testing.T) {
	cpu := &fakeCPU{usage: []float64{10, 20, 30, 40}}
	fakeProviders(t, cpu, &fakeGPU{}, nil)

	s, err := openSession(context.Background(), testConfig(), logger.Noop())
	require.NoError(t, err)
	defer s.close()

	state, err := s.sample(context.Background(), 3, logger.Noop())
	require.NoError(t, err)

	assert.Equal(t, uint64(3), state.CPU.Tick)
	assert.Equal(t, 3, cpu.calls)
	assert.InDelta(t, 25, telemetry.Latest(state.CPU.Average), 0.001)
	assert.InDelta(t, 25, telemetry.Latest(state.CPU.Memory), 0.001)

	require.NotNil(t, state.GPU)
	assert.Equal(t, uint64(3), state.GPU.Tick)
	assert.InDelta(t, 50, telemetry.Latest(state.GPU.Fans[0]), 0.001)
	assert.InDelta(t, 61, telemetry.Latest(state.GPU.Temperature), 0.001)
	assert.InDelta(t, 25, telemetry.Latest(state.GPU.VRAM), 0.001)
}

func TestSessionSampleCPUFailure(t *testing.T) {
	cpu := &fakeCPU{usage: []float64{10, 20}, err: fmt.Errorf("/proc/stat: permission denied")}
	fakeProviders(t, cpu, nil, provider.ErrNoGPU)

	s, err := openSession(context.Background(), testConfig(), logger.Noop())
	require.NoError(t, err)
	defer s.close()

	_, err = s.sample(context.Background(), 2, logger.Noop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Every CPU reading failed")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestSessionSampleCancelled(t *testing.T) {
	fakeProviders(t, &fakeCPU{usage: []float64{10}}, nil, provider.ErrNoGPU)

	s, err := openSession(context.Background(), testConfig(), logger.Noop())
	require.NoError(t, err)
	defer s.close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.sample(ctx, 5, logger.Noop())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionStartPublishes(t *testing.T) {
	fakeProviders(t, &fakeCPU{usage: []float64{50, 50}}, &fakeGPU{}, nil)

	s, err := openSession(context.Background(), testConfig(), logger.Noop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.start(ctx)

	recvCtx, recvCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer recvCancel()

	cpuSnap, err := s.cpuBus.Receive(recvCtx)
	require.NoError(t, err)
	assert.Positive(t, cpuSnap.Tick)

	gpuSnap, err := s.gpuBus.Receive(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, "NVIDIA GeForce RTX 3080", gpuSnap.Name)

	cancel()
	s.close()
}
