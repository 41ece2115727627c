package cli

import (
	"context"
	"sync"

	"github.com/rileyhilliard/hwdash/internal/config"
	"github.com/rileyhilliard/hwdash/internal/exec"
	"github.com/rileyhilliard/hwdash/internal/logger"
	"github.com/rileyhilliard/hwdash/internal/provider"
	"github.com/rileyhilliard/hwdash/internal/sampler"
	"github.com/rileyhilliard/hwdash/internal/telemetry"
)

// Provider entry points, replaced in tests.
var (
	openCPU  = provider.OpenCPU
	openGPU  = provider.OpenGPU
	hostInfo = provider.HostInfo
)

// session owns the samplers and mailboxes behind one dashboard or snapshot
// run.
type session struct {
	cfg *config.Config

	cpu    *sampler.CPUSampler
	cpuBus *telemetry.Mailbox[*telemetry.CPUSnapshot]

	// gpu is nil when no GPU backend bound.
	gpu        *sampler.GPUSampler
	gpuBus     *telemetry.Mailbox[*telemetry.GPUSnapshot]
	gpuBackend string

	state telemetry.State
	wg    sync.WaitGroup
}

// openSession binds the providers and builds both samplers. The CPU must
// work. A GPU that fails to bind is only fatal with gpu.required set.
func openSession(ctx context.Context, cfg *config.Config, log logger.Logger) (*session, error) {
	src, err := openCPU(cfg.CPU.Backend, cfg.CPU.ProcRoot)
	if err != nil {
		return nil, err
	}

	cpuOpts := cfg.CPUSamplerOptions()
	cpuOpts.Logger = logger.NewEnvLogger("[cpu]")
	s := &session{cfg: cfg, cpuBus: telemetry.NewMailbox[*telemetry.CPUSnapshot]()}
	s.cpu, err = sampler.NewCPUSampler(src, s.cpuBus, cpuOpts)
	if err != nil {
		return nil, err
	}

	if err := s.openGPU(ctx, log); err != nil {
		return nil, err
	}

	s.state = telemetry.State{
		CPU:          s.cpu.Initial(),
		GPUAvailable: s.gpu != nil,
		System:       hostInfo(ctx),
	}
	if s.gpu != nil {
		s.state.GPU = s.gpu.Initial()
	}
	log.Debug("session open: %d cores, gpu backend %q", s.cpu.Cores(), s.gpuBackend)
	return s, nil
}

func (s *session) openGPU(ctx context.Context, log logger.Logger) error {
	if s.cfg.GPU.Backend == provider.BackendNone {
		return nil
	}

	opts := s.cfg.GPUOptions()
	opts.Runner = exec.Local{}
	opts.Logger = logger.NewEnvLogger("[gpu]")

	dev, backend, err := openGPU(ctx, opts)
	if err != nil {
		if s.cfg.GPU.Required {
			return err
		}
		log.Warn("continuing without GPU: %v", firstLine(err))
		return nil
	}
	if dev == nil {
		return nil
	}

	gpuOpts := s.cfg.GPUSamplerOptions()
	gpuOpts.Logger = opts.Logger
	bus := telemetry.NewMailbox[*telemetry.GPUSnapshot]()
	gpu, err := sampler.NewGPUSampler(dev, bus, gpuOpts)
	if err != nil {
		_ = dev.Close()
		if s.cfg.GPU.Required {
			return err
		}
		log.Warn("continuing without GPU: %v", firstLine(err))
		return nil
	}

	s.gpu, s.gpuBus, s.gpuBackend = gpu, bus, backend
	return nil
}

// start runs the samplers in the background until ctx is done.
func (s *session) start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.cpu.Run(ctx)
	}()

	if s.gpu != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.gpu.Run(ctx)
		}()
	}
}

// close waits for started samplers (ctx must already be cancelled), closes
// the mailboxes and releases the GPU.
func (s *session) close() {
	s.wg.Wait()
	s.cpuBus.Close()
	if s.gpu != nil {
		s.gpuBus.Close()
		_ = s.gpu.Close()
	}
}
