package cli

import (
	"context"
	stderrors "errors"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/hwdash/internal/config"
	"github.com/rileyhilliard/hwdash/internal/errors"
	"github.com/rileyhilliard/hwdash/internal/logger"
	"github.com/rileyhilliard/hwdash/internal/monitor"
)

// dashboardCommand starts the samplers and runs the TUI until the user quits.
func dashboardCommand(ctx context.Context, flags DashboardFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(flags.SamplingFlags)
	if err != nil {
		return err
	}
	opts, err := dashboardOptions(cfg)
	if err != nil {
		return err
	}

	// The TUI owns the terminal from here on; log lines would corrupt it.
	if flags.LogFile != "" {
		f, err := tea.LogToFile(config.ExpandPath(flags.LogFile), "hwdash")
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't open log file: "+flags.LogFile,
				"Check the directory exists and is writable")
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := openSession(ctx, cfg, logger.NewEnvLogger("[hwdash]"))
	if err != nil {
		return err
	}
	s.start(ctx)

	opts.Context = ctx
	opts.CPU = s.cpuBus
	if s.gpu != nil {
		opts.GPU = s.gpuBus
	}
	opts.State = s.state

	p := tea.NewProgram(monitor.NewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()

	// Stop the samplers before releasing their devices.
	cancel()
	s.close()

	if err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "Dashboard stopped unexpectedly")
	}
	return nil
}

// dashboardOptions resolves the plot list and render options from cfg.
func dashboardOptions(cfg *config.Config) (monitor.Options, error) {
	kinds, err := cfg.Kinds()
	if err != nil {
		return monitor.Options{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid plot list", "Run 'hwdash plots' to see the available ids.")
	}
	plotOpts, err := cfg.PlotOptions()
	if err != nil {
		return monitor.Options{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid palette", "Use hex colours like \"#FF2E97\" in dashboard.palette.")
	}
	return monitor.Options{
		Kinds:   kinds,
		Plot:    plotOpts,
		Columns: cfg.Dashboard.Columns,
	}, nil
}
