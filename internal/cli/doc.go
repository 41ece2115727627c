// Package cli implements the hwdash command-line interface.
//
// Each Cobra command delegates to a function taking an io.Writer so it can
// be exercised without a terminal.
//
// # Command Structure
//
// The root command runs the live dashboard; subcommands cover the rest:
//
//	hwdash                       - Live CPU/GPU dashboard
//	hwdash snapshot [--json]     - Sample for a few ticks and print the readings
//	hwdash plots                 - List the plot kinds
//	hwdash config [init|show|set] - Manage .hwdash.yaml
//	hwdash doctor [--fix]        - Check the config and the hardware backends
//	hwdash version               - Print build information
//
// # Sessions
//
// openSession resolves the CPU and GPU providers from the config, builds a
// sampler for each and the mailboxes they publish to. The dashboard runs
// the samplers in goroutines; snapshot ticks them in the foreground. A
// missing GPU is only fatal when gpu.required is set.
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color) are defined on the root
// command. SamplingFlags (--interval, --history, --gpu-backend, --no-gpu,
// --plots) override the config for the dashboard and snapshot commands.
package cli
