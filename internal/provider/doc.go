// Package provider binds the samplers to real hardware.
//
// CPU sources: gopsutil (default, cross-platform) and procfs (Linux, reads
// /proc directly). GPU devices: NVML, the nvidia-smi CLI and sysfs hwmon.
// OpenCPU and OpenGPU select a backend by its config name.
package provider
