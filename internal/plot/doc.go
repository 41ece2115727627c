// Package plot turns telemetry histories into drawable geometry.
//
// Render is a pure function of a Kind, the consumer's telemetry.State and a
// rectangle. It returns a Frame holding polylines, fill polygons, axis ticks
// and a wrapped legend layout; the host (the terminal dashboard, or anything
// else) only rasterizes it. Units are whatever the host's rectangle uses:
// pixels, braille dots or cells.
//
// The six kinds form a closed set:
//
//	AverageCPU      cpu-average      percent
//	PerCoreCPU      cpu-cores        percent, one line per core, legend
//	Memory          memory           percent
//	GPUVRAM         gpu-vram         percent
//	GPUFan          gpu-fan          percent, labelled in RPM, legend
//	GPUTemperature  gpu-temperature  °C
package plot
