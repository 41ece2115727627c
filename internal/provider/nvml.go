package provider

import (
	"fmt"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// nvmlHandle is the subset of nvml.Device the GPU sampler needs.
type nvmlHandle interface {
	GetName() (string, nvml.Return)
	GetBrand() (nvml.BrandType, nvml.Return)
	GetTemperature(nvml.TemperatureSensors) (uint32, nvml.Return)
	GetNumFans() (int, nvml.Return)
	GetFanSpeed_v2(fan int) (uint32, nvml.Return)
	GetMemoryInfo() (nvml.Memory, nvml.Return)
}

// NVML is an NVIDIA GPU read through the NVIDIA Management Library. The
// library is loaded at runtime, so the binary still starts on machines
// without the driver.
type NVML struct {
	handle    nvmlHandle
	maxFanRPM float64
	shutdown  func() nvml.Return
	closeOnce sync.Once
}

// OpenNVML initialises NVML and binds to the device at index.
func OpenNVML(index int, maxFanRPM float64) (*NVML, error) {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return nil, bindError("nvml", nvmlError("init", ret),
			"Install the NVIDIA driver (libnvidia-ml), or set gpu.backend to nvidia-smi, sysfs or none.")
	}

	device, ret := nvml.DeviceGetHandleByIndex(index)
	if ret != nvml.SUCCESS {
		nvml.Shutdown()
		return nil, bindError("nvml", nvmlError(fmt.Sprintf("device %d", index), ret),
			"Check gpu.device against the indices listed by nvidia-smi -L.")
	}

	return &NVML{handle: device, maxFanRPM: maxFanRPM, shutdown: nvml.Shutdown}, nil
}

func nvmlError(what string, ret nvml.Return) error {
	return fmt.Errorf("%s: %s", what, nvml.ErrorString(ret))
}

// Brand maps NVML's brand enum to a product line name.
func (n *NVML) Brand() (string, error) {
	brand, ret := n.handle.GetBrand()
	if ret != nvml.SUCCESS {
		return "", nvmlError("brand", ret)
	}
	return brandName(brand), nil
}

func brandName(b nvml.BrandType) string {
	switch b {
	case nvml.BRAND_GEFORCE:
		return "GeForce"
	case nvml.BRAND_QUADRO:
		return "Quadro"
	case nvml.BRAND_TESLA:
		return "Tesla"
	case nvml.BRAND_NVS:
		return "NVS"
	case nvml.BRAND_GRID:
		return "GRID"
	case nvml.BRAND_TITAN:
		return "Titan"
	case nvml.BRAND_NVIDIA_RTX:
		return "NVIDIA RTX"
	case nvml.BRAND_NVIDIA:
		return "NVIDIA"
	default:
		return "Unknown"
	}
}

func (n *NVML) Name() (string, error) {
	name, ret := n.handle.GetName()
	if ret != nvml.SUCCESS {
		return "", nvmlError("name", ret)
	}
	return name, nil
}

func (n *NVML) FanCount() (int, error) {
	fans, ret := n.handle.GetNumFans()
	if ret != nvml.SUCCESS {
		return 0, nvmlError("fan count", ret)
	}
	return fans, nil
}

func (n *NVML) Temperature() (float64, error) {
	t, ret := n.handle.GetTemperature(nvml.TEMPERATURE_GPU)
	if ret != nvml.SUCCESS {
		return 0, nvmlError("temperature", ret)
	}
	return float64(t), nil
}

// FanSpeed reports RPM. NVML exposes a percentage of the board's max, which
// is scaled against the configured max RPM.
func (n *NVML) FanSpeed(fan int) (float64, error) {
	pct, ret := n.handle.GetFanSpeed_v2(fan)
	if ret != nvml.SUCCESS {
		return 0, nvmlError(fmt.Sprintf("fan %d", fan), ret)
	}
	return float64(pct) / 100 * n.maxFanRPM, nil
}

func (n *NVML) Memory() (used, total uint64, err error) {
	mem, ret := n.handle.GetMemoryInfo()
	if ret != nvml.SUCCESS {
		return 0, 0, nvmlError("memory", ret)
	}
	return mem.Used, mem.Total, nil
}

// Close shuts NVML down. Safe to call more than once.
func (n *NVML) Close() error {
	var err error
	n.closeOnce.Do(func() {
		if n.shutdown == nil {
			return
		}
		if ret := n.shutdown(); ret != nvml.SUCCESS {
			err = nvmlError("shutdown", ret)
		}
	})
	return err
}
