package provider

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Sysfs reads a GPU through the kernel's DRM and hwmon sysfs interfaces.
// amdgpu exposes every metric there; other drivers usually expose at least
// temperature.
type Sysfs struct {
	devicePath string
	hwmonPath  string
	vendorID   string
	fans       []int
}

// OpenSysfs binds to the index-th DRM card (card0, card1, ... in numeric
// order) under sysRoot ("/sys" when empty) that has a hwmon directory. The
// card must also report VRAM usage, which in practice means amdgpu.
func OpenSysfs(sysRoot string, index int) (*Sysfs, error) {
	if sysRoot == "" {
		sysRoot = "/sys"
	}

	cards, err := listCards(filepath.Join(sysRoot, "class/drm"))
	if err != nil {
		return nil, bindError("sysfs", err, "This backend needs Linux with /sys mounted.")
	}

	seen := 0
	for _, card := range cards {
		devicePath := filepath.Join(sysRoot, "class/drm", card, "device")
		hwmon := findHwmon(devicePath)
		if hwmon == "" {
			continue
		}
		if seen == index {
			vendor, _ := parseUevent(devicePath)
			dev := &Sysfs{
				devicePath: devicePath,
				hwmonPath:  hwmon,
				vendorID:   vendor,
				fans:       listFans(hwmon),
			}
			// Every GPU tick publishes on the memory reading, so a card
			// without VRAM counters would never produce a snapshot.
			if _, _, err := dev.Memory(); err != nil {
				return nil, bindError("sysfs", fmt.Errorf("%s has no VRAM counters: %w", card, err),
					"Only amdgpu exposes VRAM usage in sysfs; use nvml or nvidia-smi for NVIDIA cards.")
			}
			return dev, nil
		}
		seen++
	}

	return nil, bindError("sysfs",
		fmt.Errorf("found %d GPUs with hwmon sensors, need index %d", seen, index),
		"Check gpu.device, or set gpu.backend to none.")
}

// listCards returns the DRM card directories in numeric order, skipping
// connectors (card0-DP-1) and render nodes (renderD128).
func listCards(drmBase string) ([]string, error) {
	entries, err := os.ReadDir(drmBase)
	if err != nil {
		return nil, err
	}

	var cards []string
	for _, entry := range entries {
		if isCardDevice(entry.Name()) {
			cards = append(cards, entry.Name())
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		a, _ := strconv.Atoi(cards[i][4:])
		b, _ := strconv.Atoi(cards[j][4:])
		return a < b
	})
	return cards, nil
}

func isCardDevice(name string) bool {
	if !strings.HasPrefix(name, "card") {
		return false
	}
	suffix := name[4:]
	if len(suffix) == 0 {
		return false
	}
	for _, character := range suffix {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}

func findHwmon(devicePath string) string {
	base := filepath.Join(devicePath, "hwmon")
	entries, err := os.ReadDir(base)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "hwmon") {
			return filepath.Join(base, entry.Name())
		}
	}
	return ""
}

// listFans returns the hwmon fan numbers (fan1_input -> 1) in order.
func listFans(hwmon string) []int {
	matches, _ := filepath.Glob(filepath.Join(hwmon, "fan*_input"))
	var fans []int
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "fan"), "_input")
		if n, err := strconv.Atoi(name); err == nil {
			fans = append(fans, n)
		}
	}
	sort.Ints(fans)
	return fans
}

// parseUevent returns the PCI vendor and device IDs from the uevent file:
//
//	PCI_ID=1002:744C
func parseUevent(devicePath string) (vendor, device string) {
	f, err := os.Open(filepath.Join(devicePath, "uevent"))
	if err != nil {
		return "", ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if id, ok := strings.CutPrefix(scanner.Text(), "PCI_ID="); ok {
			vendor, device, _ = strings.Cut(id, ":")
			return strings.ToUpper(vendor), strings.ToUpper(device)
		}
	}
	return "", ""
}

func pciVendorName(vendorID string) string {
	switch vendorID {
	case "1002":
		return "AMD"
	case "10DE":
		return "NVIDIA"
	case "8086":
		return "Intel"
	default:
		return ""
	}
}

func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readSysfsUint(path string) (uint64, error) {
	value, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(value, 10, 64)
}

func (s *Sysfs) Brand() (string, error) {
	if name := pciVendorName(s.vendorID); name != "" {
		return name, nil
	}
	return "", wrapQuery("brand", ErrUnavailable)
}

// Name prefers the marketing name (product_name, amdgpu only) and falls
// back to the hwmon driver name plus PCI device ID.
func (s *Sysfs) Name() (string, error) {
	if name, err := readSysfsString(filepath.Join(s.devicePath, "product_name")); err == nil && name != "" {
		return name, nil
	}
	driver, err := readSysfsString(filepath.Join(s.hwmonPath, "name"))
	if err != nil {
		return "", wrapQuery("name", err)
	}
	if _, device := parseUevent(s.devicePath); device != "" {
		return fmt.Sprintf("%s [%s]", driver, device), nil
	}
	return driver, nil
}

func (s *Sysfs) FanCount() (int, error) {
	return len(s.fans), nil
}

// Temperature reads temp1_input, which hwmon reports in millidegrees.
func (s *Sysfs) Temperature() (float64, error) {
	milli, err := readSysfsUint(filepath.Join(s.hwmonPath, "temp1_input"))
	if err != nil {
		return 0, wrapQuery("temperature", err)
	}
	return float64(milli) / 1000, nil
}

// FanSpeed reads the fan's RPM directly.
func (s *Sysfs) FanSpeed(fan int) (float64, error) {
	if fan < 0 || fan >= len(s.fans) {
		return 0, wrapQuery(fmt.Sprintf("fan %d", fan), ErrUnavailable)
	}
	rpm, err := readSysfsUint(filepath.Join(s.hwmonPath, fmt.Sprintf("fan%d_input", s.fans[fan])))
	if err != nil {
		return 0, wrapQuery(fmt.Sprintf("fan %d", fan), err)
	}
	return float64(rpm), nil
}

// Memory reads amdgpu's VRAM counters.
func (s *Sysfs) Memory() (used, total uint64, err error) {
	used, err = readSysfsUint(filepath.Join(s.devicePath, "mem_info_vram_used"))
	if err != nil {
		return 0, 0, wrapQuery("vram used", err)
	}
	total, err = readSysfsUint(filepath.Join(s.devicePath, "mem_info_vram_total"))
	if err != nil {
		return 0, 0, wrapQuery("vram total", err)
	}
	return used, total, nil
}

func (s *Sysfs) Close() error { return nil }
