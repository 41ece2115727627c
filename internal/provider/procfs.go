package provider

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Jiffies is the cumulative time a core has spent busy and idle.
type Jiffies struct {
	Total int64
	Idle  int64
}

// Usage returns the busy percentage between prev and j. A counter that did
// not advance (or went backwards after a hotplug) reports 0.
func (j Jiffies) Usage(prev Jiffies) float64 {
	totalDelta := j.Total - prev.Total
	if totalDelta <= 0 {
		return 0
	}
	idleDelta := j.Idle - prev.Idle
	if idleDelta < 0 {
		idleDelta = 0
	}
	return float64(totalDelta-idleDelta) / float64(totalDelta) * 100
}

// ProcFS reads CPU and memory usage straight from /proc on Linux. Per-core
// usage is the delta against the previous CoreUsage call.
type ProcFS struct {
	root string

	mu   sync.Mutex
	prev []Jiffies
}

// NewProcFS returns a CPU source reading from root ("/proc" when empty).
func NewProcFS(root string) *ProcFS {
	if root == "" {
		root = "/proc"
	}
	return &ProcFS{root: root}
}

func (p *ProcFS) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(p.root, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CoreCount counts the cpuN lines in /proc/stat and primes the delta state.
func (p *ProcFS) CoreCount() (int, error) {
	stat, err := p.read("stat")
	if err != nil {
		return 0, wrapQuery("read /proc/stat", err)
	}
	cores, err := ParseProcStat(stat)
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	p.prev = cores
	p.mu.Unlock()
	return len(cores), nil
}

// CoreUsage returns per-core utilization since the previous call.
func (p *ProcFS) CoreUsage(ctx context.Context) ([]float64, error) {
	stat, err := p.read("stat")
	if err != nil {
		return nil, wrapQuery("read /proc/stat", err)
	}
	cores, err := ParseProcStat(stat)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	usage := make([]float64, len(cores))
	if len(p.prev) == len(cores) {
		for i, c := range cores {
			usage[i] = c.Usage(p.prev[i])
		}
	}
	// On the first call (or after a core count change) usage stays 0 and
	// shows correctly on the next tick.
	p.prev = cores
	return usage, nil
}

// Memory returns used and total memory from /proc/meminfo.
func (p *ProcFS) Memory(ctx context.Context) (used, total uint64, err error) {
	meminfo, err := p.read("meminfo")
	if err != nil {
		return 0, 0, wrapQuery("read /proc/meminfo", err)
	}
	return ParseMeminfo(meminfo)
}

// ParseProcStat returns the per-core jiffies from /proc/stat content, in
// cpuN order. The aggregate "cpu " line is ignored.
func ParseProcStat(procStat string) ([]Jiffies, error) {
	var cores []Jiffies
	scanner := bufio.NewScanner(strings.NewReader(procStat))

	for scanner.Scan() {
		line := scanner.Text()

		// Individual cores only (cpu0, cpu1, etc.)
		if !strings.HasPrefix(line, "cpu") || len(line) <= 3 || line[3] < '0' || line[3] > '9' {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}

		// Fields: cpuN user nice system idle iowait irq softirq steal guest guest_nice.
		// guest and guest_nice are already counted in user and nice.
		var j Jiffies
		for i := 1; i < len(fields) && i <= 8; i++ {
			val, err := strconv.ParseInt(fields[i], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s field %d: %w", fields[0], i, err)
			}
			j.Total += val

			// idle is field 4, iowait is field 5
			if i == 4 || i == 5 {
				j.Idle += val
			}
		}
		cores = append(cores, j)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	if len(cores) == 0 {
		return nil, fmt.Errorf("no per-core lines in /proc/stat")
	}

	return cores, nil
}

// ParseMeminfo returns used and total memory in bytes from /proc/meminfo
// content. Used is total minus available when the kernel reports
// MemAvailable, else total minus free, buffers and page cache.
func ParseMeminfo(procMeminfo string) (used, total uint64, err error) {
	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))

	var memTotal, memFree, memAvailable, buffers, cached uint64
	var haveTotal, haveFree, haveAvailable bool

	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		// Values in /proc/meminfo are in kB
		key := strings.TrimSuffix(parts[0], ":")
		val, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			continue
		}
		valBytes := val * 1024

		switch key {
		case "MemTotal":
			memTotal, haveTotal = valBytes, true
		case "MemFree":
			memFree, haveFree = valBytes, true
		case "MemAvailable":
			memAvailable, haveAvailable = valBytes, true
		case "Buffers":
			buffers = valBytes
		case "Cached":
			cached = valBytes
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, 0, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}
	if !haveTotal || (!haveFree && !haveAvailable) {
		return 0, 0, fmt.Errorf("insufficient memory info found in /proc/meminfo")
	}

	free := memFree + buffers + cached
	if haveAvailable {
		free = memAvailable
	}
	if free > memTotal {
		return 0, memTotal, nil
	}
	return memTotal - free, memTotal, nil
}
