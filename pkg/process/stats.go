package process

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tactical-os/tos/errors"
)

// clockTicks is USER_HZ, fixed at 100 on every Linux architecture tos runs on.
const clockTicks = 100

// procRoot is the procfs mount point. Tests point it at a fixture tree.
var procRoot = "/proc"

// Stats is a point-in-time resource reading for one process.
type Stats struct {
	PID        int     `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`
	MemPercent float64 `json:"mem_percent"`
}

// GetStats reads CPU and memory usage for pid from procfs.
// CPU is averaged over the process lifetime. A missing process yields a
// NOT_FOUND error; callers treat any error as non-fatal for that sample.
func GetStats(pid int) (Stats, error) {
	if pid <= 0 {
		return Stats{}, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("invalid pid %d", pid))
	}

	dir := filepath.Join(procRoot, strconv.Itoa(pid))
	statData, err := os.ReadFile(filepath.Join(dir, "stat"))
	if err != nil {
		if os.IsNotExist(err) {
			return Stats{}, errors.New(errors.ErrCodeNotFound, fmt.Sprintf("process %d not found", pid)).
				WithDetail("pid", pid)
		}
		return Stats{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to read process stat")
	}

	cpuTicks, startTicks, err := parseStat(string(statData))
	if err != nil {
		return Stats{}, errors.Wrap(err, errors.ErrCodeInternal, "malformed process stat").
			WithDetail("pid", pid)
	}

	stats := Stats{PID: pid}

	if uptime, err := readUptime(); err == nil {
		elapsed := uptime - float64(startTicks)/clockTicks
		if elapsed > 0 {
			stats.CPUPercent = 100 * (float64(cpuTicks) / clockTicks) / elapsed
		}
	}

	rssKB, err := readStatusField(filepath.Join(dir, "status"), "VmRSS")
	if err == nil {
		stats.RSSBytes = rssKB * 1024
		if totalKB, err := readStatusField(filepath.Join(procRoot, "meminfo"), "MemTotal"); err == nil && totalKB > 0 {
			stats.MemPercent = 100 * float64(rssKB) / float64(totalKB)
		}
	}

	return stats, nil
}

// parseStat extracts utime+stime and starttime from a /proc/<pid>/stat line.
// The comm field may contain spaces, so fields are counted from the last ')'.
func parseStat(line string) (cpu uint64, start uint64, err error) {
	end := strings.LastIndexByte(line, ')')
	if end < 0 {
		return 0, 0, fmt.Errorf("no comm terminator")
	}
	fields := strings.Fields(line[end+1:])
	// fields[0] is state (field 3); utime=14, stime=15, starttime=22.
	if len(fields) < 20 {
		return 0, 0, fmt.Errorf("expected at least 20 fields after comm, got %d", len(fields))
	}
	utime, err := strconv.ParseUint(fields[11], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("utime: %w", err)
	}
	stime, err := strconv.ParseUint(fields[12], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("stime: %w", err)
	}
	start, err = strconv.ParseUint(fields[19], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("starttime: %w", err)
	}
	return utime + stime, start, nil
}

func readUptime() (float64, error) {
	data, err := os.ReadFile(filepath.Join(procRoot, "uptime"))
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty uptime")
	}
	return strconv.ParseFloat(fields[0], 64)
}

// readStatusField returns the numeric value of a "Key:   123 kB" line.
func readStatusField(path, key string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok || name != key {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return 0, fmt.Errorf("%s has no value", key)
		}
		return strconv.ParseUint(fields[0], 10, 64)
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("%s not present", key)
}
