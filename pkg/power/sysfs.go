package power

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const sysfsRoot = "/sys/class/power_supply"

// SysfsSource reads charge from the kernel power-supply class.
type SysfsSource struct {
	capacityPath string
}

var _ Source = (*SysfsSource)(nil)

// NewSysfsSource finds the first battery under /sys/class/power_supply.
func NewSysfsSource() (*SysfsSource, error) {
	return NewSysfsSourceAt(sysfsRoot)
}

// NewSysfsSourceAt scans an alternate power-supply root, mainly for
// tests.
func NewSysfsSourceAt(root string) (*SysfsSource, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	for _, e := range entries {
		capacityPath := filepath.Join(root, e.Name(), "capacity")
		if _, err := os.Stat(capacityPath); err == nil {
			return &SysfsSource{capacityPath: capacityPath}, nil
		}
	}
	return nil, ErrNoBattery
}

// Percent returns the current charge in [0, 100].
func (s *SysfsSource) Percent() (int, error) {
	data, err := os.ReadFile(s.capacityPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read capacity: %w", err)
	}

	percent, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("bad capacity value %q: %w", strings.TrimSpace(string(data)), err)
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return percent, nil
}

// Name identifies the backend.
func (s *SysfsSource) Name() string {
	return "sysfs"
}
