package worker

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// checkResources verifies the host has enough headroom to take on another
// transform before polling. Thresholds at zero disable the corresponding
// check.
func (w *Worker) checkResources() error {
	if w.cfg.ThrottleCPU > 0 {
		p, err := cpu.Percent(0, false)
		if err != nil {
			w.log.WithError(err).Warn("could not get CPU usage")
		} else if len(p) > 0 && p[0] > (100.0-w.cfg.ThrottleCPU) {
			return fmt.Errorf("not enough idle CPU: current usage %.2f%%, idle threshold %.2f%%", p[0], w.cfg.ThrottleCPU)
		}
	}

	if w.cfg.ThrottleFreeMem > 0 {
		vm, err := mem.VirtualMemory()
		if err != nil {
			w.log.WithError(err).Warn("could not get memory usage")
		} else if vm.Available < uint64(w.cfg.ThrottleFreeMem) {
			return fmt.Errorf("not enough free memory: available %d, required %d", vm.Available, w.cfg.ThrottleFreeMem)
		}
	}

	if w.cfg.ThrottleFreeDisk > 0 {
		d, err := disk.Usage(w.cfg.OutputDir)
		if err != nil {
			w.log.WithError(err).Warn("could not get disk usage")
		} else if d.Free < uint64(w.cfg.ThrottleFreeDisk) {
			return fmt.Errorf("not enough free disk space: available %d, required %d", d.Free, w.cfg.ThrottleFreeDisk)
		}
	}

	return nil
}
