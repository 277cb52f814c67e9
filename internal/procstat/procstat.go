// Package procstat samples resource usage of the spawned compiler process
// so a run can report how expensive the compile side was.
package procstat

import (
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Summary holds the resource usage observed for one watched process.
type Summary struct {
	PeakRSSMB    float64
	CPUUserSec   float64
	CPUSystemSec float64
	Samples      int
}

const sampleInterval = 200 * time.Millisecond

// Watch samples the process with the given PID in the background until the
// returned stop function is called; stop returns the collected summary.
// Per-sample errors are ignored: the process may exit at any moment.
func Watch(pid int32) func() Summary {
	done := make(chan struct{})
	result := make(chan Summary, 1)

	go func() {
		var sum Summary
		p, err := process.NewProcess(pid)
		if err != nil {
			<-done
			result <- sum
			return
		}
		ticker := time.NewTicker(sampleInterval)
		defer ticker.Stop()
		for {
			sample(p, &sum)
			select {
			case <-done:
				result <- sum
				return
			case <-ticker.C:
			}
		}
	}()

	return func() Summary {
		close(done)
		return <-result
	}
}

func sample(p *process.Process, sum *Summary) {
	if mem, err := p.MemoryInfo(); err == nil {
		rss := float64(mem.RSS) / 1024 / 1024
		if rss > sum.PeakRSSMB {
			sum.PeakRSSMB = rss
		}
	}
	if times, err := p.Times(); err == nil {
		sum.CPUUserSec = times.User
		sum.CPUSystemSec = times.System
	}
	sum.Samples++
}
