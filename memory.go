package main

import (
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	log "github.com/sirupsen/logrus"

	"hist/internal/stats"
)

const samplingInterval = 10 * time.Millisecond

var rssBytesFunc = rssBytes

// measurePeakResidentMemory runs fn while sampling the resident set size of
// the process and returns fn's results with the highest RSS seen.
func measurePeakResidentMemory(fn func() (stats.Summary, float64)) (stats.Summary, float64, float64) {
	baseline := rssBytesFunc()
	peak := baseline

	stop := make(chan struct{})
	var wg sync.WaitGroup
	var mu sync.Mutex
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(samplingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				current := rssBytesFunc()
				mu.Lock()
				if current > peak {
					peak = current
				}
				mu.Unlock()
			case <-stop:
				return
			}
		}
	}()

	summary, duration := fn()
	close(stop)
	wg.Wait()

	if peak == 0 {
		peak = baseline
	}
	return summary, duration, peak
}

var (
	selfOnce sync.Once
	self     *process.Process
)

func rssBytes() float64 {
	selfOnce.Do(func() {
		p, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			log.WithError(err).Debug("process handle unavailable, memory not measured")
			return
		}
		self = p
	})
	if self == nil {
		return 0
	}
	info, err := self.MemoryInfo()
	if err != nil {
		return 0
	}
	return float64(info.RSS)
}
