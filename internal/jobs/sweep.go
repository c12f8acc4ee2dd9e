package jobs

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lukasbauer/falavoz/internal/audio"
)

// SweepJob repeats the stale audio sweep on an interval. The startup
// sweep is run separately and synchronously before serving.
type SweepJob struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	logger   *zap.SugaredLogger
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSweepJob creates a new sweep job.
func NewSweepJob(dir string, maxAge, interval time.Duration, logger *zap.SugaredLogger) *SweepJob {
	if maxAge <= 0 {
		maxAge = audio.DefaultMaxAge
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &SweepJob{
		dir:      dir,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// RunOnce sweeps immediately and logs the outcome.
func (j *SweepJob) RunOnce() audio.SweepResult {
	res, err := audio.Sweep(j.dir, j.maxAge, j.now(), j.logger)
	if err != nil {
		j.logger.Warnf("sweep: completed with errors: %v", err)
	}
	if res.Removed > 0 {
		j.logger.Infof("sweep: removed %d of %d old audio files", res.Removed, res.Matched)
	}
	return res
}

// Start begins the background job.
func (j *SweepJob) Start() {
	j.wg.Add(1)
	go j.run()
	j.logger.Infof("sweep: job started (interval=%v, max age=%v)", j.interval, j.maxAge)
}

// Stop gracefully stops the background job.
func (j *SweepJob) Stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
	j.wg.Wait()
	j.logger.Infof("sweep: job stopped")
}

func (j *SweepJob) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce()
		case <-j.stopCh:
			return
		}
	}
}
