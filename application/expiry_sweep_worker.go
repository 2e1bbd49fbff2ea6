package application

import (
	"context"
	"sync"
	"time"

	"mir4tracker/service"

	log "github.com/sirupsen/logrus"
)

// ExpirySweepJobID identifies the sweep in scheduler status reports
const ExpirySweepJobID = "expiry_sweep"

// JobStatus describes one scheduled job
type JobStatus struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	IntervalSeconds int64                `json:"interval_seconds"`
	NextRun         *time.Time           `json:"next_run"`
	LastRun         *time.Time           `json:"last_run"`
	LastResult      *service.SweepResult `json:"last_result,omitempty"`
	LastError       string               `json:"last_error,omitempty"`
}

// SchedulerStatus reports whether background jobs are running
type SchedulerStatus struct {
	SchedulerRunning bool        `json:"scheduler_running"`
	Jobs             []JobStatus `json:"jobs"`
}

// ExpirySweepWorker runs the expiry sweep on a fixed interval
type ExpirySweepWorker struct {
	sweepService service.SweepService
	interval     time.Duration

	mu         sync.RWMutex
	running    bool
	nextRun    time.Time
	lastRun    time.Time
	lastResult *service.SweepResult
	lastError  string
}

// NewExpirySweepWorker creates a new expiry sweep worker
func NewExpirySweepWorker(sweepService service.SweepService, interval time.Duration) *ExpirySweepWorker {
	if interval <= 0 {
		interval = service.SweepInterval
	}
	return &ExpirySweepWorker{
		sweepService: sweepService,
		interval:     interval,
	}
}

// Start runs one sweep immediately and then one per interval until ctx is done
// or the returned cleanup function is called
func (w *ExpirySweepWorker) Start(ctx context.Context) func() {
	ticker := time.NewTicker(w.interval)
	stopChan := make(chan struct{})
	done := make(chan struct{})

	w.mu.Lock()
	w.running = true
	w.nextRun = time.Now().Add(w.interval)
	w.mu.Unlock()

	go func() {
		defer close(done)
		defer w.markStopped()

		log.WithField("interval", w.interval).Info("Expiry sweep worker started")

		// Catch anything that expired while the process was down
		w.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				log.Info("Expiry sweep worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Expiry sweep worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(stopChan)
			<-done
		})
	}
}

// Status returns the scheduler status for the sweep job
func (w *ExpirySweepWorker) Status() SchedulerStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	job := JobStatus{
		ID:              ExpirySweepJobID,
		Name:            "Reset accounts confirmed more than 30 days ago",
		IntervalSeconds: int64(w.interval / time.Second),
		LastResult:      w.lastResult,
		LastError:       w.lastError,
	}
	if w.running {
		next := w.nextRun
		job.NextRun = &next
	}
	if !w.lastRun.IsZero() {
		last := w.lastRun
		job.LastRun = &last
	}

	status := SchedulerStatus{SchedulerRunning: w.running, Jobs: []JobStatus{}}
	if w.running {
		status.Jobs = append(status.Jobs, job)
	}
	return status
}

func (w *ExpirySweepWorker) runOnce(ctx context.Context) {
	started := time.Now()
	result, err := w.sweepService.ResetExpiredAccounts(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastRun = started
	w.nextRun = started.Add(w.interval)
	if err != nil {
		log.WithError(err).Error("Error running expiry sweep")
		w.lastError = err.Error()
		return
	}
	w.lastError = ""
	w.lastResult = result

	log.WithFields(log.Fields{
		"checked":  result.Checked,
		"reset":    result.Reset,
		"duration": time.Since(started),
	}).Debug("Expiry sweep finished")
}

func (w *ExpirySweepWorker) markStopped() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
}
