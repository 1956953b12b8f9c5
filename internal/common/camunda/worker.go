package camunda

import (
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"defi-nlu/internal/common/config"
	"defi-nlu/internal/common/logger"
)

// Workers tracks the job workers opened by the manager so they can be
// closed together on shutdown.
type Workers struct {
	client zbc.Client
	logger logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{
		client:  client,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a worker for taskType unless it is disabled in config.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	jobWorker := w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	w.mu.Lock()
	w.workers[taskType] = jobWorker
	w.mu.Unlock()

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

func (w *Workers) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.workers)
}

// Close stops every worker and waits for in-flight jobs.
func (w *Workers) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for taskType, jw := range w.workers {
		jw.Close()
		jw.AwaitClose()
		w.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
	w.workers = make(map[string]worker.JobWorker)
}
