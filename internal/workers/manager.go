package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/alimgiray/heartbeat/internal/models"
	"github.com/alimgiray/heartbeat/internal/services"
	"github.com/alimgiray/heartbeat/pkg/logger"
)

// WorkerManager runs a pool of categorize workers over a corpus
type WorkerManager struct {
	classifyService *services.ClassifyService
	count           int
	workers         []Worker
	wg              sync.WaitGroup
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(classifyService *services.ClassifyService, count int) *WorkerManager {
	if count < 1 {
		count = 1
	}
	return &WorkerManager{
		classifyService: classifyService,
		count:           count,
	}
}

// Run classifies every unit directory and returns the collected
// results. Result order is whatever the workers produce; callers that
// need deterministic output sort afterward.
func (wm *WorkerManager) Run(ctx context.Context, unitDirs []string) []*models.UnitResult {
	units := make(chan string)
	results := make(chan *models.UnitResult)

	logger.Infof("Starting %d categorize workers for %d units", wm.count, len(unitDirs))

	for i := 0; i < wm.count; i++ {
		worker := NewCategorizeWorker(fmt.Sprintf("categorize-%d", i+1), wm.classifyService, units, results)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(ctx, worker)
	}

	// Feed the pool and close the results channel once every worker is done.
	go func() {
		defer close(units)
		for _, dir := range unitDirs {
			select {
			case units <- dir:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wm.wg.Wait()
		close(results)
	}()

	var collected []*models.UnitResult
	processed := 0
	for result := range results {
		collected = append(collected, result)
		processed++
		if processed%1000 == 0 {
			logger.Infof("Processed %d issues", processed)
		}
	}

	return collected
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.Errorf("Error stopping worker %s: %v", worker.GetWorkerID(), err)
		}
	}
	wm.wg.Wait()
	return nil
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(ctx context.Context, worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(ctx); err != nil && err != context.Canceled {
			logger.Errorf("Worker %s stopped with error: %v", worker.GetWorkerID(), err)
		}
	}()
}
