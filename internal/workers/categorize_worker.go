package workers

import (
	"context"

	"github.com/alimgiray/heartbeat/internal/models"
	"github.com/alimgiray/heartbeat/internal/services"
	"github.com/alimgiray/heartbeat/pkg/logger"
)

// CategorizeWorker classifies issue units pulled from a shared channel.
// Units carry no dependency on each other, so any number of these
// workers can run against the same corpus.
type CategorizeWorker struct {
	*BaseWorker
	classifyService *services.ClassifyService
	units           <-chan string
	results         chan<- *models.UnitResult
}

// NewCategorizeWorker creates a new categorize worker
func NewCategorizeWorker(workerID string, classifyService *services.ClassifyService, units <-chan string, results chan<- *models.UnitResult) *CategorizeWorker {
	return &CategorizeWorker{
		BaseWorker:      NewBaseWorker(workerID),
		classifyService: classifyService,
		units:           units,
		results:         results,
	}
}

// Start begins the categorize worker process. It returns when the unit
// channel is drained or the context is cancelled.
func (w *CategorizeWorker) Start(ctx context.Context) error {
	w.Running = true
	logger.Infof("Categorize worker %s started", w.WorkerID)

	for {
		select {
		case <-ctx.Done():
			logger.Infof("Categorize worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			logger.Infof("Categorize worker %s stopping", w.WorkerID)
			return nil
		case unitDir, ok := <-w.units:
			if !ok {
				return nil
			}
			result, err := w.classifyService.ProcessUnit(unitDir)
			if err != nil {
				// One unreadable unit must not bring down the pass.
				logger.WithError(err).Warnf("Categorize worker %s failed on unit %s", w.WorkerID, unitDir)
				continue
			}
			select {
			case w.results <- result:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
