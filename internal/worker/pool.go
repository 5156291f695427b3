package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"notifica/internal/imports"
)

// StartPool launches the import workers. Each worker handles one job at a
// time end to end; jobs never interleave rows, which keeps error
// attribution deterministic.
func StartPool(
	ctx context.Context,
	wg *sync.WaitGroup,
	workers int,
	jobs <-chan *imports.Job,
	processor *imports.Processor,
	registry *imports.Registry,
	logger *zap.Logger,
) {
	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			logger.Info("import worker started", zap.Int("worker_id", id))

			for {
				select {

				case <-ctx.Done():
					logger.Info("import worker shutting down", zap.Int("worker_id", id))
					return

				case job, ok := <-jobs:
					if !ok {
						logger.Info("job channel closed", zap.Int("worker_id", id))
						return
					}

					registry.SetRunning(job.ID)

					result, err := processor.Run(ctx, job)
					if err != nil {
						logger.Error("import job failed",
							zap.Int("worker_id", id),
							zap.String("job_id", job.ID),
							zap.Error(err),
						)
						registry.SetFailed(job.ID, err.Error())
						continue
					}

					registry.SetDone(job.ID, result)

					logger.Info("import job finished",
						zap.Int("worker_id", id),
						zap.String("job_id", job.ID),
						zap.Int("success", result.SuccessCount),
						zap.Int("errors", result.ErrorCount),
					)
				}
			}
		}(i)
	}
}
