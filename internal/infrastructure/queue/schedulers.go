package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"hotelbooking-backend/internal/shared"
	"hotelbooking-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterReconciliationJobs() error {
	return s.registerRetryFailedWebhooksJob()
}

// ================================================
// JOB: Retry Failed Webhooks (Every 5 minutes)
// ================================================
// IPN handlers answer 200 to the gateway even on internal failure, so
// this job is the only thing that re-drives a settlement whose
// processing died halfway. Five minutes keeps the confirmation lag
// bounded without hammering the database.
func (s *Scheduler) registerRetryFailedWebhooksJob() error {
	payload, err := json.Marshal(shared.RetryFailedWebhooksPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeRetryFailedWebhooks, payload)

	_, err = s.scheduler.Register(
		"*/5 * * * *",
		task,
		asynq.Queue(shared.QueueCritical),
		asynq.MaxRetry(2),
		asynq.Timeout(4*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register RetryFailedWebhooks job", err)
		return err
	}

	logger.Info("✓ Registered RetryFailedWebhooks: every 5 minutes", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
