package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/xife12/membercore/internal/config"
	"github.com/xife12/membercore/pkg/logger"
)

const (
	TaskTypeReminder = "reminder:send"
)

// ReminderTask carries one renewal reminder to be delivered to a member
// whose active membership has entered the notice window.
type ReminderTask struct {
	MemberID     uint   `json:"member_id"`
	MembershipID uint   `json:"membership_id"`
	MemberName   string `json:"member_name"`
	MemberNumber string `json:"member_number"`
	Email        string `json:"email"`
	ContractName string `json:"contract_name"`
	EndDate      string `json:"end_date"`
	DaysLeft     int    `json:"days_left"`
}

// TaskQueue defines the interface for reminder delivery.
type TaskQueue interface {
	// Enqueue adds a reminder to the queue
	Enqueue(task *ReminderTask) error
	// IsAsync returns true if the queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config. With
// Redis enabled reminders go through asynq; otherwise they are delivered
// in-process.
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Warn().Err(err).Msg("[TaskQueue] Redis unavailable, falling back to sync mode")
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Info().Str("addr", cfg.Redis.Addr).Msg("[TaskQueue] Async queue initialized")
				globalTaskQueue = queue
			}
		} else {
			logger.Info().Msg("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

// GetTaskQueue returns the global task queue instance.
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based).
type AsyncQueue struct {
	client *asynq.Client
}

func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode.
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

func (q *AsyncQueue) Enqueue(task *ReminderTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeReminder, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Debug().Str("task_id", info.ID).Uint("member_id", task.MemberID).Msg("[AsyncQueue] Reminder enqueued")
	return nil
}

func (q *AsyncQueue) IsAsync() bool {
	return true
}

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue with in-process delivery (no Redis).
type SyncQueue struct {
	processor func(context.Context, *ReminderTask) error
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function that delivers reminders in sync mode.
func (q *SyncQueue) SetProcessor(processor func(context.Context, *ReminderTask) error) {
	q.processor = processor
}

// Enqueue delivers the reminder in a goroutine so the scheduler tick is not
// blocked on SMTP.
func (q *SyncQueue) Enqueue(task *ReminderTask) error {
	if q.processor == nil {
		logger.Warn().Msg("[SyncQueue] no processor set, reminder dropped")
		return nil
	}

	go func() {
		if err := q.processor(context.Background(), task); err != nil {
			logger.Error().Err(err).Uint("member_id", task.MemberID).Msg("[SyncQueue] reminder delivery failed")
		}
	}()

	return nil
}

func (q *SyncQueue) IsAsync() bool {
	return false
}

func (q *SyncQueue) Close() error {
	return nil
}
