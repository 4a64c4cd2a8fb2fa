package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	queueKey      = "tasks:queue"
	processingKey = "tasks:processing"
	metaPrefix    = "tasks:meta:"
)

// Task names.
const (
	ExportServiceRequests = "export_service_requests"
	SendDailyReminders    = "send_daily_reminders"
	SendMonthlyReport     = "send_monthly_activity_report"
	PurgeRevokedTokens    = "purge_revoked_tokens"
)

type State string

const (
	StatePending State = "PENDING"
	StateStarted State = "STARTED"
	StateSuccess State = "SUCCESS"
	StateFailure State = "FAILURE"
)

// Message is the queue payload.
type Message struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Status is the recorded outcome of a task.
type Status struct {
	ID     string `json:"id"`
	State  State  `json:"state"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Queue pushes tasks onto a Redis list and tracks their state in a hash per
// task id. Metadata expires resultTTL after the last state change.
type Queue struct {
	rdb       *redis.Client
	resultTTL time.Duration
}

func NewQueue(rdb *redis.Client, resultTTL time.Duration) *Queue {
	return &Queue{rdb: rdb, resultTTL: resultTTL}
}

// Enqueue schedules the named task and returns its id.
func (q *Queue) Enqueue(ctx context.Context, name string) (string, error) {
	msg := Message{ID: uuid.NewString(), Name: name, EnqueuedAt: time.Now().UTC()}
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode task: %w", err)
	}

	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, metaPrefix+msg.ID, "name", name, "state", string(StatePending))
		pipe.Expire(ctx, metaPrefix+msg.ID, q.resultTTL)
		pipe.LPush(ctx, queueKey, payload)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", name, err)
	}
	return msg.ID, nil
}

// Status returns the task's state. Ids with no metadata report PENDING.
func (q *Queue) Status(ctx context.Context, id string) (*Status, error) {
	fields, err := q.rdb.HGetAll(ctx, metaPrefix+id).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load task %s: %w", id, err)
	}

	st := &Status{ID: id, State: StatePending}
	if s, ok := fields["state"]; ok && s != "" {
		st.State = State(s)
	}
	st.Result = fields["result"]
	st.Error = fields["error"]
	return st, nil
}

func (q *Queue) record(ctx context.Context, id string, state State, result, errMsg string) error {
	key := metaPrefix + id
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "state", string(state), "result", result, "error", errMsg)
		pipe.Expire(ctx, key, q.resultTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record task %s state: %w", id, err)
	}
	return nil
}

// Len reports how many tasks are waiting.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, queueKey).Result()
}
