package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/meinhoongagan/household-services/metrics"
)

// Handler runs one task and returns a short result string.
type Handler func(ctx context.Context) (string, error)

type Registry map[string]Handler

// Worker consumes the queue with a fixed pool of goroutines. A task stays in
// the processing list until its final state is recorded, so a crashed worker
// leaves it there for Recover to requeue.
type Worker struct {
	queue       *Queue
	handlers    Registry
	concurrency int
	pollTimeout time.Duration
}

func NewWorker(queue *Queue, handlers Registry, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		queue:       queue,
		handlers:    handlers,
		concurrency: concurrency,
		pollTimeout: 5 * time.Second,
	}
}

// Recover moves tasks left in the processing list back onto the queue. It
// assumes it is the only worker process; a second live worker would have
// its in-flight tasks requeued.
func (w *Worker) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := w.queue.rdb.LMove(ctx, processingKey, queueKey, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("requeue processing tasks: %w", err)
		}
		moved++
	}
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	n, err := w.Recover(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.WithField("count", n).Warn("requeued unfinished tasks")
	}

	queued, err := w.queue.Len(ctx)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"concurrency": w.concurrency, "queued": queued}).Info("worker started")

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	wg.Wait()

	log.Info("worker stopped")
	return nil
}

func (w *Worker) loop(ctx context.Context, id int) {
	for ctx.Err() == nil {
		if _, err := w.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).WithField("goroutine", id).Error("task loop error")
			time.Sleep(time.Second)
		}
	}
}

// ProcessOne waits up to the poll timeout for a task and runs it. It
// reports whether a task was handled.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	raw, err := w.queue.rdb.BLMove(ctx, queueKey, processingKey, "RIGHT", "LEFT", w.pollTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dequeue task: %w", err)
	}

	w.handle(ctx, raw)

	if err := w.queue.rdb.LRem(ctx, processingKey, 1, raw).Err(); err != nil {
		return true, fmt.Errorf("ack task: %w", err)
	}
	return true, nil
}

func (w *Worker) handle(ctx context.Context, raw string) {
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		log.WithError(err).WithField("payload", raw).Error("dropping malformed task")
		return
	}

	logger := log.WithFields(log.Fields{"task_id": msg.ID, "task": msg.Name})

	handler, ok := w.handlers[msg.Name]
	if !ok {
		w.finish(ctx, logger, msg, "", fmt.Errorf("unknown task %q", msg.Name))
		return
	}

	if err := w.queue.record(ctx, msg.ID, StateStarted, "", ""); err != nil {
		logger.WithError(err).Warn("could not mark task started")
	}
	logger.Info("task started")

	result, err := run(ctx, handler)
	w.finish(ctx, logger, msg, result, err)
}

func (w *Worker) finish(ctx context.Context, logger *log.Entry, msg Message, result string, err error) {
	state, errMsg := StateSuccess, ""
	if err != nil {
		state, errMsg = StateFailure, err.Error()
		logger.WithError(err).Error("task failed")
	} else {
		logger.WithField("result", result).Info("task succeeded")
	}

	metrics.TasksProcessed.WithLabelValues(msg.Name, string(state)).Inc()
	if rerr := w.queue.record(ctx, msg.ID, state, result, errMsg); rerr != nil {
		logger.WithError(rerr).Error("could not record task result")
	}
}

func run(ctx context.Context, h Handler) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx)
}
