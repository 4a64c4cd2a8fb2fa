package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/meinhoongagan/household-services/config"
	"github.com/meinhoongagan/household-services/tasks"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, name string) (string, error)
}

// Locker elects one scheduler replica per firing. A nil Locker enqueues
// unconditionally.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

const firingLockTTL = 10 * time.Minute

// Schedule binds a cron spec to a task name.
type Schedule struct {
	Spec string
	Task string
}

// DefaultSchedules lists the periodic tasks with the configured specs.
func DefaultSchedules(cfg *config.Config) []Schedule {
	return []Schedule{
		{Spec: cfg.ReminderSchedule, Task: tasks.SendDailyReminders},
		{Spec: cfg.MonthlyReportSchedule, Task: tasks.SendMonthlyReport},
		{Spec: cfg.PurgeSchedule, Task: tasks.PurgeRevokedTokens},
	}
}

// New builds a scheduler that enqueues each task on its schedule. The
// caller starts and stops it.
func New(q Enqueuer, lock Locker, schedules []Schedule) (*cron.Cron, error) {
	c := cron.New()
	for _, s := range schedules {
		task := s.Task
		if _, err := c.AddFunc(s.Spec, func() { enqueue(q, lock, task, time.Now()) }); err != nil {
			return nil, fmt.Errorf("schedule %s (%q): %w", task, s.Spec, err)
		}
		log.WithFields(log.Fields{"task": task, "schedule": s.Spec}).Info("periodic task scheduled")
	}
	return c, nil
}

// StartCronJobs builds the scheduler and starts it.
func StartCronJobs(q Enqueuer, lock Locker, schedules []Schedule) (*cron.Cron, error) {
	c, err := New(q, lock, schedules)
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info("cron scheduler started")
	return c, nil
}

func enqueue(q Enqueuer, lock Locker, task string, firedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if lock != nil {
		key := fmt.Sprintf("cron:%s:%d", task, firedAt.Truncate(time.Minute).Unix())
		ok, err := lock.Acquire(ctx, key, firingLockTTL)
		if err != nil {
			log.WithError(err).WithField("task", task).Error("failed to claim periodic task")
			return
		}
		if !ok {
			log.WithField("task", task).Debug("periodic task claimed by another scheduler")
			return
		}
	}

	id, err := q.Enqueue(ctx, task)
	if err != nil {
		log.WithError(err).WithField("task", task).Error("failed to enqueue periodic task")
		return
	}
	log.WithFields(log.Fields{"task": task, "task_id": id}).Info("periodic task enqueued")
}
