// Command worker consumes the background task queue and runs the periodic
// schedule that feeds it.
package main

import (
	"context"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/meinhoongagan/household-services/auth"
	"github.com/meinhoongagan/household-services/config"
	"github.com/meinhoongagan/household-services/cron"
	"github.com/meinhoongagan/household-services/db"
	"github.com/meinhoongagan/household-services/metrics"
	"github.com/meinhoongagan/household-services/redis"
	"github.com/meinhoongagan/household-services/tasks"
	"github.com/meinhoongagan/household-services/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	config.SetupLogger(cfg)

	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	if err := db.Migrate(db.DB); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	if err := redis.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.WithError(err).Fatal("redis unavailable")
	}

	queue := tasks.NewQueue(redis.Client, cfg.TaskResultTTL)
	jobs := &tasks.Jobs{
		DB:        db.DB,
		Mailer:    utils.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailSender),
		Denylist:  auth.NewDenylist(db.DB, redis.Client),
		ExportDir: cfg.ExportDir,
	}

	scheduler, err := cron.StartCronJobs(queue, redis.NewLock(redis.Client), cron.DefaultSchedules(cfg))
	if err != nil {
		log.WithError(err).Fatal("invalid schedule")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsDone := make(chan struct{})
	go func() {
		defer close(metricsDone)
		if err := metrics.Serve(ctx, metrics.NewServer("household-services-worker"), cfg.MetricsAddr); err != nil {
			log.WithError(err).Error("metrics listener failed")
		}
	}()

	worker := tasks.NewWorker(queue, jobs.Registry(), cfg.WorkerConcurrency)
	if err := worker.Run(ctx); err != nil {
		log.WithError(err).Error("worker failed")
	}
	stop()

	<-scheduler.Stop().Done()
	log.Info("scheduler stopped")
	<-metricsDone
}
