package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/meinhoongagan/household-services/auth"
	"github.com/meinhoongagan/household-services/config"
	"github.com/meinhoongagan/household-services/controllers"
	"github.com/meinhoongagan/household-services/db"
	"github.com/meinhoongagan/household-services/metrics"
	"github.com/meinhoongagan/household-services/middleware"
	"github.com/meinhoongagan/household-services/models"
	"github.com/meinhoongagan/household-services/redis"
	"github.com/meinhoongagan/household-services/routes"
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
	if err := db.Seed(db.DB, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.WithError(err).Fatal("seeding failed")
	}

	if err := redis.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.WithError(err).Fatal("redis unavailable")
	}

	uploader, err := newUploader(cfg)
	if err != nil {
		log.WithError(err).Fatal("document storage unavailable")
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	denylist := auth.NewDenylist(db.DB, redis.Client)

	controllers.Configure(controllers.Deps{
		Tokens:        tokens,
		Denylist:      denylist,
		Uploader:      uploader,
		Queue:         tasks.NewQueue(redis.Client, cfg.TaskResultTTL),
		ExportDir:     cfg.ExportDir,
		UsersCache:    redis.NewCache[[]controllers.UserSummary](redis.Client, cfg.UsersCacheTTL),
		ServicesCache: redis.NewCache[[]models.Service](redis.Client, cfg.ServicesCacheTTL),
	})

	app := fiber.New(fiber.Config{
		AppName:   "household-services",
		BodyLimit: 16 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(middleware.RequestLogger())
	app.Use(metrics.Middleware())

	metrics.Mount(app)
	routes.Setup(app, middleware.Protected(tokens, denylist))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.WithError(err).Fatal("server stopped")
		}
	}()
	log.WithField("addr", cfg.HTTPAddr).Info("server started")

	<-ctx.Done()
	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}

func newUploader(cfg *config.Config) (utils.Uploader, error) {
	if cfg.CloudinaryEnabled() {
		log.Info("storing documents in Cloudinary")
		return utils.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, "household-services/documents")
	}
	log.WithField("dir", cfg.UploadDir).Info("storing documents on local disk")
	return utils.NewLocalUploader(cfg.UploadDir), nil
}
