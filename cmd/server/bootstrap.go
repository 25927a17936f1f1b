package main

import (
	"context"

	"github.com/xife12/membercore/internal/config"
	"github.com/xife12/membercore/internal/models"
	"github.com/xife12/membercore/internal/services"
	"github.com/xife12/membercore/internal/utils"
	"github.com/xife12/membercore/pkg/logger"
)

// appServices holds everything the router and the shutdown path need.
type appServices struct {
	cfg             *config.Config
	taskQueue       services.TaskQueue
	worker          *services.Worker
	reminderService *services.ReminderService
}

// bootstrap wires the database, schedulers and the reminder pipeline.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	services.InitSystemLogger(models.GetDB())
	services.StartLogCleanupScheduler(models.GetDB())

	// Reminder pipeline: queue (Redis when enabled, sync otherwise), the
	// email sender as processor, and the daily cron sweep.
	emailService := services.NewEmailService(models.GetDB())
	processReminder := func(ctx context.Context, task *services.ReminderTask) error {
		return emailService.SendRenewalReminder(task)
	}

	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(processReminder)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(processReminder)
			worker.Start()
		}
	}

	reminderService := services.NewReminderService(models.GetDB(), taskQueue)
	reminderService.StartScheduler()

	authService := services.NewAuthService(models.GetDB(), &cfg.JWT)
	if err := authService.CreateAdminIfNotExists(cfg.Admin.Username, cfg.Admin.Password); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:             cfg,
		taskQueue:       taskQueue,
		worker:          worker,
		reminderService: reminderService,
	}
}

// shutdown stops the schedulers and drains the queue.
func (s *appServices) shutdown() {
	s.reminderService.StopScheduler()
	services.StopLogCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
