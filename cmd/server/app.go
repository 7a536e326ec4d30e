package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	"github.com/phrazzld/tasker-api/internal/ratelimit"
	"github.com/phrazzld/tasker-api/internal/reminder"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	services     services
	loginLimiter *ratelimit.KeyedLimiter

	// Reminder pipeline; nil when reminders are disabled.
	dispatcher *reminder.Dispatcher
	scheduler  *reminder.Scheduler
}

// services are the dependencies of the HTTP layer.
type services struct {
	users      service.UserService
	tasks      service.TaskService
	categories service.CategoryService
	comments   service.CommentService
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection must already be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	tx := store.NewDBTransactor(db)
	userStore := postgres.NewPostgresUserStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	linkStore := postgres.NewPostgresTaskCategoryStore(db, logger)
	categoryStore := postgres.NewPostgresCategoryStore(db, logger)
	commentStore := postgres.NewPostgresCommentStore(db, logger)

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.Reminder.Enabled {
		if err := app.setupReminders(taskStore); err != nil {
			return nil, err
		}
		notifier = app.dispatcher
	} else {
		logger.Info("Reminders disabled")
	}

	app.services.users, err = service.NewUserService(tx, userStore, jwtService,
		auth.NewBcryptHasher(cfg.Auth.BCryptCost), logger)
	if err != nil {
		return nil, app.abort(fmt.Errorf("failed to create user service: %w", err))
	}

	app.services.tasks, err = service.NewTaskService(tx, taskStore, linkStore, categoryStore, notifier,
		service.NanoidShareTokens(cfg.Tasks.ShareTokenLength), cfg.Tasks.PageSize, logger)
	if err != nil {
		return nil, app.abort(fmt.Errorf("failed to create task service: %w", err))
	}

	app.services.categories, err = service.NewCategoryService(categoryStore, logger)
	if err != nil {
		return nil, app.abort(fmt.Errorf("failed to create category service: %w", err))
	}

	app.services.comments, err = service.NewCommentService(commentStore, taskStore, logger)
	if err != nil {
		return nil, app.abort(fmt.Errorf("failed to create comment service: %w", err))
	}

	app.loginLimiter = ratelimit.New(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst, 0)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupReminders starts the reminder dispatcher and the daily due-soon sweep.
func (app *application) setupReminders(tasks reminder.DueTaskLister) error {
	cfg := app.config.Reminder

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load reminder timezone %q: %w", cfg.Timezone, err)
	}

	dispatcher, err := reminder.NewDispatcher(
		postgres.NewPostgresReminderStore(app.db, app.logger),
		reminder.NewLogSender(app.logger),
		reminder.Config{
			WorkerCount: cfg.WorkerCount,
			QueueSize:   cfg.QueueSize,
		},
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder dispatcher: %w", err)
	}
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start reminder dispatcher: %w", err)
	}
	app.dispatcher = dispatcher

	scheduler := reminder.NewScheduler(tasks, dispatcher, loc, app.logger)
	if _, err := scheduler.ScheduleDaily(cfg.DailyAt); err != nil {
		return app.abort(fmt.Errorf("failed to schedule due-soon sweep: %w", err))
	}
	scheduler.Start()
	app.scheduler = scheduler

	app.logger.Info("Reminders enabled",
		"daily_at", cfg.DailyAt,
		"timezone", loc.String())
	return nil
}

// abort stops background workers started so far and returns err.
func (app *application) abort(err error) error {
	app.stopBackground()
	return err
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) stopBackground() {
	if app.scheduler != nil {
		app.scheduler.Stop()
		app.scheduler = nil
	}
	if app.dispatcher != nil {
		app.dispatcher.Stop()
		app.dispatcher = nil
	}
	if app.loginLimiter != nil {
		app.loginLimiter.Stop()
	}
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	app.stopBackground()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
