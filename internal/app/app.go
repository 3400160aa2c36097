package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	"github.com/lehmann314159/tangocho/internal/api"
	"github.com/lehmann314159/tangocho/internal/config"
	"github.com/lehmann314159/tangocho/internal/dataset"
	"github.com/lehmann314159/tangocho/internal/repository"
	"github.com/lehmann314159/tangocho/internal/services"
)

// Application owns the database, the services and the background jobs
type Application struct {
	config   config.Config
	db       *sqlx.DB
	services *services.ServiceManager
	cron     *cron.Cron
	watcher  *dataset.Watcher
	server   *http.Server
}

// New opens the database and builds every service. The HTTP server and the
// background jobs start with Start.
func New(cfg config.Config) (*Application, error) {
	db, err := repository.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	modules := dataset.DefaultModules()
	store := repository.NewSQLiteStore(db, cfg.StoragePrefix)
	serviceManager := services.NewServiceManager(store, dataset.NewDirLoader(cfg.DataDir), modules)

	app := &Application{
		config:   cfg,
		db:       db,
		services: serviceManager,
		cron:     cron.New(),
	}

	if err := app.setupCronJobs(); err != nil {
		db.Close()
		return nil, err
	}

	return app, nil
}

// Services returns the service manager
func (a *Application) Services() *services.ServiceManager {
	return a.services
}

// DailyOptions returns the configured daily goals
func (a *Application) DailyOptions() services.DailyOptions {
	return services.DailyOptions{
		NewGoal:    a.config.DailyNewGoal,
		ReviewGoal: a.config.DailyReviewGoal,
	}
}

// Start binds the HTTP listener, then launches the background jobs, the
// dataset watcher and the server. It returns once the server is listening
// in the background, or the listen error if the address cannot be bound.
func (a *Application) Start() error {
	log.Println("[app] starting")

	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Addr, err)
	}

	if a.config.WatchData {
		if err := a.startWatcher(); err != nil {
			log.Printf("[app] dataset watcher disabled: %v", err)
		}
	}

	a.cron.Start()
	a.ensureTodayTasks()

	handler := api.NewHandler(a.services, a.DailyOptions())
	a.server = &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           api.NewRouter(handler, a.config.APIToken),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[app] server error: %v", err)
		}
	}()

	log.Printf("[app] API listening on %s", ln.Addr())
	return nil
}

// Stop shuts the server down and releases every resource
func (a *Application) Stop(ctx context.Context) error {
	log.Println("[app] stopping")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down server: %w", err))
		}
	}

	<-a.cron.Stop().Done()

	if a.watcher != nil {
		a.watcher.Stop()
	}

	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	log.Println("[app] stopped")
	return errors.Join(errs...)
}

// Close releases the database without starting anything, for one-shot
// commands
func (a *Application) Close() error {
	return a.db.Close()
}

// startWatcher drops the cached module stats whenever a dataset file changes
func (a *Application) startWatcher() error {
	w, err := dataset.NewWatcher(a.config.DataDir, a.services.Catalog.Modules(), func(moduleType string) {
		a.services.Catalog.Invalidate()
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	a.watcher = w
	return nil
}

func (a *Application) setupCronJobs() error {
	// Drop old task bundles
	if a.config.CleanupSchedule != "" {
		_, err := a.cron.AddFunc(a.config.CleanupSchedule, func() {
			ctx := context.Background()
			if _, err := a.services.Tasks.CleanupOldTasks(ctx, a.config.TaskRetentionDays); err != nil {
				log.Printf("[app] task cleanup failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule task cleanup: %w", err)
		}
	}

	// Prepare the day's bundle shortly after midnight
	if a.config.DailySchedule != "" {
		_, err := a.cron.AddFunc(a.config.DailySchedule, a.ensureTodayTasks)
		if err != nil {
			return fmt.Errorf("failed to schedule daily tasks: %w", err)
		}
	}

	return nil
}

func (a *Application) ensureTodayTasks() {
	task, created, err := a.services.Tasks.EnsureTodayTasks(context.Background(), a.DailyOptions())
	if err != nil {
		log.Printf("[app] failed to prepare today's tasks: %v", err)
		return
	}
	if created {
		log.Printf("[app] prepared today's tasks: %d reviews, %d new words", len(task.Review), task.NewWordCount())
	}
}
