// Package server initializes and runs the development auth server.
// It opens the user database, seeds the administrator, handles graceful
// shutdown, and starts the gRPC and HTTP endpoints side by side.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophadmin/internal/logging"
	"github.com/dmitrijs2005/gophadmin/internal/server/config"
	"github.com/dmitrijs2005/gophadmin/internal/server/httpapi"
	"github.com/dmitrijs2005/gophadmin/internal/server/metrics"
	"github.com/dmitrijs2005/gophadmin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophadmin/internal/server/services"

	gs "github.com/dmitrijs2005/gophadmin/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	metrics     *metrics.Metrics
}

// NewApp opens and migrates the database and makes sure the seeded
// administrator exists.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	m := repomanager.NewSQLiteRepositoryManager()

	db, err := m.OpenDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := services.NewUserService(db, m, c)
	created, err := us.Seed(ctx, c.SeedEmail, c.SeedPassword)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed administrator: %w", err)
	}
	if created {
		logger.Info(ctx, "Seeded administrator", "email", c.SeedEmail)
	}

	return &App{config: c, logger: logger, db: db, userService: us, metrics: metrics.New()}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runner is either transport server.
type runner interface {
	Run(ctx context.Context) error
}

func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves until a signal arrives, ctx is done, or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	runners := map[string]runner{}
	if app.config.EndpointAddrGRPC != "" {
		runners["grpc"] = gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.metrics, app.config.SecretKey)
	}
	if app.config.EndpointAddrHTTP != "" {
		runners["http"] = httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.userService, app.metrics, app.config.SecretKey)
	}

	var wg sync.WaitGroup
	for name, r := range runners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.start(ctx, cancelFunc, name, r)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "close database", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
