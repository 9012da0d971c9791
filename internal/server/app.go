// Package server initializes and runs the expensekeeper server. It loads
// secret material, selects the identity store, and runs the HTTP API and the
// gRPC session verifier until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/expensekeeper/internal/cryptox"
	"github.com/dmitrijs2005/expensekeeper/internal/logging"
	"github.com/dmitrijs2005/expensekeeper/internal/server/auth"
	"github.com/dmitrijs2005/expensekeeper/internal/server/config"
	"github.com/dmitrijs2005/expensekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/expensekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/expensekeeper/internal/server/secrets"
	"github.com/dmitrijs2005/expensekeeper/internal/server/services"

	gs "github.com/dmitrijs2005/expensekeeper/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	tokens      *auth.TokenService
	gate        *auth.Gate
	userService *services.UserService
}

// openDB is a seam for tests.
var openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewApp validates secret material and wires storage and services. A
// configuration error is returned before anything is started.
func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	ctx := context.Background()

	material, err := secrets.Load(c)
	if err != nil {
		return nil, err
	}

	codec, err := cryptox.NewEmailCodec(material.EmailKey())
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenService(material.SigningKey())

	gate, err := auth.NewGate(tokens, c.LoginPath, c.AppPath)
	if err != nil {
		return nil, err
	}

	if err := auth.PrepareDummyDigest(); err != nil {
		return nil, err
	}

	var (
		db *sql.DB
		rm repomanager.RepositoryManager
	)
	if c.DatabaseDSN == config.DatabaseInMemory {
		logger.Warn(ctx, "using in-memory identity store")
		rm = repomanager.NewInMemoryRepositoryManager()
	} else {
		db, err = openDB(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
	}

	us := services.NewUserService(db, rm, codec, tokens, c.AllowedEmailDomains, logger)

	return &App{config: c, logger: logger, db: db, tokens: tokens, gate: gate, userService: us}, nil
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.tokens)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	api := httpapi.NewAPI(app.userService, app.gate, app.config.IsProduction(), app.logger)
	handler := api.Router(http.FileServer(http.Dir(app.config.WebRoot)))

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, handler, app.config.ShutdownTimeout, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err.Error())
		}
	}

	app.logger.Info(ctx, "App stopped")
}
