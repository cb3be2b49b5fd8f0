// Package server initializes and runs the application: it opens the
// database, applies migrations, wires the calendar and reminder services,
// and serves the HTTP API until an OS signal stops it.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mberzonis/carelink/internal/common"
	"github.com/mberzonis/carelink/internal/cryptox"
	"github.com/mberzonis/carelink/internal/logging"
	"github.com/mberzonis/carelink/internal/server/calendar"
	"github.com/mberzonis/carelink/internal/server/config"
	"github.com/mberzonis/carelink/internal/server/httpapi"
	"github.com/mberzonis/carelink/internal/server/repositories/repomanager"
	"github.com/mberzonis/carelink/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	calendarService *services.CalendarTokenService
	reminderService *services.ReminderService
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	key := cryptox.DeriveSealKey([]byte(c.SecretKey), []byte(c.SealSalt))
	sealer, err := cryptox.NewSealer(key)
	common.WipeByteArray(key)
	if err != nil {
		return nil, fmt.Errorf("sealer init error: %w", err)
	}

	provider := calendar.NewGoogleProvider(calendar.GoogleConfig{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
		RedirectURL:  c.OAuthRedirectURL,
		Timeout:      c.ProviderTimeout,
	})

	cs := services.NewCalendarTokenService(db, rm, provider, sealer, logger)
	rs := services.NewReminderService(db, rm, services.NewLogNotifier(logger), logger, c.ReminderCheckInterval)

	return &App{config: c, logger: logger, db: db, calendarService: cs, reminderService: rs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.calendarService, app.reminderService,
		app.config.SecretKey, app.config.StateValidityDuration)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.reminderService.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
