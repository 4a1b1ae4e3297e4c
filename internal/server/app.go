// Package server wires and runs the messagely processes: the API server
// (HTTP API, gRPC health, notification dispatcher) and the notifier that
// drains the RabbitMQ queue.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/config"
	"github.com/dmitrijs2005/messagely/internal/server/health"
	"github.com/dmitrijs2005/messagely/internal/server/httpapi"
	"github.com/dmitrijs2005/messagely/internal/server/notify"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/messagely/internal/server/services"
	"github.com/jmoiron/sqlx"
)

const (
	healthProbeInterval = 10 * time.Second
	drainTimeout        = 15 * time.Second
	notifierPrefetch    = 10
)

// seams for tests
var (
	openDB      = dbx.Open
	newRabbitMQ = func(url, queue string, logger logging.Logger) (rabbitQueue, error) {
		return notify.NewRabbitMQ(url, queue, logger)
	}
)

type rabbitQueue interface {
	notify.Sender
	Consume(ctx context.Context, prefetch int, handle func(context.Context, notify.Job) error) error
	Close() error
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sqlx.DB
	dispatcher *notify.Dispatcher
	closers    []io.Closer
}

// NewApp connects to the database, applies migrations and builds the
// notification stack selected by the config.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, c.LogFormat, os.Stdout)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	deadLetter, err := newDeadLetter(ctx, c, logger)
	if err != nil {
		_ = app.close()
		return nil, err
	}

	var sender notify.Sender
	if c.NotifyTransport == config.TransportRabbitMQ {
		q, err := newRabbitMQ(c.RabbitMQURL, c.RabbitMQQueue, logger)
		if err != nil {
			_ = app.close()
			return nil, err
		}
		app.closers = append(app.closers, q)
		sender = q
	} else {
		sender = newSMSSender(c, logger)
	}

	app.dispatcher = notify.NewDispatcher(sender, deadLetter, logger, notifyOptions(c))
	return app, nil
}

func notifyOptions(c *config.Config) notify.Options {
	return notify.Options{
		QueueSize:  c.NotifyQueueSize,
		Workers:    c.NotifyWorkers,
		MaxRetries: c.NotifyMaxRetries,
		Timeout:    c.NotifyTimeout,
	}
}

// newSMSSender uses Twilio when an account is configured and logs the SMS
// otherwise.
func newSMSSender(c *config.Config, logger logging.Logger) notify.Sender {
	if c.TwilioAccountSID == "" {
		logger.Warn(context.Background(), "TWILIO_SID not set, SMS will only be logged")
		return notify.NewLogSender(logger, c.TwilioToNumber)
	}
	return notify.NewTwilioSender(c.TwilioAccountSID, c.TwilioAuthToken, c.TwilioFromNumber, c.TwilioToNumber)
}

func newDeadLetter(ctx context.Context, c *config.Config, logger logging.Logger) (notify.DeadLetter, error) {
	if c.S3Bucket == "" {
		return notify.NewLogDeadLetter(logger), nil
	}
	dl, err := notify.NewS3DeadLetter(ctx, notify.S3Settings{
		User:     c.S3RootUser,
		Password: c.S3RootPassword,
		Bucket:   c.S3Bucket,
		Region:   c.S3Region,
		Endpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("dead letter init error: %w", err)
	}
	return dl, nil
}

func initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the HTTP API and the health service until a signal arrives
// or one of them fails, then drains the notification queue.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	initSignalHandler(cancelFunc)

	// workers outlive ctx so Close can drain what is already queued
	app.dispatcher.Start(context.WithoutCancel(ctx))

	rm := repomanager.NewPostgresRepositoryManager()
	us := services.NewUserService(app.db, rm, app.config)
	ms := services.NewMessageService(app.db, rm, app.dispatcher)

	h := httpapi.NewHandler(us, ms, app.db, app.dispatcher.Stats, app.logger)
	httpServer := httpapi.NewServer(app.config.HTTPAddr, httpapi.NewRouter(h, app.config.RequestTimeout), app.logger)
	healthServer := health.NewServer(app.config.GRPCHealthAddr, app.db, healthProbeInterval, app.logger)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				app.logger.Error(ctx, "server stopped with error", "server", name, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancelFunc()
			}
		}()
	}
	run("http", httpServer.Run)
	run("grpc_health", healthServer.Run)

	wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := app.dispatcher.Close(drainCtx); err != nil {
		app.logger.Warn(ctx, "notification queue not drained", "error", err, "stats", app.dispatcher.Stats())
	}

	app.logger.Info(ctx, "App stopped", "notifications", app.dispatcher.Stats())
	errs = append(errs, app.close())
	return errors.Join(errs...)
}

// RunNotifier consumes queued jobs and delivers them through the SMS
// provider with the dispatcher's retry and dead-letter policy.
func RunNotifier(ctx context.Context, c *config.Config) error {
	logger := logging.New(c.LogLevel, c.LogFormat, os.Stdout).With("process", "notifier")

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	initSignalHandler(cancelFunc)

	deadLetter, err := newDeadLetter(ctx, c, logger)
	if err != nil {
		return err
	}

	q, err := newRabbitMQ(c.RabbitMQURL, c.RabbitMQQueue, logger)
	if err != nil {
		return err
	}
	defer q.Close()

	d := notify.NewDispatcher(newSMSSender(c, logger), deadLetter, logger, notifyOptions(c))

	logger.Info(ctx, "Starting notifier...", "queue", c.RabbitMQQueue)
	err = q.Consume(ctx, notifierPrefetch, d.Handle)
	logger.Info(ctx, "Notifier stopped", "notifications", d.Stats())
	return err
}

func (app *App) close() error {
	var errs []error
	for _, c := range app.closers {
		errs = append(errs, c.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}
