package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/cinex/cinema-ticketing/internal/booking"
	"github.com/cinex/cinema-ticketing/internal/cache"
	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/cinex/cinema-ticketing/internal/events"
	"github.com/cinex/cinema-ticketing/internal/mailer"
	"github.com/cinex/cinema-ticketing/internal/payment"
	"github.com/cinex/cinema-ticketing/internal/repository"
	appvalidator "github.com/cinex/cinema-ticketing/internal/validator"
	"github.com/cinex/cinema-ticketing/internal/vcs"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "cinema-ticketing-api"

var (
	version = vcs.Version()
)

// EventPublisher is a booking event sink that holds a connection.
type EventPublisher interface {
	booking.EventPublisher
	Close() error
}

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager
	seatMapCache   *cache.SeatMapCache
	publisher      EventPublisher
	wg             sync.WaitGroup

	userRepo     domain.UserRepository
	movieRepo    domain.MovieRepository
	showtimeRepo domain.ShowtimeRepository
	bookingRepo  domain.BookingRepository
	paymentRepo  domain.PaymentRepository

	concessionRepo domain.ConcessionRepository

	seatBooker      domain.SeatBooker
	canceller       domain.BookingCanceller
	paymentProvider domain.PaymentProvider

	now func() time.Time
}

func Run() error {
	envErr := godotenv.Load()

	cfg, displayVersion, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	app := &Application{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		now:    time.Now,
	}

	if envErr != nil {
		app.logger.Info("no .env file found, using process environment")
	}

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	app.logger = slog.New(NewMultiHandler(
		slog.NewTextHandler(os.Stdout, nil),
		otelslog.NewHandler(serviceName),
	))

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher, err := newEventPublisher(cfg, app.logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	app.wire(db, redisClient, mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender), publisher)

	return app.run()
}

// NewApp builds an Application on top of already opened connections. The
// caller keeps ownership of db, redisClient and publisher.
func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient *redis.Client,
	mail mailer.Mailer,
	publisher EventPublisher) *Application {

	app := &Application{
		config: cfg,
		logger: logger,
		now:    time.Now,
	}

	app.wire(db, redisClient, mail, publisher)

	return app
}

func (app *Application) wire(db *pgxpool.Pool, redisClient *redis.Client, mail mailer.Mailer, publisher EventPublisher) {
	cfg := app.config

	app.db = db
	app.redis = redisClient
	app.validator = appvalidator.NewValidator()
	app.mailer = mail
	app.sessionManager = NewSessionManager(redisClient)
	app.seatMapCache = cache.NewSeatMapCache(redisClient, cfg.Redis.SeatMapTTL)
	app.publisher = publisher

	app.userRepo = repository.NewPostgresUserRepository(db)
	app.movieRepo = repository.NewPostgresMovieRepository(db)
	app.showtimeRepo = repository.NewPostgresShowtimeRepository(db)
	app.bookingRepo = repository.NewPostgresBookingRepository(db)
	app.paymentRepo = repository.NewPostgresPaymentRepository(db)
	app.concessionRepo = repository.NewPostgresConcessionRepository(db)
	app.paymentProvider = payment.NewSimulatedProvider()

	opts := []booking.Option{
		booking.WithLogger(app.logger),
		booking.WithMaxAttempts(cfg.Booking.MaxAttempts),
		booking.WithCancellationCutoff(cfg.Booking.CancellationCutoff),
		booking.WithSeatMapCache(app.seatMapCache),
		booking.WithPublisher(publisher),
	}

	app.seatBooker = booking.NewBookingService(app.showtimeRepo, app.bookingRepo, opts...)
	app.canceller = booking.NewCancellationService(app.showtimeRepo, app.bookingRepo, opts...)
}

// Wait blocks until background tasks such as emails are done.
func (app *Application) Wait() {
	app.wg.Wait()
}

func newEventPublisher(cfg Config, logger *slog.Logger) (EventPublisher, error) {
	if cfg.RabbitMQ.Url == "" {
		logger.Info("RabbitMQ URL not set, booking events will only be logged")
		return events.LogPublisher{Logger: logger}, nil
	}

	return events.NewRabbitPublisher(cfg.RabbitMQ.Url)
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Url,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb)); err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		app.logger.Info("completing background tasks", "addr", srv.Addr)

		app.wg.Wait()
		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

// background runs fn after the response has been written. The request's
// values, including its logger and trace, stay available to fn.
func (app *Application) background(r *http.Request, fn func(ctx context.Context, logger *slog.Logger)) {
	ctx := context.WithoutCancel(r.Context())
	logger := app.contextGetLogger(r)

	app.wg.Add(1)

	go func() {
		defer app.wg.Done()

		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic in background task", "panic", fmt.Sprint(err))
			}
		}()

		fn(ctx, logger)
	}()
}
