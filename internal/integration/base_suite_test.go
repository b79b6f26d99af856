package integration_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cinex/cinema-ticketing/internal/app"
	"github.com/cinex/cinema-ticketing/internal/events"
	"github.com/cinex/cinema-ticketing/internal/mailer"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

const (
	dbName         = "cinema_ticketing"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"
)

type TestApp struct {
	App    *app.Application
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Mailer *mailer.MockMailer
}

type BaseSuite struct {
	suite.Suite
	app            *TestApp
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	s.Require().NoError(err, "failed to start db container")
	s.dbContainer = postgresContainer

	redisContainer, err := getCacheContainer(ctx)
	s.Require().NoError(err, "failed to start cache container")
	s.cacheContainer = redisContainer

	cfg := app.Config{
		Port: 3000,
		Env:  "test",
	}
	cfg.DB.DSN = postgresContainer.ConnectionString
	cfg.DB.MaxOpenConns = 25
	cfg.DB.MaxIdleTime = 2 * time.Minute
	cfg.Redis.Url = redisContainer.ConnectionString
	cfg.Redis.MaxOpenConns = 10
	cfg.Redis.MaxIdleConns = 10
	cfg.Redis.MaxIdleTime = 2 * time.Minute
	cfg.Redis.SeatMapTTL = time.Minute
	cfg.Booking.MaxAttempts = 10
	cfg.Booking.CancellationCutoff = time.Hour

	db, err := app.NewDatabasePool(cfg)
	s.Require().NoError(err, "cannot connect to db")

	redisClient, err := app.NewRedisClient(cfg)
	s.Require().NoError(err, "cannot connect to redis")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	mockMailer := mailer.NewMockMailer()

	s.app = &TestApp{
		App:    app.NewApp(cfg, logger, db, redisClient, mockMailer, events.LogPublisher{Logger: logger}),
		DB:     db,
		Redis:  redisClient,
		Mailer: mockMailer,
	}
}

func (s *BaseSuite) TearDownSuite() {
	if s.app != nil {
		s.app.App.Wait()
		s.app.DB.Close()
		s.app.Redis.Close()
	}

	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container); err != nil {
			s.T().Logf("failed to terminate container: %s", err)
		}
	}

	if s.cacheContainer != nil {
		if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
			s.T().Logf("failed to terminate container: %s", err)
		}
	}
}

type Scenario struct {
	Name             string
	Method           string
	URL              string
	Body             io.Reader
	Headers          map[string]string
	Cookies          func(t testing.TB, app *TestApp) []*http.Cookie
	ExpectedStatus   int
	ExpectedResponse string
	BeforeTestFunc   func(t testing.TB, app *TestApp)
	AfterTestFunc    func(t testing.TB, app *TestApp, res *http.Response)
}

func (s Scenario) Run(t *testing.T, testApp *TestApp) {
	t.Run(s.Name, func(t *testing.T) {
		if s.BeforeTestFunc != nil {
			s.BeforeTestFunc(t, testApp)
		}

		var cookies []*http.Cookie
		if s.Cookies != nil {
			cookies = s.Cookies(t, testApp)
		}

		req := prepareRequest(s.Method, s.URL, s.Body, s.Headers, cookies)

		rec := httptest.NewRecorder()
		testApp.App.Routes().ServeHTTP(rec, req)

		res := rec.Result()
		defer res.Body.Close()

		assert.Equal(t, s.ExpectedStatus, res.StatusCode)

		if s.ExpectedResponse != "" {
			compareResponse(t, res.Body, s.ExpectedResponse)
		}

		if s.AfterTestFunc != nil {
			s.AfterTestFunc(t, testApp, res)
		}
	})
}

// as logs the given user in and returns the session cookies.
func as(email string) func(t testing.TB, app *TestApp) []*http.Cookie {
	return func(t testing.TB, app *TestApp) []*http.Cookie {
		return login(t, app, email, TestPassword)
	}
}

func login(t testing.TB, testApp *TestApp, email, password string) []*http.Cookie {
	body := fmt.Sprintf(`{"email": %q, "password": %q}`, email, password)
	req := prepareRequest(http.MethodPost, "/sessions", strings.NewReader(body), nil, nil)

	rec := httptest.NewRecorder()
	testApp.App.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code, "login failed: %s", rec.Body.String())

	return rec.Result().Cookies()
}
