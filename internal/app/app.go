// Package app wires configuration, storage, market data, the ledger feed and the
// use cases into one process.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	grpclib "google.golang.org/grpc"

	"github.com/simaogato/wealthtrack-backend/internal/adapter/amqp"
	grpcadapter "github.com/simaogato/wealthtrack-backend/internal/adapter/grpc"
	wealthtrackv1 "github.com/simaogato/wealthtrack-backend/internal/adapter/grpc/wealthtrack/v1"
	"github.com/simaogato/wealthtrack-backend/internal/adapter/repository/memory"
	"github.com/simaogato/wealthtrack-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthtrack-backend/internal/auth"
	"github.com/simaogato/wealthtrack-backend/internal/config"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/log"
	"github.com/simaogato/wealthtrack-backend/internal/marketdata"
	"github.com/simaogato/wealthtrack-backend/internal/scheduler"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/account"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/dashboard"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/expense"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/inflow"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/investment"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/seeder"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/snapshot"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/transfer"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/user"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/valuation"
)

// App holds every long-lived component of the process
type App struct {
	Config     *config.Config
	Logger     *log.Logger
	Store      domain.UnitOfWork
	MarketData domain.MarketData
	Publisher  domain.LedgerPublisher
	Tokens     *auth.Tokens
	Services   grpcadapter.Services

	db          *postgres.DB
	bootstrapID uuid.UUID
	closers     []func() error
}

// Option overrides a component New would otherwise build from config
type Option func(*App)

// WithMarketData replaces the HTTP market data client
func WithMarketData(md domain.MarketData) Option {
	return func(a *App) { a.MarketData = md }
}

// WithPublisher replaces the ledger feed publisher
func WithPublisher(p domain.LedgerPublisher) Option {
	return func(a *App) { a.Publisher = p }
}

// New builds the application from a validated configuration
// Logic:
//  1. Logger from LOG_LEVEL
//  2. Storage: Postgres (with migrations) or the in-memory store
//  3. Market data client behind a request-coalescing wrapper
//  4. AMQP publisher when AMQP_URL is set, otherwise a no-op
//  5. Tokens and use cases
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}

	// 1. Logger
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logConfig := log.DefaultConfig()
	logConfig.Level = level
	a.Logger = log.New(logConfig)
	log.SetDefault(a.Logger)

	// 2. Storage
	switch cfg.DataBackend {
	case config.BackendMemory:
		a.Logger.Warn("Using in-memory storage, data is lost on exit")
		a.Store = memory.NewStore()
	default:
		db, err := postgres.NewDB(cfg.DBConnStr)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := postgres.RunMigrations(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		a.db = db
		a.Store = postgres.NewStore(db)
	}

	// 3. Market data
	if a.MarketData == nil {
		a.MarketData = marketdata.NewCoalescing(marketdata.NewClient(marketdata.Config{
			PolygonAPIKey:   cfg.PolygonAPIKey,
			PolygonBaseURL:  cfg.PolygonBaseURL,
			ExchangeRateURL: cfg.ExchangeRateAPIURL,
			LocalCurrency:   cfg.LocalCurrency,
			Timeout:         cfg.MarketDataTimeout,
		}))
	}

	// 4. Ledger feed
	if a.Publisher == nil {
		if cfg.AMQPURL != "" {
			publisher, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, a.Logger)
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("failed to connect ledger feed: %w", err)
			}
			a.closers = append(a.closers, publisher.Close)
			a.Publisher = publisher
		} else {
			a.Logger.Info("Ledger feed disabled - no AMQP_URL provided")
			a.Publisher = domain.NopPublisher{}
		}
	}

	// 5. Use cases
	a.Tokens, err = auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Services = grpcadapter.Services{
		Users:      user.NewUserService(a.Store.Users(), a.Tokens, user.PasswordHasher{Hash: auth.HashPassword, Check: auth.CheckPassword}),
		Accounts:   account.NewAccountService(a.Store, a.MarketData, a.Publisher, a.Logger),
		Refresh:    valuation.NewRefreshService(a.Store, a.MarketData, a.Publisher, a.Logger, cfg.RefreshConcurrency),
		Transfers:  transfer.NewTransferService(a.Store, a.Publisher, a.Logger),
		Inflows:    inflow.NewInflowService(a.Store, a.Publisher, a.Logger),
		Expenses:   expense.NewExpenseService(a.Store, a.Publisher, a.Logger),
		Dashboard:  dashboard.NewDashboardService(a.Store.Accounts(), a.Store.Transactions()),
		Investment: investment.NewInvestmentService(a.Store.Accounts(), a.Store.Transactions()),
		Snapshots:  snapshot.NewSnapshotService(a.Store, a.Logger),
	}

	return a, nil
}

// DB returns the Postgres connection, nil on the memory backend
func (a *App) DB() *postgres.DB {
	return a.db
}

// Seed ensures the bootstrap user exists; trusted callers act as it
func (a *App) Seed(ctx context.Context) error {
	systemSeeder := seeder.NewSystemSeeder(a.Store.Users(), auth.HashPassword, seeder.BootstrapUser{
		Username: a.Config.BootstrapUsername,
		Password: a.Config.BootstrapPassword,
	})
	id, err := systemSeeder.Seed(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed bootstrap user: %w", err)
	}
	a.bootstrapID = id
	a.Logger.Info("Bootstrap user ready", "username", a.Config.BootstrapUsername, "user_id", id)
	return nil
}

// Jobs returns the periodic jobs: the daily stock refresh and the monthly snapshot
func (a *App) Jobs() []scheduler.Job {
	return []scheduler.Job{
		{
			Name: "daily-refresh",
			Spec: a.Config.DailyRefreshSchedule,
			Run: func(ctx context.Context) error {
				_, err := a.Services.Refresh.RefreshDaily(ctx)
				return err
			},
		},
		{
			Name: "monthly-snapshot",
			Spec: a.Config.MonthlySnapshotSchedule,
			Run: func(ctx context.Context) error {
				_, err := a.Services.Snapshots.SnapshotMonthlyTotal(ctx, a.Services.Snapshots.Now())
				return err
			},
		},
	}
}

// Scheduler builds the periodic job runner
func (a *App) Scheduler() *scheduler.Scheduler {
	return scheduler.New(a.Config.SchedulerLockFile, a.Logger, a.Jobs()...)
}

// NewGRPCServer builds the gRPC server with authentication. Seed must run first
// so trusted callers have a user to act as.
func (a *App) NewGRPCServer() (*grpclib.Server, error) {
	if a.bootstrapID == uuid.Nil {
		return nil, errors.New("bootstrap user not seeded")
	}
	networks, err := grpcadapter.ParseNetworks(a.Config.TrustedNetworks)
	if err != nil {
		return nil, err
	}

	grpcServer := grpclib.NewServer(
		grpclib.UnaryInterceptor(grpcadapter.AuthInterceptor(grpcadapter.AuthConfig{
			APIToken:        a.Config.APIToken,
			Tokens:          a.Tokens,
			TrustedNetworks: networks,
			TrustedUserID:   a.bootstrapID,
		})),
	)
	wealthtrackv1.RegisterWealthTrackServiceServer(grpcServer, grpcadapter.NewServer(a.Services))
	return grpcServer, nil
}

// Close releases connections in reverse order of creation
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
