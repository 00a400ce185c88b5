package calshare

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/calshare/internal/calshare/biz"
	"github.com/kart-io/calshare/internal/calshare/handler"
	"github.com/kart-io/calshare/internal/calshare/router"
	"github.com/kart-io/calshare/internal/calshare/store"
	"github.com/kart-io/calshare/pkg/app"
	"github.com/kart-io/calshare/pkg/db"
	"github.com/kart-io/calshare/pkg/mongodb"
	sessionopts "github.com/kart-io/calshare/pkg/options/session"
	"github.com/kart-io/calshare/pkg/redis"
	"github.com/kart-io/calshare/pkg/resilience"
	"github.com/kart-io/calshare/pkg/session"
)

// NewApp creates the calshare-apiserver application.
func NewApp(name string) *app.App {
	opts := NewOptions()
	return app.NewApp(
		app.WithName(name),
		app.WithDescription("Calendar sharing API server: calendars, events, "+
			"fine-grained permission grants and an audited enforcement layer."),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return run(opts)
		}),
	)
}

func run(opts *Options) error {
	if err := opts.Log.Init(); err != nil {
		return err
	}
	gin.SetMode(opts.HTTP.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Relational store.
	gormDB, err := db.New(opts.DB)
	if err != nil {
		return err
	}
	factory := store.NewFactory(gormDB)
	if err := factory.AutoMigrate(); err != nil {
		return err
	}
	defer func() { _ = factory.Close() }()
	logger.Infow("Connected database", "driver", opts.DB.Driver)

	monitoring := biz.NewMonitoringService()
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	monitoring.Register("database", func(ctx context.Context) error {
		return sqlDB.PingContext(ctx)
	}, resilience.DefaultBreakerOptions())

	// Session store.
	sessions, cleanup, err := buildSessionStore(ctx, opts, monitoring)
	if err != nil {
		return err
	}
	defer cleanup()

	// Audit sinks: relational always available, MongoDB when configured.
	sinks := []store.AuditStore{}
	if opts.Audit.PersistToDB {
		sinks = append(sinks, factory.Audits())
	}
	if opts.Mongo.Enabled() {
		mongoClient, err := mongodb.New(ctx, opts.Mongo)
		if err != nil {
			return err
		}
		defer func() { _ = mongoClient.Close(context.Background()) }()
		sinks = append(sinks, store.NewMongoAuditStore(mongoClient))
		monitoring.Register("mongodb", mongoClient.Ping, resilience.DefaultBreakerOptions())
		logger.Infow("Connected MongoDB audit sink", "database", opts.Mongo.Database)
	}

	audit, err := biz.NewAuditService(opts.Audit, sinks...)
	if err != nil {
		return err
	}
	defer audit.Close()

	perms := biz.NewPermissionService(factory, audit)
	auth := biz.NewAuthService(factory, sessions, audit, opts.Session.TTL)
	users := biz.NewUserService(factory)
	orgs := biz.NewOrganizationService(factory)
	calendars := biz.NewCalendarService(factory, audit)
	events := biz.NewEventService(factory, perms, audit)

	engine := router.New(router.Deps{
		Sessions:      sessions,
		CookieName:    opts.Session.CookieName,
		Auth:          handler.NewAuthHandler(auth, opts.Session.CookieName),
		Users:         handler.NewUserHandler(users),
		Organizations: handler.NewOrganizationHandler(orgs),
		Calendars:     handler.NewCalendarHandler(calendars, perms),
		Events:        handler.NewEventHandler(events),
		Audit:         handler.NewAuditHandler(audit),
		Monitoring:    handler.NewMonitoringHandler(monitoring),
		Evaluator:     perms,
		Auditor:       audit,
	})

	server := &http.Server{
		Addr:         opts.HTTP.Addr,
		Handler:      engine,
		ReadTimeout:  opts.HTTP.ReadTimeout,
		WriteTimeout: opts.HTTP.WriteTimeout,
		IdleTimeout:  opts.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", opts.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infow("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("HTTP server shutdown failed", "error", err.Error())
		return err
	}
	return nil
}

// buildSessionStore creates the configured session backend and returns a
// cleanup function.
func buildSessionStore(ctx context.Context, opts *Options, monitoring *biz.MonitoringService) (session.Store, func(), error) {
	switch opts.Session.Backend {
	case sessionopts.BackendRedis:
		client, err := redis.New(ctx, opts.Redis)
		if err != nil {
			return nil, nil, err
		}
		monitoring.Register("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}, resilience.DefaultBreakerOptions())
		logger.Infow("Using Redis session store", "addr", opts.Redis.Addr())
		return session.NewRedisStore(client), func() { _ = client.Close() }, nil

	default:
		mem := session.NewMemoryStore()
		if opts.Session.SweepInterval > 0 {
			mem.StartSweeper(opts.Session.SweepInterval)
		}
		logger.Infow("Using in-memory session store")
		return mem, mem.Stop, nil
	}
}
