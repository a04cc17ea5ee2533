// Command server runs the EventLift account onboarding and verification
// service. main wires dependencies and the process lifecycle; business
// logic lives in the internal services.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"eventlift/internal/audit"
	"eventlift/internal/document"
	"eventlift/internal/email"
	"eventlift/internal/identity/password"
	identitysvc "eventlift/internal/identity/service"
	identitystore "eventlift/internal/identity/store"
	"eventlift/internal/jwttoken"
	"eventlift/internal/platform/config"
	"eventlift/internal/platform/httpserver"
	"eventlift/internal/platform/logger"
	"eventlift/internal/platform/metrics"
	platformredis "eventlift/internal/platform/redis"
	"eventlift/internal/profile"
	registrationsvc "eventlift/internal/registration/service"
	registrationstore "eventlift/internal/registration/store"
	httptransport "eventlift/internal/transport/http"
	"eventlift/internal/verification"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	identities, closeDB, err := buildIdentityStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	pending, closeRedis, err := buildPendingStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeRedis()

	auditStore := audit.NewInMemoryStore()
	auditQueue := audit.NewQueue(auditStore, 256)
	auditWorker := audit.NewWorker(auditStore, auditQueue.Inbox())
	publisher := audit.NewPublisher(auditQueue)

	hasher := password.NewHasher()
	identitySvc, err := identitysvc.New(identities, pending, hasher, publisher, m, log)
	if err != nil {
		return err
	}

	sender := email.NewLogSender(log)
	registrationSvc, err := registrationsvc.New(pending, identities, identitySvc, sender, m, log)
	if err != nil {
		return err
	}

	projector := profile.NewProjector(profile.NewInMemory())
	verificationSvc, err := verification.New(identities, projector, publisher, m, log)
	if err != nil {
		return err
	}

	gate := document.NewGate(identities, pending)
	tokens := jwttoken.New(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)

	router := httptransport.New(httptransport.Router{
		Auth:      httptransport.NewAuthHandler(registrationSvc, identitySvc, tokens, log),
		Admin:     httptransport.NewAdminHandler(verificationSvc, identitySvc, log),
		Files:     httptransport.NewFileHandler(gate, log),
		Validator: tokens,
		Metrics:   m,
		Logger:    log,
	})
	srv := httpserver.New(cfg.Addr, router)

	reaper := registrationsvc.NewReaper(pending, cfg.ReaperInterval, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting eventlift server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return auditWorker.Run(ctx)
	})
	g.Go(func() error {
		return reaper.Run(ctx)
	})

	return g.Wait()
}

func buildIdentityStore(cfg config.Config, log *slog.Logger) (identitystore.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		log.Info("using in-memory identity store")
		return identitystore.NewInMemory(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if _, err := db.Exec(identitystore.Schema()); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Info("using postgres identity store")
	return identitystore.NewPostgres(db), func() { _ = db.Close() }, nil
}

func buildPendingStore(cfg config.Config, log *slog.Logger) (registrationstore.Store, func(), error) {
	client, err := platformredis.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Info("using in-memory pending registration store")
		return registrationstore.NewInMemory(), func() {}, nil
	}
	log.Info("using redis pending registration store")
	return registrationstore.NewRedis(client.Client), func() { _ = client.Close() }, nil
}
