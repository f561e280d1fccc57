// Command api serves the Lemon task API.
//
// @title                       Lemon Task API
// @version                     1.0
// @description                 Multi-tenant task API with JWT authentication and ownership-based authorization.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lemon/task-api/internal/api"
	"github.com/lemon/task-api/internal/core/ports"
	"github.com/lemon/task-api/internal/core/service"
	"github.com/lemon/task-api/internal/infrastructure/config"
	"github.com/lemon/task-api/internal/infrastructure/db/memory"
	mongodb "github.com/lemon/task-api/internal/infrastructure/db/mongo"
	redisdb "github.com/lemon/task-api/internal/infrastructure/db/redis"
	"github.com/lemon/task-api/internal/infrastructure/http/handlers"
	"github.com/lemon/task-api/internal/infrastructure/queue"
	"github.com/lemon/task-api/internal/infrastructure/security"
	"github.com/lemon/task-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "task-api: %v\n", err)
		os.Exit(1)
	}
}

// stores holds the storage-backed collaborators chosen at startup.
type stores struct {
	accounts  ports.AccountRepository
	tasks     ports.TaskRepository
	audit     ports.AuditRepository
	readiness []handlers.Dependency

	mongo *mongo.Client
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-api",
	})

	hasher, err := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := security.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(log)

	// --- Registration guard (optional) ---
	var guard ports.RegistrationGuard
	if cfg.Redis.Addr != "" {
		rdb, registrationGuard, err := redisdb.Open(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer closeRedis(rdb, log)
		guard = registrationGuard
		st.readiness = append(st.readiness, handlers.RedisDependency(rdb))
	}

	// --- Audit trail ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var audit ports.AuditRecorder = ports.NopAuditRecorder{}
	var dispatcher *queue.AuditDispatcher
	if st.audit != nil {
		dispatcher = queue.NewAuditDispatcher(cfg.Audit.Workers, st.audit, log)
		dispatcher.Start(workerCtx)
		audit = dispatcher
	}

	// --- Services ---
	authService := service.NewAuthService(st.accounts, hasher, tokens, guard, audit, log)
	if cfg.Auth.AdminUsername != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			return err
		}
		if !created {
			log.Info().Str("username", cfg.Auth.AdminUsername).Msg("admin account already present")
		}
	}

	e := api.NewRouter(api.Deps{
		AuthService:    authService,
		Resolver:       service.NewIdentityResolver(tokens, st.accounts),
		TaskService:    service.NewTaskService(st.tasks, st.accounts, audit, log),
		AccountService: service.NewAccountService(st.accounts, hasher, audit, log),
		Readiness:      st.readiness,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	// Requests are drained; flush what is left of the audit trail.
	cancelWorkers()
	if dispatcher != nil {
		dispatcher.Wait()
	}

	log.Info().Msg("shutdown complete")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Mongo.URI == "" {
		log.Warn().Msg("MONGO_URI not set, using in-memory store; data is lost on restart")
		return &stores{
			accounts: memory.NewAccountRepository(),
			tasks:    memory.NewTaskRepository(),
		}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}

	accounts := mongodb.NewAccountRepository(db)
	tasks := mongodb.NewTaskRepository(db)
	audit := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, accounts, tasks, audit); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &stores{
		accounts:  accounts,
		tasks:     tasks,
		audit:     audit,
		readiness: []handlers.Dependency{handlers.MongoDependency(db)},
		mongo:     client,
	}, nil
}

func (s *stores) close(log zerolog.Logger) {
	if s.mongo == nil {
		return
	}
	if err := s.mongo.Disconnect(context.Background()); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
}

func closeRedis(rdb *goredis.Client, log zerolog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
}
