package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/evraklab-api/internal/application/auth"
	"github.com/jhoicas/evraklab-api/internal/application/document"
	"github.com/jhoicas/evraklab-api/internal/application/events"
	"github.com/jhoicas/evraklab-api/internal/application/invitation"
	"github.com/jhoicas/evraklab-api/internal/application/ports"
	"github.com/jhoicas/evraklab-api/internal/application/session"
	"github.com/jhoicas/evraklab-api/internal/application/team"
	"github.com/jhoicas/evraklab-api/internal/application/usecase"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/cache"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/memory"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/metrics"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/postgres"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/realtime"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/evraklab-api/internal/interfaces/http"
	"github.com/jhoicas/evraklab-api/pkg/config"
	"github.com/jhoicas/evraklab-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// persistence repositorios, transacciones y credenciales según STORAGE_DRIVER.
type persistence struct {
	repos repository.Repositories
	users repository.UserRepository
	tx    ports.TxRunner
	pool  *pgxpool.Pool // nil con el driver en memoria
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		App:   cfg.App.Name,
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openPersistence(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if store.pool != nil {
		defer store.pool.Close()
	}
	health := map[string]httpRouter.HealthCheck{}
	if store.pool != nil {
		health["database"] = store.pool.Ping
	}

	m := metrics.New()

	// Sesiones: caché de perfiles invalidada por eventos locales y, con Redis, por otras instancias.
	profileCache := cache.NewProfileCache(cfg.Session.CacheSize, cfg.Session.CacheTTL)
	m.RegisterGauge("evraklab_session_cache_entries", "Perfiles en la caché de sesiones.", func() float64 {
		return float64(profileCache.Len())
	})
	sessions := session.NewService(store.repos.Profiles, profileCache, log.Component("session"))

	var feed ports.ChangeFeed = realtime.NewLocalFeed()
	if cfg.Redis.URL != "" {
		client, err := realtime.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		feed = realtime.NewRedisFeed(client, log.Component("realtime"))
		health["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

		unwatch, err := sessions.Watch(ctx, feed)
		if err != nil {
			log.Fatal().Err(err).Msg("suscripción a cambios de perfiles")
		}
		defer unwatch()
	}
	emitter := events.NewEmitter(feed, sessions, log.Component("events"))

	var files ports.FileStore
	if cfg.S3.Bucket != "" {
		client, err := storage.NewS3Client(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente S3")
		}
		s3Store := storage.NewS3Store(client, cfg.S3)
		health["storage"] = s3Store.HealthCheck
		files = s3Store
	} else {
		log.Warn().Msg("S3_BUCKET vacío: archivos en memoria")
		files = memory.NewFileStore("memory://files")
	}

	invites := invitation.NewService(store.repos, store.tx, emitter, m, log.Component("invitations"))
	authUC := auth.NewAuthUseCase(store.users, store.repos.Profiles, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    51 << 20, // archivos premium hasta 50 MB más el formulario
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(httpRouter.Metrics(m))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "EvrakLab API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger no disponible (ejecuta swag init)")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		Documents:      document.NewService(store.repos, store.tx, files, emitter, m, log.Component("documents")),
		Team:           team.NewService(store.repos, invites, emitter, m, log.Component("team")),
		Invitations:    invites,
		NotificationUC: usecase.NewNotificationUseCase(store.repos.Notifications, log.Component("notifications")),
		ChatUC:         usecase.NewChatUseCase(store.repos, emitter, m, log.Component("chat")),
		AdminUC:        usecase.NewAdminUseCase(store.repos, store.tx, emitter, m, log.Component("admin")),
		Sessions:       sessions,
		JWTSecret:      cfg.JWT.Secret,
		MetricsHandler: m.Handler(),
		HealthChecks:   health,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()

	log.Info().Msg("aplicación detenida")
}

func openPersistence(ctx context.Context, cfg *config.Config, log *logger.Logger) (*persistence, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		s := memory.NewStore()
		return &persistence{repos: s.Repositories(), users: s.Users(), tx: s}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migrations")); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &persistence{
		repos: postgres.NewRepositories(pool),
		users: postgres.NewUserRepository(pool),
		tx:    postgres.NewTxRunner(pool),
		pool:  pool,
	}, nil
}
