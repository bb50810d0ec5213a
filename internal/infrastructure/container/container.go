// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	planapp "github.com/fitforge/v1/internal/application/plan"
	userapp "github.com/fitforge/v1/internal/application/user"
	"github.com/fitforge/v1/internal/domain/moderation"
	"github.com/fitforge/v1/internal/infrastructure/ai/ollama"
	"github.com/fitforge/v1/internal/infrastructure/ai/openai"
	"github.com/fitforge/v1/internal/infrastructure/config"
	"github.com/fitforge/v1/internal/infrastructure/http/handlers"
	"github.com/fitforge/v1/internal/infrastructure/http/server"
	gormRepo "github.com/fitforge/v1/internal/infrastructure/persistence/gorm"
	"github.com/fitforge/v1/internal/infrastructure/persistence/memory"
	"github.com/fitforge/v1/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/fitforge/v1/internal/infrastructure/persistence/redis"
	"github.com/fitforge/v1/internal/infrastructure/persistence/sqlite"
	"github.com/fitforge/v1/internal/ports/inbound"
	"github.com/fitforge/v1/internal/ports/outbound"
	"github.com/fitforge/v1/pkg/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	RepositoryModule,
	AIModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the GORM connection for the configured driver
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		logLevel := gormLogger.Silent
		if cfg.App.Debug {
			logLevel = gormLogger.Info
		}

		switch cfg.Database.Driver {
		case "postgres":
			db, err := postgres.SetupDatabase(cfg, logLevel)
			if err != nil {
				return nil, fmt.Errorf("failed to setup Postgres database: %w", err)
			}
			log.Info("Connected to Postgres database",
				zap.String("host", cfg.Database.Host),
				zap.String("database", cfg.Database.Database),
			)
			return db, nil
		default:
			dbPath := ":memory:"
			if cfg.Database.Database != "" && cfg.Database.Database != "fitforge" {
				dbPath = cfg.Database.Database + ".db"
			}
			db, err := sqlite.SetupDatabase(dbPath, logLevel)
			if err != nil {
				return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
			}
			log.Info("Connected to SQLite database",
				zap.String("path", dbPath),
				zap.Bool("in_memory", dbPath == ":memory:"),
			)
			return db, nil
		}
	},
)

// CacheModule provides caching, Redis when configured and in-memory otherwise
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.CacheRepository {
		if cfg.IsProduction() {
			client := redisRepo.NewClient(cfg)
			log.Info("Using Redis cache", zap.String("addr", cfg.RedisAddr()))
			return redisRepo.NewCacheRepository(client, log)
		}
		log.Info("Using in-memory cache")
		return memory.NewCacheRepository()
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewUserRepository,
	gormRepo.NewConversationRepository,
)

// AIModule provides the completion client for the configured provider
var AIModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.CompletionClient {
		switch cfg.AI.Provider {
		case "ollama":
			log.Info("Using Ollama completion client", zap.String("model", cfg.AI.OllamaModel))
			return ollama.NewClient(cfg.AI, log)
		default:
			log.Info("Using OpenAI completion client", zap.String("model", cfg.AI.OpenAIModel))
			return openai.NewClient(cfg.AI, log)
		}
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(
		userRepo outbound.UserRepository,
		cache outbound.CacheRepository,
		cfg *config.Config,
		log *zap.Logger,
	) *userapp.UserService {
		jwtSecret := cfg.Auth.JWTSecret
		if jwtSecret == "" {
			jwtSecret = "dev-secret-key"
		}
		return userapp.NewUserService(userRepo, cache, jwtSecret, log)
	},

	func(conversations outbound.ConversationRepository, log *zap.Logger) *planapp.HistoryStore {
		return planapp.NewHistoryStore(conversations, log)
	},

	func(userRepo outbound.UserRepository, cfg *config.Config, log *zap.Logger) *planapp.ModerationGate {
		return planapp.NewModerationGate(userRepo, moderation.Policy{
			MistakeThreshold: cfg.Moderation.MistakeThreshold,
			BanBaseMinutes:   cfg.Moderation.BanBaseMinutes,
		}, log)
	},

	func(cfg *config.Config) *planapp.CooldownGuard {
		return planapp.NewCooldownGuard(cfg.Cooldown.RegenerateWindow)
	},

	func(history *planapp.HistoryStore, gate *planapp.ModerationGate, log *zap.Logger) *planapp.Persister {
		return planapp.NewPersister(history, gate, log)
	},

	func(
		userRepo outbound.UserRepository,
		conversations outbound.ConversationRepository,
		llm outbound.CompletionClient,
		history *planapp.HistoryStore,
		gate *planapp.ModerationGate,
		cooldown *planapp.CooldownGuard,
		persister *planapp.Persister,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.PlanService {
		return planapp.NewService(userRepo, conversations, llm, history, gate, cooldown, persister, cfg.AI.Timeout, log)
	},
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	handlers.NewAPIHandlers,
	server.NewAPIServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	srv *server.APIServer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting FitForge",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("Failed to start HTTP server", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down FitForge")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			sqlDB, err := db.DB()
			if err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("Failed to close database connection", zap.Error(err))
				}
			}

			_ = log.Sync()

			return nil
		},
	})
}
