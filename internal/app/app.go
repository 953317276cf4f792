package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"turnping/internal/cache"
	"turnping/internal/config"
	"turnping/internal/memory"
	"turnping/internal/repository"
	"turnping/internal/service"
	"turnping/internal/storage"
)

// App holds the wired dependencies shared by the binaries
type App struct {
	Store      *storage.Hybrid
	TurnEvents cache.TurnEvents // nil without Redis
	Games      *service.GameService

	closers []func()
}

// New connects the configured backends. Unreachable servers are logged,
// not fatal: the Hybrid store falls back on the first failed call.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{}

	var durable storage.Store
	if cfg.MongoURI != "" {
		client, err := mongo.Connect(ctx, options.Client().
			ApplyURI(cfg.MongoURI).
			SetServerSelectionTimeout(cfg.MongoServerSelectionTimeout))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { client.Disconnect(context.Background()) })

		pingCtx, cancel := context.WithTimeout(ctx, cfg.MongoServerSelectionTimeout)
		if err := client.Ping(pingCtx, nil); err != nil {
			log.Warn("MongoDB ping failed", zap.Error(err))
		} else {
			log.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))
		}
		cancel()

		repo := repository.NewStore(client.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn("failed to ensure indexes", zap.Error(err))
		}
		durable = repo
	} else {
		log.Warn("MONGO_URI not set, using in-memory storage")
	}
	a.Store = storage.NewHybrid(durable, memory.NewStore(), log)

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, func() { rdb.Close() })

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Warn("Redis ping failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
		}
		a.TurnEvents = cache.NewTurnEvents(rdb, log)
		notifier = a.TurnEvents
	} else {
		log.Warn("REDIS_ADDR not set, turn events disabled")
	}

	a.Games = service.NewGameService(a.Store, notifier, log)
	return a, nil
}

// Close releases connections in reverse order
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
