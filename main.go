package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"travel-booking/cmd"
	"travel-booking/internal/data/memory"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/gateway"
	"travel-booking/internal/wire"
	"travel-booking/pkg/database"
	"travel-booking/pkg/lock"
	"travel-booking/pkg/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("storage", config.App.StorageDriver),
		zap.Bool("debug", config.App.Debug),
	)

	repos, closeStorage := openStorage(ctx, config, logger)
	defer closeStorage()

	locker := newLocker(ctx, config.Redis, logger)

	chapa := gateway.NewChapaClient(gateway.ChapaConfig{
		BaseURL:     config.Payment.BaseURL,
		SecretKey:   config.Payment.SecretKey,
		CallbackURL: config.Payment.CallbackURL,
		ReturnURL:   config.Payment.ReturnURL,
		Title:       config.Payment.Title,
		Description: config.Payment.Description,
		Timeout:     config.Payment.Timeout,
	}, logger)

	app := wire.Wiring(repos, chapa, locker, config, logger)

	if len(os.Args) > 1 && os.Args[1] == "seed" {
		opts, err := cmd.ParseSeedFlags(os.Args[2:])
		if err != nil {
			logger.Fatal("Invalid seed flags", zap.Error(err))
		}
		if err := cmd.Seed(ctx, app.Service, opts, logger); err != nil {
			logger.Fatal("Seed failed", zap.Error(err))
		}
		return
	}

	go app.Service.Expiry.Run(ctx)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
}

// openStorage returns repositories for the configured driver and a func
// releasing the underlying connections.
func openStorage(ctx context.Context, config *utils.Config, logger *zap.Logger) (*repository.Repository, func()) {
	if config.App.StorageDriver == "memory" {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewRepository(memory.NewStore(logger)), func() {}
	}

	db, err := database.InitDB(config.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	logger.Info("Database connected successfully")
	return repository.NewRepository(db, logger), db.Close
}

func newLocker(ctx context.Context, config utils.RedisConfig, logger *zap.Logger) lock.Locker {
	if config.Addr == "" {
		return lock.NewMemoryLocker()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, falling back to in-process locks",
			zap.String("addr", config.Addr),
			zap.Error(err),
		)
		client.Close()
		return lock.NewMemoryLocker()
	}

	logger.Info("Redis locker ready", zap.String("addr", config.Addr))
	return lock.NewRedisLocker(client, logger)
}
