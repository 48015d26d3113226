package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/tutor_scheduler/internal/app"
	"github.com/Freeeeeet/tutor_scheduler/internal/config"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller"
	"github.com/Freeeeeet/tutor_scheduler/internal/httpapi"
	"github.com/Freeeeeet/tutor_scheduler/internal/notify"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/sqlitestore"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Tutor scheduler stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Tutor scheduler stopped")
}

// storage хранилище, выбранное драйвером
type storage struct {
	bookings service.BookingStore
	users    service.UserRepository
	close    func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		store, err := sqlitestore.Open(ctx, cfg.GetDBDSN())
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("Using SQLite storage", zap.String("path", cfg.GetDBDSN()))
		return &storage{bookings: store, users: store.Users(), close: func() { store.Close() }}, nil

	default:
		pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
		if err != nil {
			return nil, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}

		migrator, err := app.NewMigrator(pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		defer migrator.Close()

		if err := migrator.Run(ctx); err != nil {
			pool.Close()
			return nil, err
		}

		logger.Info("Using PostgreSQL storage")
		return &storage{
			bookings: repository.NewBookingStore(pool),
			users:    repository.NewUserRepository(pool),
			close:    pool.Close,
		}, nil
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting tutor scheduler",
		zap.String("db_driver", cfg.DBDriver),
		zap.Bool("telegram", cfg.TelegramToken != ""),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Duration("lead_time", cfg.LeadTime),
		zap.Duration("horizon", cfg.Horizon),
	)

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	var tgBot *bot.Bot
	var notifiers notify.Multi

	if cfg.TelegramToken != "" {
		tgBot, err = bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}
		notifiers = append(notifiers, notify.NewTelegram(tgBot, cfg.MeetURLBase, logger))
	} else {
		logger.Warn("TELEGRAM_TOKEN is empty, bot is disabled")
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := notify.NewKafka(notify.KafkaConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			MeetBase: cfg.MeetURLBase,
		}, logger)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer producer.Close()
		notifiers = append(notifiers, producer)
	}

	dispatcher := app.NewDispatcher(notifiers, cfg.NotifyBuffer, logger)

	clock := service.SystemClock()
	policy := cfg.Policy()
	users := service.NewUserService(store.users, logger)
	bookings := service.NewBookingService(store.bookings, users, service.ParticipantGate{}, dispatcher, clock, policy, logger)
	teachers := service.NewTeacherService(store.bookings, users, dispatcher, clock, policy, logger)
	availability := service.NewAvailabilityService(store.bookings, users, clock, policy, logger)

	// Диспетчер живёт дольше бота и HTTP: его останавливаем только после их выхода
	dispatcherDone := make(chan error, 1)
	go func() {
		dispatcherDone <- dispatcher.Run(context.Background())
	}()

	g, ctx := errgroup.WithContext(ctx)

	if tgBot != nil {
		botController := controller.NewBotController(tgBot, controller.Services{
			Users:        users,
			Bookings:     bookings,
			Teachers:     teachers,
			Availability: availability,
		}, cfg.Location, cfg.MeetURLBase, logger)

		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands menu not set", zap.Error(err))
		}

		g.Go(func() error {
			return botController.Start(ctx)
		})
	}

	if cfg.HTTPAddr != "" {
		api := httpapi.NewHandler(httpapi.Services{
			Users:        users,
			Bookings:     bookings,
			Teachers:     teachers,
			Availability: availability,
		}, logger)
		server := httpapi.NewServer(cfg.HTTPAddr, api, logger)

		g.Go(func() error {
			return server.Run(ctx)
		})
	}

	err = g.Wait()

	dispatcher.Stop()
	if dispatchErr := <-dispatcherDone; dispatchErr != nil && err == nil {
		err = dispatchErr
	}

	return err
}
