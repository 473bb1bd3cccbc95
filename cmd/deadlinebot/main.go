package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"deadline-bot/internal/bot"
	"deadline-bot/internal/config"
	"deadline-bot/internal/logger"
	"deadline-bot/internal/model"
	"deadline-bot/internal/repository"
	"deadline-bot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if envErr != nil {
		zl.Debug("no .env file loaded", zap.Error(envErr))
	}

	db, err := repository.NewDB(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	deadlineRepo := repository.NewDeadlineRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	actionRepo := repository.NewActionRepository(db)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		zl.Fatal("create bot api", zap.Error(err))
	}
	zl.Info("bot authorized", zap.String("account", api.Self.UserName))

	notifier := bot.NewNotifier(api, cfg.SendRatePerSec)

	store := service.NewDeadlineStore(ctx, deadlineRepo, time.Local, zl)
	sharedLedger := service.NewLedger(ctx, model.ScopeShared, reminderRepo, zl)
	personalLedger := service.NewLedger(ctx, model.ScopePersonal, reminderRepo, zl)
	evaluator := service.NewEvaluator(cfg.ReminderHours, cfg.CheckInterval)

	reminderSvc := service.NewReminderService(store, sharedLedger, personalLedger, userRepo, notifier, evaluator, time.Local, zl)
	actionSvc := service.NewActionService(actionRepo, userRepo, notifier, cfg.ActionCooldown, zl)

	telegramBot := bot.New(api, userRepo, store, actionSvc, zl)

	scheduler := service.NewSchedulerService(time.Local, zl)
	if _, err := scheduler.ScheduleIntervalNow(cfg.CheckInterval, func() {
		reminderSvc.RunTick(context.Background(), time.Now())
	}); err != nil {
		zl.Fatal("schedule reminder check", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	zl.Info("deadline bot started",
		zap.Duration("check_interval", cfg.CheckInterval),
		zap.Ints("reminder_hours", cfg.ReminderHours),
	)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zl.Error("bot stopped with error", zap.Error(err))
	}
	zl.Info("shutdown complete")
}
