package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"collab-todo/internal/config"
	"collab-todo/internal/notify"
	"collab-todo/internal/realtime"
	"collab-todo/internal/repository"
	"collab-todo/internal/service"
	"collab-todo/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err == nil {
		log.Println("[info] loaded .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	shareRepo := repository.NewShareRepository(db)
	inviteRepo := repository.NewInviteRepository(db)

	notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken, userRepo)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	hub := realtime.NewHub()
	access := service.NewAccessResolver(shareRepo)
	broadcast := service.NewBroadcaster(hub, access)
	todoSvc := service.NewTodoService(todoRepo, access, broadcast)
	sharingSvc := service.NewSharingService(todoRepo, userRepo, shareRepo, inviteRepo, broadcast, cfg.InviteUsageLimit)
	reminderSvc := service.NewReminderService(todoRepo, notifier)
	digestSvc := service.NewDigestService(todoRepo, userRepo, notifier)

	scheduler := service.NewScheduler(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.ReminderInterval, func() {
		tickCtx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()
		reminderSvc.Tick(tickCtx, time.Now())
	}); err != nil {
		log.Fatalf("schedule reminders: %v", err)
	}
	if cfg.DigestTime != "" {
		if _, err := scheduler.ScheduleDaily(cfg.DigestTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := digestSvc.SendAll(jobCtx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("digest: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule digest: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		if err := notifier.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("bot stopped with error: %v", err)
		}
	}()

	server := web.NewServer(userRepo, todoSvc, sharingSvc, hub, notifier)

	log.Printf("[info] collab-todo listening on %s", cfg.HTTPAddr)
	if err := server.Run(ctx, cfg.HTTPAddr); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
