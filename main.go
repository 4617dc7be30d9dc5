package main

import (
	"database/sql"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/LR-TechX/Ethereal-bot/internal/config"
	"github.com/LR-TechX/Ethereal-bot/internal/handlers"
	"github.com/LR-TechX/Ethereal-bot/internal/repository"
	"github.com/LR-TechX/Ethereal-bot/internal/scheduler"
	"github.com/LR-TechX/Ethereal-bot/internal/service"
	"github.com/LR-TechX/Ethereal-bot/internal/session"
)

const sessionMaxIdle = 24 * time.Hour

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection error")
	}
	defer db.Close()

	if err = db.Ping(); err != nil {
		log.WithError(err).Fatal("cannot ping database")
	}
	log.Info("connected to database")

	repo := repository.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	if err := repo.SeedDefaultCoach(cfg.AdminID, "Big Scott Media", time.Now()); err != nil {
		log.WithError(err).Fatal("seeding default coach failed")
	}

	svc := service.NewService(repo, log)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.WithError(err).Fatal("bot initialization error")
	}
	api.Debug = false
	log.WithField("username", api.Self.UserName).Info("bot authorized")

	sessions := session.NewManager()
	sched := scheduler.New(log)
	defer sched.Stop()

	bot := handlers.NewBot(api, svc, sessions, sched, cfg, log, api.Self.UserName)

	sched.Daily(8, 0, bot.SendDailyReminders)
	sched.Daily(20, 0, bot.SendDailySummary)
	sched.Every(30*time.Minute, func() {
		if n := sessions.EvictIdle(sessionMaxIdle); n > 0 {
			log.WithField("evicted", n).Info("evicted idle sessions")
		}
	})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query", "channel_post"}

	updates := api.GetUpdatesChan(u)

	log.Info("bot is running")

	for update := range updates {
		bot.HandleUpdate(update)
	}
}
