package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/eventdesk/doorlist/internal/calendar"
	"github.com/eventdesk/doorlist/internal/config"
	"github.com/eventdesk/doorlist/internal/database"
	"github.com/eventdesk/doorlist/internal/handler"
	"github.com/eventdesk/doorlist/internal/middleware"
	"github.com/eventdesk/doorlist/internal/notify"
	"github.com/eventdesk/doorlist/internal/queue"
	"github.com/eventdesk/doorlist/internal/repository"
	"github.com/eventdesk/doorlist/internal/router"
	"github.com/eventdesk/doorlist/internal/service"
	qp "github.com/eventdesk/doorlist/internal/service/queue_publisher"
)

func main() {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional: without it the sheet snapshot cache and rate
	// limiting are simply off.
	rdb := config.NewRedisClient()

	tickets := repository.NewTicketRepo(cfg.SheetURL, cfg.SheetHeaderRows, cfg.ServerSearch, rdb, cfg.SnapshotTTL)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	runs := repository.NewNotificationRepo(db)

	reconciler := service.NewReconciler(tickets)

	details := notify.EventDetails{
		Name:     cfg.EventName,
		Date:     cfg.EventDate,
		Time:     cfg.EventTime,
		Location: cfg.EventLocation,
		Address:  cfg.EventAddress,
	}
	calendarLink := ""
	if !cfg.EventStart.IsZero() && !cfg.EventEnd.IsZero() {
		calendarLink = calendar.GoogleLink(calendar.Event{
			Title:    cfg.EventName,
			Start:    cfg.EventStart,
			End:      cfg.EventEnd,
			Location: cfg.EventLocation + ", " + cfg.EventAddress,
			Timezone: cfg.EventTimezone,
		})
	}

	// The queue consumer only runs when SMS is configured; the rest of the
	// API works without Twilio credentials.
	if cfg.SMSEnabled() {
		sender := notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
		dispatcher := notify.NewDispatcher(sender, details, calendarLink, cfg.NotifyDelay)
		consumer := &queue.Consumer{
			URL:           qp.BrokerURL(),
			Tickets:       tickets,
			Runs:          runs,
			Dispatcher:    dispatcher,
			MaxRecipients: cfg.NotifyMax,
		}
		go func() {
			if err := consumer.Start(); err != nil {
				log.Printf("notify consumer stopped: %v", err)
			}
		}()
	} else {
		log.Println("SMS not configured; notification runs are disabled")
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	ticketHandler := handler.NewTicketHandler(cfg, tickets)
	checkInHandler := handler.NewCheckInHandler(reconciler)
	statsHandler := handler.NewStatsHandler(cfg, tickets)
	notifyHandler := &handler.NotifyHandler{
		Cfg:          cfg,
		Tickets:      tickets,
		Runs:         runs,
		Details:      details,
		CalendarLink: calendarLink,
		Publish:      qp.PublishRunRequested,
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterTickets(e, ticketHandler, checkInHandler, statsHandler, cfg.JWTSecret)
	router.RegisterNotifications(e, notifyHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
