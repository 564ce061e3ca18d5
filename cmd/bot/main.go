package main

import (
	"context"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"tradegate/internal/bot"
	"tradegate/internal/cache"
	"tradegate/internal/chart"
	"tradegate/internal/config"
	"tradegate/internal/db"
	"tradegate/internal/handler"
	"tradegate/internal/job"
	"tradegate/internal/metrics"
	"tradegate/internal/provider"
	"tradegate/internal/repository"
	"tradegate/internal/service"
	"tradegate/internal/session"
	"tradegate/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	tele "gopkg.in/telebot.v3"
)

func main() {
	godotenv.Load()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db.InitPostgres(ctx, cfg.DatabaseURL)
	cache.InitRedis(ctx, cfg.RedisURL)

	tp, tracer, err := tracing.InitTracer(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if tp == nil {
			return
		}
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Repositories and schema
	userRepo := repository.NewUserRepository(db.Pool, tracer)
	paymentRepo := repository.NewPaymentRepository(db.Pool, tracer)
	favoriteRepo := repository.NewFavoriteRepository(db.Pool, tracer)
	ticketRepo := repository.NewTicketRepository(db.Pool, tracer)
	journalRepo := repository.NewJournalRepository(db.Pool, tracer)
	if db.Pool != nil {
		for _, m := range []interface {
			RunMigrations(ctx context.Context) error
		}{userRepo, paymentRepo, favoriteRepo, ticketRepo, journalRepo} {
			if err := m.RunMigrations(ctx); err != nil {
				log.Fatalf("failed to run migrations: %v", err)
			}
		}
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Telegram bot transport comes first so the notifier can wrap it.
	pref := tele.Settings{
		Token:  cfg.TelegramBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	tb, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	notifier := bot.NewNotifier(tb, cfg.SupportGroupID)

	// Services
	gate := provider.NewGateProvider(cfg.GateBaseURL, tracer)
	accessService := service.NewAccessService(tracer, userRepo)
	paymentService := service.NewPaymentService(tracer, paymentRepo, userRepo, accessService, notifier, m, cfg.StarsPrice)
	chartService := service.NewChartService(tracer, gate, chart.NewRenderer(), m, cfg.ChartCandleLimit)
	moverService := service.NewMoverService(tracer, gate, cfg.MoversLimit)
	ticketService := service.NewTicketService(tracer, ticketRepo, notifier, notifier, m)
	sessions := session.NewStore(cache.Client, tracer)
	broadcaster := bot.NewBroadcaster(tb, userRepo, m)

	tgBot := bot.New(tb, bot.Options{
		AdminUserID:      cfg.AdminUserID,
		SupportGroupID:   cfg.SupportGroupID,
		PrivateChannelID: cfg.PrivateChannelID,
		StarsPrice:       cfg.StarsPrice,
		StarsTitle:       cfg.StarsTitle,
		StarsDescription: cfg.StarsDescription,
	}, accessService, paymentService, chartService, moverService, ticketService,
		favoriteRepo, journalRepo, sessions, broadcaster)
	tgBot.Start()
	defer tgBot.Stop()

	reminder := job.NewExpiryReminder(tracer, userRepo, notifier)
	if err := reminder.Start(); err != nil {
		log.Fatalf("failed to start expiry reminder: %v", err)
	}
	defer reminder.Stop()

	// Operational HTTP surface
	h := handler.New(tracer, ticketService, accessService)
	r := gin.Default()
	r.Use(otelgin.Middleware("tradegate"))
	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	ossignal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
