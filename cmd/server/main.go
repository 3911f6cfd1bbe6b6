package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/config"
	"github.com/ecoloop/farmer/internal/repository/mongodb"
	"github.com/ecoloop/farmer/internal/repository/sheets"
	"github.com/ecoloop/farmer/internal/repository/sqlite"
	"github.com/ecoloop/farmer/internal/scheduler"
	"github.com/ecoloop/farmer/internal/server/handlers"
	"github.com/ecoloop/farmer/internal/server/middleware"
	"github.com/ecoloop/farmer/internal/server/router"
	alertsvc "github.com/ecoloop/farmer/internal/service/alerts"
	authsvc "github.com/ecoloop/farmer/internal/service/auth"
	dashboardsvc "github.com/ecoloop/farmer/internal/service/dashboard"
	financesvc "github.com/ecoloop/farmer/internal/service/finance"
	flocksvc "github.com/ecoloop/farmer/internal/service/flocks"
	forumsvc "github.com/ecoloop/farmer/internal/service/forum"
	healthsvc "github.com/ecoloop/farmer/internal/service/health"
	notifysvc "github.com/ecoloop/farmer/internal/service/notify"
	productionsvc "github.com/ecoloop/farmer/internal/service/production"
	reportingsvc "github.com/ecoloop/farmer/internal/service/reporting"
	whatsappclient "github.com/ecoloop/farmer/pkg/clients/whatsapp"
	"github.com/ecoloop/farmer/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "path to an env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(ctx, cfg.Database.Path, cfg.Database.MaxOpenConns)
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err), zap.String("path", cfg.Database.Path))
	}
	defer func() { _ = db.Close() }()

	userRepo := sqlite.NewUserRepository(db)
	flockRepo := sqlite.NewFlockRepository(db)
	productionRepo := sqlite.NewProductionRepository(db)
	financeRepo := sqlite.NewFinanceRepository(db)
	alertRepo := sqlite.NewAlertRepository(db)
	dashboardRepo := sqlite.NewDashboardRepository(db)

	var notifier alertsvc.Notifier = notifysvc.Nop{}
	if cfg.WhatsApp.Enabled() {
		notifier = notifysvc.NewService(userRepo, whatsappclient.NewClient(cfg.WhatsApp), baseLogger.Named("svc.notify"))
		baseLogger.Info("whatsapp alert notifications enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, alert notifications disabled")
	}

	tokens := authsvc.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, nil)
	authSvc := authsvc.NewService(userRepo, tokens, baseLogger.Named("svc.auth"))
	flockSvc := flocksvc.NewService(flockRepo, baseLogger.Named("svc.flocks"))
	productionSvc := productionsvc.NewService(productionRepo, flockSvc, baseLogger.Named("svc.production"))
	healthSvc := healthsvc.NewService(sqlite.NewHealthRepository(db), flockSvc, baseLogger.Named("svc.health"))
	financeSvc := financesvc.NewService(financeRepo, baseLogger.Named("svc.finance"))
	alertSvc := alertsvc.NewService(alertRepo, notifier, baseLogger.Named("svc.alerts"))
	dashboardSvc := dashboardsvc.NewService(dashboardRepo, financeRepo, baseLogger.Named("svc.dashboard"))
	forumSvc := forumsvc.NewService(sqlite.NewForumRepository(db), baseLogger.Named("svc.forum"))

	var sinks []reportingsvc.ReportSink
	if cfg.MongoDB.Enabled() {
		archive, err := mongodb.NewSummaryArchive(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := archive.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		sinks = append(sinks, archive)
	}
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sinks = append(sinks, sheets.NewSummaryExporter(sheetsRepo, cfg.Sheets.SummaryRange))
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}
	reportingSvc := reportingsvc.NewService(reportingsvc.Sources{
		Flocks:     flockRepo,
		Production: productionRepo,
		Alerts:     alertSvc,
		Users:      userRepo,
		Herd:       dashboardRepo,
		Ledger:     financeRepo,
	}, sinks, reportingsvc.Options{
		MortalityAlertPercent: cfg.Reporting.MortalityAlertPercent,
		SlaughterLeadDays:     cfg.Reporting.SlaughterLeadDays,
		Location:              loc,
	}, baseLogger.Named("svc.reporting"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	limiter := middleware.NewRateLimiter(cfg.Server.AuthRateLimit, cfg.Server.AuthRateBurst, baseLogger.Named("ratelimit"))
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup()
			}
		}
	}()

	engine := router.New(router.Deps{
		Auth:           handlers.NewAuthHandler(authSvc, baseLogger.Named("handlers.auth")),
		Flocks:         handlers.NewFlockHandler(flockSvc, productionSvc, healthSvc, baseLogger.Named("handlers.flocks")),
		Ledger:         handlers.NewLedgerHandler(financeSvc, alertSvc, dashboardSvc, baseLogger.Named("handlers.ledger")),
		Community:      handlers.NewCommunityHandler(forumSvc, db, baseLogger.Named("handlers.community")),
		Verifier:       authSvc,
		AuthLimiter:    limiter,
		Metrics:        middleware.NewMetrics(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
