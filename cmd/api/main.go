package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/printmailhq/printmail/internal/application"
	appanalysis "github.com/printmailhq/printmail/internal/application/analysis"
	appdocs "github.com/printmailhq/printmail/internal/application/documents"
	appmod "github.com/printmailhq/printmail/internal/application/moderation"
	apporders "github.com/printmailhq/printmail/internal/application/orders"
	apprel "github.com/printmailhq/printmail/internal/application/relations"
	apptax "github.com/printmailhq/printmail/internal/application/taxonomy"
	"github.com/printmailhq/printmail/internal/config"
	openaiclient "github.com/printmailhq/printmail/internal/infra/ai/openai"
	mysqlp "github.com/printmailhq/printmail/internal/infra/db/mysql"
	"github.com/printmailhq/printmail/internal/infra/httpserver"
	lobclient "github.com/printmailhq/printmail/internal/infra/mail/lob"
	stripeclient "github.com/printmailhq/printmail/internal/infra/payment/stripe"
	minioStore "github.com/printmailhq/printmail/internal/infra/storage"
	"github.com/printmailhq/printmail/internal/middleware"

	domorders "github.com/printmailhq/printmail/internal/domain/orders"
)

func main() {
	// .env kalau ada, supaya enak jalanin lokal
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect MySQL
	db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql connect error: %v", err)
	}
	defer db.Close()

	// init repos
	docRepo := mysqlp.NewDocumentRepository(db)
	catRepo := mysqlp.NewCategoryRepository(db)
	modRepo := mysqlp.NewModerationRepository(db)
	relRepo := mysqlp.NewRelationsRepository(db)
	orderRepo := mysqlp.NewOrderRepository(db)
	errRepo := mysqlp.NewPipelineErrorRepository(db)

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init external clients
	extractor := openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	payment := stripeclient.NewClient(cfg.Stripe.SecretKey)
	mail := lobclient.NewClient(cfg.Lob.APIKey, domorders.Address{
		Name:    cfg.Lob.From.Name,
		Line1:   cfg.Lob.From.Line1,
		Line2:   cfg.Lob.From.Line2,
		City:    cfg.Lob.From.City,
		State:   cfg.Lob.From.State,
		Zip:     cfg.Lob.From.Zip,
		Country: cfg.Lob.From.Country,
	})

	clock := application.SystemClock{}

	// init services
	taxSvc := &apptax.Service{Repo: catRepo, Clock: clock, Log: log}
	analysisSvc := &appanalysis.Service{
		Docs:      docRepo,
		Taxonomy:  catRepo,
		Extractor: extractor,
		Errors:    errRepo,
		Log:       log,
	}
	docsSvc := &appdocs.Service{
		Repo:      docRepo,
		Artifacts: store,
		Analyzer:  analysisSvc,
		Clock:     clock,
		Log:       log,
	}
	modSvc := &appmod.Service{Flags: modRepo, Docs: docRepo, Clock: clock, Log: log}
	relSvc := &apprel.Service{Repo: relRepo, Docs: docRepo}
	ordersSvc := &apporders.Service{
		Repo:    orderRepo,
		Docs:    docRepo,
		Payment: payment,
		Mail:    mail,
		Clock:   clock,
		Log:     log,
	}

	// seed category registry on cold start (no-op when already populated)
	if err := taxSvc.SeedDefaults(ctx); err != nil {
		log.Fatalf("taxonomy seed error: %v", err)
	}

	// init router
	handler := httpserver.NewRouter(httpserver.Deps{
		Docs:       docsSvc,
		Analysis:   analysisSvc,
		Taxonomy:   taxSvc,
		Moderation: modSvc,
		Relations:  relSvc,
		Orders:     ordersSvc,
		Errors:     errRepo,

		AdminAPIKey: cfg.Server.AdminAPIKey,
		Log:         log,
		Health: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
		},
		RateCap:    cfg.RateLimit.Capacity,
		RateRefill: cfg.RateLimit.RefillRate,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Infof("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
