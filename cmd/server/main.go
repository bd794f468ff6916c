package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/option"

	"github.com/BST1120/mapper2/internal/board"
	"github.com/BST1120/mapper2/internal/bootstrap"
	"github.com/BST1120/mapper2/internal/config"
	"github.com/BST1120/mapper2/internal/db"
	"github.com/BST1120/mapper2/internal/handler"
	"github.com/BST1120/mapper2/internal/hub"
	"github.com/BST1120/mapper2/internal/metrics"
	"github.com/BST1120/mapper2/internal/roster"
	"github.com/BST1120/mapper2/internal/server"
	"github.com/BST1120/mapper2/internal/service"
	"github.com/BST1120/mapper2/internal/store"
	memstore "github.com/BST1120/mapper2/internal/store/memory"
	pgstore "github.com/BST1120/mapper2/internal/store/postgres"
	"github.com/BST1120/mapper2/internal/view"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var docs store.Store
	var healthDB handler.HealthChecker
	if cfg.UsesPostgres() {
		pg, err := db.New(ctx, cfg)
		if err != nil {
			logger.Error("failed to connect database", "err", err)
			os.Exit(1)
		}
		defer pg.Close()
		healthDB = pg

		var rdb *redis.Client
		if cfg.RedisURL != "" {
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				logger.Error("failed to parse redis url", "err", err)
				os.Exit(1)
			}
			rdb = redis.NewClient(opts)
			defer rdb.Close()
		}

		pgDocs := pgstore.New(pg, rdb, logger)
		if err := pgDocs.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "err", err)
			os.Exit(1)
		}
		docs = pgDocs
		logger.Info("document store: postgres", "redis", cfg.RedisURL != "")
	} else {
		docs = memstore.New()
		logger.Info("document store: in-memory (single node)")
	}

	// Firebase identity (optional)
	var firebaseAuth *fbauth.Client
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		firebaseAuth = client
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	auditAppender := board.NewAuditAppender(docs, logger, m)
	boardSvc := board.New(docs, auditAppender, logger, m)
	sessions := service.SessionService{Config: cfg, Store: docs, Logger: logger, FirebaseAuth: firebaseAuth}
	boot := bootstrap.New(docs)
	boot.DefaultTimezone = cfg.DefaultTimezone
	importer := roster.NewImporter(docs, auditAppender, logger)
	exporter := roster.NewExporter(docs)

	wsHub := hub.New(logger)
	views := view.NewRegistry(docs, logger)
	views.OnChange = func(tenantID, scope, date string) {
		payload, err := json.Marshal(map[string]string{
			"scope":    scope,
			"tenantId": tenantID,
			"date":     date,
		})
		if err != nil {
			return
		}
		wsHub.Broadcast(payload, hub.Subscription{TenantID: tenantID, Date: date})
	}
	defer views.Close()

	router := server.NewRouter(cfg, logger, registry, sessions,
		handler.HealthHandler{DB: healthDB},
		handler.SessionHandler{Service: sessions},
		handler.TenantHandler{Bootstrap: boot, Views: views},
		handler.BoardHandler{Board: boardSvc},
		handler.SnapshotHandler{Views: views},
		handler.TimelineHandler{Views: views, AuditLogLimit: cfg.AuditLogLimit},
		handler.AuditHandler{Views: views, DefaultLimit: 100},
		handler.RosterHandler{Importer: importer, Exporter: exporter, Views: views},
		handler.NewWSHandler(wsHub, views, logger),
	)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// Allow inline JSON or base64-encoded JSON in env to avoid writing a file.
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
