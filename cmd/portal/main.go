package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/sirupsen/logrus"

	"flowdocs/internal/config"
	kafkadb "flowdocs/internal/database/kafka"
	miniodb "flowdocs/internal/database/minio"
	"flowdocs/internal/database/mysql"
	redisdb "flowdocs/internal/database/redis"
	"flowdocs/internal/extract"
	"flowdocs/internal/files"
	"flowdocs/internal/llm"
	"flowdocs/internal/models"
	"flowdocs/internal/portal/api"
	"flowdocs/internal/portal/service"
	"flowdocs/internal/portal/store"
	"flowdocs/internal/search"
	"flowdocs/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New("portal", "")
	appLogger.Info("logger initialized")

	// Backing stores.
	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	defer mysql.Close()
	if err := db.AutoMigrate(&models.User{}, &models.Folder{}, &models.Document{}); err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("database migration completed")

	rdb, err := redisdb.GetClient(&cfg.Databases.Redis)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	defer redisdb.Close()

	minioClient, err := miniodb.GetClient(&cfg.Databases.MinIO)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	storage := files.NewStorage(minioClient, &cfg.Databases.MinIO)
	if err := storage.EnsureBucket(context.Background()); err != nil {
		appLogger.Fatal(err.Error())
	}

	healthChecks := map[string]api.Checker{
		"mysql": api.CheckerFunc(mysql.HealthCheck),
		"redis": api.CheckerFunc(redisdb.HealthCheck),
		"minio": api.CheckerFunc(miniodb.HealthCheck),
	}

	var audit kafkadb.AuditPublisher = kafkadb.NopPublisher{}
	if cfg.Databases.Kafka.Enabled {
		kafkaClient, err := kafkadb.GetClient(&cfg.Databases.Kafka)
		if err != nil {
			appLogger.Fatal(err.Error())
		}
		defer kafkaClient.Close()
		audit = kafkadb.NewPublisher(kafkaClient)
		healthChecks["kafka"] = kafkaClient
		appLogger.Info("audit stream enabled")
	}

	// Extraction pipeline.
	detector := extract.NewLanguageDetector()
	ocr := extract.NewOCR(appLogger, cfg.OCR)
	extractor := extract.NewExtractor(appLogger, ocr)
	keywords := extract.NewKeywordExtractor(appLogger, detector)

	// LLM client; a missing credential degrades to a fixed message instead
	// of refusing to start.
	var llmClient llm.Client
	if apiKey := cfg.LLM.OpenAI.ResolveAPIKey(); apiKey != "" {
		llmClient = llm.NewOpenAI(cfg.LLM.OpenAI.Model, apiKey)
		appLogger.Info("OpenAI API key loaded")
	} else {
		appLogger.Warn("OpenAI API key not found, answers will be disabled")
	}

	// Stores and search pipeline.
	userStore := store.NewUserStore(db)
	folderStore := store.NewFolderStore(db)
	documentStore := store.NewDocumentStore(db)

	matcher := search.NewMatcher(appLogger, keywords, cfg.Search.KeywordMatchThreshold, cfg.Search.MaxSnippetLength)
	answerer := search.NewAnswerer(appLogger, llmClient, detector)
	cache := search.NewQueryCache(rdb, time.Duration(cfg.Search.CacheTTL)*time.Second, cfg.Search.MaxCachedQueries)
	sessions := search.NewRedisSessionStore(rdb, time.Duration(cfg.Auth.SessionTTL)*time.Second)
	folderRouter := search.NewFolderRouter(appLogger, folderStore, sessions, cfg.Search.CategoryMatchThreshold, cfg.Search.SubcategoryMatchThreshold)

	svc := service.New(service.Deps{
		Log:       appLogger,
		Cfg:       cfg,
		Users:     userStore,
		Folders:   folderStore,
		Documents: documentStore,
		Storage:   storage,
		Extractor: extractor,
		Keywords:  keywords,
		Detector:  detector,
		Matcher:   matcher,
		Answerer:  answerer,
		Cache:     cache,
		Router:    folderRouter,
		Audit:     audit,
	})
	appLogger.Info("dependencies injected")

	handler := api.NewHandler(svc)
	router := api.SetupRouter(handler, cfg.Auth.JwtSecret, appLogger, healthChecks)

	appLogger.Info("starting server on " + cfg.Server.Address)
	if err := router.Run(cfg.Server.Address); err != nil {
		appLogger.Fatal(err.Error())
	}
}
