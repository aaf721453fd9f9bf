package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"gitlab.com/fcv-grader.net/internal/adapter/logging"
	"gitlab.com/fcv-grader.net/internal/adapter/postgres/assignmentrepository"
	"gitlab.com/fcv-grader.net/internal/adapter/postgres/submissionrepository"
	"gitlab.com/fcv-grader.net/internal/adapter/redis/verdictcache"
	"gitlab.com/fcv-grader.net/internal/adapter/sandbox"
	"gitlab.com/fcv-grader.net/internal/adapter/sandbox/judge0"
	"gitlab.com/fcv-grader.net/internal/adapter/sandbox/lambda"
	"gitlab.com/fcv-grader.net/internal/adapter/sandbox/local"
	"gitlab.com/fcv-grader.net/internal/adapter/sandbox/piston"
	"gitlab.com/fcv-grader.net/internal/adapter/sqlengine"
	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/core/services/grading"
	"gitlab.com/fcv-grader.net/internal/core/services/submission"
	http2 "gitlab.com/fcv-grader.net/internal/http"
)

func main() {
	InitReader()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sysCfg := config.NewSystemConfig()
	logLevel := sysCfg.LogLevel
	if sysCfg.DebugMode {
		logLevel = "debug"
	}
	logger := logging.NewZapLogger(logLevel)
	defer logger.Sync()

	logger.Info("Starting grader service")

	db, err := setupDatabase(sysCfg.PostgresConfig.Url)
	if err != nil {
		logger.Error("Failed to set up database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     sysCfg.RedisConfig.Url,
		Password: sysCfg.RedisConfig.Password,
		DB:       sysCfg.RedisConfig.DB,
	})
	defer redisClient.Close()

	// SECONDARY PORTS
	assignmentRepo := assignmentrepository.NewAssignmentRepository(db, logger, sysCfg.PostgresConfig.Schema)
	submissionRepo := submissionrepository.NewSubmissionRepository(db, logger, sysCfg.PostgresConfig.Schema)
	verdictCache := verdictcache.NewVerdictCache(redisClient, sysCfg.RedisConfig.VerdictTTL, logger)

	engine, err := setupSQLEngine(sysCfg.SQLEngineConfig, sysCfg.PostgresConfig.Url, logger.With("component", "sqlengine"))
	if err != nil {
		logger.Error("Failed to set up sql engine", "error", err)
		os.Exit(1)
	}

	executor, err := setupSandbox(ctx, sysCfg.SandboxConfig, logger.With("component", "sandbox"))
	if err != nil {
		logger.Error("Failed to set up sandbox", "error", err)
		os.Exit(1)
	}

	//services
	codingGrader := grading.NewCodingGrader(executor, sysCfg.GradingConfig, logger)
	sqlGrader := grading.NewSQLGrader(engine, sysCfg.GradingConfig, logger)
	batch := grading.NewBatch(codingGrader, sysCfg.GradingConfig.BatchWorkers, logger)
	submissionSvc := submission.NewSubmissionService(
		assignmentRepo,
		submissionRepo,
		verdictCache,
		codingGrader,
		sqlGrader,
		batch,
		logger,
	)

	//server
	httpServer := http2.NewServer(sysCfg.HTTPConfig, *http2.NewServiceProvider(submissionSvc), logger)
	if err := httpServer.Init(); err != nil {
		logger.Error("Failed to init http server", "error", err)
		os.Exit(1)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpServer.Start(gCtx)
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")
		return httpServer.Stop(context.Background())
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(connStr string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// setupSQLEngine picks where the ephemeral grading databases live
func setupSQLEngine(cfg *config.SQLEngineConfig, storeUrl string, logger primary.Logger) (secondary.SQLEngine, error) {
	if err := cfg.Validate(storeUrl); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case config.SQLEngineSQLite:
		return sqlengine.NewSQLiteEngine(logger), nil
	case config.SQLEnginePostgres:
		gradingDB, err := setupDatabase(cfg.PostgresUrl)
		if err != nil {
			return nil, err
		}
		return sqlengine.NewPostgresEngine(gradingDB, logger), nil
	default:
		return nil, fmt.Errorf("unknown sql engine %q", cfg.Driver)
	}
}

// setupSandbox builds every configured backend and routes languages to them
func setupSandbox(ctx context.Context, cfg *config.SandboxConfig, logger primary.Logger) (secondary.CodeExecutor, error) {
	backends := map[string]secondary.CodeExecutor{
		config.BackendJudge0: judge0.NewClient(cfg.Judge0, logger),
		config.BackendPiston: piston.NewClient(cfg.Piston, logger),
		config.BackendLocal:  local.NewRunner(cfg.Local, logger),
	}

	if cfg.Lambda.FunctionName != "" {
		executor, err := lambda.NewExecutor(ctx, cfg.Lambda, logger)
		if err != nil {
			return nil, err
		}
		backends[config.BackendLambda] = executor
	}

	for lang, backend := range cfg.Routes {
		if _, ok := backends[backend]; !ok {
			logger.Warn("Language routed to an unavailable backend", "language", lang, "backend", backend)
		}
	}

	return sandbox.NewRouter(cfg.Routes, backends, logger), nil
}

func InitReader() {
	environment := ""
	if len(os.Args) < 2 {
		log.Fatalf("Env not supplied in argument")
	} else {
		environment = os.Args[1]
	}

	err := godotenv.Load(environment + ".env")
	if err != nil {
		log.Fatalf("Error loading %s.env file", environment)
	}
}
