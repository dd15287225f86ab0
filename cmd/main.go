package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fyerfyer/resume-assistant/api"
	"github.com/fyerfyer/resume-assistant/api/handler"
	"github.com/fyerfyer/resume-assistant/api/middleware"
	appconfig "github.com/fyerfyer/resume-assistant/config"
	"github.com/fyerfyer/resume-assistant/internal/cache"
	"github.com/fyerfyer/resume-assistant/internal/database"
	"github.com/fyerfyer/resume-assistant/internal/document"
	"github.com/fyerfyer/resume-assistant/internal/embedding"
	"github.com/fyerfyer/resume-assistant/internal/llm"
	"github.com/fyerfyer/resume-assistant/internal/repository"
	"github.com/fyerfyer/resume-assistant/internal/services"
	"github.com/fyerfyer/resume-assistant/internal/vectordb"
	"github.com/fyerfyer/resume-assistant/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// 命令行配置选项
// 配置文件中的值优先，命令行参数作为兜底
type flags struct {
	Mode       string // 运行模式 (debug/release)
	LogLevel   string // 日志级别
	LogFile    string // 日志文件路径，为空时只输出到标准输出
	ConfigFile string // 配置文件路径
}

func main() {
	// .env文件用于本地开发时注入API密钥
	_ = godotenv.Load()

	f := parseFlags()

	cfg, err := appconfig.Load(f.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	gin.SetMode(f.Mode)

	logger := setupLogger(f)
	logger.Info("Starting resume assistant...")

	if err := setupDatabase(cfg, logger); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	fileStorage, err := setupStorage(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	vectorDB, err := setupVectorDB(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize vector database: %v", err)
	}
	defer vectorDB.Close()

	embeddingClient, err := setupEmbedding(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize embedding client: %v", err)
	}

	llmClient, err := setupLLM(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize LLM client: %v", err)
	}

	cacheService, err := setupCache(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}

	splitter := document.NewTextSplitter(document.SplitterConfig{
		ChunkSize:    cfg.Document.ChunkSize,
		ChunkOverlap: cfg.Document.ChunkOverlap,
	})

	ragService := llm.NewRAG(llmClient,
		llm.WithRAGMaxTokens(cfg.LLM.MaxTokens),
		llm.WithRAGTemperature(cfg.LLM.Temperature),
	)

	// 所有服务共享同一个索引互斥保护：
	// 处理运行重建索引时，检索和问答请求被阻塞而不是读到半成品
	guard := services.NewIndexGuard()

	resumeService := services.NewResumeService(
		fileStorage,
		splitter,
		embeddingClient,
		vectorDB,
		services.WithResumeRepository(repository.NewResumeRepository()),
		services.WithIndexGuard(guard),
		services.WithBatchSize(cfg.Embed.BatchSize),
		services.WithLogger(logger),
	)

	retrieverService := services.NewRetrieverService(
		embeddingClient,
		vectorDB,
		services.WithRetrieverGuard(guard),
		services.WithRetrieverLogger(logger),
	)

	qaService := services.NewQAService(
		embeddingClient,
		vectorDB,
		ragService,
		cacheService,
		services.WithQAGuard(guard),
		services.WithSearchLimit(cfg.Search.Limit),
		services.WithMinScore(cfg.Search.MinScore),
		services.WithCacheTTL(time.Duration(cfg.Cache.TTL)*time.Second),
		services.WithQALogger(logger),
	)

	resumeHandler := handler.NewResumeHandler(resumeService, retrieverService)
	qaHandler := handler.NewQAHandler(qaService)

	r := api.SetupRouter(resumeHandler, qaHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // 处理运行可能耗时较长
	}

	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() flags {
	f := flags{}

	flag.StringVar(&f.Mode, "mode", "debug", "Run mode (debug/release)")
	flag.StringVar(&f.LogLevel, "log-level", "info", "Log level (debug/info/warn/error)")
	flag.StringVar(&f.LogFile, "log-file", "", "Log file path (empty for stdout only)")
	flag.StringVar(&f.ConfigFile, "config", "", "Path to config file")

	flag.Parse()
	return f
}

// setupLogger 设置日志系统
func setupLogger(f flags) *logrus.Logger {
	logger := middleware.GetLogger()

	switch f.LogLevel {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if f.LogFile != "" {
		middleware.EnableFileLogging(f.LogFile)
	}

	return logger
}

// setupDatabase 设置元数据库
func setupDatabase(cfg *appconfig.Config, logger *logrus.Logger) error {
	dbConfig := database.DefaultConfig()
	dbConfig.Type = cfg.Database.Type
	dbConfig.DSN = cfg.Database.DSN

	return database.Setup(dbConfig, logger)
}

// setupStorage 设置简历文件存储
func setupStorage(cfg *appconfig.Config) (storage.Storage, error) {
	if cfg.Storage.Type == "minio" {
		return storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
		})
	}

	return storage.NewLocalStorage(storage.LocalConfig{
		Path: cfg.Storage.Path,
	})
}

// setupVectorDB 设置向量数据库
func setupVectorDB(cfg *appconfig.Config, logger *logrus.Logger) (vectordb.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.VectorDB.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector database directory: %v", err)
	}

	repo, err := vectordb.NewRepository(vectordb.Config{
		Type:              cfg.VectorDB.Type,
		Path:              cfg.VectorDB.Path,
		Dimension:         cfg.VectorDB.Dim,
		DistanceType:      vectordb.DistanceType(cfg.VectorDB.Distance),
		CreateIfNotExists: true,
	})
	if err != nil {
		// FAISS初始化失败时回退到内存实现
		logger.Warnf("Failed to initialize %s vector database: %v, falling back to in-memory",
			cfg.VectorDB.Type, err)

		return vectordb.NewRepository(vectordb.Config{
			Type:         "memory",
			Dimension:    cfg.VectorDB.Dim,
			DistanceType: vectordb.Cosine,
		})
	}

	return repo, nil
}

// setupEmbedding 设置嵌入模型客户端
func setupEmbedding(cfg *appconfig.Config) (embedding.Client, error) {
	apiKey := cfg.Embed.APIKey
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		apiKey = key
	}
	if apiKey == "" {
		return nil, fmt.Errorf("embedding API key is required (set OPENAI_API_KEY)")
	}

	return embedding.NewClient(cfg.Embed.Provider,
		embedding.WithAPIKey(apiKey),
		embedding.WithBaseURL(cfg.Embed.Endpoint),
		embedding.WithModel(cfg.Embed.Model),
		embedding.WithDimensions(cfg.Embed.Dimensions),
		embedding.WithBatchSize(cfg.Embed.BatchSize),
	)
}

// setupLLM 设置大语言模型客户端
func setupLLM(cfg *appconfig.Config) (llm.Client, error) {
	apiKey := cfg.LLM.APIKey
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		apiKey = key
	}
	if apiKey == "" {
		return nil, fmt.Errorf("LLM API key is required (set GROQ_API_KEY)")
	}

	return llm.NewClient(cfg.LLM.Provider,
		llm.WithAPIKey(apiKey),
		llm.WithBaseURL(cfg.LLM.Endpoint),
		llm.WithModel(cfg.LLM.Model),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
		llm.WithTemperature(cfg.LLM.Temperature),
	)
}

// setupCache 设置问答缓存
func setupCache(cfg *appconfig.Config) (cache.Cache, error) {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Type = cfg.Cache.Type
	cacheConfig.DefaultTTL = time.Duration(cfg.Cache.TTL) * time.Second

	if cfg.Cache.Type == "redis" {
		cacheConfig.RedisAddr = cfg.Cache.Address
		cacheConfig.RedisPassword = cfg.Cache.Password
		cacheConfig.RedisDB = cfg.Cache.DB
	}

	return cache.NewCache(cacheConfig)
}
