package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"studyplanner/internal/ai"
	"studyplanner/internal/app"
	"studyplanner/internal/cache"
	"studyplanner/internal/config"
	"studyplanner/internal/logger"
	"studyplanner/internal/model"
	"studyplanner/internal/pkg/pdfextract"
	"studyplanner/internal/planner"
	"studyplanner/internal/platform/database"
	rabbitmqClient "studyplanner/internal/platform/rabbitmq"
	redisClient "studyplanner/internal/platform/redis"
	"studyplanner/internal/rag"
	"studyplanner/internal/repository"
	"studyplanner/internal/worker"
)

type App struct {
	Config *config.Config
	Log    *logger.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	ChatWorker    *worker.ChatPersistWorker
	ChatPublisher *rabbitmqClient.ChatPublisher

	Embedder      rag.Embedder
	VectorBackend rag.Backend
	Index         *rag.Store

	Syllabus *app.SyllabusService
	Plans    *app.PlanService
	Chat     *app.ChatService

	StartedAt time.Time

	onnx *rag.ONNXEmbedder
}

// New loads configuration and builds every client and service. Callers must
// Close the returned App.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, err
	}
	a, err := NewWithConfig(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	db, err := database.New(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		return err
	}
	a.DB = db
	if err := db.AutoMigrate(&model.Syllabus{}, &model.PlanItem{}, &model.ChatMessage{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	syllabusRepo := repository.NewSyllabusRepository(db)
	planRepo := repository.NewPlanRepository(db)
	chatRepo := repository.NewChatMessageRepository(db)

	var planCache app.PlanCache
	if cfg.Redis.Enabled {
		client, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.Redis = client
		planCache = cache.NewPlanCache(client,
			time.Duration(cfg.Redis.PlanTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.DirtyTTLSeconds)*time.Second,
		)
	}

	var recorder app.ChatRecorder = chatRepo
	if cfg.RabbitMQ.Enabled {
		conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		a.MQConn = conn
		a.ChatWorker = worker.NewChatPersistWorker(conn, chatRepo, cfg.RabbitMQ.ChatPersistQueue, a.Log)
		if err := a.ChatWorker.Start(ctx); err != nil {
			return fmt.Errorf("start chat worker failed: %w", err)
		}
		a.ChatPublisher = rabbitmqClient.NewChatPublisher(conn, cfg.RabbitMQ.ChatPersistQueue)
		recorder = a.ChatPublisher
	}

	chunker, err := rag.NewChunker(cfg.Planner.ChunkSize, cfg.Planner.ChunkOverlap)
	if err != nil {
		return err
	}
	a.Embedder = a.buildEmbedder(ctx)
	backend, err := a.buildBackend()
	if err != nil {
		return err
	}
	a.VectorBackend = backend
	a.Index = rag.NewStore(chunker, a.Embedder, backend, a.Log)

	llm := ai.NewClient(ai.ChatConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		MaxRetries:  cfg.LLM.MaxRetries,
	})
	generator := planner.NewGenerator(llm, a.Index, planner.GeneratorConfig{
		TopK:        cfg.Planner.PlanTopK,
		MaxAttempts: cfg.Planner.MaxAttempts,
	}, a.Log)
	assistant := planner.NewChatAssistant(llm, a.Index, cfg.Planner.ChatTopK, a.Log)

	a.Syllabus = app.NewSyllabusService(syllabusRepo, a.Index, pdfextract.ExtractFile, cfg.App.UploadDir, a.Log)
	a.Plans = app.NewPlanService(planRepo, generator, planCache, time.Now, a.Log)
	a.Chat = app.NewChatService(assistant, a.Plans, recorder, chatRepo, cfg.Planner.ChatPlanLimit, a.Log)

	a.Log.Info("application initialized",
		"database", cfg.Database.Driver,
		"vector_backend", backend.Name(),
		"embedder", a.Embedder.Name(),
		"llm_model", llm.Model(),
		"redis", cfg.Redis.Enabled,
		"rabbitmq", cfg.RabbitMQ.Enabled,
	)
	return nil
}

// buildEmbedder picks the configured embedder and falls back to the hash
// embedder when it cannot be loaded or fails its probe.
func (a *App) buildEmbedder(ctx context.Context) rag.Embedder {
	cfg := a.Config.Embedding
	fallback := rag.NewHashEmbedder(cfg.Dimensions)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "onnx":
		onnx, err := rag.NewONNXEmbedder(rag.ONNXConfig{
			ModelPath:  cfg.ONNXModelPath,
			VocabPath:  cfg.ONNXVocabPath,
			LibPath:    cfg.ONNXLibPath,
			MaxSeqLen:  cfg.MaxSeqLen,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			a.Log.Warn("onnx embedder unavailable, using hash embedder", "error", err)
			return fallback
		}
		selected := rag.SelectEmbedder(ctx, onnx, fallback, a.Log)
		if selected != onnx {
			onnx.Close()
			return selected
		}
		a.onnx = onnx
		return onnx
	case "openai":
		client := ai.NewEmbeddingClient(ai.EmbeddingConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Timeout:    time.Duration(a.Config.LLM.TimeoutSeconds) * time.Second,
			MaxRetries: a.Config.LLM.MaxRetries,
		})
		return rag.SelectEmbedder(ctx, rag.NewAPIEmbedder(client), fallback, a.Log)
	default:
		return fallback
	}
}

func (a *App) buildBackend() (rag.Backend, error) {
	cfg := a.Config.Vector
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "qdrant":
		return rag.NewQdrantBackend(rag.QdrantConfig{
			BaseURL:    cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Alias:      cfg.Collection,
			Dimensions: a.Config.Embedding.Dimensions,
			Timeout:    10 * time.Second,
		}, a.Log)
	case "", "sql":
		backend := rag.NewSQLBackend(a.DB)
		if err := backend.Migrate(); err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unsupported vector backend %q", cfg.Backend)
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.ChatWorker != nil {
		a.ChatWorker.Close()
	}
	if a.ChatPublisher != nil {
		if err := a.ChatPublisher.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.onnx != nil {
		a.onnx.Close()
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return closeErr
}
