package bootstrap

import (
	"context"
	"fmt"
	"os"

	"udla-mentor-be/internal/config"
	"udla-mentor-be/internal/controller"
	"udla-mentor-be/internal/pkg/logger"
	"udla-mentor-be/internal/pkg/mailer"
	"udla-mentor-be/internal/repository/implementation"
	"udla-mentor-be/internal/repository/memory"
	"udla-mentor-be/internal/repository/redisstore"
	"udla-mentor-be/internal/service"
	"udla-mentor-be/internal/websocket"
	"udla-mentor-be/pkg/agent"
	"udla-mentor-be/pkg/banner"
	"udla-mentor-be/pkg/database"
	"udla-mentor-be/pkg/document"
	"udla-mentor-be/pkg/faq"
	"udla-mentor-be/pkg/helpdesk/orchestrator"
	"udla-mentor-be/pkg/llm"
	"udla-mentor-be/pkg/llm/factory"
	pktNats "udla-mentor-be/pkg/nats"
	"udla-mentor-be/pkg/store"
	"udla-mentor-be/pkg/summary"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger *logger.ZapLogger

	// Controllers
	AgentController   controller.IAgentController
	AnalyzeController controller.IAnalyzeController
	SummaryController controller.ISummaryController
	AudioController   controller.IAudioController
	HealthController  controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	closers []func()
}

// NewContainer wires every dependency. Only configuration errors are fatal;
// optional infrastructure (database, redis feed, NATS) degrades with a warning.
func NewContainer(cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	// 1. Model provider
	provider, err := factory.NewLLMProvider(factory.Config{
		Provider:           cfg.Ai.Provider,
		APIKey:             cfg.Ai.APIKey,
		Endpoint:           cfg.Ai.Endpoint,
		APIVersion:         cfg.Ai.APIVersion,
		ChatModel:          cfg.Ai.ChatModel,
		VisionModel:        cfg.Ai.VisionModel,
		EmbeddingModel:     cfg.Ai.EmbeddingModel,
		TranscriptionModel: cfg.Ai.TranscriptionModel,
	})
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	sysLogger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.Provider,
		"model":    cfg.Ai.ChatModel,
	})

	// 2. Redis, shared by the session store and the websocket fan-out
	rdb := c.connectRedis(cfg)

	// 3. Session store
	var sessions store.SessionStore
	if cfg.Session.Backend == "redis" {
		if rdb == nil {
			return nil, fmt.Errorf("SESSION_BACKEND=redis but redis is unreachable")
		}
		sessions = redisstore.NewSessionRepository(rdb, "")
	} else {
		sessions = memory.NewSessionRepository()
	}
	locks := store.NewLocker()

	// 4. Knowledge index
	searcher := c.faqSearcher(cfg, provider)

	// 5. Event bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	publisherService := service.NewPublisherService(cfg.Events.EscalationTopic, pubSub)

	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	hostname, _ := os.Hostname()
	c.WebSocketHub = websocket.NewHub(rdb, hostname+"-"+uuid.NewString()[:8], wsLogger)

	var forwarder service.EventForwarder
	if cfg.Events.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.Events.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS, escalations stay in process", map[string]interface{}{"error": err.Error()})
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var mail mailer.IEmailService
	if cfg.SMTP.Host != "" {
		mail = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			cfg.SMTP.MentorEmail,
			sysLogger,
		)
	}
	c.ConsumerService = service.NewEscalationConsumerService(
		pubSub,
		cfg.Events.EscalationTopic,
		c.WebSocketHub,
		mail,
		forwarder,
		sysLogger,
	)

	// 6. Agent and conversation core
	managerOpts := []agent.Option{agent.WithFAQ(searcher), agent.WithTimeout(cfg.Ai.Timeout)}
	if cfg.Banner.TokenURL != "" && cfg.Banner.APIBase != "" {
		managerOpts = append(managerOpts, agent.WithStatusLookup(banner.NewClient(banner.Config{
			TokenURL: cfg.Banner.TokenURL,
			APIBase:  cfg.Banner.APIBase,
			Username: cfg.Banner.Username,
			Password: cfg.Banner.Password,
			EmailKey: cfg.Banner.EmailKey,
			JustPath: cfg.Banner.JustPath,
			Timeout:  cfg.Banner.Timeout,
			Insecure: cfg.Banner.Insecure,
		}, sysLogger)))
	} else {
		sysLogger.Warn("Bootstrap", "Banner is not configured, case status lookups are disabled", nil)
	}
	runner := agent.WithFallback(agent.NewManager(provider, sysLogger, managerOpts...), sysLogger)

	turns := orchestrator.New(sessions, runner, sysLogger,
		orchestrator.WithLocker(locks),
		orchestrator.WithPublisher(publisherService),
	)
	analyzer := document.NewAnalyzer(provider, sessions, sysLogger,
		document.WithLocker(locks),
		document.WithPublisher(publisherService),
	)
	summarizer := summary.NewSummarizer(provider, sessions, sysLogger)

	// 7. Controllers
	c.AgentController = controller.NewAgentController(service.NewChatService(turns, sysLogger))
	c.AnalyzeController = controller.NewAnalyzeController(service.NewAnalysisService(analyzer, sysLogger))
	c.SummaryController = controller.NewSummaryController(service.NewSummaryService(summarizer, sysLogger))
	c.AudioController = controller.NewAudioController(service.NewTranscriptionService(provider, sysLogger))
	c.HealthController = controller.NewHealthController(cfg.App.Version, cfg.App.Environment)

	return c, nil
}

func (c *Container) connectRedis(cfg *config.Config) *redis.Client {
	if cfg.Session.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(cfg.Session.RedisURL)
	if err != nil {
		c.Logger.Warn("Bootstrap", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.Session.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		c.Logger.Warn("Bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return rdb
}

func (c *Container) faqSearcher(cfg *config.Config, embedder llm.Embedder) faq.Searcher {
	if cfg.Database.Connection == "" {
		c.Logger.Warn("Bootstrap", "DB_CONNECTION_STRING not set, FAQ search is disabled", nil)
		return faq.Unavailable{}
	}
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
	if err != nil {
		c.Logger.Error("Bootstrap", "Failed to open FAQ database", map[string]interface{}{"error": err.Error()})
		return faq.Unavailable{}
	}
	c.closeDB(db)
	return faq.NewVectorSearcher(embedder, implementation.NewFAQChunkRepository(db), cfg.Ai.FAQMinScore)
}

func (c *Container) closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		c.closers = append(c.closers, func() { _ = sqlDB.Close() })
	}
}

// Close releases infrastructure in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
