package server

import (
	"context"
	"strconv"

	"udla-mentor-be/internal/bootstrap"
	"udla-mentor-be/internal/config"
	"udla-mentor-be/internal/pkg/serverutils"
	"udla-mentor-be/internal/websocket"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// bodyLimit leaves room for the 25 MB audio limit plus multipart overhead.
const bodyLimit = 26 * 1024 * 1024

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    bodyLimit,
		ErrorHandler: serverutils.ErrorHandler(container.Logger),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type, Retry-After",
	}))
	app.Use(helmet.New())

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.App.RateLimitMax,
		Expiration: cfg.App.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(cfg.App.RateLimitWindow.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(serverutils.ErrorResponse(
				fiber.StatusTooManyRequests, "Demasiadas solicitudes, intenta nuevamente más tarde.", nil))
		},
	}))

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	// Routes
	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Run starts the background consumers and blocks serving HTTP until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	go s.container.WebSocketHub.Run(ctx)
	if err := s.container.ConsumerService.Consume(ctx); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	s.container.Logger.Info("Server", "Server is running", map[string]interface{}{"port": s.cfg.App.Port})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	c.HealthController.RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/ws/mentors", websocket.Upgrade(cfg.Auth.JWTSecret), websocket.Handler(c.WebSocketHub))

	api := app.Group("/api/v1")
	if cfg.Auth.JWTSecret != "" {
		api.Use(serverutils.JwtMiddleware(cfg.Auth.JWTSecret))
	} else {
		// Validate refuses this in production
		c.Logger.Warn("Server", "JWT_SECRET not set, /api/v1 is unauthenticated", nil)
	}

	c.AgentController.RegisterRoutes(api)
	c.AnalyzeController.RegisterRoutes(api)
	c.SummaryController.RegisterRoutes(api)
	c.AudioController.RegisterRoutes(api)
}

