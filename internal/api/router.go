package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/facescan/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/facescan/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/facescan/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facescan/internal/session"
	"github.com/saturnino-fabrica-de-software/facescan/internal/ws"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Dependencies struct {
	Service  handler.SessionService
	Sessions *session.Store
	Hub      *ws.Hub

	DetectorName  string
	LandmarksName string
	AnalyzeRate   float64
	AnalyzeBurst  int
	MaxFrameBytes int
	FrameTimeout  time.Duration
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
	cancelHub   context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	config := fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "facescan API",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	}
	if deps != nil && deps.MaxFrameBytes > 0 {
		// multipart framing on top of the frame itself
		config.BodyLimit = deps.MaxFrameBytes + 64*1024
	}

	return &Router{
		app:    fiber.New(config),
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept",
		ExposeHeaders: "Location,Retry-After,X-RateLimit-Limit,X-RateLimit-Remaining",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	if r.deps == nil {
		healthHandler := handler.NewHealthHandler("", "", nil)
		r.app.Get("/health", healthHandler.Health)
		r.app.Get("/ready", healthHandler.Ready)
		return
	}

	healthHandler := handler.NewHealthHandler(r.deps.DetectorName, r.deps.LandmarksName, r.deps.Sessions)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// Event hub
	hubCtx, hubCancel := context.WithCancel(context.Background())
	r.cancelHub = hubCancel
	go r.deps.Hub.Run(hubCtx)

	// Analyze is rate limited per session
	r.rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(r.deps.AnalyzeRate),
		Burst: r.deps.AnalyzeBurst,
	})

	sessionHandler := handler.NewSessionHandler(r.deps.Service, int64(r.deps.MaxFrameBytes), r.logger)
	analysisHandler := handler.NewAnalysisHandler(r.deps.Service, r.logger)
	liveHandler := handler.NewLiveHandler(r.deps.Service, int64(r.deps.MaxFrameBytes), r.deps.FrameTimeout, r.logger)

	withSession := middleware.Session(r.deps.Sessions)

	v1 := r.app.Group("/v1")

	// Session routes
	v1.Post("/sessions", sessionHandler.Create)
	v1.Get("/sessions/:id", withSession, sessionHandler.Get)
	v1.Delete("/sessions/:id", withSession, sessionHandler.Delete)
	v1.Get("/sessions/:id/leaderboard", withSession, sessionHandler.Leaderboard)

	// Live loop
	v1.Post("/sessions/:id/frames", withSession, sessionHandler.UploadFrame)
	v1.Get("/sessions/:id/live", withSession, ws.UpgradeMiddleware(), liveHandler.Stream())

	// Analysis routes
	v1.Post("/sessions/:id/analyze", withSession, r.rateLimiter.Handler(), analysisHandler.Analyze)
	v1.Get("/sessions/:id/result", withSession, analysisHandler.Result)
	v1.Get("/sessions/:id/result/image", withSession, analysisHandler.ResultImage)

	// Pushed events
	v1.Get("/sessions/:id/events", withSession, ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub))
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop WebSocket hub
	if r.cancelHub != nil {
		r.cancelHub()
	}

	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
