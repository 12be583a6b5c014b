package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/intakehq/intake/config"
	core "github.com/intakehq/intake/internal/agent/core"
	"github.com/intakehq/intake/internal/agent/telemetry"
	"github.com/intakehq/intake/internal/extract"
	"github.com/intakehq/intake/session"
)

const version = "1.0.0"

// Server wires the extraction, planning and execution pipeline behind the
// HTTP front door.
type Server struct {
	cfg       *config.Config
	extractor core.Extractor
	planner   core.PlannerInterface
	executor  core.ExecutorInterface
	estimator *core.CostEstimator
	sessions  session.Store
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// Run builds all dependencies from config and serves until failure.
func Run(cfg *config.Config) error {
	ctx := context.Background()

	llmProvider, err := core.NewLLMProvider(cfg.LLM)
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}

	sessions, err := session.NewStore(ctx, cfg.Session)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	tele := telemetry.NewTelemetry(cfg.Telemetry)

	estimateModel := cfg.LLM.Routing.Execution
	if estimateModel == "" {
		estimateModel = cfg.LLM.Routing.Planning
	}

	s := &Server{
		cfg:       cfg,
		extractor: extract.NewProcessor(cfg.Extract, cfg.LLM, llmProvider),
		planner:   core.NewPlanner(cfg, llmProvider, tele),
		executor:  core.NewExecutor(cfg, llmProvider, tele),
		estimator: core.NewCostEstimator(llmProvider, estimateModel),
		sessions:  sessions,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[HTTP] ", log.LstdFlags),
	}

	e := s.newEcho()
	s.Register(e, llmProvider)

	return e.Start(cfg.Server.Address)
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", s.cfg.Server.MaxUploadMB)))
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{s.cfg.Server.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))
	return e
}

// Register mounts all routes on e.
func (s *Server) Register(e *echo.Echo, llmProvider core.LLMProvider) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/process", s.handleProcess)
	api.GET("/models", func(c echo.Context) error {
		return c.JSON(http.StatusOK, ModelsResponse{Models: llmProvider.GetAvailableModels()})
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version,
		Services: map[string]bool{
			"extractor": true,
			"planner":   true,
			"executor":  true,
		},
		Metrics: s.telemetry.Snapshot(),
	})
}
