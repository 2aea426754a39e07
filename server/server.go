// Package server assembles the translation core behind an HTTP server.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/signos-ai/signos/internal/profile"
	"github.com/signos-ai/signos/plugin/ai"
	"github.com/signos-ai/signos/plugin/ai/agent"
	"github.com/signos-ai/signos/plugin/ai/cache"
	"github.com/signos-ai/signos/plugin/ai/vector"
	"github.com/signos-ai/signos/server/middleware"
	apiv1 "github.com/signos-ai/signos/server/router/api/v1"
	"github.com/signos-ai/signos/server/retrieval"
	"github.com/signos-ai/signos/server/service/translator"
	"github.com/signos-ai/signos/store"
	"github.com/signos-ai/signos/store/db/sqlite"
)

type Server struct {
	echo    *echo.Echo
	profile *profile.Profile
	logger  *slog.Logger
	lessons *store.Store
	indexDB *sql.DB
}

// New wires every component from the profile.
func New(p *profile.Profile, logger *slog.Logger) (*Server, error) {
	aiConfig := ai.NewConfigFromProfile(p)
	if err := aiConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid AI config")
	}

	llm := ai.NewLLMService(aiConfig.LLM)
	embedder := ai.NewEmbeddingService(aiConfig.Embedding)

	s := &Server{profile: p, logger: logger}
	signIndex, knowledgeIndex, err := s.buildIndexes(p)
	if err != nil {
		return nil, err
	}

	engine := retrieval.NewEngine(
		embedder,
		signIndex,
		knowledgeIndex,
		cache.New[[]retrieval.Candidate](p.CacheCapacity),
		logger,
	)
	arbiter := retrieval.NewArbiter(llm, logger)
	agentLoop := agent.New(llm, agent.DefaultRegistry(engine, arbiter), logger,
		agent.WithTurnTimeout(time.Duration(p.TurnTimeoutSec)*time.Second))

	if p.DSN != "" {
		driver, err := sqlite.NewDB(p.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "open lesson store")
		}
		s.lessons = store.New(driver)
	}

	svc := translator.NewService(engine, arbiter, agentLoop, s.lessons, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.NewRateLimiter(10, 30).Middleware())

	apiGroup := e.Group("/api/v1")
	apiv1.NewAPIV1Service(svc).Register(apiGroup)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "version": p.Version})
	})

	s.echo = e
	return s, nil
}

func (s *Server) buildIndexes(p *profile.Profile) (vector.Index, vector.Index, error) {
	switch p.IndexProvider {
	case "pgvector":
		db, err := sql.Open("postgres", p.IndexDSN)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open pgvector database")
		}
		s.indexDB = db
		signIdx, err := vector.NewPGIndex(db, p.SignIndexName)
		if err != nil {
			return nil, nil, err
		}
		knowledgeIdx, err := vector.NewPGIndex(db, p.KnowledgeIndexName)
		if err != nil {
			return nil, nil, err
		}
		return signIdx, knowledgeIdx, nil
	default:
		signIdx := vector.NewRESTIndex(p.IndexBaseURL, p.IndexAPIToken, p.SignIndexName)
		knowledgeIdx := vector.NewRESTIndex(p.IndexBaseURL, p.IndexAPIToken, p.KnowledgeIndexName)
		return signIdx, knowledgeIdx, nil
	}
}

// Start runs the HTTP listener until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	s.logger.Info("server started",
		slog.String("addr", addr),
		slog.String("version", s.profile.Version),
		slog.String("mode", s.profile.Mode),
	)
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and closes owned resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shut down server gracefully", slog.String("error", err.Error()))
	}
	if s.lessons != nil {
		if err := s.lessons.Close(); err != nil {
			s.logger.Error("failed to close lesson store", slog.String("error", err.Error()))
		}
	}
	if s.indexDB != nil {
		return s.indexDB.Close()
	}
	return nil
}
