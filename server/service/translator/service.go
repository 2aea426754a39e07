// Package translator exposes the three public operations of the
// translation core: sentence-to-signs translation, knowledge search,
// and the full agentic conversation turn.
package translator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/signos-ai/signos/plugin/ai/agent"
	corerr "github.com/signos-ai/signos/internal/errors"
	"github.com/signos-ai/signos/server/retrieval"
	"github.com/signos-ai/signos/store"
)

// defaultSignDurationMs is the per-sign display duration attached for
// downstream playback.
const defaultSignDurationMs = 3000

// SignPlayback is one entry of the translated sequence, annotated for
// the media player.
type SignPlayback struct {
	retrieval.Entry
	DurationMs int `json:"duration_ms"`
}

// Service orchestrates retrieval, arbitration and the agent behind the
// public API surface.
type Service struct {
	engine  *retrieval.Engine
	arbiter *retrieval.Arbiter
	agent   *agent.Agent
	lessons *store.Store // optional, may be nil
	logger  *slog.Logger
}

func NewService(engine *retrieval.Engine, arbiter *retrieval.Arbiter, agentLoop *agent.Agent, lessons *store.Store, logger *slog.Logger) *Service {
	return &Service{
		engine:  engine,
		arbiter: arbiter,
		agent:   agentLoop,
		lessons: lessons,
		logger:  logger,
	}
}

// TranslateToSigns turns free text into an ordered playback sequence.
// Single words take the strict exact-lookup path; sentences are
// retrieved broadly and arbitrated down to a minimal glosa sequence.
func (s *Service) TranslateToSigns(ctx context.Context, text string) ([]SignPlayback, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, corerr.InvalidInput("text is empty")
	}

	if len(strings.Fields(trimmed)) == 1 {
		candidates, err := s.engine.Retrieve(ctx, trimmed, retrieval.ModeExactSign)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return []SignPlayback{}, nil
		}
		return toPlayback(candidates[:1]), nil
	}

	candidates, err := s.engine.Retrieve(ctx, trimmed, retrieval.ModeSentenceSign)
	if err != nil {
		return nil, err
	}
	selected := s.arbiter.Arbitrate(ctx, trimmed, candidates)
	return toPlayback(selected), nil
}

// SearchKnowledge returns explanatory entries for a query.
func (s *Service) SearchKnowledge(ctx context.Context, query string) ([]retrieval.Entry, error) {
	candidates, err := s.engine.Retrieve(ctx, query, retrieval.ModeKnowledge)
	if err != nil {
		return nil, err
	}
	entries := make([]retrieval.Entry, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, c.Entry)
	}
	return entries, nil
}

// ProcessTurn runs one agentic conversation turn, personalizing the
// context with the learner's current lesson when available.
func (s *Service) ProcessTurn(ctx context.Context, text string, convCtx *agent.ConversationContext) (*agent.TurnResult, error) {
	if convCtx == nil {
		convCtx = &agent.ConversationContext{}
	}
	if s.lessons != nil && convCtx.LessonTitle == "" {
		learner, lesson := s.lessons.CurrentLesson(ctx, convCtx.SessionID)
		if learner != nil {
			convCtx.LearnerLevel = learner.Level
		}
		if lesson != nil {
			convCtx.LessonTitle = lesson.Title
		}
	}
	return s.agent.ProcessTurn(ctx, text, convCtx)
}

func toPlayback(candidates []retrieval.Candidate) []SignPlayback {
	playback := make([]SignPlayback, 0, len(candidates))
	for _, c := range candidates {
		playback = append(playback, SignPlayback{
			Entry:      c.Entry,
			DurationMs: defaultSignDurationMs,
		})
	}
	return playback
}
