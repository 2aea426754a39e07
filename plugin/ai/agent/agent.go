package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/signos-ai/signos/plugin/ai"
	"github.com/signos-ai/signos/plugin/ai/jsonx"
	corerr "github.com/signos-ai/signos/internal/errors"
	"github.com/signos-ai/signos/internal/observability"
	"github.com/signos-ai/signos/server/retrieval"
)

const (
	// maxHistoryTurns bounds how much prior conversation the prompts
	// carry.
	maxHistoryTurns = 6
	// defaultTurnTimeout bounds one full Reason-Act-Synthesize cycle.
	defaultTurnTimeout = 15 * time.Second
	// fallbackGraceTimeout bounds the deterministic fallback path when
	// the turn deadline has already expired.
	fallbackGraceTimeout = 2 * time.Second

	reasonTemperature    = 0.2
	synthesisTemperature = 0.7
)

// Agent runs one Reason, Act, Synthesize cycle per user turn.
type Agent struct {
	llm         ai.LLMService
	registry    *Registry
	turnTimeout time.Duration
	logger      *slog.Logger
}

// Option configures the agent.
type Option func(*Agent)

// WithTurnTimeout overrides the per-turn deadline.
func WithTurnTimeout(d time.Duration) Option {
	return func(a *Agent) {
		if d > 0 {
			a.turnTimeout = d
		}
	}
}

func New(llm ai.LLMService, registry *Registry, logger *slog.Logger, opts ...Option) *Agent {
	a := &Agent{
		llm:         llm,
		registry:    registry,
		turnTimeout: defaultTurnTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProcessTurn handles one user turn. Single tool failures are absorbed
// into failed ToolResults; only both model calls failing yields the
// apologetic fallback message. The error return is reserved for invalid
// input.
func (a *Agent) ProcessTurn(ctx context.Context, text string, convCtx *ConversationContext) (*TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, corerr.InvalidInput("turn text is empty")
	}
	if convCtx == nil {
		convCtx = &ConversationContext{}
	}

	turnCtx, cancel := context.WithTimeout(ctx, a.turnTimeout)
	defer cancel()

	turnID := shortuuid.New()
	rc := observability.NewRequestContext(a.logger, "agent", convCtx.SessionID)
	rc.Info("turn started",
		slog.String("turn_id", turnID),
		slog.Int(observability.LogFieldQueryLen, len(text)),
	)

	toolCalls, reasonErr := a.reason(turnCtx, text, convCtx)
	if reasonErr != nil {
		rc.Warn("reasoning fell back to deterministic tool selection",
			slog.String("turn_id", turnID),
			slog.String(observability.LogFieldErrorCode, string(corerr.CodeOf(reasonErr, corerr.ErrCodeLLMUnavailable))),
		)
		toolCalls = FallbackToolCalls(text)
	}

	// An expired turn deadline short-circuits to the deterministic
	// path; the fallback tools get a short grace context so they can
	// still produce a usable answer.
	actCtx := turnCtx
	if turnCtx.Err() != nil {
		var graceCancel context.CancelFunc
		actCtx, graceCancel = context.WithTimeout(context.WithoutCancel(ctx), fallbackGraceTimeout)
		defer graceCancel()
	}

	results := a.act(actCtx, toolCalls)
	entries := collectEntries(results)

	message, synthErr := a.synthesize(turnCtx, text, convCtx, results)
	if synthErr != nil {
		bothModelCallsFailed := reasonErr != nil && !corerr.IsCode(reasonErr, corerr.ErrCodeUnparseableModelOutput)
		if bothModelCallsFailed && turnCtx.Err() == nil {
			rc.Error("both model calls failed, aborting turn", synthErr,
				slog.String("turn_id", turnID))
			return &TurnResult{Message: apologyMessage}, nil
		}
		message = deterministicSummary(results)
	}

	rc.Info("turn finished",
		slog.String("turn_id", turnID),
		slog.Int("tool_calls", len(toolCalls)),
		slog.Int("entries", len(entries)),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
	)
	return &TurnResult{Message: message, Entries: entries}, nil
}

// reason asks the model which tools to invoke. Low temperature keeps
// the tool selection stable relative to the later synthesis call.
func (a *Agent) reason(ctx context.Context, text string, convCtx *ConversationContext) ([]ToolCall, error) {
	messages := a.baseMessages(convCtx)
	messages = append(messages,
		ai.Message{Role: "user", Content: text},
		ai.Message{Role: "system", Content: reasoningInstruction},
	)

	reply, err := a.llm.Chat(ctx, messages, ai.WithTemperature(reasonTemperature))
	if err != nil {
		return nil, err
	}

	var output reasoningOutput
	if err := jsonx.UnmarshalFirstObject(reply, &output); err != nil {
		return nil, err
	}
	return a.validCalls(output.ToolCalls), nil
}

// act executes tool calls sequentially, in the order given. A failing
// tool becomes a failed ToolResult; the turn continues.
func (a *Agent) act(ctx context.Context, toolCalls []ToolCall) []*ToolResult {
	results := make([]*ToolResult, 0, len(toolCalls))
	for _, call := range toolCalls {
		tool := a.registry.Get(call.Name)
		if tool == nil {
			continue
		}
		results = append(results, tool.Run(ctx, call.Arguments))
	}
	return results
}

func (a *Agent) synthesize(ctx context.Context, text string, convCtx *ConversationContext, results []*ToolResult) (string, error) {
	messages := a.baseMessages(convCtx)
	messages = append(messages,
		ai.Message{Role: "user", Content: text},
		ai.Message{Role: "system", Content: "Resultados internos:\n" + renderResults(results)},
		ai.Message{Role: "system", Content: synthesisInstruction},
	)

	reply, err := a.llm.Chat(ctx, messages, ai.WithTemperature(synthesisTemperature))
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", corerr.UnparseableModelOutput("synthesis returned empty text", nil)
	}
	return reply, nil
}

func (a *Agent) baseMessages(convCtx *ConversationContext) []ai.Message {
	system := systemPrompt
	if convCtx.LessonTitle != "" {
		system += fmt.Sprintf("\nEl usuario está cursando la lección %q", convCtx.LessonTitle)
		if convCtx.LearnerLevel != "" {
			system += fmt.Sprintf(" (nivel %s)", convCtx.LearnerLevel)
		}
		system += "."
	}

	messages := []ai.Message{
		{Role: "system", Content: system},
		{Role: "system", Content: a.registry.CatalogText()},
	}

	turns := convCtx.Turns
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	for _, turn := range turns {
		messages = append(messages, ai.Message{Role: turn.Role, Content: turn.Text})
	}
	return messages
}

// validCalls drops calls naming tools outside the fixed catalog.
func (a *Agent) validCalls(calls []ToolCall) []ToolCall {
	valid := make([]ToolCall, 0, len(calls))
	for _, call := range calls {
		if a.registry.Get(call.Name) == nil {
			a.logger.Warn("dropping unknown tool call", slog.String("tool", call.Name))
			continue
		}
		valid = append(valid, call)
	}
	return valid
}

func collectEntries(results []*ToolResult) []retrieval.Entry {
	var entries []retrieval.Entry
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, r.Entries...)
	}
	return entries
}

// renderResults serializes tool outcomes for the synthesis prompt.
func renderResults(results []*ToolResult) string {
	if len(results) == 0 {
		return "(no se ejecutó ninguna herramienta)"
	}
	var b strings.Builder
	for _, r := range results {
		payload, err := json.Marshal(struct {
			Tool       string            `json:"herramienta"`
			Success    bool              `json:"exito"`
			Entries    []retrieval.Entry `json:"entradas,omitempty"`
			Enrichment *retrieval.Entry  `json:"contexto_adicional,omitempty"`
			Error      string            `json:"error,omitempty"`
		}{r.ToolName, r.Success, r.Entries, r.Enrichment, r.Error})
		if err != nil {
			continue
		}
		b.Write(payload)
		b.WriteByte('\n')
	}
	return b.String()
}

// deterministicSummary composes a plain reply from tool results when
// synthesis fails but reasoning worked.
func deterministicSummary(results []*ToolResult) string {
	var glosas []string
	for _, r := range results {
		if !r.Success {
			continue
		}
		for _, e := range r.Entries {
			if e.Glosa != "" {
				glosas = append(glosas, e.Glosa)
			}
		}
	}
	if len(glosas) == 0 {
		return "No encontré señas para eso. ¿Puedes reformular tu pregunta o dar más detalle?"
	}
	return "Encontré estas señas: " + strings.Join(glosas, ", ") + "."
}
