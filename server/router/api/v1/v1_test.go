package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signos-ai/signos/plugin/ai"
	"github.com/signos-ai/signos/plugin/ai/agent"
	"github.com/signos-ai/signos/plugin/ai/cache"
	"github.com/signos-ai/signos/plugin/ai/vector"
	"github.com/signos-ai/signos/server/retrieval"
	"github.com/signos-ai/signos/server/service/translator"
)

func newTestEcho(llm ai.LLMService, signIdx, knowledgeIdx vector.Index) *echo.Echo {
	engine := retrieval.NewEngine(
		&ai.MockEmbedder{},
		signIdx,
		knowledgeIdx,
		cache.New[[]retrieval.Candidate](50),
		slog.Default(),
	)
	arbiter := retrieval.NewArbiter(llm, slog.Default())
	agentLoop := agent.New(llm, agent.DefaultRegistry(engine, arbiter), slog.Default())
	svc := translator.NewService(engine, arbiter, agentLoop, nil, slog.Default())

	e := echo.New()
	NewAPIV1Service(svc).Register(e.Group("/api/v1"))
	return e
}

func signIndex() *vector.MockIndex {
	return &vector.MockIndex{Results: []vector.Result{{
		ID:    "HOLA",
		Score: 0.92,
		Metadata: map[string]any{
			"glosa":      "HOLA",
			"definition": "saludo",
			"images":     `["hola_1.png"]`,
		},
	}}}
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTranslateEndpoint(t *testing.T) {
	e := newTestEcho(&ai.MockLLM{}, signIndex(), &vector.MockIndex{})

	rec := postJSON(e, "/api/v1/translate", `{"text": "hola"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Signs []translator.SignPlayback `json:"signs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Signs, 1)
	assert.Equal(t, "HOLA", resp.Signs[0].Glosa)
	assert.Equal(t, 3000, resp.Signs[0].DurationMs)
}

func TestTranslateEndpointEmptyText(t *testing.T) {
	e := newTestEcho(&ai.MockLLM{}, signIndex(), &vector.MockIndex{})

	rec := postJSON(e, "/api/v1/translate", `{"text": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranslateEndpointNoMatches(t *testing.T) {
	e := newTestEcho(&ai.MockLLM{}, &vector.MockIndex{}, &vector.MockIndex{})

	rec := postJSON(e, "/api/v1/translate", `{"text": "zzzz"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"signs": []}`, rec.Body.String())
}

func TestKnowledgeEndpoint(t *testing.T) {
	knowledgeIdx := &vector.MockIndex{Results: []vector.Result{{
		ID:    "k1",
		Score: 0.7,
		Metadata: map[string]any{
			"title": "Cultura sorda",
			"text":  "La comunidad sorda...",
		},
	}}}
	e := newTestEcho(&ai.MockLLM{}, &vector.MockIndex{}, knowledgeIdx)

	rec := postJSON(e, "/api/v1/knowledge/search", `{"query": "qué es la cultura sorda"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Entries []retrieval.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "Cultura sorda", resp.Entries[0].Glosa)
}

func TestChatEndpoint(t *testing.T) {
	llm := &ai.MockLLM{Responses: []string{
		`{"thought": "busca", "tool_calls": [{"name": "buscar_sena", "arguments": {"termino": "hola"}}]}`,
		`¡La seña HOLA es muy fácil!`,
	}}
	e := newTestEcho(llm, signIndex(), &vector.MockIndex{})

	rec := postJSON(e, "/api/v1/chat", `{"text": "cómo se dice hola", "session_id": "s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string            `json:"message"`
		Entries []retrieval.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "HOLA")
	require.Len(t, resp.Entries, 1)
}

func TestChatEndpointEmptyText(t *testing.T) {
	e := newTestEcho(&ai.MockLLM{}, signIndex(), &vector.MockIndex{})

	rec := postJSON(e, "/api/v1/chat", `{"text": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
