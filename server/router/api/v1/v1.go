// Package v1 exposes the translation core over HTTP.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/signos-ai/signos/plugin/ai/agent"
	corerr "github.com/signos-ai/signos/internal/errors"
	"github.com/signos-ai/signos/server/service/translator"
)

// APIV1Service registers the public endpoints on an echo group.
type APIV1Service struct {
	translator *translator.Service
}

func NewAPIV1Service(svc *translator.Service) *APIV1Service {
	return &APIV1Service{translator: svc}
}

func (s *APIV1Service) Register(g *echo.Group) {
	g.POST("/translate", s.translate)
	g.POST("/knowledge/search", s.searchKnowledge)
	g.POST("/chat", s.chat)
}

type translateRequest struct {
	Text string `json:"text"`
}

type translateResponse struct {
	Signs []translator.SignPlayback `json:"signs"`
}

func (s *APIV1Service) translate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	signs, err := s.translator.TranslateToSigns(c.Request().Context(), req.Text)
	if err != nil {
		return httpError(err)
	}
	if signs == nil {
		signs = []translator.SignPlayback{}
	}
	return c.JSON(http.StatusOK, translateResponse{Signs: signs})
}

type knowledgeRequest struct {
	Query string `json:"query"`
}

func (s *APIV1Service) searchKnowledge(c echo.Context) error {
	var req knowledgeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	entries, err := s.translator.SearchKnowledge(c.Request().Context(), req.Query)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}

type chatRequest struct {
	Text      string       `json:"text"`
	SessionID string       `json:"session_id"`
	History   []agent.Turn `json:"history,omitempty"`
}

func (s *APIV1Service) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	result, err := s.translator.ProcessTurn(c.Request().Context(), req.Text, &agent.ConversationContext{
		SessionID: req.SessionID,
		Turns:     req.History,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": result.Message,
		"entries": result.Entries,
	})
}

// httpError maps core error codes to HTTP statuses.
func httpError(err error) *echo.HTTPError {
	switch corerr.CodeOf(err, "") {
	case corerr.ErrCodeInvalidInput:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case corerr.ErrCodeRetrievalUnavailable, corerr.ErrCodeLLMUnavailable:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "upstream service unavailable")
	case corerr.ErrCodeTimeout:
		return echo.NewHTTPError(http.StatusGatewayTimeout, "request timed out")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
