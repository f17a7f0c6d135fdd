package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/naqd/naqd/internal/assistant"
)

// Suggester produces writing suggestions
type Suggester interface {
	Suggest(ctx context.Context, words []string) (*assistant.Response, error)
}

// AssistantAPI provides the assistant.* methods. The provider credential
// stays on the server; clients only ever see suggestions.
type AssistantAPI struct {
	suggester Suggester
}

// NewAssistantAPI creates a new assistant API. A nil suggester answers every
// call with an unavailable error.
func NewAssistantAPI(s Suggester) *AssistantAPI {
	return &AssistantAPI{suggester: s}
}

type suggestParams struct {
	Words []string `json:"words"`
}

// Suggest handles assistant.suggest
func (a *AssistantAPI) Suggest(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p suggestParams
	if err := bindParams(params, &p); err != nil {
		return nil, err
	}
	if len(assistant.FilterWords(p.Words)) == 0 {
		return nil, invalidParams(assistant.MsgNoWords)
	}
	if a.suggester == nil {
		return nil, serverError(MsgAssistantUnavailable, errors.New("assistant not configured"))
	}

	resp, err := a.suggester.Suggest(c.Request.Context(), p.Words)
	if err != nil {
		if errors.Is(err, assistant.ErrNoWords) {
			return nil, invalidParams(assistant.MsgNoWords)
		}
		return nil, serverError(assistant.Message(err), err)
	}
	return resp, nil
}
