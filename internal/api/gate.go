package api

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/naqd/naqd/internal/gate"
)

// GateAPI provides the gate.* methods
type GateAPI struct {
	clients *clients
}

// NewGateAPI creates a new gate API
func NewGateAPI(cl *clients) *GateAPI {
	return &GateAPI{clients: cl}
}

type authenticateParams struct {
	Password string `json:"password"`
	Action   string `json:"action"`
}

type statusParams struct {
	Action string `json:"action"`
}

type verifyParams struct {
	Password string `json:"password"`
	Type     string `json:"type"`
}

// VerifyResult is the answer of gate.verify_password
type VerifyResult struct {
	IsValid bool `json:"isValid"`
}

func parseAction(s string) (gate.Action, error) {
	if s == "" {
		return gate.ActionAuth, nil
	}
	action, err := gate.ParseAction(s)
	if err != nil {
		return "", invalidParams(MsgInvalidParams).WithCause(err)
	}
	return action, nil
}

// Authenticate handles gate.authenticate. A wrong password is a normal
// result carrying the remaining attempts; a locked gate is an error.
func (g *GateAPI) Authenticate(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p authenticateParams
	if err := bindParams(params, &p); err != nil {
		return nil, err
	}
	action, err := parseAction(p.Action)
	if err != nil {
		return nil, err
	}

	res, err := g.clients.gate(c, action).Authenticate(c.Request.Context(), p.Password)
	if errors.Is(err, gate.ErrDisabled) {
		return nil, lockedOut(res)
	}
	if err != nil {
		return nil, serverError(MsgGateFailed, err)
	}
	return res, nil
}

// Status handles gate.status
func (g *GateAPI) Status(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p statusParams
	if err := bindParams(params, &p); err != nil {
		return nil, err
	}
	action, err := parseAction(p.Action)
	if err != nil {
		return nil, err
	}

	status, err := g.clients.gate(c, action).Status(c.Request.Context())
	if err != nil {
		return nil, serverError(MsgGateFailed, err)
	}
	return status, nil
}

// VerifyPassword handles gate.verify_password. The attempt goes through the
// caller's gate for that action, so guesses count against the same lockout
// as gate.authenticate and the delete methods; a disabled gate is not checked.
func (g *GateAPI) VerifyPassword(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p verifyParams
	if err := bindParams(params, &p); err != nil {
		return nil, err
	}
	action, err := parseAction(p.Type)
	if err != nil {
		return nil, err
	}

	res, err := g.clients.gate(c, action).Authenticate(c.Request.Context(), p.Password)
	if errors.Is(err, gate.ErrDisabled) {
		return nil, lockedOut(res)
	}
	if err != nil {
		return nil, serverError(MsgGateFailed, err)
	}
	if !res.Valid && res.Disabled {
		return nil, lockedOut(res)
	}
	return VerifyResult{IsValid: res.Valid}, nil
}
