package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/naqd/naqd/pkg/logging"
	"github.com/naqd/naqd/pkg/telemetry"
)

// JSONRPCRequest represents a JSON-RPC 2.0 request
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// MarshalJSON always writes result on success, as null when there is none
func (r JSONRPCResponse) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		type failure struct {
			JSONRPC string        `json:"jsonrpc"`
			ID      interface{}   `json:"id"`
			Error   *JSONRPCError `json:"error"`
		}
		return json.Marshal(failure{JSONRPC: r.JSONRPC, ID: r.ID, Error: r.Error})
	}
	type success struct {
		JSONRPC string      `json:"jsonrpc"`
		ID      interface{} `json:"id"`
		Result  interface{} `json:"result"`
	}
	return json.Marshal(success{JSONRPC: r.JSONRPC, ID: r.ID, Result: r.Result})
}

// JSONRPCError represents a JSON-RPC error
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MethodHandler is a function that handles a JSON-RPC method
type MethodHandler func(ctx *gin.Context, params json.RawMessage) (interface{}, error)

// JSONRPCHandler handles JSON-RPC requests
type JSONRPCHandler struct {
	methods map[string]MethodHandler
	logger  *zap.Logger
}

// NewJSONRPCHandler creates a new JSON-RPC handler
func NewJSONRPCHandler() *JSONRPCHandler {
	return &JSONRPCHandler{
		methods: make(map[string]MethodHandler),
		logger:  logging.WithComponent("jsonrpc"),
	}
}

// RegisterMethod registers a method handler
func (h *JSONRPCHandler) RegisterMethod(method string, handler MethodHandler) {
	h.methods[method] = handler
}

// Methods returns the number of registered methods
func (h *JSONRPCHandler) Methods() int {
	return len(h.methods)
}

// Handle handles a JSON-RPC request
func (h *JSONRPCHandler) Handle(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "jsonrpc.handle")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req JSONRPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, nil, NewError(ErrParseError, "Parse error").WithCause(err))
		return
	}

	if req.JSONRPC != "2.0" {
		h.sendError(c, req.ID, NewError(ErrInvalidRequest, "Invalid Request").WithCause(fmt.Errorf("invalid jsonrpc version")))
		return
	}

	handler, ok := h.methods[req.Method]
	if !ok {
		h.sendError(c, req.ID, NewError(ErrMethodNotFound, "Method not found").WithCause(fmt.Errorf("method %s not found", req.Method)))
		return
	}
	span.SetAttributes(attribute.String("rpc.method", req.Method))

	result, err := handler(c, req.Params)
	if err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			apiErr = NewError(CodeServerError, "Server error").WithCause(err)
		}
		span.RecordError(err)
		h.sendError(c, req.ID, apiErr)
		return
	}

	h.sendResponse(c, req.ID, result)
}

// sendResponse sends a successful JSON-RPC response
func (h *JSONRPCHandler) sendResponse(c *gin.Context, id interface{}, result interface{}) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	c.JSON(http.StatusOK, resp)
}

// sendError sends an error JSON-RPC response. Causes are logged, never sent.
func (h *JSONRPCHandler) sendError(c *gin.Context, id interface{}, apiErr *Error) {
	fields := []zap.Field{zap.Int("code", apiErr.Code), zap.String("message", apiErr.Message)}
	if apiErr.cause != nil {
		fields = append(fields, zap.Error(apiErr.cause))
	}
	logger := logging.FromContext(c.Request.Context(), h.logger)
	if id := ClientID(c); id != "" {
		logger = logging.WithClient(logger, id)
	}
	if apiErr.Code == CodeServerError || apiErr.Code == ErrInternalError {
		logger.Error("JSON-RPC error", fields...)
	} else {
		logger.Debug("JSON-RPC error", fields...)
	}

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Data:    apiErr.Data,
		},
	}
	c.JSON(http.StatusOK, resp)
}

// bindParams decodes method params into dst. Absent or null params leave
// dst untouched.
func bindParams(params json.RawMessage, dst interface{}) error {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return invalidParams(MsgInvalidParams).WithCause(err)
	}
	return nil
}

// Standard JSON-RPC error codes
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32603
)
