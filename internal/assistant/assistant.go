// Package assistant turns a handful of seed words into suggested titles with
// ordered talking points, using a chat completion model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/naqd/naqd/pkg/logging"
	"github.com/naqd/naqd/pkg/telemetry"
)

// Localized messages for assistant failures
const (
	MsgNoWords     = "يرجى إدخال كلمة واحدة على الأقل"
	MsgInvalidKey  = "مفتاح API غير صحيح. يرجى التحقق من المفتاح والمحاولة مرة أخرى"
	MsgQuota       = "تم تجاوز حد الاستخدام لمفتاح API"
	MsgUnavailable = "حدث خطأ أثناء الاتصال بالذكاء الاصطناعي. يرجى المحاولة مرة أخرى"
	MsgNoResponse  = "لم يتم الحصول على استجابة من الذكاء الاصطناعي"
)

var (
	// ErrNoWords is returned when every seed word is blank
	ErrNoWords = errors.New("assistant: no words given")
	// ErrInvalidKey is returned when the provider rejects the API key
	ErrInvalidKey = errors.New("assistant: invalid API key")
	// ErrQuotaExceeded is returned when the provider reports an exhausted quota
	ErrQuotaExceeded = errors.New("assistant: quota exceeded")
	// ErrNoResponse is returned when the completion carries no text
	ErrNoResponse = errors.New("assistant: empty completion")
)

// Message returns the localized message for an assistant error
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNoWords):
		return MsgNoWords
	case errors.Is(err, ErrInvalidKey):
		return MsgInvalidKey
	case errors.Is(err, ErrQuotaExceeded):
		return MsgQuota
	case errors.Is(err, ErrNoResponse):
		return MsgNoResponse
	default:
		return MsgUnavailable
	}
}

// Completer produces a completion for a single user prompt
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Suggestion is one proposed title with its talking points, in order
type Suggestion struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// Response holds the parsed suggestions
type Response struct {
	Titles []Suggestion `json:"titles"`
}

// Assistant builds prompts, calls the completer and parses the answer
type Assistant struct {
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates an assistant. A zero timeout leaves the caller's deadline alone.
func New(completer Completer, timeout time.Duration) *Assistant {
	return &Assistant{
		completer: completer,
		timeout:   timeout,
		logger:    logging.WithComponent("assistant"),
	}
}

// Suggest asks for titles built around words. Blank words are dropped; if
// none are left no request is made.
func (a *Assistant) Suggest(ctx context.Context, words []string) (*Response, error) {
	words = FilterWords(words)
	if len(words) == 0 {
		return nil, ErrNoWords
	}

	ctx, span := telemetry.StartSpan(ctx, "assistant.suggest")
	defer span.End()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	content, err := a.completer.Complete(ctx, BuildPrompt(words))
	if err != nil {
		a.logger.Error("Completion failed", zap.Int("words", len(words)), zap.Error(err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get suggestions: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrNoResponse
	}

	resp := &Response{Titles: Parse(content)}
	a.logger.Debug("Suggestions ready", zap.Int("titles", len(resp.Titles)))
	return resp, nil
}
