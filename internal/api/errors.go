package api

import (
	"fmt"

	"github.com/naqd/naqd/internal/gate"
)

// Application error codes, next to the standard JSON-RPC ones
const (
	CodeServerError     = -32000
	CodeAuthFailed      = -32001
	CodeUnauthenticated = -32002
	CodeLockedOut       = -32003
	CodeNotFound        = -32004
)

// Localized messages returned in error responses
const (
	MsgPostCreateFailed     = "حدث خطأ أثناء نشر المقال. يرجى المحاولة مرة أخرى."
	MsgCommentCreateFailed  = "حدث خطأ أثناء نشر التعليق. يرجى المحاولة مرة أخرى."
	MsgPostLoadFailed       = "حدث خطأ أثناء تحميل المقال. يرجى تحديث الصفحة."
	MsgPostsLoadFailed      = "حدث خطأ أثناء تحميل المنشورات. يرجى تحديث الصفحة."
	MsgLatestLoadFailed     = "حدث خطأ أثناء تحميل التعليقات الأخيرة"
	MsgPostDeleteFailed     = "حدث خطأ أثناء حذف المقال. يرجى المحاولة مرة أخرى."
	MsgCommentDeleteFailed  = "حدث خطأ أثناء حذف التعليق. يرجى المحاولة مرة أخرى."
	MsgPostNotFound         = "المقال غير موجود"
	MsgCommentNotFound      = "التعليق غير موجود"
	MsgParentNotFound       = "التعليق الأصلي غير موجود في هذا المقال"
	MsgAuthRequired         = "يرجى إدخال كلمة المرور أولاً"
	MsgGateFailed           = "حدث خطأ أثناء التحقق من كلمة المرور. يرجى المحاولة مرة أخرى."
	MsgInvalidParams        = "معاملات غير صالحة"
	MsgAssistantUnavailable = "المساعد غير متاح حالياً"
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
	Data    interface{}
	cause   error
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("API error %d: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.cause
}

// WithData attaches structured data to the error response
func (e *Error) WithData(data interface{}) *Error {
	e.Data = data
	return e
}

// WithCause records the error that led to e. It is logged, never sent.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

func invalidParams(message string) *Error {
	return NewError(ErrInvalidParams, message)
}

func serverError(message string, cause error) *Error {
	return NewError(CodeServerError, message).WithCause(cause)
}

func notFound(message string) *Error {
	return NewError(CodeNotFound, message)
}

func lockedOut(res gate.Result) *Error {
	return NewError(CodeLockedOut, gate.MsgLockedOut).WithData(res)
}

func wrongPassword(res gate.Result) *Error {
	return NewError(CodeAuthFailed, fmt.Sprintf(gate.MsgWrongPassword, res.Remaining)).WithData(res)
}
