package errs

import (
	"errors"
	"strconv"
)

// 网关内部错误码
const (
	CodeNoHandler    = 1001
	CodeConnNotFound = 1002
	CodeBadPayload   = 1003
	CodeRateLimited  = 1004
	CodeNotReady     = 1005
)

var (
	ErrNoHandler    = NewCodeError(CodeNoHandler, "no handler for event")
	ErrConnNotFound = NewCodeError(CodeConnNotFound, "connection not found")
	ErrBadPayload   = NewCodeError(CodeBadPayload, "malformed payload")
	ErrRateLimited  = NewCodeError(CodeRateLimited, "rate limited")
	ErrNotReady     = NewCodeError(CodeNotReady, "component not initialized")
)

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

// WithDetail 追加上下文，不修改原错误
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

func (e *CodeError) Error() string {
	s := strconv.Itoa(e.Code) + " " + e.Msg
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}

// Is 按错误码比较，配合 errors.Is 使用
func (e *CodeError) Is(target error) bool {
	var t *CodeError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}
