package errorutil

import (
	"context"
	"errors"
	"fmt"
)

const (
	CodeBadRequest = 400
	CodeNotFound   = 404
	CodeInternal   = 500
)

// Error 错误结构（包含可重试标记）
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Retriable 创建可重试错误（存储不可达、超时等临时故障）
func Retriable(message string) *Error {
	return &Error{
		Code:      CodeInternal,
		Message:   message,
		Retryable: true,
	}
}

// RetriableWithDetails 创建可重试错误（带详细信息）
func RetriableWithDetails(message string, details string) *Error {
	e := Retriable(message)
	e.DevDetails = details
	return e
}

// NonRetriable 创建不可重试错误（参数错误、任务格式错误等）
func NonRetriable(message string) *Error {
	return &Error{
		Code:      CodeBadRequest,
		Message:   message,
		Retryable: false,
	}
}

// NonRetriableWithDetails 创建不可重试错误（带详细信息）
func NonRetriableWithDetails(message string, details string) *Error {
	e := NonRetriable(message)
	e.DevDetails = details
	return e
}

// NotFound 资源不存在
func NotFound(message string) *Error {
	return &Error{
		Code:      CodeNotFound,
		Message:   message,
		Retryable: false,
	}
}

// Wrap 包装错误，超时与取消视为可重试
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	// 已经是 Error 类型（含被 %w 包装的情况）直接返回
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return RetriableWithDetails(err.Error(), fmt.Sprintf("%+v", err))
	}

	// 默认为不可重试错误
	return &Error{
		Code:       CodeInternal,
		Message:    err.Error(),
		Retryable:  false,
		DevDetails: fmt.Sprintf("%+v", err),
	}
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	e := Wrap(err)
	return e != nil && e.Retryable
}

// UnWrapResponse 解包错误（用于 Response）
func UnWrapResponse(err error) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err)
}
