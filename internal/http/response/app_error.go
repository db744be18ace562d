package response

import "fmt"

// AppError 带业务状态码的错误，供处理器层与日志共享
type AppError struct {
	Code    int
	Message string
	Err     error
}

// WrapError 把底层错误包装为业务错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 暴露底层错误，支持 errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}
