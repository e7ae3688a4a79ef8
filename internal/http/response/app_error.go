package response

// AppError 带业务状态码的错误包装，Unwrap 保留原始错误链。
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
