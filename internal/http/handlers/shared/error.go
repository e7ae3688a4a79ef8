package shared

import (
	"github.com/kosku-next/internal/http/response"
	"github.com/kosku-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应。业务预期内的拒绝（err 为 nil）不记日志，
// 只有带底层错误的失败才落 error 日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		appErr := response.WrapError(code, msg, err)
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, code, msg)
}
