package admin

import (
	"strconv"
	"time"

	handlershared "github.com/kosku-next/internal/http/handlers/shared"
	"github.com/kosku-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "admin_id")
}

// parseIDParam 解析路径中的数字 ID。
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "路径参数无效", err)
		return 0, false
	}
	return uint(id), true
}

// parseTimeNullable 解析可为空的 RFC3339 时间串。
func parseTimeNullable(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
