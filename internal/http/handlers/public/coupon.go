package public

import (
	"github.com/kosku-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CheckCouponRequest 优惠码校验请求
type CheckCouponRequest struct {
	Code        string `json:"code" binding:"required"`
	PromotionID uint   `json:"promotion_id"`
}

// CheckCoupon 校验优惠码可用性（只读快照，不占配额）
func (h *Handler) CheckCoupon(c *gin.Context) {
	var req CheckCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	status, err := h.CouponService.ValidateCoupon(req.Code, req.PromotionID)
	if err != nil {
		respondError(c, response.CodeInternal, "优惠码校验失败", err)
		return
	}
	response.Success(c, status)
}
