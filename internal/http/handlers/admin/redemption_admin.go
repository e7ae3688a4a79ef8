package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/kosku-next/internal/http/handlers/shared"
	"github.com/kosku-next/internal/http/response"
	"github.com/kosku-next/internal/repository"
	"github.com/kosku-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListRedemptions 核销账本列表
func (h *Handler) ListRedemptions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.RedemptionListFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	}
	for query, target := range map[string]*uint{
		"promotion_id": &filter.PromotionID,
		"user_id":      &filter.UserID,
		"contract_id":  &filter.ContractID,
		"invoice_id":   &filter.InvoiceID,
		"coupon_id":    &filter.CouponID,
	} {
		if raw := c.Query(query); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
				*target = uint(id)
			}
		}
	}

	redemptions, total, err := h.RedemptionService.ListRedemptions(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "查询核销记录失败", err)
		return
	}
	response.SuccessWithPage(c, redemptions, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// ReleaseRedemption 释放一条预留
func (h *Handler) ReleaseRedemption(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		respondError(c, response.CodeBadRequest, "token 不能为空", nil)
		return
	}
	if err := h.RedemptionService.Release(token); err != nil {
		switch {
		case errors.Is(err, service.ErrRedemptionNotFound):
			respondError(c, response.CodeNotFound, "核销记录不存在", nil)
		case errors.Is(err, service.ErrReservationState):
			respondError(c, response.CodeBadRequest, "已确认的记录不可释放", nil)
		default:
			respondError(c, response.CodeInternal, "释放预留失败", err)
		}
		return
	}
	response.Success(c, nil)
}

// EvaluateInvoiceRequest 账单折扣试算请求
type EvaluateInvoiceRequest struct {
	Channel    string `json:"channel"`
	CouponCode string `json:"coupon_code"`
	At         string `json:"at"`
}

func (req *EvaluateInvoiceRequest) evaluationTime() (time.Time, error) {
	if req.At == "" {
		return time.Now(), nil
	}
	return time.Parse(time.RFC3339, req.At)
}

// EvaluateInvoice 试算账单可用折扣（只读，不落账）
func (h *Handler) EvaluateInvoice(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req EvaluateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	at, err := req.evaluationTime()
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间格式无效", err)
		return
	}

	ctx, err := h.ContextService.BuildForInvoice(invoiceID, req.Channel, req.CouponCode, at)
	if err != nil {
		respondEvaluateError(c, err)
		return
	}
	result, err := h.PromotionEngine.EvaluateActive(ctx)
	if err != nil {
		respondError(c, response.CodeInternal, "折扣试算失败", err)
		return
	}
	response.Success(c, result)
}

// ApplyInvoicePromotions 试算并落账：预留、确认并累加账单折扣。
func (h *Handler) ApplyInvoicePromotions(c *gin.Context) {
	invoiceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req EvaluateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	at, err := req.evaluationTime()
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间格式无效", err)
		return
	}

	ctx, err := h.ContextService.BuildForInvoice(invoiceID, req.Channel, req.CouponCode, at)
	if err != nil {
		respondEvaluateError(c, err)
		return
	}
	result, err := h.PromotionEngine.EvaluateActive(ctx)
	if err != nil {
		respondError(c, response.CodeInternal, "折扣试算失败", err)
		return
	}
	redemptions, final, err := h.RedemptionService.ApplyEvaluation(result, ctx)
	if err != nil {
		respondError(c, response.CodeInternal, "折扣落账失败", err)
		return
	}

	requestLog(c).Infow("invoice_promotions_applied",
		"invoice_id", invoiceID,
		"applied", len(final.Applied),
		"total_discount", final.TotalDiscountIDR,
	)
	response.Success(c, gin.H{
		"result":      final,
		"redemptions": redemptions,
	})
}

func respondEvaluateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvoiceNotFound):
		respondError(c, response.CodeNotFound, "账单不存在", nil)
	case errors.Is(err, service.ErrContractNotFound):
		respondError(c, response.CodeNotFound, "租约不存在", nil)
	case errors.Is(err, service.ErrRoomNotFound):
		respondError(c, response.CodeNotFound, "房间不存在", nil)
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, response.CodeNotFound, "租客不存在", nil)
	default:
		respondError(c, response.CodeInternal, "构建折扣上下文失败", err)
	}
}
