package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/kosku-next/internal/http/handlers/shared"
	"github.com/kosku-next/internal/http/response"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/repository"
	"github.com/kosku-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CouponRequest 优惠码创建/更新请求
type CouponRequest struct {
	Code           string `json:"code" binding:"required"`
	IsActive       *bool  `json:"is_active"`
	MaxRedemptions *int   `json:"max_redemptions"`
	ExpiresAt      string `json:"expires_at"`
}

func (req *CouponRequest) toModel() (models.PromotionCoupon, error) {
	expiresAt, err := parseTimeNullable(req.ExpiresAt)
	if err != nil {
		return models.PromotionCoupon{}, err
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return models.PromotionCoupon{
		Code:           req.Code,
		IsActive:       isActive,
		MaxRedemptions: req.MaxRedemptions,
		ExpiresAt:      expiresAt,
	}, nil
}

func respondCouponError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPromotionNotFound):
		respondError(c, response.CodeNotFound, "促销不存在", nil)
	case errors.Is(err, service.ErrCouponNotFound):
		respondError(c, response.CodeNotFound, "优惠码不存在", nil)
	case errors.Is(err, service.ErrCouponCodeTaken):
		respondError(c, response.CodeBadRequest, "优惠码已存在", nil)
	case errors.Is(err, service.ErrPromotionInvalid):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, "优惠码操作失败", err)
	}
}

// CreateCoupon 创建优惠码
func (h *Handler) CreateCoupon(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	input, err := req.toModel()
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间格式无效", err)
		return
	}
	coupon, err := h.PromotionAdminService.CreateCoupon(promotionID, input)
	if err != nil {
		respondCouponError(c, err)
		return
	}
	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠码
func (h *Handler) UpdateCoupon(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	couponID, ok := parseIDParam(c, "coupon_id")
	if !ok {
		return
	}
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	input, err := req.toModel()
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间格式无效", err)
		return
	}
	coupon, err := h.PromotionAdminService.UpdateCoupon(promotionID, couponID, input)
	if err != nil {
		respondCouponError(c, err)
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠码
func (h *Handler) DeleteCoupon(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	couponID, ok := parseIDParam(c, "coupon_id")
	if !ok {
		return
	}
	if err := h.PromotionAdminService.DeleteCoupon(promotionID, couponID); err != nil {
		respondCouponError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListCoupons 优惠码列表
func (h *Handler) ListCoupons(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.CouponListFilter{
		PromotionID: promotionID,
		Code:        strings.TrimSpace(c.Query("code")),
		Page:        page,
		PageSize:    pageSize,
	}
	if isActive := c.Query("is_active"); isActive != "" {
		value := isActive == "true" || isActive == "1"
		filter.IsActive = &value
	}

	coupons, total, err := h.PromotionAdminService.ListCoupons(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "查询优惠码列表失败", err)
		return
	}
	response.SuccessWithPage(c, coupons, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// RecountCoupon 触发优惠码计数对账任务
func (h *Handler) RecountCoupon(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	couponID, ok := parseIDParam(c, "coupon_id")
	if !ok {
		return
	}
	if err := h.PromotionAdminService.RequestCouponRecount(promotionID, couponID); err != nil {
		respondCouponError(c, err)
		return
	}
	response.Success(c, gin.H{"enqueued_at": time.Now()})
}
