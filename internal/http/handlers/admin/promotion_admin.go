package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/kosku-next/internal/http/handlers/shared"
	"github.com/kosku-next/internal/http/response"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/repository"
	"github.com/kosku-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PromotionRequest 促销创建/更新请求
type PromotionRequest struct {
	Name             string                   `json:"name" binding:"required"`
	Slug             string                   `json:"slug" binding:"required"`
	ValidFrom        string                   `json:"valid_from"`
	ValidUntil       string                   `json:"valid_until"`
	StackMode        string                   `json:"stack_mode" binding:"required"`
	Priority         int                      `json:"priority"`
	TotalQuota       *int                     `json:"total_quota"`
	PerUserLimit     *int                     `json:"per_user_limit"`
	PerContractLimit *int                     `json:"per_contract_limit"`
	PerInvoiceLimit  *int                     `json:"per_invoice_limit"`
	PerDayLimit      *int                     `json:"per_day_limit"`
	PerMonthLimit    *int                     `json:"per_month_limit"`
	DefaultChannel   string                   `json:"default_channel"`
	RequireCoupon    bool                     `json:"require_coupon"`
	IsActive         *bool                    `json:"is_active"`
	Tags             []string                 `json:"tags"`
	Scopes           []models.PromotionScope  `json:"scopes"`
	Rules            []models.PromotionRule   `json:"rules"`
	Actions          []models.PromotionAction `json:"actions"`
}

func (req *PromotionRequest) toModel() (*models.Promotion, error) {
	validFrom, err := parseTimeNullable(req.ValidFrom)
	if err != nil {
		return nil, err
	}
	validUntil, err := parseTimeNullable(req.ValidUntil)
	if err != nil {
		return nil, err
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return &models.Promotion{
		Name:             req.Name,
		Slug:             req.Slug,
		ValidFrom:        validFrom,
		ValidUntil:       validUntil,
		StackMode:        req.StackMode,
		Priority:         req.Priority,
		TotalQuota:       req.TotalQuota,
		PerUserLimit:     req.PerUserLimit,
		PerContractLimit: req.PerContractLimit,
		PerInvoiceLimit:  req.PerInvoiceLimit,
		PerDayLimit:      req.PerDayLimit,
		PerMonthLimit:    req.PerMonthLimit,
		DefaultChannel:   req.DefaultChannel,
		RequireCoupon:    req.RequireCoupon,
		IsActive:         isActive,
		Tags:             models.StringList(req.Tags),
		Scopes:           req.Scopes,
		Rules:            req.Rules,
		Actions:          req.Actions,
	}, nil
}

func respondPromotionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPromotionNotFound):
		respondError(c, response.CodeNotFound, "促销不存在", nil)
	case errors.Is(err, service.ErrSlugTaken):
		respondError(c, response.CodeBadRequest, "slug 已被占用", nil)
	case errors.Is(err, service.ErrScopeConflict),
		errors.Is(err, service.ErrScopeInvalid),
		errors.Is(err, service.ErrRuleInvalid),
		errors.Is(err, service.ErrActionInvalid),
		errors.Is(err, service.ErrPromotionInvalid):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, "促销操作失败", err)
	}
}

// CreatePromotion 创建促销
func (h *Handler) CreatePromotion(c *gin.Context) {
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	promotion, err := req.toModel()
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间格式无效", err)
		return
	}
	if err := h.PromotionAdminService.CreatePromotion(promotion); err != nil {
		respondPromotionError(c, err)
		return
	}
	response.Success(c, promotion)
}

// UpdatePromotion 更新促销主记录
func (h *Handler) UpdatePromotion(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	promotion, err := req.toModel()
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间格式无效", err)
		return
	}
	promotion.ID = promotionID
	// 范围/规则/动作走子资源接口，主记录更新不携带
	promotion.Scopes = nil
	promotion.Rules = nil
	promotion.Actions = nil
	if err := h.PromotionAdminService.UpdatePromotion(promotion); err != nil {
		respondPromotionError(c, err)
		return
	}
	response.Success(c, promotion)
}

// DeletePromotion 删除促销
func (h *Handler) DeletePromotion(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PromotionAdminService.DeletePromotion(promotionID); err != nil {
		respondPromotionError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetPromotion 促销详情
func (h *Handler) GetPromotion(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	promotion, err := h.PromotionAdminService.GetPromotion(promotionID)
	if err != nil {
		respondPromotionError(c, err)
		return
	}
	response.Success(c, promotion)
}

// ListPromotions 促销列表
func (h *Handler) ListPromotions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.PromotionListFilter{
		Keyword:   strings.TrimSpace(c.Query("keyword")),
		StackMode: strings.TrimSpace(c.Query("stack_mode")),
		Channel:   strings.TrimSpace(c.Query("channel")),
		Tag:       strings.TrimSpace(c.Query("tag")),
		Page:      page,
		PageSize:  pageSize,
	}
	if isActive := c.Query("is_active"); isActive != "" {
		value := isActive == "true" || isActive == "1"
		filter.IsActive = &value
	}

	promotions, total, err := h.PromotionAdminService.ListPromotions(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "查询促销列表失败", err)
		return
	}
	response.SuccessWithPage(c, promotions, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// AddScope 新增范围
func (h *Handler) AddScope(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var scope models.PromotionScope
	if err := c.ShouldBindJSON(&scope); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	created, err := h.PromotionAdminService.AddScope(promotionID, scope)
	if err != nil {
		respondPromotionError(c, err)
		return
	}
	response.Success(c, created)
}

// UpdateScope 更新范围
func (h *Handler) UpdateScope(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	scopeID, ok := parseIDParam(c, "scope_id")
	if !ok {
		return
	}
	var scope models.PromotionScope
	if err := c.ShouldBindJSON(&scope); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	updated, err := h.PromotionAdminService.UpdateScope(promotionID, scopeID, scope)
	if err != nil {
		respondPromotionError(c, err)
		return
	}
	response.Success(c, updated)
}

// DeleteScope 删除范围
func (h *Handler) DeleteScope(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	scopeID, ok := parseIDParam(c, "scope_id")
	if !ok {
		return
	}
	if err := h.PromotionAdminService.DeleteScope(promotionID, scopeID); err != nil {
		respondPromotionError(c, err)
		return
	}
	response.Success(c, nil)
}

// AddRule 新增规则
func (h *Handler) AddRule(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var rule models.PromotionRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	created, err := h.PromotionAdminService.AddRule(promotionID, rule)
	if err != nil {
		respondPromotionError(c, err)
		return
	}
	response.Success(c, created)
}

// DeleteRule 删除规则
func (h *Handler) DeleteRule(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ruleID, ok := parseIDParam(c, "rule_id")
	if !ok {
		return
	}
	if err := h.PromotionAdminService.DeleteRule(promotionID, ruleID); err != nil {
		respondPromotionError(c, err)
		return
	}
	response.Success(c, nil)
}

// AddAction 新增动作
func (h *Handler) AddAction(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var action models.PromotionAction
	if err := c.ShouldBindJSON(&action); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	created, err := h.PromotionAdminService.AddAction(promotionID, action)
	if err != nil {
		respondPromotionError(c, err)
		return
	}
	response.Success(c, created)
}

// DeleteAction 删除动作
func (h *Handler) DeleteAction(c *gin.Context) {
	promotionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actionID, ok := parseIDParam(c, "action_id")
	if !ok {
		return
	}
	if err := h.PromotionAdminService.DeleteAction(promotionID, actionID); err != nil {
		respondPromotionError(c, err)
		return
	}
	response.Success(c, nil)
}
