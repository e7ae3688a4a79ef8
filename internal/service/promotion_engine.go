package service

import (
	"time"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/repository"

	"github.com/shopspring/decimal"
)

// AppliedPromotion 最终生效的促销及其折扣额。
type AppliedPromotion struct {
	PromotionID uint              `json:"promotion_id"`
	Slug        string            `json:"slug"`
	Name        string            `json:"name"`
	StackMode   string            `json:"stack_mode"`
	CouponID    *uint             `json:"coupon_id,omitempty"`
	Breakdown   DiscountBreakdown `json:"breakdown"`
	DiscountIDR models.Money      `json:"discount_idr"`
}

// RejectedPromotion 被排除的促销与原因，供诊断使用。
type RejectedPromotion struct {
	PromotionID uint   `json:"promotion_id"`
	Slug        string `json:"slug"`
	Reason      string `json:"reason"`
}

// DiscountResult 一次评估的产出。
type DiscountResult struct {
	Applied          []AppliedPromotion  `json:"applied"`
	Rejected         []RejectedPromotion `json:"rejected"`
	TotalDiscountIDR models.Money        `json:"total_discount_idr"`
}

// PromotionEngine 促销评估引擎：范围→规则→计算→叠加的纯计算管线，
// 限额与配额在预留阶段（RedemptionService）另行裁决。
type PromotionEngine struct {
	promotionRepo repository.PromotionRepository
	couponRepo    repository.PromotionCouponRepository
}

// NewPromotionEngine 创建促销评估引擎
func NewPromotionEngine(promotionRepo repository.PromotionRepository, couponRepo repository.PromotionCouponRepository) *PromotionEngine {
	return &PromotionEngine{
		promotionRepo: promotionRepo,
		couponRepo:    couponRepo,
	}
}

// EvaluateActive 加载评估时刻启用的促销并执行评估。
func (e *PromotionEngine) EvaluateActive(ctx DiscountContext) (*DiscountResult, error) {
	promotions, err := e.promotionRepo.ListActiveAt(ctx.Date)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(promotions, ctx)
}

// Evaluate 对给定促销集执行完整评估管线。
// 每个被排除的促销都带原因进入 Rejected，评估本身不产生副作用。
func (e *PromotionEngine) Evaluate(promotions []models.Promotion, ctx DiscountContext) (*DiscountResult, error) {
	result := &DiscountResult{
		Applied:  []AppliedPromotion{},
		Rejected: []RejectedPromotion{},
	}

	var candidates []DiscountCandidate
	for i := range promotions {
		promotion := &promotions[i]

		if reason := checkWindow(promotion, ctx.Date); reason != "" {
			result.Rejected = append(result.Rejected, rejected(promotion, reason))
			continue
		}

		couponID, reason, err := e.resolveCouponGate(promotion, ctx)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			result.Rejected = append(result.Rejected, rejected(promotion, reason))
			continue
		}

		if !ScopeMatches(promotion.Scopes, ctx.Room) {
			result.Rejected = append(result.Rejected, rejected(promotion, constants.RejectReasonScopeMismatch))
			continue
		}

		matched, rule := RuleSetMatches(promotion.Rules, ctx)
		if !matched {
			result.Rejected = append(result.Rejected, rejected(promotion, constants.RejectReasonRuleNotMatched))
			continue
		}

		breakdown := ComputeActions(promotion.Actions, rule, ctx)
		if breakdown.IsZero() {
			result.Rejected = append(result.Rejected, rejected(promotion, constants.RejectReasonZeroDiscount))
			continue
		}

		candidates = append(candidates, DiscountCandidate{
			Promotion: promotion,
			Breakdown: breakdown,
			CouponID:  couponID,
		})
	}

	outcome := ResolveStack(candidates, ctx)
	for _, loser := range outcome.Rejected {
		result.Rejected = append(result.Rejected, rejected(loser.Promotion, constants.RejectReasonStackConflict))
	}

	total := decimal.Zero
	for _, winner := range outcome.Applied {
		amount := winner.Breakdown.Total()
		if !amount.Decimal.IsPositive() {
			result.Rejected = append(result.Rejected, rejected(winner.Promotion, constants.RejectReasonZeroDiscount))
			continue
		}
		result.Applied = append(result.Applied, AppliedPromotion{
			PromotionID: winner.Promotion.ID,
			Slug:        winner.Promotion.Slug,
			Name:        winner.Promotion.Name,
			StackMode:   winner.Promotion.StackMode,
			CouponID:    winner.CouponID,
			Breakdown:   winner.Breakdown,
			DiscountIDR: amount,
		})
		total = total.Add(amount.Decimal)
	}
	result.TotalDiscountIDR = models.NewMoneyFromDecimal(total)
	return result, nil
}

// checkWindow 启用状态与有效期过滤，有效期两端均为闭边界。
func checkWindow(promotion *models.Promotion, at time.Time) string {
	if !promotion.IsActive {
		return constants.RejectReasonInactive
	}
	if promotion.ValidFrom != nil && at.Before(*promotion.ValidFrom) {
		return constants.RejectReasonNotStarted
	}
	if promotion.ValidUntil != nil && at.After(*promotion.ValidUntil) {
		return constants.RejectReasonExpired
	}
	return ""
}

// resolveCouponGate 处理必须优惠码的促销：未携码直接短路，
// 携码但不属于该促销或不可用时按原因排除；返回命中的优惠码ID。
func (e *PromotionEngine) resolveCouponGate(promotion *models.Promotion, ctx DiscountContext) (*uint, string, error) {
	if !promotion.RequireCoupon {
		return nil, "", nil
	}
	if ctx.CouponCode == "" {
		return nil, constants.RejectReasonCouponRequired, nil
	}

	coupon, err := e.couponRepo.GetByPromotionAndCode(promotion.ID, ctx.CouponCode)
	if err != nil {
		return nil, "", err
	}
	if coupon == nil {
		return nil, constants.RejectReasonCouponMismatch, nil
	}
	// 不可用原因原样透出（coupon_inactive/coupon_expired/coupon_exhausted），便于后台排查
	if reason := couponUnusableReason(coupon, ctx.Date); reason != "" {
		return nil, "coupon_" + reason, nil
	}
	id := coupon.ID
	return &id, "", nil
}

// couponUnusableReason 优惠码不可用原因；可用返回空串。
func couponUnusableReason(coupon *models.PromotionCoupon, at time.Time) string {
	if coupon == nil {
		return constants.CouponReasonNotFound
	}
	if !coupon.IsActive {
		return constants.CouponReasonInactive
	}
	if coupon.ExpiresAt != nil && !at.Before(*coupon.ExpiresAt) {
		return constants.CouponReasonExpired
	}
	if coupon.MaxRedemptions != nil && coupon.RedeemedCount >= *coupon.MaxRedemptions {
		return constants.CouponReasonExhausted
	}
	return ""
}

func rejected(promotion *models.Promotion, reason string) RejectedPromotion {
	return RejectedPromotion{
		PromotionID: promotion.ID,
		Slug:        promotion.Slug,
		Reason:      reason,
	}
}

// ActivePromotionsForRoom 列出指定时间点对某房间可见的促销（范围命中即可，不评估规则）。
func (e *PromotionEngine) ActivePromotionsForRoom(room RoomRef, at time.Time) ([]models.Promotion, error) {
	promotions, err := e.promotionRepo.ListActiveAt(at)
	if err != nil {
		return nil, err
	}
	matched := make([]models.Promotion, 0, len(promotions))
	for _, promotion := range promotions {
		if ScopeMatches(promotion.Scopes, room) {
			matched = append(matched, promotion)
		}
	}
	return matched, nil
}
