package service

import (
	"strings"
	"time"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/repository"
)

// CouponStatus 优惠码校验结果。
type CouponStatus struct {
	Valid       bool   `json:"valid"`
	Reason      string `json:"reason,omitempty"`
	PromotionID uint   `json:"promotion_id,omitempty"`
	CouponID    uint   `json:"coupon_id,omitempty"`
}

// CouponService 优惠码校验服务
type CouponService struct {
	couponRepo repository.PromotionCouponRepository
}

// NewCouponService 创建优惠码校验服务
func NewCouponService(couponRepo repository.PromotionCouponRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo}
}

// ValidateCoupon 校验优惠码可用性。promotionID 为 0 时跨促销按码查找。
// 校验为只读快照，不占用配额；最终裁决仍在预留事务内进行。
func (s *CouponService) ValidateCoupon(code string, promotionID uint) (*CouponStatus, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return &CouponStatus{Valid: false, Reason: constants.CouponReasonNotFound}, nil
	}

	var coupon *models.PromotionCoupon
	var err error
	if promotionID > 0 {
		coupon, err = s.couponRepo.GetByPromotionAndCode(promotionID, trimmed)
	} else {
		coupon, err = s.couponRepo.GetByCode(trimmed)
	}
	if err != nil {
		return nil, err
	}

	if reason := couponUnusableReason(coupon, time.Now()); reason != "" {
		status := &CouponStatus{Valid: false, Reason: reason}
		if coupon != nil {
			status.PromotionID = coupon.PromotionID
			status.CouponID = coupon.ID
		}
		return status, nil
	}

	return &CouponStatus{
		Valid:       true,
		PromotionID: coupon.PromotionID,
		CouponID:    coupon.ID,
	}, nil
}
