package service

import (
	"errors"
	"testing"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/repository"

	"gorm.io/gorm"
)

func newAdminService(db *gorm.DB) *PromotionAdminService {
	return NewPromotionAdminService(
		repository.NewPromotionRepository(db),
		repository.NewPromotionCouponRepository(db),
		nil,
	)
}

func validPromotion(slug string) *models.Promotion {
	return &models.Promotion{
		Name:      "促销 " + slug,
		Slug:      slug,
		StackMode: constants.StackModeStack,
		IsActive:  true,
	}
}

func TestCreatePromotionValidation(t *testing.T) {
	db := setupPromotionTest(t)
	svc := newAdminService(db)

	if err := svc.CreatePromotion(validPromotion("promo-maret")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// slug 冲突
	if err := svc.CreatePromotion(validPromotion("promo-maret")); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("重复 slug 应失败, got %v", err)
	}

	// slug 非法格式
	bad := validPromotion("Promo Maret!")
	if err := svc.CreatePromotion(bad); !errors.Is(err, ErrPromotionInvalid) {
		t.Fatalf("非法 slug 应失败, got %v", err)
	}

	// 未知叠加模式
	mode := validPromotion("promo-april")
	mode.StackMode = "first_only"
	if err := svc.CreatePromotion(mode); !errors.Is(err, ErrPromotionInvalid) {
		t.Fatalf("未知叠加模式应失败, got %v", err)
	}

	// 负限额
	quota := validPromotion("promo-mei")
	quota.TotalQuota = intPtr(-1)
	if err := svc.CreatePromotion(quota); !errors.Is(err, ErrPromotionInvalid) {
		t.Fatalf("负限额应失败, got %v", err)
	}
}

func TestUpdatePromotionKeepsOwnSlug(t *testing.T) {
	db := setupPromotionTest(t)
	svc := newAdminService(db)

	promotion := validPromotion("promo-juni")
	if err := svc.CreatePromotion(promotion); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 保留自身 slug 的更新不触发冲突
	promotion.Name = "改名"
	if err := svc.UpdatePromotion(promotion); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	other := validPromotion("promo-juli")
	if err := svc.CreatePromotion(other); err != nil {
		t.Fatalf("create other failed: %v", err)
	}
	other.Slug = "promo-juni"
	if err := svc.UpdatePromotion(other); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("改为他人 slug 应失败, got %v", err)
	}
}

func TestAddScopeConflict(t *testing.T) {
	db := setupPromotionTest(t)
	svc := newAdminService(db)

	promotion := validPromotion("promo-scope")
	if err := svc.CreatePromotion(promotion); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.AddScope(promotion.ID, models.PromotionScope{
		ScopeType:  constants.ScopeTypeRoomType,
		RoomTypeID: uintPtr(5),
	}); err != nil {
		t.Fatalf("add scope failed: %v", err)
	}

	// room_type 已存在时楼栋范围冗余
	if _, err := svc.AddScope(promotion.ID, models.PromotionScope{
		ScopeType:  constants.ScopeTypeBuilding,
		BuildingID: uintPtr(1),
	}); !errors.Is(err, ErrScopeConflict) {
		t.Fatalf("范围冲突应失败, got %v", err)
	}

	// 目标缺失
	if _, err := svc.AddScope(promotion.ID, models.PromotionScope{
		ScopeType: constants.ScopeTypeRoom,
	}); !errors.Is(err, ErrScopeInvalid) {
		t.Fatalf("缺少目标应失败, got %v", err)
	}
}

func TestAddActionValidation(t *testing.T) {
	db := setupPromotionTest(t)
	svc := newAdminService(db)

	promotion := validPromotion("promo-action")
	if err := svc.CreatePromotion(promotion); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.AddAction(promotion.ID, models.PromotionAction{
		ActionType:    constants.ActionTypePercent,
		AppliesToRent: true,
		PercentBps:    12000,
	}); !errors.Is(err, ErrActionInvalid) {
		t.Fatalf("bps 超出上限应失败, got %v", err)
	}

	action, err := svc.AddAction(promotion.ID, models.PromotionAction{
		ActionType:    constants.ActionTypePercent,
		AppliesToRent: true,
		PercentBps:    1500,
	})
	if err != nil {
		t.Fatalf("add action failed: %v", err)
	}
	if action.ID == 0 {
		t.Fatalf("动作应已持久化")
	}
}

func TestCouponCRUD(t *testing.T) {
	db := setupPromotionTest(t)
	svc := newAdminService(db)

	promotion := validPromotion("promo-kupon")
	if err := svc.CreatePromotion(promotion); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	coupon, err := svc.CreateCoupon(promotion.ID, models.PromotionCoupon{
		Code:     "MARET26",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	// 促销内码唯一
	if _, err := svc.CreateCoupon(promotion.ID, models.PromotionCoupon{
		Code: "MARET26",
	}); !errors.Is(err, ErrCouponCodeTaken) {
		t.Fatalf("重复优惠码应失败, got %v", err)
	}

	// redeemed_count 由服务端维护，更新不可篡改
	updated, err := svc.UpdateCoupon(promotion.ID, coupon.ID, models.PromotionCoupon{
		Code:          "MARET26",
		IsActive:      false,
		RedeemedCount: 99,
	})
	if err != nil {
		t.Fatalf("update coupon failed: %v", err)
	}
	if updated.RedeemedCount != 0 {
		t.Fatalf("核销计数不应被更新覆盖, got %d", updated.RedeemedCount)
	}
	if updated.IsActive {
		t.Fatalf("启用状态应已更新")
	}

	if err := svc.DeleteCoupon(promotion.ID, coupon.ID); err != nil {
		t.Fatalf("delete coupon failed: %v", err)
	}
	if _, err := svc.GetPromotion(promotion.ID); err != nil {
		t.Fatalf("促销应仍然存在: %v", err)
	}
}

func TestCreateCouponPersistsDisabled(t *testing.T) {
	db := setupPromotionTest(t)
	svc := newAdminService(db)

	promotion := validPromotion("promo-pra-rilis")
	if err := svc.CreatePromotion(promotion); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 预创建停用的优惠码，落库后必须保持停用
	coupon, err := svc.CreateCoupon(promotion.ID, models.PromotionCoupon{
		Code:     "PRA-RILIS",
		IsActive: false,
	})
	if err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	var stored models.PromotionCoupon
	if err := db.First(&stored, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("停用优惠码落库后不应变为启用")
	}
}
