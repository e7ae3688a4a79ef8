package repository

import (
	"errors"

	"github.com/kosku-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PromotionCouponRepository 促销优惠码数据访问接口
type PromotionCouponRepository interface {
	GetByID(id uint) (*models.PromotionCoupon, error)
	GetByIDForUpdate(id uint) (*models.PromotionCoupon, error)
	GetByCode(code string) (*models.PromotionCoupon, error)
	GetByPromotionAndCode(promotionID uint, code string) (*models.PromotionCoupon, error)
	Create(coupon *models.PromotionCoupon) error
	Update(coupon *models.PromotionCoupon) error
	Delete(id uint) error
	List(filter CouponListFilter) ([]models.PromotionCoupon, int64, error)
	IncrementRedeemedCount(id uint, delta int) error
	DecrementRedeemedCount(id uint, delta int) error
	RecountRedeemedCount(id uint) (int64, error)
	WithTx(tx *gorm.DB) *GormPromotionCouponRepository
}

// GormPromotionCouponRepository GORM 实现
type GormPromotionCouponRepository struct {
	db *gorm.DB
}

// NewPromotionCouponRepository 创建优惠码仓库
func NewPromotionCouponRepository(db *gorm.DB) *GormPromotionCouponRepository {
	return &GormPromotionCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionCouponRepository) WithTx(tx *gorm.DB) *GormPromotionCouponRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionCouponRepository{db: tx}
}

// GetByID 根据ID获取优惠码
func (r *GormPromotionCouponRepository) GetByID(id uint) (*models.PromotionCoupon, error) {
	var coupon models.PromotionCoupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByIDForUpdate 根据ID获取优惠码并加行锁（需在事务内调用）
func (r *GormPromotionCouponRepository) GetByIDForUpdate(id uint) (*models.PromotionCoupon, error) {
	var coupon models.PromotionCoupon
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByCode 根据优惠码获取（跨促销查找，同码取最早创建者）
func (r *GormPromotionCouponRepository) GetByCode(code string) (*models.PromotionCoupon, error) {
	var coupon models.PromotionCoupon
	if err := r.db.Where("code = ?", code).Order("id asc").First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByPromotionAndCode 根据促销与优惠码获取
func (r *GormPromotionCouponRepository) GetByPromotionAndCode(promotionID uint, code string) (*models.PromotionCoupon, error) {
	var coupon models.PromotionCoupon
	if err := r.db.Where("promotion_id = ? AND code = ?", promotionID, code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// Create 创建优惠码
func (r *GormPromotionCouponRepository) Create(coupon *models.PromotionCoupon) error {
	return r.db.Create(coupon).Error
}

// Update 更新优惠码
func (r *GormPromotionCouponRepository) Update(coupon *models.PromotionCoupon) error {
	return r.db.Save(coupon).Error
}

// Delete 删除优惠码
func (r *GormPromotionCouponRepository) Delete(id uint) error {
	return r.db.Delete(&models.PromotionCoupon{}, id).Error
}

// List 获取优惠码列表
func (r *GormPromotionCouponRepository) List(filter CouponListFilter) ([]models.PromotionCoupon, int64, error) {
	var coupons []models.PromotionCoupon
	query := r.db.Model(&models.PromotionCoupon{})

	if filter.PromotionID > 0 {
		query = query.Where("promotion_id = ?", filter.PromotionID)
	}
	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

// IncrementRedeemedCount 增加优惠码核销次数
func (r *GormPromotionCouponRepository) IncrementRedeemedCount(id uint, delta int) error {
	if delta == 0 {
		delta = 1
	}
	return r.db.Model(&models.PromotionCoupon{}).
		Where("id = ?", id).
		UpdateColumn("redeemed_count", gorm.Expr("redeemed_count + ?", delta)).Error
}

// DecrementRedeemedCount 减少优惠码核销次数（释放预留时回退）
func (r *GormPromotionCouponRepository) DecrementRedeemedCount(id uint, delta int) error {
	if delta == 0 {
		delta = 1
	}
	if delta < 0 {
		delta = -delta
	}
	return r.db.Model(&models.PromotionCoupon{}).
		Where("id = ?", id).
		Where("redeemed_count >= ?", delta).
		UpdateColumn("redeemed_count", gorm.Expr("redeemed_count - ?", delta)).Error
}

// RecountRedeemedCount 依据核销账本重算优惠码计数，返回账本内实际次数。
func (r *GormPromotionCouponRepository) RecountRedeemedCount(id uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.PromotionRedemption{}).
		Where("coupon_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if err := r.db.Model(&models.PromotionCoupon{}).
		Where("id = ?", id).
		UpdateColumn("redeemed_count", count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
