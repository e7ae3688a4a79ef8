package repository

import (
	"errors"
	"time"

	"github.com/kosku-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PromotionRedemptionRepository 促销核销账本数据访问接口
type PromotionRedemptionRepository interface {
	GetByID(id uint) (*models.PromotionRedemption, error)
	GetByToken(token string) (*models.PromotionRedemption, error)
	GetByTokenForUpdate(token string) (*models.PromotionRedemption, error)
	GetByPromotionAndInvoice(promotionID, invoiceID uint) (*models.PromotionRedemption, error)
	Create(redemption *models.PromotionRedemption) error
	Update(redemption *models.PromotionRedemption) error
	Delete(id uint) error
	List(filter RedemptionListFilter) ([]models.PromotionRedemption, int64, error)
	CountForPromotion(promotionID uint) (int64, error)
	CountForUser(promotionID, userID uint) (int64, error)
	CountForContract(promotionID, contractID uint) (int64, error)
	CountForInvoice(promotionID, invoiceID uint) (int64, error)
	CountInRange(promotionID uint, from, to time.Time) (int64, error)
	ListStaleReserved(before time.Time, limit int) ([]models.PromotionRedemption, error)
	WithTx(tx *gorm.DB) *GormPromotionRedemptionRepository
}

// GormPromotionRedemptionRepository GORM 实现
type GormPromotionRedemptionRepository struct {
	db *gorm.DB
}

// NewPromotionRedemptionRepository 创建核销账本仓库
func NewPromotionRedemptionRepository(db *gorm.DB) *GormPromotionRedemptionRepository {
	return &GormPromotionRedemptionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRedemptionRepository) WithTx(tx *gorm.DB) *GormPromotionRedemptionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRedemptionRepository{db: tx}
}

// GetByID 根据ID获取核销记录
func (r *GormPromotionRedemptionRepository) GetByID(id uint) (*models.PromotionRedemption, error) {
	var redemption models.PromotionRedemption
	if err := r.db.First(&redemption, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &redemption, nil
}

// GetByToken 根据凭证获取核销记录
func (r *GormPromotionRedemptionRepository) GetByToken(token string) (*models.PromotionRedemption, error) {
	var redemption models.PromotionRedemption
	if err := r.db.Where("token = ?", token).First(&redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &redemption, nil
}

// GetByTokenForUpdate 根据凭证获取核销记录并加行锁（需在事务内调用）
func (r *GormPromotionRedemptionRepository) GetByTokenForUpdate(token string) (*models.PromotionRedemption, error) {
	var redemption models.PromotionRedemption
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token = ?", token).First(&redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &redemption, nil
}

// GetByPromotionAndInvoice 根据促销与账单获取核销记录
func (r *GormPromotionRedemptionRepository) GetByPromotionAndInvoice(promotionID, invoiceID uint) (*models.PromotionRedemption, error) {
	var redemption models.PromotionRedemption
	if err := r.db.Where("promotion_id = ? AND invoice_id = ?", promotionID, invoiceID).
		First(&redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &redemption, nil
}

// Create 写入核销记录
func (r *GormPromotionRedemptionRepository) Create(redemption *models.PromotionRedemption) error {
	return r.db.Create(redemption).Error
}

// Update 更新核销记录
func (r *GormPromotionRedemptionRepository) Update(redemption *models.PromotionRedemption) error {
	return r.db.Save(redemption).Error
}

// Delete 物理删除核销记录。释放预留必须真正移除行，
// 否则 (promotion_id, invoice_id) 唯一索引会挡住后续重新预留。
func (r *GormPromotionRedemptionRepository) Delete(id uint) error {
	return r.db.Unscoped().Delete(&models.PromotionRedemption{}, id).Error
}

// List 获取核销记录列表
func (r *GormPromotionRedemptionRepository) List(filter RedemptionListFilter) ([]models.PromotionRedemption, int64, error) {
	var redemptions []models.PromotionRedemption
	query := r.db.Model(&models.PromotionRedemption{})

	if filter.PromotionID > 0 {
		query = query.Where("promotion_id = ?", filter.PromotionID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.ContractID > 0 {
		query = query.Where("contract_id = ?", filter.ContractID)
	}
	if filter.InvoiceID > 0 {
		query = query.Where("invoice_id = ?", filter.InvoiceID)
	}
	if filter.CouponID > 0 {
		query = query.Where("coupon_id = ?", filter.CouponID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RedeemedFrom != nil {
		query = query.Where("redeemed_at >= ?", *filter.RedeemedFrom)
	}
	if filter.RedeemedTo != nil {
		query = query.Where("redeemed_at < ?", *filter.RedeemedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&redemptions).Error; err != nil {
		return nil, 0, err
	}
	return redemptions, total, nil
}

// CountForPromotion 统计促销的核销次数（预留与已确认都占配额）
func (r *GormPromotionRedemptionRepository) CountForPromotion(promotionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PromotionRedemption{}).
		Where("promotion_id = ?", promotionID).
		Count(&count).Error
	return count, err
}

// CountForUser 统计促销对某租客的核销次数
func (r *GormPromotionRedemptionRepository) CountForUser(promotionID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PromotionRedemption{}).
		Where("promotion_id = ? AND user_id = ?", promotionID, userID).
		Count(&count).Error
	return count, err
}

// CountForContract 统计促销对某租约的核销次数
func (r *GormPromotionRedemptionRepository) CountForContract(promotionID, contractID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PromotionRedemption{}).
		Where("promotion_id = ? AND contract_id = ?", promotionID, contractID).
		Count(&count).Error
	return count, err
}

// CountForInvoice 统计促销对某账单的核销次数
func (r *GormPromotionRedemptionRepository) CountForInvoice(promotionID, invoiceID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PromotionRedemption{}).
		Where("promotion_id = ? AND invoice_id = ?", promotionID, invoiceID).
		Count(&count).Error
	return count, err
}

// CountInRange 统计促销在时间区间内的核销次数（左闭右开，用于日/月限额）
func (r *GormPromotionRedemptionRepository) CountInRange(promotionID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.PromotionRedemption{}).
		Where("promotion_id = ?", promotionID).
		Where("redeemed_at >= ? AND redeemed_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// ListStaleReserved 获取超过时限仍未确认的预留记录。
// 按 created_at 判断新旧；redeemed_at 是调用方给定的核销时点，可以回填或前置，不能用来判超时。
func (r *GormPromotionRedemptionRepository) ListStaleReserved(before time.Time, limit int) ([]models.PromotionRedemption, error) {
	var redemptions []models.PromotionRedemption
	query := r.db.Model(&models.PromotionRedemption{}).
		Where("status = ?", "reserved").
		Where("created_at < ?", before).
		Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&redemptions).Error; err != nil {
		return nil, err
	}
	return redemptions, nil
}
