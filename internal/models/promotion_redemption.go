package models

import (
	"time"

	"gorm.io/gorm"
)

// PromotionRedemption 促销核销记录（只追加账本，限额的唯一事实来源）
type PromotionRedemption struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                        // 主键
	PromotionID uint           `gorm:"index;uniqueIndex:uk_promotion_invoice;not null" json:"promotion_id"` // 促销ID
	UserID      uint           `gorm:"index;not null" json:"user_id"`                               // 租客ID
	CouponID    *uint          `gorm:"index" json:"coupon_id"`                                      // 优惠码ID（可空）
	ContractID  uint           `gorm:"index;not null" json:"contract_id"`                           // 租约ID
	InvoiceID   uint           `gorm:"uniqueIndex:uk_promotion_invoice;not null" json:"invoice_id"` // 账单ID
	DiscountIDR Money          `gorm:"type:decimal(20,0);not null;default:0" json:"discount_idr"`   // 实际优惠金额
	Status      string         `gorm:"index;not null;default:reserved" json:"status"`               // 状态（reserved/committed）
	Token       string         `gorm:"uniqueIndex;not null" json:"token"`                           // 预留凭证
	Meta        JSON           `gorm:"type:text" json:"meta"`                                       // 附加信息
	RedeemedAt  time.Time      `gorm:"index;not null" json:"redeemed_at"`                           // 核销时间
	CommittedAt *time.Time     `json:"committed_at"`                                                // 确认时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (PromotionRedemption) TableName() string {
	return "promotion_redemptions"
}
