package models

import (
	"time"

	"gorm.io/gorm"
)

// PromotionCoupon 促销优惠码
type PromotionCoupon struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                     // 主键
	PromotionID    uint           `gorm:"uniqueIndex:uk_promotion_code;not null" json:"promotion_id"` // 促销ID
	Code           string         `gorm:"uniqueIndex:uk_promotion_code;not null" json:"code"`       // 优惠码（促销内唯一）
	IsActive       bool           `gorm:"not null" json:"is_active"`                                // 是否启用（不挂列默认值，false 会被 gorm 略过写入）
	MaxRedemptions *int           `json:"max_redemptions"`                                          // 最大核销次数（空表示不限）
	RedeemedCount  int            `gorm:"not null;default:0" json:"redeemed_count"`                 // 已核销次数（服务端维护，只增不减）
	ExpiresAt      *time.Time     `gorm:"index" json:"expires_at"`                                  // 过期时间（空表示不限）
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (PromotionCoupon) TableName() string {
	return "promotion_coupons"
}
