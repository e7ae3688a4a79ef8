package models

import (
	"time"

	"gorm.io/gorm"
)

// PromotionAction 促销折扣动作（按 priority 升序依次计算）
type PromotionAction struct {
	ID               uint           `gorm:"primarykey" json:"id"`                             // 主键
	PromotionID      uint           `gorm:"index;not null" json:"promotion_id"`               // 促销ID
	ActionType       string         `gorm:"not null" json:"action_type"`                      // 动作类型（percent/amount/fixed_price/free_n_days/first_n_periods_percent/first_n_periods_amount）
	AppliesToRent    bool           `gorm:"not null" json:"applies_to_rent"`                  // 作用于租金（不挂列默认值，false 会被 gorm 略过写入）
	AppliesToDeposit bool           `gorm:"not null;default:false" json:"applies_to_deposit"` // 作用于押金
	PercentBps       int            `gorm:"not null;default:0" json:"percent_bps"`            // 折扣比例（基点，10000=100%）
	AmountIDR        Money          `gorm:"type:decimal(20,0);not null;default:0" json:"amount_idr"`      // 固定优惠金额
	FixedPriceIDR    Money          `gorm:"type:decimal(20,0);not null;default:0" json:"fixed_price_idr"` // 一口价金额
	NDays            int            `gorm:"not null;default:0" json:"n_days"`                 // 免租天数（1-31）
	NPeriods         int            `gorm:"not null;default:0" json:"n_periods"`              // 前N个账期（1-36）
	MaxDiscountIDR   *Money         `gorm:"type:decimal(20,0)" json:"max_discount_idr"`       // 动作级折扣上限（空表示不限）
	Priority         int            `gorm:"not null;default:0" json:"priority"`               // 执行顺序（升序）
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                          // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                   // 软删除时间
}

// TableName 指定表名
func (PromotionAction) TableName() string {
	return "promotion_actions"
}
