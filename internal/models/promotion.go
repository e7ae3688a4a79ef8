package models

import (
	"time"

	"gorm.io/gorm"
)

// Promotion 促销活动
type Promotion struct {
	ID               uint           `gorm:"primarykey" json:"id"`                        // 主键
	Name             string         `gorm:"not null" json:"name"`                        // 名称
	Slug             string         `gorm:"uniqueIndex;not null" json:"slug"`            // 唯一标识（小写连字符）
	ValidFrom        *time.Time     `gorm:"index" json:"valid_from"`                     // 生效时间（空表示不限）
	ValidUntil       *time.Time     `gorm:"index" json:"valid_until"`                    // 失效时间（空表示不限）
	StackMode        string         `gorm:"not null;default:stack" json:"stack_mode"`    // 叠加模式（stack/highest_only/exclusive）
	Priority         int            `gorm:"not null;default:0" json:"priority"`          // 优先级（0-100000，数值大者优先）
	TotalQuota       *int           `json:"total_quota"`                                 // 总配额（空表示不限）
	PerUserLimit     *int           `json:"per_user_limit"`                              // 每租客上限（空表示不限）
	PerContractLimit *int           `json:"per_contract_limit"`                          // 每租约上限（空表示不限）
	PerInvoiceLimit  *int           `json:"per_invoice_limit"`                           // 每账单上限（空表示不限）
	PerDayLimit      *int           `json:"per_day_limit"`                               // 每自然日上限（空表示不限）
	PerMonthLimit    *int           `json:"per_month_limit"`                             // 每自然月上限（空表示不限）
	DefaultChannel   string         `json:"default_channel"`                             // 默认渠道（public/referral/manual/coupon，空表示不限）
	RequireCoupon    bool           `gorm:"not null;default:false" json:"require_coupon"` // 是否必须优惠码
	IsActive         bool           `gorm:"not null" json:"is_active"`                   // 是否启用（不挂列默认值，false 会被 gorm 略过写入）
	Tags             StringList     `gorm:"type:text" json:"tags"`                       // 标签（JSON数组）
	Scopes           []PromotionScope  `gorm:"foreignKey:PromotionID" json:"scopes,omitempty"`  // 适用范围
	Rules            []PromotionRule   `gorm:"foreignKey:PromotionID" json:"rules,omitempty"`   // 匹配规则
	Actions          []PromotionAction `gorm:"foreignKey:PromotionID" json:"actions,omitempty"` // 折扣动作
	Coupons          []PromotionCoupon `gorm:"foreignKey:PromotionID" json:"coupons,omitempty"` // 优惠码
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                     // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}
