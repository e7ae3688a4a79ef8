package models

import (
	"time"

	"gorm.io/gorm"
)

// PromotionRule 促销匹配规则（规则之间为 OR，规则内各条件为 AND）
type PromotionRule struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                       // 主键
	PromotionID      uint           `gorm:"index;not null" json:"promotion_id"`                         // 促销ID
	MinSpendIDR      Money          `gorm:"type:decimal(20,0);not null;default:0" json:"min_spend_idr"` // 消费门槛
	MaxDiscountIDR   *Money         `gorm:"type:decimal(20,0)" json:"max_discount_idr"`                 // 规则级折扣上限（空表示不限）
	AppliesToRent    bool           `gorm:"not null" json:"applies_to_rent"`                            // 作用于租金（不挂列默认值，false 会被 gorm 略过写入）
	AppliesToDeposit bool           `gorm:"not null;default:false" json:"applies_to_deposit"`           // 作用于押金
	BillingPeriods   StringList     `gorm:"type:text" json:"billing_periods"`                           // 账期类型集合（空表示不限）
	DateFrom         *time.Time     `json:"date_from"`                                                  // 日期窗口开始（空表示不限）
	DateUntil        *time.Time     `json:"date_until"`                                                 // 日期窗口结束（空表示不限）
	DaysOfWeek       IntList        `gorm:"type:text" json:"days_of_week"`                              // 周内日集合（ISO 1-7，空表示不限）
	TimeStart        string         `json:"time_start"`                                                 // 时间窗口开始（HH:MM，空表示不限）
	TimeEnd          string         `json:"time_end"`                                                   // 时间窗口结束（HH:MM，空表示不限）
	Channel          string         `json:"channel"`                                                    // 渠道（空表示不限）
	FirstNPeriods    *int           `json:"first_n_periods"`                                            // 仅前N个账期（空表示不限）
	AllowedRoleNames StringList     `gorm:"type:text" json:"allowed_role_names"`                        // 允许角色（空表示不限）
	AllowedUserIDs   UintList       `gorm:"type:text" json:"allowed_user_ids"`                          // 允许用户ID（空表示不限）
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间
}

// TableName 指定表名
func (PromotionRule) TableName() string {
	return "promotion_rules"
}
