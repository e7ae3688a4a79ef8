package models

import (
	"time"

	"gorm.io/gorm"
)

// Invoice 账单
type Invoice struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                        // 主键
	ContractID     uint           `gorm:"index;not null" json:"contract_id"`                           // 租约ID
	UserID         uint           `gorm:"index;not null" json:"user_id"`                               // 租客ID
	PeriodIndex    int            `gorm:"not null;default:1" json:"period_index"`                      // 账期序号（从1开始）
	PeriodStart    time.Time      `gorm:"not null" json:"period_start"`                                // 账期开始
	PeriodEnd      time.Time      `gorm:"not null" json:"period_end"`                                  // 账期结束
	RentAmount     Money          `gorm:"type:decimal(20,0);not null;default:0" json:"rent_amount"`    // 租金金额
	DepositAmount  Money          `gorm:"type:decimal(20,0);not null;default:0" json:"deposit_amount"` // 押金金额
	DiscountAmount Money          `gorm:"type:decimal(20,0);not null;default:0" json:"discount_amount"` // 优惠金额
	Status         string         `gorm:"not null;default:draft" json:"status"`                        // 状态
	DueDate        *time.Time     `gorm:"index" json:"due_date"`                                       // 到期日
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (Invoice) TableName() string {
	return "invoices"
}
