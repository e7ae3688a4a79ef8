package models

import (
	"time"

	"gorm.io/gorm"
)

// Contract 租约
type Contract struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                   // 主键
	UserID        uint           `gorm:"index;not null" json:"user_id"`                          // 租客ID
	RoomID        uint           `gorm:"index;not null" json:"room_id"`                          // 房间ID
	BillingPeriod string         `gorm:"not null" json:"billing_period"`                         // 账期类型（daily/weekly/monthly）
	StartDate     time.Time      `gorm:"index;not null" json:"start_date"`                       // 起租日期
	EndDate       *time.Time     `gorm:"index" json:"end_date"`                                  // 到期日期
	RentAmount    Money          `gorm:"type:decimal(20,0);not null;default:0" json:"rent_amount"`    // 每期租金
	DepositAmount Money          `gorm:"type:decimal(20,0);not null;default:0" json:"deposit_amount"` // 押金
	Status        string         `gorm:"not null;default:active" json:"status"`                  // 状态
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间
}

// TableName 指定表名
func (Contract) TableName() string {
	return "contracts"
}
