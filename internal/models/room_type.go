package models

import (
	"time"

	"gorm.io/gorm"
)

// RoomType 房型
type RoomType struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Name        string         `gorm:"not null" json:"name"`                                      // 名称
	Description string         `json:"description"`                                               // 描述
	BaseRent    Money          `gorm:"type:decimal(20,0);not null;default:0" json:"base_rent"`    // 基准月租
	BaseDeposit Money          `gorm:"type:decimal(20,0);not null;default:0" json:"base_deposit"` // 基准押金
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (RoomType) TableName() string {
	return "room_types"
}
