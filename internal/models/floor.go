package models

import (
	"time"

	"gorm.io/gorm"
)

// Floor 楼层
type Floor struct {
	ID         uint           `gorm:"primarykey" json:"id"`           // 主键
	BuildingID uint           `gorm:"index;not null" json:"building_id"` // 所属楼栋ID
	Name       string         `gorm:"not null" json:"name"`           // 名称
	Level      int            `gorm:"not null;default:1" json:"level"` // 层数
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`        // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`        // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                 // 软删除时间
}

// TableName 指定表名
func (Floor) TableName() string {
	return "floors"
}
