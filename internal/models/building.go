package models

import (
	"time"

	"gorm.io/gorm"
)

// Building 楼栋
type Building struct {
	ID        uint           `gorm:"primarykey" json:"id"`          // 主键
	Name      string         `gorm:"not null" json:"name"`          // 名称
	Address   string         `json:"address"`                      // 地址
	CreatedAt time.Time      `gorm:"index" json:"created_at"`       // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`       // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                // 软删除时间
}

// TableName 指定表名
func (Building) TableName() string {
	return "buildings"
}
