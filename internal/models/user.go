package models

import (
	"time"

	"gorm.io/gorm"
)

// User 租客用户
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`                        // 主键
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`           // 邮箱
	Name      string         `gorm:"not null" json:"name"`                        // 姓名
	Phone     string         `json:"phone"`                                       // 电话
	Roles     StringList     `gorm:"type:text" json:"roles"`                      // 角色名列表（JSON数组）
	Status    string         `gorm:"not null;default:active" json:"status"`       // 状态（active/disabled）
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                     // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
