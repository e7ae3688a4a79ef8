package models

import (
	"time"

	"gorm.io/gorm"
)

// PromotionScope 促销适用范围（一行对应一个目标）
type PromotionScope struct {
	ID          uint           `gorm:"primarykey" json:"id"`                 // 主键
	PromotionID uint           `gorm:"index;not null" json:"promotion_id"`   // 促销ID
	ScopeType   string         `gorm:"not null" json:"scope_type"`           // 范围类型（global/building/floor/room_type/room）
	BuildingID  *uint          `gorm:"index" json:"building_id"`             // 楼栋ID（scope_type=building 时有值）
	FloorID     *uint          `gorm:"index" json:"floor_id"`                // 楼层ID（scope_type=floor 时有值）
	RoomTypeID  *uint          `gorm:"index" json:"room_type_id"`            // 房型ID（scope_type=room_type 时有值）
	RoomID      *uint          `gorm:"index" json:"room_id"`                 // 房间ID（scope_type=room 时有值）
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`              // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`              // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                       // 软删除时间
}

// TableName 指定表名
func (PromotionScope) TableName() string {
	return "promotion_scopes"
}

// TargetID 返回与范围类型对应的目标ID（global 返回 0）
func (s PromotionScope) TargetID() uint {
	switch {
	case s.BuildingID != nil:
		return *s.BuildingID
	case s.FloorID != nil:
		return *s.FloorID
	case s.RoomTypeID != nil:
		return *s.RoomTypeID
	case s.RoomID != nil:
		return *s.RoomID
	default:
		return 0
	}
}
