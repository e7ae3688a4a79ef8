package models

import (
	"time"

	"gorm.io/gorm"
)

// Room 房间
type Room struct {
	ID         uint           `gorm:"primarykey" json:"id"`                // 主键
	BuildingID uint           `gorm:"index;not null" json:"building_id"`   // 所属楼栋ID
	FloorID    uint           `gorm:"index;not null" json:"floor_id"`      // 所属楼层ID
	RoomTypeID uint           `gorm:"index;not null" json:"room_type_id"`  // 房型ID
	Number     string         `gorm:"not null" json:"number"`              // 房号
	IsOccupied bool           `gorm:"not null;default:false" json:"is_occupied"` // 是否在租
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`             // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`             // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                      // 软删除时间
}

// TableName 指定表名
func (Room) TableName() string {
	return "rooms"
}
