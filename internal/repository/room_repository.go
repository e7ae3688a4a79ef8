package repository

import (
	"errors"

	"github.com/kosku-next/internal/models"

	"gorm.io/gorm"
)

// RoomRepository 房间数据访问接口
type RoomRepository interface {
	GetByID(id uint) (*models.Room, error)
	Create(room *models.Room) error
	Update(room *models.Room) error
	Delete(id uint) error
	List(filter RoomListFilter) ([]models.Room, int64, error)
}

// GormRoomRepository GORM 实现
type GormRoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建房间仓库
func NewRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// GetByID 根据ID获取房间
func (r *GormRoomRepository) GetByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

// Create 创建房间
func (r *GormRoomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

// Update 更新房间
func (r *GormRoomRepository) Update(room *models.Room) error {
	return r.db.Save(room).Error
}

// Delete 删除房间
func (r *GormRoomRepository) Delete(id uint) error {
	return r.db.Delete(&models.Room{}, id).Error
}

// List 获取房间列表
func (r *GormRoomRepository) List(filter RoomListFilter) ([]models.Room, int64, error) {
	var rooms []models.Room
	query := r.db.Model(&models.Room{})

	if filter.BuildingID > 0 {
		query = query.Where("building_id = ?", filter.BuildingID)
	}
	if filter.FloorID > 0 {
		query = query.Where("floor_id = ?", filter.FloorID)
	}
	if filter.RoomTypeID > 0 {
		query = query.Where("room_type_id = ?", filter.RoomTypeID)
	}
	if filter.Number != "" {
		query = query.Where("number = ?", filter.Number)
	}
	if filter.IsOccupied != nil {
		query = query.Where("is_occupied = ?", *filter.IsOccupied)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("building_id asc, floor_id asc, number asc").Find(&rooms).Error; err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}
