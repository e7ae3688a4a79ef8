package repository

import (
	"errors"

	"github.com/kosku-next/internal/models"

	"gorm.io/gorm"
)

// RoomTypeRepository 房型数据访问接口
type RoomTypeRepository interface {
	GetByID(id uint) (*models.RoomType, error)
	Create(roomType *models.RoomType) error
	Update(roomType *models.RoomType) error
	Delete(id uint) error
	List(filter RoomTypeListFilter) ([]models.RoomType, int64, error)
}

// GormRoomTypeRepository GORM 实现
type GormRoomTypeRepository struct {
	db *gorm.DB
}

// NewRoomTypeRepository 创建房型仓库
func NewRoomTypeRepository(db *gorm.DB) *GormRoomTypeRepository {
	return &GormRoomTypeRepository{db: db}
}

// GetByID 根据ID获取房型
func (r *GormRoomTypeRepository) GetByID(id uint) (*models.RoomType, error) {
	var roomType models.RoomType
	if err := r.db.First(&roomType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &roomType, nil
}

// Create 创建房型
func (r *GormRoomTypeRepository) Create(roomType *models.RoomType) error {
	return r.db.Create(roomType).Error
}

// Update 更新房型
func (r *GormRoomTypeRepository) Update(roomType *models.RoomType) error {
	return r.db.Save(roomType).Error
}

// Delete 删除房型
func (r *GormRoomTypeRepository) Delete(id uint) error {
	return r.db.Delete(&models.RoomType{}, id).Error
}

// List 获取房型列表
func (r *GormRoomTypeRepository) List(filter RoomTypeListFilter) ([]models.RoomType, int64, error) {
	var roomTypes []models.RoomType
	query := r.db.Model(&models.RoomType{})

	if condition, args := keywordLikeCondition(r.db, filter.Keyword, "name", "description"); condition != "" {
		query = query.Where(condition, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id asc").Find(&roomTypes).Error; err != nil {
		return nil, 0, err
	}
	return roomTypes, total, nil
}
