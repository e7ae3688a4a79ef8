package repository

import (
	"errors"

	"github.com/kosku-next/internal/models"

	"gorm.io/gorm"
)

// FloorRepository 楼层数据访问接口
type FloorRepository interface {
	GetByID(id uint) (*models.Floor, error)
	Create(floor *models.Floor) error
	Update(floor *models.Floor) error
	Delete(id uint) error
	List(filter FloorListFilter) ([]models.Floor, int64, error)
}

// GormFloorRepository GORM 实现
type GormFloorRepository struct {
	db *gorm.DB
}

// NewFloorRepository 创建楼层仓库
func NewFloorRepository(db *gorm.DB) *GormFloorRepository {
	return &GormFloorRepository{db: db}
}

// GetByID 根据ID获取楼层
func (r *GormFloorRepository) GetByID(id uint) (*models.Floor, error) {
	var floor models.Floor
	if err := r.db.First(&floor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &floor, nil
}

// Create 创建楼层
func (r *GormFloorRepository) Create(floor *models.Floor) error {
	return r.db.Create(floor).Error
}

// Update 更新楼层
func (r *GormFloorRepository) Update(floor *models.Floor) error {
	return r.db.Save(floor).Error
}

// Delete 删除楼层
func (r *GormFloorRepository) Delete(id uint) error {
	return r.db.Delete(&models.Floor{}, id).Error
}

// List 获取楼层列表
func (r *GormFloorRepository) List(filter FloorListFilter) ([]models.Floor, int64, error) {
	var floors []models.Floor
	query := r.db.Model(&models.Floor{})

	if filter.BuildingID > 0 {
		query = query.Where("building_id = ?", filter.BuildingID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("building_id asc, level asc").Find(&floors).Error; err != nil {
		return nil, 0, err
	}
	return floors, total, nil
}
