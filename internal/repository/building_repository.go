package repository

import (
	"errors"

	"github.com/kosku-next/internal/models"

	"gorm.io/gorm"
)

// BuildingRepository 楼栋数据访问接口
type BuildingRepository interface {
	GetByID(id uint) (*models.Building, error)
	Create(building *models.Building) error
	Update(building *models.Building) error
	Delete(id uint) error
	List(filter BuildingListFilter) ([]models.Building, int64, error)
}

// GormBuildingRepository GORM 实现
type GormBuildingRepository struct {
	db *gorm.DB
}

// NewBuildingRepository 创建楼栋仓库
func NewBuildingRepository(db *gorm.DB) *GormBuildingRepository {
	return &GormBuildingRepository{db: db}
}

// GetByID 根据ID获取楼栋
func (r *GormBuildingRepository) GetByID(id uint) (*models.Building, error) {
	var building models.Building
	if err := r.db.First(&building, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &building, nil
}

// Create 创建楼栋
func (r *GormBuildingRepository) Create(building *models.Building) error {
	return r.db.Create(building).Error
}

// Update 更新楼栋
func (r *GormBuildingRepository) Update(building *models.Building) error {
	return r.db.Save(building).Error
}

// Delete 删除楼栋
func (r *GormBuildingRepository) Delete(id uint) error {
	return r.db.Delete(&models.Building{}, id).Error
}

// List 获取楼栋列表
func (r *GormBuildingRepository) List(filter BuildingListFilter) ([]models.Building, int64, error) {
	var buildings []models.Building
	query := r.db.Model(&models.Building{})

	if condition, args := keywordLikeCondition(r.db, filter.Keyword, "name", "address"); condition != "" {
		query = query.Where(condition, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id asc").Find(&buildings).Error; err != nil {
		return nil, 0, err
	}
	return buildings, total, nil
}
