package repository

import (
	"errors"

	"github.com/kosku-next/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 管理员数据访问接口
type AdminRepository interface {
	GetByID(id uint) (*models.Admin, error)
	GetByUsername(username string) (*models.Admin, error)
	Create(admin *models.Admin) error
	Update(admin *models.Admin) error
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// GetByID 根据ID获取管理员
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByUsername 根据用户名获取管理员
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// Create 创建管理员
func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

// Update 更新管理员
func (r *GormAdminRepository) Update(admin *models.Admin) error {
	return r.db.Save(admin).Error
}