package repository

import (
	"errors"

	"github.com/kosku-next/internal/models"

	"gorm.io/gorm"
)

// ContractRepository 租约数据访问接口
type ContractRepository interface {
	GetByID(id uint) (*models.Contract, error)
	Create(contract *models.Contract) error
	Update(contract *models.Contract) error
	List(filter ContractListFilter) ([]models.Contract, int64, error)
	WithTx(tx *gorm.DB) *GormContractRepository
}

// GormContractRepository GORM 实现
type GormContractRepository struct {
	db *gorm.DB
}

// NewContractRepository 创建租约仓库
func NewContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// WithTx 绑定事务
func (r *GormContractRepository) WithTx(tx *gorm.DB) *GormContractRepository {
	if tx == nil {
		return r
	}
	return &GormContractRepository{db: tx}
}

// GetByID 根据ID获取租约
func (r *GormContractRepository) GetByID(id uint) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.First(&contract, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

// Create 创建租约
func (r *GormContractRepository) Create(contract *models.Contract) error {
	return r.db.Create(contract).Error
}

// Update 更新租约
func (r *GormContractRepository) Update(contract *models.Contract) error {
	return r.db.Save(contract).Error
}

// List 获取租约列表
func (r *GormContractRepository) List(filter ContractListFilter) ([]models.Contract, int64, error) {
	var contracts []models.Contract
	query := r.db.Model(&models.Contract{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.RoomID > 0 {
		query = query.Where("room_id = ?", filter.RoomID)
	}
	if filter.BillingPeriod != "" {
		query = query.Where("billing_period = ?", filter.BillingPeriod)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartFrom != nil {
		query = query.Where("start_date >= ?", *filter.StartFrom)
	}
	if filter.StartTo != nil {
		query = query.Where("start_date <= ?", *filter.StartTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&contracts).Error; err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}
