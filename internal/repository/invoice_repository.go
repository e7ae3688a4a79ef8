package repository

import (
	"errors"

	"github.com/kosku-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRepository 账单数据访问接口
type InvoiceRepository interface {
	GetByID(id uint) (*models.Invoice, error)
	GetByIDForUpdate(id uint) (*models.Invoice, error)
	Create(invoice *models.Invoice) error
	Update(invoice *models.Invoice) error
	List(filter InvoiceListFilter) ([]models.Invoice, int64, error)
	WithTx(tx *gorm.DB) *GormInvoiceRepository
}

// GormInvoiceRepository GORM 实现
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository 创建账单仓库
func NewInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInvoiceRepository) WithTx(tx *gorm.DB) *GormInvoiceRepository {
	if tx == nil {
		return r
	}
	return &GormInvoiceRepository{db: tx}
}

// GetByID 根据ID获取账单
func (r *GormInvoiceRepository) GetByID(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// GetByIDForUpdate 根据ID获取账单并加行锁（需在事务内调用）
func (r *GormInvoiceRepository) GetByIDForUpdate(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// Create 创建账单
func (r *GormInvoiceRepository) Create(invoice *models.Invoice) error {
	return r.db.Create(invoice).Error
}

// Update 更新账单
func (r *GormInvoiceRepository) Update(invoice *models.Invoice) error {
	return r.db.Save(invoice).Error
}

// List 获取账单列表
func (r *GormInvoiceRepository) List(filter InvoiceListFilter) ([]models.Invoice, int64, error) {
	var invoices []models.Invoice
	query := r.db.Model(&models.Invoice{})

	if filter.ContractID > 0 {
		query = query.Where("contract_id = ?", filter.ContractID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PeriodFrom != nil {
		query = query.Where("period_start >= ?", *filter.PeriodFrom)
	}
	if filter.PeriodTo != nil {
		query = query.Where("period_start <= ?", *filter.PeriodTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}
