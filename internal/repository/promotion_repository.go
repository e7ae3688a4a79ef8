package repository

import (
	"errors"
	"time"

	"github.com/kosku-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PromotionRepository 促销数据访问接口
type PromotionRepository interface {
	GetByID(id uint) (*models.Promotion, error)
	GetByIDForUpdate(id uint) (*models.Promotion, error)
	GetBySlug(slug string) (*models.Promotion, error)
	ListActiveAt(at time.Time) ([]models.Promotion, error)
	ListByIDs(ids []uint) ([]models.Promotion, error)
	Create(promotion *models.Promotion) error
	Update(promotion *models.Promotion) error
	Delete(id uint) error
	List(filter PromotionListFilter) ([]models.Promotion, int64, error)
	ReplaceScopes(promotionID uint, scopes []models.PromotionScope) error
	ReplaceRules(promotionID uint, rules []models.PromotionRule) error
	ReplaceActions(promotionID uint, actions []models.PromotionAction) error
	GetScope(id uint) (*models.PromotionScope, error)
	CreateScope(scope *models.PromotionScope) error
	UpdateScope(scope *models.PromotionScope) error
	DeleteScope(id uint) error
	CreateRule(rule *models.PromotionRule) error
	DeleteRule(id uint) error
	CreateAction(action *models.PromotionAction) error
	DeleteAction(id uint) error
	WithTx(tx *gorm.DB) *GormPromotionRepository
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) *GormPromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

func (r *GormPromotionRepository) withAssociations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Scopes").
		Preload("Rules").
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("priority asc, id asc")
		})
}

// GetByID 根据ID获取促销（含范围、规则与动作）
func (r *GormPromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.withAssociations(r.db).First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// GetByIDForUpdate 根据ID获取促销并加行锁（需在事务内调用，不加载关联）
func (r *GormPromotionRepository) GetByIDForUpdate(id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// GetBySlug 根据标识获取促销（含范围、规则与动作）
func (r *GormPromotionRepository) GetBySlug(slug string) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.withAssociations(r.db).Where("slug = ?", slug).First(&promotion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// ListActiveAt 获取指定时刻启用且在有效期内的促销（含关联），按优先级降序。
// 有效期两端均为闭边界，与规则的日期窗口一致。
func (r *GormPromotionRepository) ListActiveAt(at time.Time) ([]models.Promotion, error) {
	var promotions []models.Promotion
	query := r.withAssociations(r.db).
		Where("is_active = ?", true).
		Where("valid_from IS NULL OR valid_from <= ?", at).
		Where("valid_until IS NULL OR valid_until >= ?", at)
	if err := query.Order("priority desc, id asc").Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// ListByIDs 批量获取促销（含关联）
func (r *GormPromotionRepository) ListByIDs(ids []uint) ([]models.Promotion, error) {
	if len(ids) == 0 {
		return []models.Promotion{}, nil
	}
	var promotions []models.Promotion
	if err := r.withAssociations(r.db).Where("id IN ?", ids).Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// Create 创建促销（连同关联一并写入）
func (r *GormPromotionRepository) Create(promotion *models.Promotion) error {
	return r.db.Create(promotion).Error
}

// Update 更新促销主记录（不触碰关联）
func (r *GormPromotionRepository) Update(promotion *models.Promotion) error {
	return r.db.Omit("Scopes", "Rules", "Actions", "Coupons").Save(promotion).Error
}

// Delete 删除促销及其关联
func (r *GormPromotionRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", id).Delete(&models.PromotionScope{}).Error; err != nil {
			return err
		}
		if err := tx.Where("promotion_id = ?", id).Delete(&models.PromotionRule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("promotion_id = ?", id).Delete(&models.PromotionAction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("promotion_id = ?", id).Delete(&models.PromotionCoupon{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Promotion{}, id).Error
	})
}

// List 获取促销列表（不加载关联）
func (r *GormPromotionRepository) List(filter PromotionListFilter) ([]models.Promotion, int64, error) {
	var promotions []models.Promotion
	query := r.db.Model(&models.Promotion{})

	if condition, args := keywordLikeCondition(r.db, filter.Keyword, "name", "slug"); condition != "" {
		query = query.Where(condition, args...)
	}
	if filter.StackMode != "" {
		query = query.Where("stack_mode = ?", filter.StackMode)
	}
	if filter.Channel != "" {
		query = query.Where("default_channel = ?", filter.Channel)
	}
	if filter.Tag != "" {
		if condition, args := jsonStringArrayContains("tags", filter.Tag); condition != "" {
			query = query.Where(condition, args...)
		}
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ActiveAt != nil {
		query = query.
			Where("valid_from IS NULL OR valid_from <= ?", *filter.ActiveAt).
			Where("valid_until IS NULL OR valid_until > ?", *filter.ActiveAt)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("priority desc, id asc").Find(&promotions).Error; err != nil {
		return nil, 0, err
	}
	return promotions, total, nil
}

// ReplaceScopes 整体替换促销范围
func (r *GormPromotionRepository) ReplaceScopes(promotionID uint, scopes []models.PromotionScope) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", promotionID).Delete(&models.PromotionScope{}).Error; err != nil {
			return err
		}
		for i := range scopes {
			scopes[i].ID = 0
			scopes[i].PromotionID = promotionID
		}
		if len(scopes) == 0 {
			return nil
		}
		return tx.Create(&scopes).Error
	})
}

// ReplaceRules 整体替换促销规则
func (r *GormPromotionRepository) ReplaceRules(promotionID uint, rules []models.PromotionRule) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", promotionID).Delete(&models.PromotionRule{}).Error; err != nil {
			return err
		}
		for i := range rules {
			rules[i].ID = 0
			rules[i].PromotionID = promotionID
		}
		if len(rules) == 0 {
			return nil
		}
		return tx.Create(&rules).Error
	})
}

// ReplaceActions 整体替换促销动作
func (r *GormPromotionRepository) ReplaceActions(promotionID uint, actions []models.PromotionAction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", promotionID).Delete(&models.PromotionAction{}).Error; err != nil {
			return err
		}
		for i := range actions {
			actions[i].ID = 0
			actions[i].PromotionID = promotionID
		}
		if len(actions) == 0 {
			return nil
		}
		return tx.Create(&actions).Error
	})
}

// GetScope 根据ID获取范围行
func (r *GormPromotionRepository) GetScope(id uint) (*models.PromotionScope, error) {
	var scope models.PromotionScope
	if err := r.db.First(&scope, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &scope, nil
}

// CreateScope 新增范围行
func (r *GormPromotionRepository) CreateScope(scope *models.PromotionScope) error {
	return r.db.Create(scope).Error
}

// UpdateScope 更新范围行
func (r *GormPromotionRepository) UpdateScope(scope *models.PromotionScope) error {
	return r.db.Save(scope).Error
}

// DeleteScope 删除范围行
func (r *GormPromotionRepository) DeleteScope(id uint) error {
	return r.db.Delete(&models.PromotionScope{}, id).Error
}

// CreateRule 新增规则行
func (r *GormPromotionRepository) CreateRule(rule *models.PromotionRule) error {
	return r.db.Create(rule).Error
}

// DeleteRule 删除规则行
func (r *GormPromotionRepository) DeleteRule(id uint) error {
	return r.db.Delete(&models.PromotionRule{}, id).Error
}

// CreateAction 新增动作行
func (r *GormPromotionRepository) CreateAction(action *models.PromotionAction) error {
	return r.db.Create(action).Error
}

// DeleteAction 删除动作行
func (r *GormPromotionRepository) DeleteAction(id uint) error {
	return r.db.Delete(&models.PromotionAction{}, id).Error
}
