package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/queue"
	"github.com/kosku-next/internal/repository"
)

// PromotionAdminService 促销后台管理：增删改查与编辑期校验。
// 非法参数全部在写入时拦截，评估与预留阶段默认数据已合法。
type PromotionAdminService struct {
	promotionRepo repository.PromotionRepository
	couponRepo    repository.PromotionCouponRepository
	queueClient   *queue.Client
}

// NewPromotionAdminService 创建促销管理服务
func NewPromotionAdminService(
	promotionRepo repository.PromotionRepository,
	couponRepo repository.PromotionCouponRepository,
	queueClient *queue.Client,
) *PromotionAdminService {
	return &PromotionAdminService{
		promotionRepo: promotionRepo,
		couponRepo:    couponRepo,
		queueClient:   queueClient,
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CreatePromotion 创建促销（可携带范围/规则/动作一并写入）
func (s *PromotionAdminService) CreatePromotion(promotion *models.Promotion) error {
	if err := s.validatePromotion(promotion, 0); err != nil {
		return err
	}
	return s.promotionRepo.Create(promotion)
}

// UpdatePromotion 更新促销主记录（范围/规则/动作单独管理）
func (s *PromotionAdminService) UpdatePromotion(promotion *models.Promotion) error {
	existing, err := s.promotionRepo.GetByID(promotion.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrPromotionNotFound
	}
	if err := s.validatePromotion(promotion, promotion.ID); err != nil {
		return err
	}
	return s.promotionRepo.Update(promotion)
}

// DeletePromotion 软删除促销；历史核销记录保留。
func (s *PromotionAdminService) DeletePromotion(id uint) error {
	existing, err := s.promotionRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrPromotionNotFound
	}
	return s.promotionRepo.Delete(id)
}

// GetPromotion 获取促销详情（含范围/规则/动作）
func (s *PromotionAdminService) GetPromotion(id uint) (*models.Promotion, error) {
	promotion, err := s.promotionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	return promotion, nil
}

// ListPromotions 获取促销列表
func (s *PromotionAdminService) ListPromotions(filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	return s.promotionRepo.List(filter)
}

// validatePromotion 促销主记录与随附关联的编辑期校验。
func (s *PromotionAdminService) validatePromotion(promotion *models.Promotion, excludeID uint) error {
	if strings.TrimSpace(promotion.Name) == "" {
		return fmt.Errorf("%w: 名称不能为空", ErrPromotionInvalid)
	}

	promotion.Slug = strings.ToLower(strings.TrimSpace(promotion.Slug))
	if !slugPattern.MatchString(promotion.Slug) {
		return fmt.Errorf("%w: slug 必须为小写连字符格式", ErrPromotionInvalid)
	}
	existing, err := s.promotionRepo.GetBySlug(promotion.Slug)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return ErrSlugTaken
	}

	switch promotion.StackMode {
	case constants.StackModeStack, constants.StackModeHighestOnly, constants.StackModeExclusive:
	default:
		return fmt.Errorf("%w: 未知叠加模式 %s", ErrPromotionInvalid, promotion.StackMode)
	}

	if promotion.Priority < constants.PriorityMin || promotion.Priority > constants.PriorityMax {
		return fmt.Errorf("%w: priority 超出范围", ErrPromotionInvalid)
	}

	// 有效期两端均为闭边界，from == until 是合法的单一时点窗口
	if promotion.ValidFrom != nil && promotion.ValidUntil != nil &&
		promotion.ValidUntil.Before(*promotion.ValidFrom) {
		return fmt.Errorf("%w: 有效期区间无效", ErrPromotionInvalid)
	}

	for _, limit := range []*int{
		promotion.TotalQuota, promotion.PerUserLimit, promotion.PerContractLimit,
		promotion.PerInvoiceLimit, promotion.PerDayLimit, promotion.PerMonthLimit,
	} {
		if limit != nil && *limit < 0 {
			return fmt.Errorf("%w: 限额不能为负", ErrPromotionInvalid)
		}
	}

	if promotion.DefaultChannel != "" {
		switch promotion.DefaultChannel {
		case constants.ChannelPublic, constants.ChannelReferral, constants.ChannelManual, constants.ChannelCoupon:
		default:
			return fmt.Errorf("%w: 未知渠道 %s", ErrPromotionInvalid, promotion.DefaultChannel)
		}
	}

	for i := range promotion.Scopes {
		if err := CheckScopeConflict(promotion.Scopes[:i], promotion.Scopes[i], 0); err != nil {
			return err
		}
	}
	for _, rule := range promotion.Rules {
		if err := ValidateRule(rule); err != nil {
			return err
		}
	}
	for _, action := range promotion.Actions {
		if err := ValidateAction(action); err != nil {
			return err
		}
	}
	return nil
}

// AddScope 新增范围行，冲突校验贯穿每次写入。
func (s *PromotionAdminService) AddScope(promotionID uint, scope models.PromotionScope) (*models.PromotionScope, error) {
	promotion, err := s.GetPromotion(promotionID)
	if err != nil {
		return nil, err
	}
	scope.ID = 0
	scope.PromotionID = promotionID
	if err := CheckScopeConflict(promotion.Scopes, scope, 0); err != nil {
		return nil, err
	}
	if err := s.promotionRepo.CreateScope(&scope); err != nil {
		return nil, err
	}
	return &scope, nil
}

// UpdateScope 编辑范围行，冲突搜索排除被编辑行自身。
func (s *PromotionAdminService) UpdateScope(promotionID, scopeID uint, scope models.PromotionScope) (*models.PromotionScope, error) {
	promotion, err := s.GetPromotion(promotionID)
	if err != nil {
		return nil, err
	}
	current, err := s.promotionRepo.GetScope(scopeID)
	if err != nil {
		return nil, err
	}
	if current == nil || current.PromotionID != promotionID {
		return nil, ErrScopeInvalid
	}
	scope.ID = scopeID
	scope.PromotionID = promotionID
	scope.CreatedAt = current.CreatedAt
	if err := CheckScopeConflict(promotion.Scopes, scope, scopeID); err != nil {
		return nil, err
	}
	if err := s.promotionRepo.UpdateScope(&scope); err != nil {
		return nil, err
	}
	return &scope, nil
}

// DeleteScope 删除范围行
func (s *PromotionAdminService) DeleteScope(promotionID, scopeID uint) error {
	current, err := s.promotionRepo.GetScope(scopeID)
	if err != nil {
		return err
	}
	if current == nil || current.PromotionID != promotionID {
		return ErrScopeInvalid
	}
	return s.promotionRepo.DeleteScope(scopeID)
}

// AddRule 新增规则行
func (s *PromotionAdminService) AddRule(promotionID uint, rule models.PromotionRule) (*models.PromotionRule, error) {
	if _, err := s.GetPromotion(promotionID); err != nil {
		return nil, err
	}
	if err := ValidateRule(rule); err != nil {
		return nil, err
	}
	rule.ID = 0
	rule.PromotionID = promotionID
	if err := s.promotionRepo.CreateRule(&rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// DeleteRule 删除规则行
func (s *PromotionAdminService) DeleteRule(promotionID, ruleID uint) error {
	promotion, err := s.GetPromotion(promotionID)
	if err != nil {
		return err
	}
	for _, rule := range promotion.Rules {
		if rule.ID == ruleID {
			return s.promotionRepo.DeleteRule(ruleID)
		}
	}
	return ErrRuleInvalid
}

// AddAction 新增动作行
func (s *PromotionAdminService) AddAction(promotionID uint, action models.PromotionAction) (*models.PromotionAction, error) {
	if _, err := s.GetPromotion(promotionID); err != nil {
		return nil, err
	}
	if err := ValidateAction(action); err != nil {
		return nil, err
	}
	action.ID = 0
	action.PromotionID = promotionID
	if err := s.promotionRepo.CreateAction(&action); err != nil {
		return nil, err
	}
	return &action, nil
}

// DeleteAction 删除动作行
func (s *PromotionAdminService) DeleteAction(promotionID, actionID uint) error {
	promotion, err := s.GetPromotion(promotionID)
	if err != nil {
		return err
	}
	for _, action := range promotion.Actions {
		if action.ID == actionID {
			return s.promotionRepo.DeleteAction(actionID)
		}
	}
	return ErrActionInvalid
}

// CreateCoupon 创建优惠码（促销内唯一）
func (s *PromotionAdminService) CreateCoupon(promotionID uint, coupon models.PromotionCoupon) (*models.PromotionCoupon, error) {
	if _, err := s.GetPromotion(promotionID); err != nil {
		return nil, err
	}
	coupon.Code = strings.TrimSpace(coupon.Code)
	if coupon.Code == "" {
		return nil, fmt.Errorf("%w: 优惠码不能为空", ErrPromotionInvalid)
	}
	if coupon.MaxRedemptions != nil && *coupon.MaxRedemptions < 0 {
		return nil, fmt.Errorf("%w: max_redemptions 不能为负", ErrPromotionInvalid)
	}
	existing, err := s.couponRepo.GetByPromotionAndCode(promotionID, coupon.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCouponCodeTaken
	}
	coupon.ID = 0
	coupon.PromotionID = promotionID
	coupon.RedeemedCount = 0
	if err := s.couponRepo.Create(&coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// UpdateCoupon 更新优惠码（redeemed_count 由服务端维护，不接受外部修改）
func (s *PromotionAdminService) UpdateCoupon(promotionID, couponID uint, input models.PromotionCoupon) (*models.PromotionCoupon, error) {
	current, err := s.couponRepo.GetByID(couponID)
	if err != nil {
		return nil, err
	}
	if current == nil || current.PromotionID != promotionID {
		return nil, ErrCouponNotFound
	}
	if input.MaxRedemptions != nil && *input.MaxRedemptions < 0 {
		return nil, fmt.Errorf("%w: max_redemptions 不能为负", ErrPromotionInvalid)
	}

	code := strings.TrimSpace(input.Code)
	if code != "" && code != current.Code {
		existing, err := s.couponRepo.GetByPromotionAndCode(promotionID, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrCouponCodeTaken
		}
		current.Code = code
	}
	current.IsActive = input.IsActive
	current.MaxRedemptions = input.MaxRedemptions
	current.ExpiresAt = input.ExpiresAt
	if err := s.couponRepo.Update(current); err != nil {
		return nil, err
	}
	return current, nil
}

// DeleteCoupon 删除优惠码
func (s *PromotionAdminService) DeleteCoupon(promotionID, couponID uint) error {
	current, err := s.couponRepo.GetByID(couponID)
	if err != nil {
		return err
	}
	if current == nil || current.PromotionID != promotionID {
		return ErrCouponNotFound
	}
	return s.couponRepo.Delete(couponID)
}

// ListCoupons 获取优惠码列表
func (s *PromotionAdminService) ListCoupons(filter repository.CouponListFilter) ([]models.PromotionCoupon, int64, error) {
	return s.couponRepo.List(filter)
}

// RequestCouponRecount 投递优惠码计数对账任务
func (s *PromotionAdminService) RequestCouponRecount(promotionID, couponID uint) error {
	coupon, err := s.couponRepo.GetByID(couponID)
	if err != nil {
		return err
	}
	if coupon == nil || coupon.PromotionID != promotionID {
		return ErrCouponNotFound
	}
	if s.queueClient == nil {
		return errors.New("queue client unavailable")
	}
	return s.queueClient.EnqueueCouponRecount(queue.CouponRecountPayload{CouponID: couponID})
}

// ValidateRule 规则参数的编辑期校验。
func ValidateRule(rule models.PromotionRule) error {
	if rule.MinSpendIDR.Decimal.IsNegative() {
		return fmt.Errorf("%w: min_spend_idr 不能为负", ErrRuleInvalid)
	}
	if rule.MaxDiscountIDR != nil && rule.MaxDiscountIDR.Decimal.IsNegative() {
		return fmt.Errorf("%w: max_discount_idr 不能为负", ErrRuleInvalid)
	}
	if !rule.AppliesToRent && !rule.AppliesToDeposit {
		return fmt.Errorf("%w: 规则必须作用于租金或押金", ErrRuleInvalid)
	}
	for _, period := range rule.BillingPeriods {
		switch period {
		case constants.BillingPeriodDaily, constants.BillingPeriodWeekly, constants.BillingPeriodMonthly:
		default:
			return fmt.Errorf("%w: 未知账期类型 %s", ErrRuleInvalid, period)
		}
	}
	if rule.DateFrom != nil && rule.DateUntil != nil && rule.DateUntil.Before(*rule.DateFrom) {
		return fmt.Errorf("%w: 日期窗口无效", ErrRuleInvalid)
	}
	for _, day := range rule.DaysOfWeek {
		if day < 1 || day > 7 {
			return fmt.Errorf("%w: days_of_week 必须在 1-7 之间", ErrRuleInvalid)
		}
	}
	if rule.TimeStart != "" {
		if _, ok := parseClock(rule.TimeStart); !ok {
			return fmt.Errorf("%w: time_start 格式必须为 HH:MM", ErrRuleInvalid)
		}
	}
	if rule.TimeEnd != "" {
		if _, ok := parseClock(rule.TimeEnd); !ok {
			return fmt.Errorf("%w: time_end 格式必须为 HH:MM", ErrRuleInvalid)
		}
	}
	if rule.Channel != "" {
		switch rule.Channel {
		case constants.ChannelPublic, constants.ChannelReferral, constants.ChannelManual, constants.ChannelCoupon:
		default:
			return fmt.Errorf("%w: 未知渠道 %s", ErrRuleInvalid, rule.Channel)
		}
	}
	if rule.FirstNPeriods != nil &&
		(*rule.FirstNPeriods < constants.FirstPeriodsMin || *rule.FirstNPeriods > constants.FirstPeriodsMax) {
		return fmt.Errorf("%w: first_n_periods 必须在 %d-%d 之间", ErrRuleInvalid, constants.FirstPeriodsMin, constants.FirstPeriodsMax)
	}
	return nil
}
