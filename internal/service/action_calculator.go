package service

import (
	"fmt"
	"sort"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"

	"github.com/shopspring/decimal"
)

// DiscountBreakdown 按组件拆分的折扣金额。
type DiscountBreakdown struct {
	Rent    models.Money `json:"rent"`
	Deposit models.Money `json:"deposit"`
}

// Total 折扣合计
func (b DiscountBreakdown) Total() models.Money {
	return models.NewMoneyFromDecimal(b.Rent.Decimal.Add(b.Deposit.Decimal))
}

// IsZero 折扣是否为零
func (b DiscountBreakdown) IsZero() bool {
	return !b.Rent.Decimal.IsPositive() && !b.Deposit.Decimal.IsPositive()
}

// ComputeActions 依次执行促销动作并累计折扣。
// 动作按 priority 升序执行；每个动作以其目标组件的剩余未折扣金额为基数，
// 结果先受动作级 max_discount_idr 封顶，再从剩余金额中扣减（租金优先）。
// 命中规则（matchedRule）的组件开关收窄动作可作用的组件，
// 其 max_discount_idr 封顶整条促销的折扣合计。折扣永不为负、永不超过目标组件合计。
func ComputeActions(actions []models.PromotionAction, matchedRule *models.PromotionRule, ctx DiscountContext) DiscountBreakdown {
	ordered := make([]models.PromotionAction, len(actions))
	copy(ordered, actions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	rentAllowed := true
	depositAllowed := true
	if matchedRule != nil {
		rentAllowed = matchedRule.AppliesToRent
		depositAllowed = matchedRule.AppliesToDeposit
	}

	remainingRent := ctx.RentAmount.Decimal
	remainingDeposit := ctx.DepositAmount.Decimal
	discountRent := decimal.Zero
	discountDeposit := decimal.Zero

	for _, action := range ordered {
		touchRent := action.AppliesToRent && rentAllowed
		touchDeposit := action.AppliesToDeposit && depositAllowed
		if !touchRent && !touchDeposit {
			continue
		}

		base := decimal.Zero
		if touchRent {
			base = base.Add(remainingRent)
		}
		if touchDeposit {
			base = base.Add(remainingDeposit)
		}
		if !base.IsPositive() {
			continue
		}

		candidate := computeActionDiscount(action, base, ctx)
		if action.MaxDiscountIDR != nil && candidate.Cmp(action.MaxDiscountIDR.Decimal) > 0 {
			candidate = action.MaxDiscountIDR.Decimal
		}
		if candidate.Cmp(base) > 0 {
			candidate = base
		}
		if !candidate.IsPositive() {
			continue
		}

		// 折扣扣减按租金优先分摊到目标组件
		if touchRent {
			take := decimal.Min(candidate, remainingRent)
			remainingRent = remainingRent.Sub(take)
			discountRent = discountRent.Add(take)
			candidate = candidate.Sub(take)
		}
		if touchDeposit && candidate.IsPositive() {
			take := decimal.Min(candidate, remainingDeposit)
			remainingDeposit = remainingDeposit.Sub(take)
			discountDeposit = discountDeposit.Add(take)
		}
	}

	// 规则级封顶作用于合计，超出部分从押金侧先回退
	if matchedRule != nil && matchedRule.MaxDiscountIDR != nil {
		limit := matchedRule.MaxDiscountIDR.Decimal
		total := discountRent.Add(discountDeposit)
		if total.Cmp(limit) > 0 {
			excess := total.Sub(limit)
			depositCut := decimal.Min(excess, discountDeposit)
			discountDeposit = discountDeposit.Sub(depositCut)
			excess = excess.Sub(depositCut)
			if excess.IsPositive() {
				discountRent = discountRent.Sub(excess)
			}
		}
	}

	return DiscountBreakdown{
		Rent:    models.NewMoneyFromDecimal(discountRent),
		Deposit: models.NewMoneyFromDecimal(discountDeposit),
	}
}

// computeActionDiscount 单个动作的原始折扣额（未封顶）。
func computeActionDiscount(action models.PromotionAction, base decimal.Decimal, ctx DiscountContext) decimal.Decimal {
	switch action.ActionType {
	case constants.ActionTypePercent:
		return percentOf(base, action.PercentBps)
	case constants.ActionTypeAmount:
		return decimal.Min(action.AmountIDR.Decimal, base)
	case constants.ActionTypeFixedPrice:
		discount := base.Sub(action.FixedPriceIDR.Decimal)
		if discount.IsNegative() {
			return decimal.Zero
		}
		return discount
	case constants.ActionTypeFreeNDays:
		days := ctx.DaysInBillingPeriod()
		if days <= 0 || action.NDays <= 0 {
			return decimal.Zero
		}
		discount := base.Mul(decimal.NewFromInt(int64(action.NDays))).
			Div(decimal.NewFromInt(int64(days))).Floor()
		return decimal.Min(discount, base)
	case constants.ActionTypeFirstPeriodsPercent:
		if action.NPeriods <= 0 || ctx.PeriodIndex > action.NPeriods {
			return decimal.Zero
		}
		return percentOf(base, action.PercentBps)
	case constants.ActionTypeFirstPeriodsAmount:
		if action.NPeriods <= 0 || ctx.PeriodIndex > action.NPeriods {
			return decimal.Zero
		}
		return decimal.Min(action.AmountIDR.Decimal, base)
	default:
		return decimal.Zero
	}
}

// percentOf floor(base * bps / 10000)
func percentOf(base decimal.Decimal, bps int) decimal.Decimal {
	if bps <= 0 {
		return decimal.Zero
	}
	return base.Mul(decimal.NewFromInt(int64(bps))).
		Div(decimal.NewFromInt(10000)).Floor()
}

// ValidateAction 动作参数校验，在促销编辑时执行；评估阶段默认数据已合法。
func ValidateAction(action models.PromotionAction) error {
	if !action.AppliesToRent && !action.AppliesToDeposit {
		return fmt.Errorf("%w: 动作必须作用于租金或押金", ErrActionInvalid)
	}
	if action.Priority < constants.PriorityMin || action.Priority > constants.PriorityMax {
		return fmt.Errorf("%w: priority 超出范围", ErrActionInvalid)
	}
	if action.MaxDiscountIDR != nil && action.MaxDiscountIDR.Decimal.IsNegative() {
		return fmt.Errorf("%w: max_discount_idr 不能为负", ErrActionInvalid)
	}

	switch action.ActionType {
	case constants.ActionTypePercent:
		return validatePercentBps(action.PercentBps)
	case constants.ActionTypeAmount:
		if action.AmountIDR.Decimal.IsNegative() {
			return fmt.Errorf("%w: amount_idr 不能为负", ErrActionInvalid)
		}
	case constants.ActionTypeFixedPrice:
		if action.FixedPriceIDR.Decimal.IsNegative() {
			return fmt.Errorf("%w: fixed_price_idr 不能为负", ErrActionInvalid)
		}
	case constants.ActionTypeFreeNDays:
		if action.NDays < constants.FreeDaysMin || action.NDays > constants.FreeDaysMax {
			return fmt.Errorf("%w: n_days 必须在 %d-%d 之间", ErrActionInvalid, constants.FreeDaysMin, constants.FreeDaysMax)
		}
	case constants.ActionTypeFirstPeriodsPercent:
		if err := validatePercentBps(action.PercentBps); err != nil {
			return err
		}
		return validateNPeriods(action.NPeriods)
	case constants.ActionTypeFirstPeriodsAmount:
		if action.AmountIDR.Decimal.IsNegative() {
			return fmt.Errorf("%w: amount_idr 不能为负", ErrActionInvalid)
		}
		return validateNPeriods(action.NPeriods)
	default:
		return fmt.Errorf("%w: 未知动作类型 %s", ErrActionInvalid, action.ActionType)
	}
	return nil
}

func validatePercentBps(bps int) error {
	if bps < constants.PercentBpsMin || bps > constants.PercentBpsMax {
		return fmt.Errorf("%w: percent_bps 必须在 %d-%d 之间", ErrActionInvalid, constants.PercentBpsMin, constants.PercentBpsMax)
	}
	return nil
}

func validateNPeriods(n int) error {
	if n < constants.FirstPeriodsMin || n > constants.FirstPeriodsMax {
		return fmt.Errorf("%w: n_periods 必须在 %d-%d 之间", ErrActionInvalid, constants.FirstPeriodsMin, constants.FirstPeriodsMax)
	}
	return nil
}
