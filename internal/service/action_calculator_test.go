package service

import (
	"errors"
	"testing"
	"time"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
)

func moneyPtr(v int64) *models.Money {
	m := models.NewMoneyFromInt(v)
	return &m
}

func assertMoney(t *testing.T, got models.Money, want int64) {
	t.Helper()
	if got.Decimal.String() != models.NewMoneyFromInt(want).Decimal.String() {
		t.Fatalf("money = %s, want %d", got.Decimal.String(), want)
	}
}

func TestPercentFullDiscount(t *testing.T) {
	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	actions := []models.PromotionAction{{
		ActionType:    constants.ActionTypePercent,
		AppliesToRent: true,
		PercentBps:    10000,
	}}

	breakdown := ComputeActions(actions, nil, ctx)
	assertMoney(t, breakdown.Total(), 1500000)
}

func TestPercentWithActionCap(t *testing.T) {
	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	actions := []models.PromotionAction{{
		ActionType:     constants.ActionTypePercent,
		AppliesToRent:  true,
		PercentBps:     1000,
		MaxDiscountIDR: moneyPtr(100000),
	}}

	// floor(1500000 * 1000/10000) = 150000，封顶 100000
	breakdown := ComputeActions(actions, nil, ctx)
	assertMoney(t, breakdown.Total(), 100000)
}

func TestAmountNeverExceedsBase(t *testing.T) {
	ctx := monthlyContext(80000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	actions := []models.PromotionAction{{
		ActionType:    constants.ActionTypeAmount,
		AppliesToRent: true,
		AmountIDR:     models.NewMoneyFromInt(100000),
	}}

	breakdown := ComputeActions(actions, nil, ctx)
	assertMoney(t, breakdown.Total(), 80000)
}

func TestFixedPriceNeverSurcharges(t *testing.T) {
	ctx := monthlyContext(1200000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	actions := []models.PromotionAction{{
		ActionType:    constants.ActionTypeFixedPrice,
		AppliesToRent: true,
		FixedPriceIDR: models.NewMoneyFromInt(1000000),
	}}
	breakdown := ComputeActions(actions, nil, ctx)
	assertMoney(t, breakdown.Total(), 200000)

	// 一口价高于基数时折扣为零，不产生负折扣
	expensive := []models.PromotionAction{{
		ActionType:    constants.ActionTypeFixedPrice,
		AppliesToRent: true,
		FixedPriceIDR: models.NewMoneyFromInt(2000000),
	}}
	breakdown = ComputeActions(expensive, nil, ctx)
	assertMoney(t, breakdown.Total(), 0)
}

func TestFreeNDaysProration(t *testing.T) {
	// 2026-04 共 30 天
	ctx := monthlyContext(3000000, 0, time.Date(2026, 4, 10, 10, 0, 0, 0, time.UTC))
	actions := []models.PromotionAction{{
		ActionType:    constants.ActionTypeFreeNDays,
		AppliesToRent: true,
		NDays:         3,
	}}

	// floor(3000000 * 3/30) = 300000
	breakdown := ComputeActions(actions, nil, ctx)
	assertMoney(t, breakdown.Total(), 300000)
}

func TestFirstPeriodsContributeZeroBeyondN(t *testing.T) {
	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	ctx.PeriodIndex = 3
	actions := []models.PromotionAction{{
		ActionType:    constants.ActionTypeFirstPeriodsPercent,
		AppliesToRent: true,
		PercentBps:    5000,
		NPeriods:      2,
	}}

	breakdown := ComputeActions(actions, nil, ctx)
	assertMoney(t, breakdown.Total(), 0)

	ctx.PeriodIndex = 2
	breakdown = ComputeActions(actions, nil, ctx)
	assertMoney(t, breakdown.Total(), 750000)
}

func TestActionsUseRemainingBase(t *testing.T) {
	ctx := monthlyContext(1000000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	actions := []models.PromotionAction{
		{
			ActionType:    constants.ActionTypeAmount,
			AppliesToRent: true,
			AmountIDR:     models.NewMoneyFromInt(400000),
			Priority:      1,
		},
		{
			ActionType:    constants.ActionTypePercent,
			AppliesToRent: true,
			PercentBps:    5000,
			Priority:      2,
		},
	}

	// 第二个动作的基数是剩余的 600000：floor(600000*50%) = 300000，合计 700000
	breakdown := ComputeActions(actions, nil, ctx)
	assertMoney(t, breakdown.Total(), 700000)
}

func TestRuleLevelCapAndComponentMask(t *testing.T) {
	ctx := monthlyContext(1000000, 500000, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	actions := []models.PromotionAction{{
		ActionType:       constants.ActionTypePercent,
		AppliesToRent:    true,
		AppliesToDeposit: true,
		PercentBps:       10000,
	}}

	rule := &models.PromotionRule{
		AppliesToRent:  true,
		MaxDiscountIDR: moneyPtr(600000),
	}

	// 规则只放行租金组件，且整条促销封顶 600000
	breakdown := ComputeActions(actions, rule, ctx)
	assertMoney(t, breakdown.Deposit, 0)
	assertMoney(t, breakdown.Total(), 600000)
}

func TestValidateActionBounds(t *testing.T) {
	err := ValidateAction(models.PromotionAction{
		ActionType:    constants.ActionTypePercent,
		AppliesToRent: true,
		PercentBps:    10001,
	})
	if !errors.Is(err, ErrActionInvalid) {
		t.Fatalf("percent_bps 越界应非法, got %v", err)
	}

	err = ValidateAction(models.PromotionAction{
		ActionType: constants.ActionTypeAmount,
		AmountIDR:  models.NewMoneyFromInt(1000),
	})
	if !errors.Is(err, ErrActionInvalid) {
		t.Fatalf("未选择作用组件应非法, got %v", err)
	}

	err = ValidateAction(models.PromotionAction{
		ActionType:    constants.ActionTypeFreeNDays,
		AppliesToRent: true,
		NDays:         32,
	})
	if !errors.Is(err, ErrActionInvalid) {
		t.Fatalf("n_days 越界应非法, got %v", err)
	}

	if err := ValidateAction(models.PromotionAction{
		ActionType:    constants.ActionTypePercent,
		AppliesToRent: true,
		PercentBps:    10000,
	}); err != nil {
		t.Fatalf("合法动作不应报错, got %v", err)
	}
}
