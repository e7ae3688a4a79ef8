package service

import (
	"sort"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"

	"github.com/shopspring/decimal"
)

// DiscountCandidate 通过范围与规则筛选并完成计算的促销候选。
type DiscountCandidate struct {
	Promotion *models.Promotion
	Breakdown DiscountBreakdown
	CouponID  *uint
}

// StackOutcome 叠加裁决结果。
type StackOutcome struct {
	Applied  []DiscountCandidate
	Rejected []DiscountCandidate // 被叠加策略淘汰的候选
}

// ResolveStack 按叠加模式裁决候选集，优先级严格为：
// exclusive 独占一切 > highest_only 组内只留一个 > stack 全部叠加。
// 同组竞争的比较顺序：priority 大者胜，再比折扣额大者胜，再比 id 小者胜。
// 胜出候选的折扣按裁决顺序对各组件剩余应收额截断，保证账单行永不为负。
func ResolveStack(candidates []DiscountCandidate, ctx DiscountContext) StackOutcome {
	if len(candidates) == 0 {
		return StackOutcome{}
	}

	var exclusives, highestOnly, stacks []DiscountCandidate
	for _, candidate := range candidates {
		switch candidate.Promotion.StackMode {
		case constants.StackModeExclusive:
			exclusives = append(exclusives, candidate)
		case constants.StackModeHighestOnly:
			highestOnly = append(highestOnly, candidate)
		default:
			stacks = append(stacks, candidate)
		}
	}

	var winners []DiscountCandidate
	var losers []DiscountCandidate

	if len(exclusives) > 0 {
		sortCandidates(exclusives)
		winners = exclusives[:1]
		losers = append(losers, exclusives[1:]...)
		losers = append(losers, highestOnly...)
		losers = append(losers, stacks...)
	} else {
		if len(highestOnly) > 0 {
			sortCandidates(highestOnly)
			winners = append(winners, highestOnly[0])
			losers = append(losers, highestOnly[1:]...)
		}
		winners = append(winners, stacks...)
	}

	return StackOutcome{
		Applied:  capToContext(winners, ctx),
		Rejected: losers,
	}
}

// sortCandidates 组内竞争排序：priority 降序、折扣降序、id 升序。
func sortCandidates(candidates []DiscountCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Promotion.Priority != b.Promotion.Priority {
			return a.Promotion.Priority > b.Promotion.Priority
		}
		cmp := a.Breakdown.Total().Decimal.Cmp(b.Breakdown.Total().Decimal)
		if cmp != 0 {
			return cmp > 0
		}
		return a.Promotion.ID < b.Promotion.ID
	})
}

// capToContext 按各组件应收额截断胜出候选的折扣，先到先得。
func capToContext(winners []DiscountCandidate, ctx DiscountContext) []DiscountCandidate {
	remainingRent := ctx.RentAmount.Decimal
	remainingDeposit := ctx.DepositAmount.Decimal

	capped := make([]DiscountCandidate, 0, len(winners))
	for _, winner := range winners {
		rent := decimal.Min(winner.Breakdown.Rent.Decimal, remainingRent)
		deposit := decimal.Min(winner.Breakdown.Deposit.Decimal, remainingDeposit)
		if rent.IsNegative() {
			rent = decimal.Zero
		}
		if deposit.IsNegative() {
			deposit = decimal.Zero
		}
		remainingRent = remainingRent.Sub(rent)
		remainingDeposit = remainingDeposit.Sub(deposit)

		winner.Breakdown = DiscountBreakdown{
			Rent:    models.NewMoneyFromDecimal(rent),
			Deposit: models.NewMoneyFromDecimal(deposit),
		}
		capped = append(capped, winner)
	}
	return capped
}
