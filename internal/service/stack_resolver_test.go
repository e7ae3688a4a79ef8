package service

import (
	"testing"
	"time"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
)

func candidate(id uint, mode string, priority int, discount int64) DiscountCandidate {
	return DiscountCandidate{
		Promotion: &models.Promotion{
			ID:        id,
			StackMode: mode,
			Priority:  priority,
		},
		Breakdown: DiscountBreakdown{Rent: models.NewMoneyFromInt(discount)},
	}
}

func wideContext(rent int64) DiscountContext {
	return monthlyContext(rent, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
}

func TestExclusivePreemptsEverything(t *testing.T) {
	outcome := ResolveStack([]DiscountCandidate{
		candidate(1, constants.StackModeExclusive, 50, 10000),
		candidate(2, constants.StackModeStack, 10, 5000),
	}, wideContext(1500000))

	if len(outcome.Applied) != 1 || outcome.Applied[0].Promotion.ID != 1 {
		t.Fatalf("exclusive 候选应独占, applied=%+v", outcome.Applied)
	}
	assertMoney(t, outcome.Applied[0].Breakdown.Total(), 10000)
	if len(outcome.Rejected) != 1 || outcome.Rejected[0].Promotion.ID != 2 {
		t.Fatalf("stack 候选应被淘汰, rejected=%+v", outcome.Rejected)
	}
}

func TestStackCandidatesAccumulate(t *testing.T) {
	outcome := ResolveStack([]DiscountCandidate{
		candidate(1, constants.StackModeStack, 0, 3000),
		candidate(2, constants.StackModeStack, 0, 2000),
	}, wideContext(1500000))

	if len(outcome.Applied) != 2 {
		t.Fatalf("stack 候选应全部保留, applied=%+v", outcome.Applied)
	}
	total := outcome.Applied[0].Breakdown.Total().Decimal.
		Add(outcome.Applied[1].Breakdown.Total().Decimal)
	if total.String() != "5000" {
		t.Fatalf("stack 合计 = %s, want 5000", total.String())
	}
}

func TestHighestOnlyKeepsTopPriority(t *testing.T) {
	outcome := ResolveStack([]DiscountCandidate{
		candidate(1, constants.StackModeHighestOnly, 20, 1000),
		candidate(2, constants.StackModeHighestOnly, 80, 4000),
	}, wideContext(1500000))

	if len(outcome.Applied) != 1 || outcome.Applied[0].Promotion.ID != 2 {
		t.Fatalf("highest_only 应只保留最高优先级, applied=%+v", outcome.Applied)
	}
	assertMoney(t, outcome.Applied[0].Breakdown.Total(), 4000)
}

func TestHighestOnlyWinnerStacksWithStackGroup(t *testing.T) {
	outcome := ResolveStack([]DiscountCandidate{
		candidate(1, constants.StackModeHighestOnly, 20, 1000),
		candidate(2, constants.StackModeHighestOnly, 80, 4000),
		candidate(3, constants.StackModeStack, 0, 3000),
	}, wideContext(1500000))

	if len(outcome.Applied) != 2 {
		t.Fatalf("highest_only 胜者应与 stack 叠加, applied=%+v", outcome.Applied)
	}
	if len(outcome.Rejected) != 1 || outcome.Rejected[0].Promotion.ID != 1 {
		t.Fatalf("败者应被淘汰, rejected=%+v", outcome.Rejected)
	}
}

func TestExclusiveTieBreak(t *testing.T) {
	// 同优先级比折扣，同折扣比 id（小者胜）
	outcome := ResolveStack([]DiscountCandidate{
		candidate(9, constants.StackModeExclusive, 50, 8000),
		candidate(2, constants.StackModeExclusive, 50, 10000),
	}, wideContext(1500000))
	if outcome.Applied[0].Promotion.ID != 2 {
		t.Fatalf("折扣大者应胜出, got %d", outcome.Applied[0].Promotion.ID)
	}

	outcome = ResolveStack([]DiscountCandidate{
		candidate(9, constants.StackModeExclusive, 50, 8000),
		candidate(3, constants.StackModeExclusive, 50, 8000),
	}, wideContext(1500000))
	if outcome.Applied[0].Promotion.ID != 3 {
		t.Fatalf("同折扣时 id 小者应胜出, got %d", outcome.Applied[0].Promotion.ID)
	}
}

func TestCombinedDiscountCappedAtComponent(t *testing.T) {
	outcome := ResolveStack([]DiscountCandidate{
		candidate(1, constants.StackModeStack, 0, 800000),
		candidate(2, constants.StackModeStack, 0, 500000),
	}, wideContext(1000000))

	total := outcome.Applied[0].Breakdown.Total().Decimal.
		Add(outcome.Applied[1].Breakdown.Total().Decimal)
	if total.String() != "1000000" {
		t.Fatalf("合计折扣不应超过应收额, got %s", total.String())
	}
	// 后到的候选只拿到剩余额度
	assertMoney(t, outcome.Applied[1].Breakdown.Total(), 200000)
}
