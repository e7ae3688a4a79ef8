package service

import (
	"errors"
	"testing"
	"time"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/repository"

	"gorm.io/gorm"
)

func newRedemptionService(db *gorm.DB) *RedemptionService {
	return NewRedemptionService(
		repository.NewPromotionRepository(db),
		repository.NewPromotionCouponRepository(db),
		repository.NewPromotionRedemptionRepository(db),
		repository.NewInvoiceRepository(db),
		nil,
		0,
	)
}

func createTestInvoice(t *testing.T, db *gorm.DB, id uint) *models.Invoice {
	t.Helper()
	invoice := &models.Invoice{
		ID:          id,
		ContractID:  3,
		UserID:      7,
		PeriodIndex: 1,
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		RentAmount:  models.NewMoneyFromInt(1500000),
		Status:      constants.InvoiceStatusIssued,
	}
	if err := db.Create(invoice).Error; err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}
	return invoice
}

func TestReserveCommitIdempotence(t *testing.T) {
	db := setupPromotionTest(t)
	promotion := createMonthlyPercentPromotion(t, db)
	createTestInvoice(t, db, 9)
	svc := newRedemptionService(db)
	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))

	redemption, err := svc.Reserve(promotion.ID, nil, ctx, models.NewMoneyFromInt(100000))
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if redemption.Status != constants.RedemptionStatusReserved || redemption.Token == "" {
		t.Fatalf("预留记录状态异常: %+v", redemption)
	}

	committed, err := svc.Commit(redemption.Token)
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if committed.Status != constants.RedemptionStatusCommitted || committed.CommittedAt == nil {
		t.Fatalf("确认后状态异常: %+v", committed)
	}

	// 重复提交幂等
	again, err := svc.Commit(redemption.Token)
	if err != nil {
		t.Fatalf("repeat commit failed: %v", err)
	}
	if again.ID != committed.ID {
		t.Fatalf("重复提交应返回同一记录")
	}

	// 同一 (promotion, invoice) 第二次预留必须失败
	_, err = svc.Reserve(promotion.ID, nil, ctx, models.NewMoneyFromInt(100000))
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("重复预留应触发限额错误, got %v", err)
	}
	var limitErr *LimitError
	if !errors.As(err, &limitErr) || limitErr.Kind != constants.LimitKindPerInvoice {
		t.Fatalf("限额维度应为 per_invoice, got %v", err)
	}

	var count int64
	if err := db.Model(&models.PromotionRedemption{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("账本应只有一条记录, got %d", count)
	}

	// 折扣已累加到账单
	var invoice models.Invoice
	if err := db.First(&invoice, 9).Error; err != nil {
		t.Fatalf("load invoice failed: %v", err)
	}
	assertMoney(t, invoice.DiscountAmount, 100000)
}

func TestReserveTotalQuota(t *testing.T) {
	db := setupPromotionTest(t)
	promotion := createMonthlyPercentPromotion(t, db)
	promotion.TotalQuota = intPtr(1)
	if err := db.Omit("Scopes", "Rules", "Actions").Save(promotion).Error; err != nil {
		t.Fatalf("update promotion failed: %v", err)
	}
	createTestInvoice(t, db, 9)
	createTestInvoice(t, db, 10)
	svc := newRedemptionService(db)

	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	if _, err := svc.Reserve(promotion.ID, nil, ctx, models.NewMoneyFromInt(100000)); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}

	// 预留行即占配额，未确认也挡住第二次
	other := ctx
	other.InvoiceID = 10
	_, err := svc.Reserve(promotion.ID, nil, other, models.NewMoneyFromInt(100000))
	var limitErr *LimitError
	if !errors.As(err, &limitErr) || limitErr.Kind != constants.LimitKindTotal {
		t.Fatalf("总配额用尽应失败, got %v", err)
	}
}

func TestReleaseRestoresQuota(t *testing.T) {
	db := setupPromotionTest(t)
	promotion := createMonthlyPercentPromotion(t, db)
	promotion.TotalQuota = intPtr(1)
	if err := db.Omit("Scopes", "Rules", "Actions").Save(promotion).Error; err != nil {
		t.Fatalf("update promotion failed: %v", err)
	}
	createTestInvoice(t, db, 9)
	svc := newRedemptionService(db)
	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))

	redemption, err := svc.Reserve(promotion.ID, nil, ctx, models.NewMoneyFromInt(100000))
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if err := svc.Release(redemption.Token); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	// 释放后同一账单可重新预留
	if _, err := svc.Reserve(promotion.ID, nil, ctx, models.NewMoneyFromInt(100000)); err != nil {
		t.Fatalf("释放后重新预留应成功, got %v", err)
	}
}

func TestReleaseCommittedRejected(t *testing.T) {
	db := setupPromotionTest(t)
	promotion := createMonthlyPercentPromotion(t, db)
	createTestInvoice(t, db, 9)
	svc := newRedemptionService(db)
	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))

	redemption, err := svc.Reserve(promotion.ID, nil, ctx, models.NewMoneyFromInt(100000))
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if _, err := svc.Commit(redemption.Token); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if err := svc.Release(redemption.Token); !errors.Is(err, ErrReservationState) {
		t.Fatalf("已确认记录不可释放, got %v", err)
	}
}

func TestReserveWithCouponCountsAndExhausts(t *testing.T) {
	db := setupPromotionTest(t)
	promotion := createMonthlyPercentPromotion(t, db)
	coupon := models.PromotionCoupon{
		PromotionID:    promotion.ID,
		Code:           "HEMAT1",
		IsActive:       true,
		MaxRedemptions: intPtr(1),
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	createTestInvoice(t, db, 9)
	createTestInvoice(t, db, 10)
	svc := newRedemptionService(db)
	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))

	if _, err := svc.Reserve(promotion.ID, &coupon.ID, ctx, models.NewMoneyFromInt(100000)); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	var reloaded models.PromotionCoupon
	if err := db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("load coupon failed: %v", err)
	}
	if reloaded.RedeemedCount != 1 {
		t.Fatalf("优惠码计数应为 1, got %d", reloaded.RedeemedCount)
	}

	other := ctx
	other.InvoiceID = 10
	_, err := svc.Reserve(promotion.ID, &coupon.ID, other, models.NewMoneyFromInt(100000))
	var couponErr *CouponError
	if !errors.As(err, &couponErr) || couponErr.Reason != constants.CouponReasonExhausted {
		t.Fatalf("优惠码应已用尽, got %v", err)
	}
}

func TestReleaseStaleReservations(t *testing.T) {
	db := setupPromotionTest(t)
	promotion := createMonthlyPercentPromotion(t, db)
	createTestInvoice(t, db, 9)
	svc := newRedemptionService(db)

	// 核销时点回填两小时前：预留刚建立，不算超时
	backdated := monthlyContext(1500000, 0, time.Now().Add(-2*time.Hour))
	redemption, err := svc.Reserve(promotion.ID, nil, backdated, models.NewMoneyFromInt(100000))
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	released, err := svc.ReleaseStaleReservations(30*time.Minute, 100)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if released != 0 {
		t.Fatalf("回填核销时点的新预留不应被回收, got %d", released)
	}

	// 按建立时间老化后才被回收
	if err := db.Model(&models.PromotionRedemption{}).
		Where("token = ?", redemption.Token).
		Update("created_at", time.Now().Add(-2*time.Hour)).Error; err != nil {
		t.Fatalf("age reservation failed: %v", err)
	}

	released, err = svc.ReleaseStaleReservations(30*time.Minute, 100)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("应回收一条超时预留, got %d", released)
	}

	var count int64
	if err := db.Model(&models.PromotionRedemption{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("回收后账本应为空, got %d", count)
	}
}

func savePromotionLimits(t *testing.T, db *gorm.DB, promotion *models.Promotion) {
	t.Helper()
	if err := db.Omit("Scopes", "Rules", "Actions").Save(promotion).Error; err != nil {
		t.Fatalf("update promotion failed: %v", err)
	}
}

func assertLimitKind(t *testing.T, err error, kind string) {
	t.Helper()
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("应触发限额错误, got %v", err)
	}
	var limitErr *LimitError
	if !errors.As(err, &limitErr) || limitErr.Kind != kind {
		t.Fatalf("限额维度应为 %s, got %v", kind, err)
	}
}

func TestReserveLimitCounters(t *testing.T) {
	base := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	amount := models.NewMoneyFromInt(100000)

	t.Run("per_user", func(t *testing.T) {
		db := setupPromotionTest(t)
		promotion := createMonthlyPercentPromotion(t, db)
		promotion.PerUserLimit = intPtr(1)
		savePromotionLimits(t, db, promotion)
		createTestInvoice(t, db, 9)
		createTestInvoice(t, db, 10)
		createTestInvoice(t, db, 11)
		svc := newRedemptionService(db)

		ctx := monthlyContext(1500000, 0, base)
		if _, err := svc.Reserve(promotion.ID, nil, ctx, amount); err != nil {
			t.Fatalf("first reserve failed: %v", err)
		}

		second := ctx
		second.InvoiceID = 10
		_, err := svc.Reserve(promotion.ID, nil, second, amount)
		assertLimitKind(t, err, constants.LimitKindPerUser)

		// 其他租客不受影响
		other := ctx
		other.InvoiceID = 11
		other.UserID = 8
		if _, err := svc.Reserve(promotion.ID, nil, other, amount); err != nil {
			t.Fatalf("other user reserve failed: %v", err)
		}
	})

	t.Run("per_contract", func(t *testing.T) {
		db := setupPromotionTest(t)
		promotion := createMonthlyPercentPromotion(t, db)
		promotion.PerContractLimit = intPtr(1)
		savePromotionLimits(t, db, promotion)
		createTestInvoice(t, db, 9)
		createTestInvoice(t, db, 10)
		createTestInvoice(t, db, 11)
		svc := newRedemptionService(db)

		ctx := monthlyContext(1500000, 0, base)
		if _, err := svc.Reserve(promotion.ID, nil, ctx, amount); err != nil {
			t.Fatalf("first reserve failed: %v", err)
		}

		second := ctx
		second.InvoiceID = 10
		_, err := svc.Reserve(promotion.ID, nil, second, amount)
		assertLimitKind(t, err, constants.LimitKindPerContract)

		// 同一租客换租约可再享
		other := ctx
		other.InvoiceID = 11
		other.ContractID = 4
		if _, err := svc.Reserve(promotion.ID, nil, other, amount); err != nil {
			t.Fatalf("other contract reserve failed: %v", err)
		}
	})

	t.Run("per_day", func(t *testing.T) {
		db := setupPromotionTest(t)
		promotion := createMonthlyPercentPromotion(t, db)
		promotion.PerDayLimit = intPtr(1)
		savePromotionLimits(t, db, promotion)
		createTestInvoice(t, db, 9)
		createTestInvoice(t, db, 10)
		createTestInvoice(t, db, 11)
		svc := newRedemptionService(db)

		// 前一日的核销不占当日窗口
		yesterday := monthlyContext(1500000, 0, base.AddDate(0, 0, -1))
		if _, err := svc.Reserve(promotion.ID, nil, yesterday, amount); err != nil {
			t.Fatalf("yesterday reserve failed: %v", err)
		}

		today := monthlyContext(1500000, 0, base)
		today.InvoiceID = 10
		if _, err := svc.Reserve(promotion.ID, nil, today, amount); err != nil {
			t.Fatalf("today reserve failed: %v", err)
		}

		again := monthlyContext(1500000, 0, base.Add(5*time.Hour))
		again.InvoiceID = 11
		_, err := svc.Reserve(promotion.ID, nil, again, amount)
		assertLimitKind(t, err, constants.LimitKindPerDay)
	})

	t.Run("per_month", func(t *testing.T) {
		db := setupPromotionTest(t)
		promotion := createMonthlyPercentPromotion(t, db)
		promotion.PerMonthLimit = intPtr(1)
		savePromotionLimits(t, db, promotion)
		createTestInvoice(t, db, 9)
		createTestInvoice(t, db, 10)
		createTestInvoice(t, db, 11)
		svc := newRedemptionService(db)

		// 上月末的核销不占当月窗口
		february := monthlyContext(1500000, 0, time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC))
		if _, err := svc.Reserve(promotion.ID, nil, february, amount); err != nil {
			t.Fatalf("february reserve failed: %v", err)
		}

		march := monthlyContext(1500000, 0, base)
		march.InvoiceID = 10
		if _, err := svc.Reserve(promotion.ID, nil, march, amount); err != nil {
			t.Fatalf("march reserve failed: %v", err)
		}

		again := monthlyContext(1500000, 0, base.AddDate(0, 0, 20))
		again.InvoiceID = 11
		_, err := svc.Reserve(promotion.ID, nil, again, amount)
		assertLimitKind(t, err, constants.LimitKindPerMonth)
	})
}
