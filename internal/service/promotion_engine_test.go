package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPromotionTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:promotion_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Building{},
		&models.Floor{},
		&models.RoomType{},
		&models.Room{},
		&models.User{},
		&models.Admin{},
		&models.Contract{},
		&models.Invoice{},
		&models.Promotion{},
		&models.PromotionScope{},
		&models.PromotionRule{},
		&models.PromotionAction{},
		&models.PromotionCoupon{},
		&models.PromotionRedemption{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func newEngine(db *gorm.DB) *PromotionEngine {
	return NewPromotionEngine(
		repository.NewPromotionRepository(db),
		repository.NewPromotionCouponRepository(db),
	)
}

func createMonthlyPercentPromotion(t *testing.T, db *gorm.DB) *models.Promotion {
	t.Helper()
	promotion := &models.Promotion{
		Name:      "首月九折",
		Slug:      "first-month-ten-off",
		StackMode: constants.StackModeStack,
		IsActive:  true,
		Scopes: []models.PromotionScope{
			{ScopeType: constants.ScopeTypeRoomType, RoomTypeID: uintPtr(5)},
		},
		Rules: []models.PromotionRule{
			{AppliesToRent: true, BillingPeriods: models.StringList{constants.BillingPeriodMonthly}},
		},
		Actions: []models.PromotionAction{
			{
				ActionType:     constants.ActionTypePercent,
				AppliesToRent:  true,
				PercentBps:     1000,
				MaxDiscountIDR: moneyPtr(100000),
			},
		},
	}
	if err := db.Create(promotion).Error; err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	return promotion
}

func TestEvaluateEndToEnd(t *testing.T) {
	db := setupPromotionTest(t)
	promotion := createMonthlyPercentPromotion(t, db)
	engine := newEngine(db)

	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	result, err := engine.EvaluateActive(ctx)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	if len(result.Applied) != 1 {
		t.Fatalf("应命中一条促销, applied=%+v rejected=%+v", result.Applied, result.Rejected)
	}
	if result.Applied[0].PromotionID != promotion.ID {
		t.Fatalf("命中的促销不符, got %d", result.Applied[0].PromotionID)
	}
	// floor(1500000 * 10%) = 150000，动作封顶 100000
	assertMoney(t, result.Applied[0].DiscountIDR, 100000)
	assertMoney(t, result.TotalDiscountIDR, 100000)
}

func TestEvaluateScopeAndRuleRejections(t *testing.T) {
	db := setupPromotionTest(t)
	createMonthlyPercentPromotion(t, db)
	engine := newEngine(db)

	// 房型不符
	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	ctx.Room.RoomTypeID = 6
	result, err := engine.EvaluateActive(ctx)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(result.Applied) != 0 {
		t.Fatalf("房型不符不应命中, applied=%+v", result.Applied)
	}
	if len(result.Rejected) != 1 || result.Rejected[0].Reason != constants.RejectReasonScopeMismatch {
		t.Fatalf("应记录范围不符原因, rejected=%+v", result.Rejected)
	}

	// 账期不符
	ctx = monthlyContext(1500000, 0, ctx.Date)
	ctx.BillingPeriod = constants.BillingPeriodWeekly
	result, err = engine.EvaluateActive(ctx)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(result.Rejected) != 1 || result.Rejected[0].Reason != constants.RejectReasonRuleNotMatched {
		t.Fatalf("应记录规则不符原因, rejected=%+v", result.Rejected)
	}
}

func TestEvaluateValidityWindow(t *testing.T) {
	db := setupPromotionTest(t)
	promotion := createMonthlyPercentPromotion(t, db)
	future := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	promotion.ValidFrom = &future
	if err := db.Omit("Scopes", "Rules", "Actions").Save(promotion).Error; err != nil {
		t.Fatalf("update promotion failed: %v", err)
	}

	engine := newEngine(db)
	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	result, err := engine.EvaluateActive(ctx)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	// 未到生效时间的促销在加载阶段就被过滤
	if len(result.Applied) != 0 {
		t.Fatalf("未生效促销不应命中, applied=%+v", result.Applied)
	}
}

func TestEvaluateRequireCouponShortCircuit(t *testing.T) {
	db := setupPromotionTest(t)
	promotion := createMonthlyPercentPromotion(t, db)
	promotion.RequireCoupon = true
	if err := db.Omit("Scopes", "Rules", "Actions").Save(promotion).Error; err != nil {
		t.Fatalf("update promotion failed: %v", err)
	}
	coupon := models.PromotionCoupon{
		PromotionID: promotion.ID,
		Code:        "MARET26",
		IsActive:    true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	engine := newEngine(db)
	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))

	// 未携码：短路排除，连匹配阶段都不进入
	result, err := engine.EvaluateActive(ctx)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(result.Applied) != 0 || result.Rejected[0].Reason != constants.RejectReasonCouponRequired {
		t.Fatalf("未携码应短路, result=%+v", result)
	}

	// 携错码
	ctx.CouponCode = "SALAH"
	result, err = engine.EvaluateActive(ctx)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(result.Applied) != 0 || result.Rejected[0].Reason != constants.RejectReasonCouponMismatch {
		t.Fatalf("错误优惠码应排除, result=%+v", result)
	}

	// 携对码
	ctx.CouponCode = "MARET26"
	result, err = engine.EvaluateActive(ctx)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(result.Applied) != 1 || result.Applied[0].CouponID == nil || *result.Applied[0].CouponID != coupon.ID {
		t.Fatalf("正确优惠码应命中并携带优惠码ID, result=%+v", result)
	}
}

func TestEvaluateStackConflictRejection(t *testing.T) {
	db := setupPromotionTest(t)
	createMonthlyPercentPromotion(t, db)
	exclusive := &models.Promotion{
		Name:      "独占大促",
		Slug:      "promo-eksklusif",
		StackMode: constants.StackModeExclusive,
		Priority:  50,
		IsActive:  true,
		Scopes: []models.PromotionScope{
			{ScopeType: constants.ScopeTypeRoomType, RoomTypeID: uintPtr(5)},
		},
		Actions: []models.PromotionAction{
			{ActionType: constants.ActionTypeAmount, AppliesToRent: true, AmountIDR: models.NewMoneyFromInt(50000)},
		},
	}
	if err := db.Create(exclusive).Error; err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}

	engine := newEngine(db)
	ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
	result, err := engine.EvaluateActive(ctx)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	if len(result.Applied) != 1 || result.Applied[0].PromotionID != exclusive.ID {
		t.Fatalf("exclusive 应独占, applied=%+v", result.Applied)
	}
	foundConflict := false
	for _, rejected := range result.Rejected {
		if rejected.Reason == constants.RejectReasonStackConflict {
			foundConflict = true
		}
	}
	if !foundConflict {
		t.Fatalf("被独占排挤的促销应记录叠加冲突, rejected=%+v", result.Rejected)
	}
}

func TestPromotionWindowBoundsInclusive(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	promotion := &models.Promotion{IsActive: true, ValidFrom: &from, ValidUntil: &until}

	cases := []struct {
		at     time.Time
		reason string
	}{
		{from.Add(-time.Second), constants.RejectReasonNotStarted},
		{from, ""},
		{until, ""},
		{until.Add(time.Second), constants.RejectReasonExpired},
	}
	for _, c := range cases {
		if got := checkWindow(promotion, c.at); got != c.reason {
			t.Fatalf("at %v: got %q, want %q", c.at, got, c.reason)
		}
	}
}

func TestEvaluateActiveAtWindowEdge(t *testing.T) {
	db := setupPromotionTest(t)
	promotion := createMonthlyPercentPromotion(t, db)
	until := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	promotion.ValidUntil = &until
	if err := db.Omit("Scopes", "Rules", "Actions").Save(promotion).Error; err != nil {
		t.Fatalf("update promotion failed: %v", err)
	}

	engine := newEngine(db)

	// 截止时刻本身仍在有效期内
	result, err := engine.EvaluateActive(monthlyContext(1500000, 0, until))
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(result.Applied) != 1 {
		t.Fatalf("截止时刻应仍命中, result=%+v", result)
	}

	result, err = engine.EvaluateActive(monthlyContext(1500000, 0, until.Add(time.Second)))
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(result.Applied) != 0 {
		t.Fatalf("过期后不应命中, result=%+v", result)
	}
}

func TestEvaluateCouponUnusableReason(t *testing.T) {
	db := setupPromotionTest(t)
	promotion := createMonthlyPercentPromotion(t, db)
	promotion.RequireCoupon = true
	if err := db.Omit("Scopes", "Rules", "Actions").Save(promotion).Error; err != nil {
		t.Fatalf("update promotion failed: %v", err)
	}
	past := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	coupons := []models.PromotionCoupon{
		{PromotionID: promotion.ID, Code: "MATI", IsActive: false},
		{PromotionID: promotion.ID, Code: "LEWAT", IsActive: true, ExpiresAt: &past},
		{PromotionID: promotion.ID, Code: "HABIS", IsActive: true, MaxRedemptions: intPtr(1), RedeemedCount: 1},
	}
	for i := range coupons {
		if err := db.Create(&coupons[i]).Error; err != nil {
			t.Fatalf("create coupon failed: %v", err)
		}
	}

	engine := newEngine(db)
	cases := []struct {
		code   string
		reason string
	}{
		{"MATI", "coupon_" + constants.CouponReasonInactive},
		{"LEWAT", "coupon_" + constants.CouponReasonExpired},
		{"HABIS", "coupon_" + constants.CouponReasonExhausted},
	}
	for _, c := range cases {
		ctx := monthlyContext(1500000, 0, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))
		ctx.CouponCode = c.code
		result, err := engine.EvaluateActive(ctx)
		if err != nil {
			t.Fatalf("evaluate %q failed: %v", c.code, err)
		}
		if len(result.Applied) != 0 {
			t.Fatalf("code %q 不应命中, result=%+v", c.code, result)
		}
		if len(result.Rejected) != 1 || result.Rejected[0].Reason != c.reason {
			t.Fatalf("code %q: 排除原因应为 %q, rejected=%+v", c.code, c.reason, result.Rejected)
		}
	}
}
