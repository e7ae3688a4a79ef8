package service

import (
	"time"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
)

// DiscountContext 折扣计算上下文：评估一张账单时由调用方装配的只读快照。
type DiscountContext struct {
	Room          RoomRef      // 房间定位
	UserID        uint         // 租客ID
	UserRoles     []string     // 租客角色名
	ContractID    uint         // 租约ID
	InvoiceID     uint         // 账单ID
	RentAmount    models.Money // 本期租金
	DepositAmount models.Money // 本期押金
	BillingPeriod string       // 账期类型（daily/weekly/monthly）
	PeriodIndex   int          // 账期序号（1起）
	Date          time.Time    // 评估时刻（日期与时间窗口都按该时刻判定）
	Channel       string       // 销售渠道
	CouponCode    string       // 优惠码（可空）
}

// ChargeableAmount 本期应收合计（租金+押金），门槛与总量封顶的基数。
func (ctx DiscountContext) ChargeableAmount() models.Money {
	return models.NewMoneyFromDecimal(ctx.RentAmount.Decimal.Add(ctx.DepositAmount.Decimal))
}

// DaysInBillingPeriod 当前账期的天数，免租天数折算的分母。
func (ctx DiscountContext) DaysInBillingPeriod() int {
	switch ctx.BillingPeriod {
	case constants.BillingPeriodDaily:
		return 1
	case constants.BillingPeriodWeekly:
		return 7
	default:
		year, month, _ := ctx.Date.Date()
		firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, ctx.Date.Location()).AddDate(0, 1, 0)
		return firstOfNext.AddDate(0, 0, -1).Day()
	}
}
