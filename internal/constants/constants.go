package constants

// 促销叠加模式常量
const (
	StackModeStack       = "stack"
	StackModeHighestOnly = "highest_only"
	StackModeExclusive   = "exclusive"
)

// 促销适用范围类型常量
const (
	ScopeTypeGlobal   = "global"
	ScopeTypeBuilding = "building"
	ScopeTypeFloor    = "floor"
	ScopeTypeRoomType = "room_type"
	ScopeTypeRoom     = "room"
)

// 促销动作类型常量
const (
	ActionTypePercent             = "percent"
	ActionTypeAmount              = "amount"
	ActionTypeFixedPrice          = "fixed_price"
	ActionTypeFreeNDays           = "free_n_days"
	ActionTypeFirstPeriodsPercent = "first_n_periods_percent"
	ActionTypeFirstPeriodsAmount  = "first_n_periods_amount"
)

// 销售渠道常量
const (
	ChannelPublic   = "public"
	ChannelReferral = "referral"
	ChannelManual   = "manual"
	ChannelCoupon   = "coupon"
)

// 账期类型常量
const (
	BillingPeriodDaily   = "daily"
	BillingPeriodWeekly  = "weekly"
	BillingPeriodMonthly = "monthly"
)

// 核销记录状态常量
const (
	RedemptionStatusReserved  = "reserved"
	RedemptionStatusCommitted = "committed"
)

// 促销未命中原因常量
const (
	RejectReasonInactive       = "inactive"
	RejectReasonNotStarted     = "not_started"
	RejectReasonExpired        = "expired"
	RejectReasonCouponRequired = "coupon_required"
	RejectReasonCouponMismatch = "coupon_mismatch"
	RejectReasonScopeMismatch  = "scope_mismatch"
	RejectReasonRuleNotMatched = "rule_not_matched"
	RejectReasonZeroDiscount   = "zero_discount"
	RejectReasonStackConflict  = "stack_conflict"
)

// 限额类型常量
const (
	LimitKindTotal       = "total"
	LimitKindPerUser     = "per_user"
	LimitKindPerContract = "per_contract"
	LimitKindPerInvoice  = "per_invoice"
	LimitKindPerDay      = "per_day"
	LimitKindPerMonth    = "per_month"
)

// 优惠码失效原因常量
const (
	CouponReasonNotFound  = "not_found"
	CouponReasonInactive  = "inactive"
	CouponReasonExpired   = "expired"
	CouponReasonExhausted = "exhausted"
)

// 租约状态常量
const (
	ContractStatusActive     = "active"
	ContractStatusTerminated = "terminated"
	ContractStatusExpired    = "expired"
)

// 账单状态常量
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusIssued  = "issued"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusVoid    = "void"
	InvoiceStatusOverdue = "overdue"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 用户角色常量
const (
	RoleTenant   = "tenant"
	RoleReferrer = "referrer"
	RoleStaff    = "staff"
)

// 促销动作参数边界常量
const (
	PercentBpsMin   = 1
	PercentBpsMax   = 10000
	FreeDaysMin     = 1
	FreeDaysMax     = 31
	FirstPeriodsMin = 1
	FirstPeriodsMax = 36
	PriorityMin     = 0
	PriorityMax     = 100000
)

// 队列常量
const (
	QueueDefault                = "default"
	TaskCouponRecount           = "promotion:coupon_recount"
	TaskReservationTimeoutSweep = "promotion:reservation_timeout_sweep"

	// DefaultReservationTTLMinutes 预留记录的默认最长存活时间（分钟）
	DefaultReservationTTLMinutes = 30
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "ks"
)

// 币种常量
const (
	CurrencyIDR = "IDR"
)
