package repository

import "time"

// BuildingListFilter 查询楼栋列表的过滤条件
type BuildingListFilter struct {
	Page    int
	PageSize int
	Keyword string
}

// FloorListFilter 查询楼层列表的过滤条件
type FloorListFilter struct {
	Page       int
	PageSize   int
	BuildingID uint
}

// RoomTypeListFilter 查询房型列表的过滤条件
type RoomTypeListFilter struct {
	Page     int
	PageSize int
	Keyword  string
}

// RoomListFilter 查询房间列表的过滤条件
type RoomListFilter struct {
	Page       int
	PageSize   int
	BuildingID uint
	FloorID    uint
	RoomTypeID uint
	Number     string
	IsOccupied *bool
}

// UserListFilter 查询租客列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
	Role     string
}

// ContractListFilter 查询租约列表的过滤条件
type ContractListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	RoomID        uint
	BillingPeriod string
	Status        string
	StartFrom     *time.Time
	StartTo       *time.Time
}

// InvoiceListFilter 查询账单列表的过滤条件
type InvoiceListFilter struct {
	Page       int
	PageSize   int
	ContractID uint
	UserID     uint
	Status     string
	PeriodFrom *time.Time
	PeriodTo   *time.Time
}

// PromotionListFilter 查询促销列表的过滤条件
type PromotionListFilter struct {
	Page      int
	PageSize  int
	Keyword   string
	StackMode string
	Channel   string
	Tag       string
	IsActive  *bool
	ActiveAt  *time.Time
}

// CouponListFilter 查询优惠码列表的过滤条件
type CouponListFilter struct {
	Page        int
	PageSize    int
	PromotionID uint
	Code        string
	IsActive    *bool
}

// RedemptionListFilter 查询核销记录列表的过滤条件
type RedemptionListFilter struct {
	Page         int
	PageSize     int
	PromotionID  uint
	UserID       uint
	ContractID   uint
	InvoiceID    uint
	CouponID     uint
	Status       string
	RedeemedFrom *time.Time
	RedeemedTo   *time.Time
}
