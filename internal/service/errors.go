package service

import (
	"errors"
	"fmt"
)

// 促销引擎与后台服务的哨兵错误，handler 层通过 errors.Is 映射为响应码。
var (
	ErrPromotionNotFound  = errors.New("促销不存在")
	ErrPromotionInvalid   = errors.New("促销参数无效")
	ErrSlugTaken          = errors.New("促销标识已被占用")
	ErrScopeConflict      = errors.New("促销范围冲突")
	ErrScopeInvalid       = errors.New("促销范围参数无效")
	ErrRuleInvalid        = errors.New("促销规则参数无效")
	ErrActionInvalid      = errors.New("促销动作参数无效")
	ErrCouponNotFound     = errors.New("优惠码不存在")
	ErrCouponInvalid      = errors.New("优惠码不可用")
	ErrCouponCodeTaken    = errors.New("优惠码已存在")
	ErrLimitExceeded      = errors.New("促销限额已用尽")
	ErrRedemptionNotFound = errors.New("核销记录不存在")
	ErrReservationState   = errors.New("核销记录状态不允许该操作")
	ErrInvoiceNotFound    = errors.New("账单不存在")
	ErrContractNotFound   = errors.New("租约不存在")
	ErrRoomNotFound       = errors.New("房间不存在")
	ErrUserNotFound       = errors.New("租客不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidInput       = errors.New("参数无效")
)

// LimitError 限额错误，kind 标识触发的限额维度（total/per_user/...）。
type LimitError struct {
	Kind string
}

// Error 实现 error 接口
func (e *LimitError) Error() string {
	return fmt.Sprintf("促销限额已用尽: %s", e.Kind)
}

// Is 支持 errors.Is(err, ErrLimitExceeded)
func (e *LimitError) Is(target error) bool {
	return target == ErrLimitExceeded
}

// NewLimitError 创建限额错误
func NewLimitError(kind string) error {
	return &LimitError{Kind: kind}
}

// CouponError 优惠码错误，reason 标识不可用原因（not_found/inactive/expired/exhausted）。
type CouponError struct {
	Reason string
}

// Error 实现 error 接口
func (e *CouponError) Error() string {
	return fmt.Sprintf("优惠码不可用: %s", e.Reason)
}

// Is 支持 errors.Is(err, ErrCouponInvalid)
func (e *CouponError) Is(target error) bool {
	return target == ErrCouponInvalid
}

// NewCouponError 创建优惠码错误
func NewCouponError(reason string) error {
	return &CouponError{Reason: reason}
}
