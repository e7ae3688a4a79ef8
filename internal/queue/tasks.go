package queue

import (
	"encoding/json"

	"github.com/kosku-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCouponRecount 优惠码核销计数对账任务
	TaskCouponRecount = constants.TaskCouponRecount
	// TaskReservationTimeoutSweep 超时预留清理任务
	TaskReservationTimeoutSweep = constants.TaskReservationTimeoutSweep
)

// CouponRecountPayload 优惠码对账任务载荷
type CouponRecountPayload struct {
	CouponID uint `json:"coupon_id"`
}

// ReservationTimeoutSweepPayload 超时预留清理任务载荷
type ReservationTimeoutSweepPayload struct {
	TTLMinutes int `json:"ttl_minutes"`
}

// NewCouponRecountTask 创建优惠码对账任务
func NewCouponRecountTask(payload CouponRecountPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCouponRecount, body), nil
}

// NewReservationTimeoutSweepTask 创建超时预留清理任务
func NewReservationTimeoutSweepTask(payload ReservationTimeoutSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReservationTimeoutSweep, body), nil
}
