package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/logger"
	"github.com/kosku-next/internal/provider"
	"github.com/kosku-next/internal/queue"

	"github.com/hibiken/asynq"
)

const sweepBatchSize = 200

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCouponRecount, c.handleCouponRecount)
	mux.HandleFunc(queue.TaskReservationTimeoutSweep, c.handleReservationTimeoutSweep)
}

func (c *Consumer) reservationTTL() time.Duration {
	minutes := constants.DefaultReservationTTLMinutes
	if c != nil && c.Config != nil && c.Config.Promo.ReservationTTLMinutes > 0 {
		minutes = c.Config.Promo.ReservationTTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func (c *Consumer) handleCouponRecount(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_coupon_recount_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CouponRecountPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_coupon_recount_unmarshal_failed", "error", err)
		return err
	}
	if payload.CouponID == 0 {
		logger.Debugw("worker_coupon_recount_skip_invalid_payload", "coupon_id", payload.CouponID)
		return nil
	}
	count, err := c.CouponRepo.RecountRedeemedCount(payload.CouponID)
	if err != nil {
		logger.Warnw("worker_coupon_recount_failed", "coupon_id", payload.CouponID, "error", err)
		return err
	}
	logger.Infow("worker_coupon_recount_done", "coupon_id", payload.CouponID, "redeemed_count", count)
	return nil
}

func (c *Consumer) handleReservationTimeoutSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_reservation_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReservationTimeoutSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_reservation_sweep_unmarshal_failed", "error", err)
		return err
	}
	ttl := c.reservationTTL()
	if payload.TTLMinutes > 0 {
		ttl = time.Duration(payload.TTLMinutes) * time.Minute
	}
	released, err := c.RedemptionService.ReleaseStaleReservations(ttl, sweepBatchSize)
	if err != nil {
		logger.Warnw("worker_reservation_sweep_failed", "error", err)
		return err
	}
	if released > 0 {
		logger.Infow("worker_reservation_sweep", "released", released)
	}
	return nil
}
