package service

import (
	"errors"
	"time"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/logger"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/queue"
	"github.com/kosku-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RedemptionService 核销账本服务：预留/确认/释放三段式消费配额。
// 预留在单个事务内完成限额计数、账本写入与优惠码计数递增，
// 促销与优惠码行上加行锁阻断并发读写竞争；(promotion_id, invoice_id)
// 唯一索引兜底同一账单的重复套用。预留行同样占用配额，超时未确认的
// 预留由后台任务回收。
type RedemptionService struct {
	promotionRepo  repository.PromotionRepository
	couponRepo     repository.PromotionCouponRepository
	redemptionRepo repository.PromotionRedemptionRepository
	invoiceRepo    repository.InvoiceRepository
	queueClient    *queue.Client
	ttlMinutes     int
}

// NewRedemptionService 创建核销服务。queueClient 可为 nil，
// 此时不调度超时清理任务，仅依赖后台周期清理。
func NewRedemptionService(
	promotionRepo repository.PromotionRepository,
	couponRepo repository.PromotionCouponRepository,
	redemptionRepo repository.PromotionRedemptionRepository,
	invoiceRepo repository.InvoiceRepository,
	queueClient *queue.Client,
	ttlMinutes int,
) *RedemptionService {
	return &RedemptionService{
		promotionRepo:  promotionRepo,
		couponRepo:     couponRepo,
		redemptionRepo: redemptionRepo,
		invoiceRepo:    invoiceRepo,
		queueClient:    queueClient,
		ttlMinutes:     ttlMinutes,
	}
}

func (s *RedemptionService) reservationTTL() time.Duration {
	minutes := s.ttlMinutes
	if minutes <= 0 {
		minutes = constants.DefaultReservationTTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Reserve 为一条已评估通过的促销预留配额，返回账本记录（含预留凭证）。
// 任一限额不满足立即失败，事务整体回滚，不留下半写状态。
func (s *RedemptionService) Reserve(promotionID uint, couponID *uint, ctx DiscountContext, discount models.Money) (*models.PromotionRedemption, error) {
	if !discount.Decimal.IsPositive() {
		return nil, ErrPromotionInvalid
	}

	var redemption *models.PromotionRedemption
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		promotionRepo := s.promotionRepo.WithTx(tx)
		couponRepo := s.couponRepo.WithTx(tx)
		redemptionRepo := s.redemptionRepo.WithTx(tx)

		promotion, err := promotionRepo.GetByIDForUpdate(promotionID)
		if err != nil {
			return err
		}
		if promotion == nil {
			return ErrPromotionNotFound
		}

		// 同一促销对同一账单只允许一条账本记录，唯一索引兜底并发竞态
		existing, err := redemptionRepo.GetByPromotionAndInvoice(promotion.ID, ctx.InvoiceID)
		if err != nil {
			return err
		}
		if existing != nil {
			return NewLimitError(constants.LimitKindPerInvoice)
		}

		if err := s.checkLimits(redemptionRepo, promotion, ctx); err != nil {
			return err
		}

		if couponID != nil {
			coupon, err := couponRepo.GetByIDForUpdate(*couponID)
			if err != nil {
				return err
			}
			if coupon == nil || coupon.PromotionID != promotion.ID {
				return NewCouponError(constants.CouponReasonNotFound)
			}
			if reason := couponUnusableReason(coupon, ctx.Date); reason != "" {
				return NewCouponError(reason)
			}
			if err := couponRepo.IncrementRedeemedCount(coupon.ID, 1); err != nil {
				return err
			}
		}

		redemption = &models.PromotionRedemption{
			PromotionID: promotion.ID,
			UserID:      ctx.UserID,
			CouponID:    couponID,
			ContractID:  ctx.ContractID,
			InvoiceID:   ctx.InvoiceID,
			DiscountIDR: discount,
			Status:      constants.RedemptionStatusReserved,
			Token:       uuid.NewString(),
			RedeemedAt:  ctx.Date,
		}
		return redemptionRepo.Create(redemption)
	})
	if err != nil {
		return nil, err
	}

	if s.queueClient != nil {
		ttl := s.reservationTTL()
		payload := queue.ReservationTimeoutSweepPayload{TTLMinutes: int(ttl.Minutes())}
		if err := s.queueClient.EnqueueReservationTimeoutSweep(payload, ttl); err != nil {
			logger.S().Warnw("入队超时预留清理任务失败", "token", redemption.Token, "error", err)
		}
	}
	return redemption, nil
}

// checkLimits 对六个限额维度逐一计数校验，首个不满足即失败。
// 计数包含 reserved 与 committed 两种状态的账本行。
func (s *RedemptionService) checkLimits(redemptionRepo *repository.GormPromotionRedemptionRepository, promotion *models.Promotion, ctx DiscountContext) error {
	if promotion.TotalQuota != nil {
		count, err := redemptionRepo.CountForPromotion(promotion.ID)
		if err != nil {
			return err
		}
		if count >= int64(*promotion.TotalQuota) {
			return NewLimitError(constants.LimitKindTotal)
		}
	}
	if promotion.PerUserLimit != nil {
		count, err := redemptionRepo.CountForUser(promotion.ID, ctx.UserID)
		if err != nil {
			return err
		}
		if count >= int64(*promotion.PerUserLimit) {
			return NewLimitError(constants.LimitKindPerUser)
		}
	}
	if promotion.PerContractLimit != nil {
		count, err := redemptionRepo.CountForContract(promotion.ID, ctx.ContractID)
		if err != nil {
			return err
		}
		if count >= int64(*promotion.PerContractLimit) {
			return NewLimitError(constants.LimitKindPerContract)
		}
	}
	if promotion.PerInvoiceLimit != nil {
		count, err := redemptionRepo.CountForInvoice(promotion.ID, ctx.InvoiceID)
		if err != nil {
			return err
		}
		if count >= int64(*promotion.PerInvoiceLimit) {
			return NewLimitError(constants.LimitKindPerInvoice)
		}
	}
	if promotion.PerDayLimit != nil {
		from, to := dayWindow(ctx.Date)
		count, err := redemptionRepo.CountInRange(promotion.ID, from, to)
		if err != nil {
			return err
		}
		if count >= int64(*promotion.PerDayLimit) {
			return NewLimitError(constants.LimitKindPerDay)
		}
	}
	if promotion.PerMonthLimit != nil {
		from, to := monthWindow(ctx.Date)
		count, err := redemptionRepo.CountInRange(promotion.ID, from, to)
		if err != nil {
			return err
		}
		if count >= int64(*promotion.PerMonthLimit) {
			return NewLimitError(constants.LimitKindPerMonth)
		}
	}
	return nil
}

// Commit 确认预留：账本行转为 committed，并把折扣累加到账单上。
// 已确认的凭证重复提交按幂等处理，直接返回既有记录。
func (s *RedemptionService) Commit(token string) (*models.PromotionRedemption, error) {
	var redemption *models.PromotionRedemption
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		redemptionRepo := s.redemptionRepo.WithTx(tx)
		invoiceRepo := s.invoiceRepo.WithTx(tx)

		record, err := redemptionRepo.GetByTokenForUpdate(token)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrRedemptionNotFound
		}
		if record.Status == constants.RedemptionStatusCommitted {
			redemption = record
			return nil
		}

		now := time.Now()
		record.Status = constants.RedemptionStatusCommitted
		record.CommittedAt = &now
		if err := redemptionRepo.Update(record); err != nil {
			return err
		}

		invoice, err := invoiceRepo.GetByIDForUpdate(record.InvoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return ErrInvoiceNotFound
		}
		invoice.DiscountAmount = models.NewMoneyFromDecimal(
			invoice.DiscountAmount.Decimal.Add(record.DiscountIDR.Decimal))
		if err := invoiceRepo.Update(invoice); err != nil {
			return err
		}

		redemption = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

// Release 释放未确认的预留：软删账本行并回退优惠码计数。
// 已确认的记录不可释放。
func (s *RedemptionService) Release(token string) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		redemptionRepo := s.redemptionRepo.WithTx(tx)
		couponRepo := s.couponRepo.WithTx(tx)

		record, err := redemptionRepo.GetByTokenForUpdate(token)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrRedemptionNotFound
		}
		if record.Status == constants.RedemptionStatusCommitted {
			return ErrReservationState
		}

		if record.CouponID != nil {
			if err := couponRepo.DecrementRedeemedCount(*record.CouponID, 1); err != nil {
				return err
			}
		}
		return redemptionRepo.Delete(record.ID)
	})
}

// ApplyEvaluation 对评估结果逐条预留并确认。限额或优惠码失败的促销
// 转入 Rejected 而不中断整体流程，由调用方决定是否接受缩水后的结果。
func (s *RedemptionService) ApplyEvaluation(result *DiscountResult, ctx DiscountContext) ([]models.PromotionRedemption, *DiscountResult, error) {
	applied := []AppliedPromotion{}
	redemptions := []models.PromotionRedemption{}
	final := &DiscountResult{
		Rejected: append([]RejectedPromotion{}, result.Rejected...),
	}

	for _, promotion := range result.Applied {
		redemption, err := s.Reserve(promotion.PromotionID, promotion.CouponID, ctx, promotion.DiscountIDR)
		if err != nil {
			if kind, ok := limitRejectReason(err); ok {
				final.Rejected = append(final.Rejected, RejectedPromotion{
					PromotionID: promotion.PromotionID,
					Slug:        promotion.Slug,
					Reason:      kind,
				})
				continue
			}
			return nil, nil, err
		}
		committed, err := s.Commit(redemption.Token)
		if err != nil {
			if releaseErr := s.Release(redemption.Token); releaseErr != nil {
				logger.S().Warnw("释放预留失败", "token", redemption.Token, "error", releaseErr)
			}
			return nil, nil, err
		}
		applied = append(applied, promotion)
		redemptions = append(redemptions, *committed)
	}

	final.Applied = applied
	final.TotalDiscountIDR = sumApplied(applied)
	return redemptions, final, nil
}

// ReleaseStaleReservations 回收建立后超过 ttl 仍未确认的预留，返回释放条数。
func (s *RedemptionService) ReleaseStaleReservations(ttl time.Duration, limit int) (int, error) {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	stale, err := s.redemptionRepo.ListStaleReserved(time.Now().Add(-ttl), limit)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, record := range stale {
		if err := s.Release(record.Token); err != nil {
			logger.S().Warnw("回收超时预留失败", "token", record.Token, "error", err)
			continue
		}
		released++
	}
	return released, nil
}

// limitRejectReason 将限额/优惠码错误映射为诊断原因。
func limitRejectReason(err error) (string, bool) {
	var limitErr *LimitError
	if errors.As(err, &limitErr) {
		return "limit_" + limitErr.Kind, true
	}
	var couponErr *CouponError
	if errors.As(err, &couponErr) {
		return "coupon_" + couponErr.Reason, true
	}
	return "", false
}

func sumApplied(applied []AppliedPromotion) models.Money {
	total := models.Money{}
	for _, promotion := range applied {
		total = models.NewMoneyFromDecimal(total.Decimal.Add(promotion.DiscountIDR.Decimal))
	}
	return total
}

// dayWindow 自然日窗口 [当日零点, 次日零点)。
func dayWindow(at time.Time) (time.Time, time.Time) {
	year, month, day := at.Date()
	from := time.Date(year, month, day, 0, 0, 0, 0, at.Location())
	return from, from.AddDate(0, 0, 1)
}

// monthWindow 自然月窗口 [当月一日零点, 次月一日零点)。
func monthWindow(at time.Time) (time.Time, time.Time) {
	year, month, _ := at.Date()
	from := time.Date(year, month, 1, 0, 0, 0, 0, at.Location())
	return from, from.AddDate(0, 1, 0)
}

// ListRedemptions 查询核销账本
func (s *RedemptionService) ListRedemptions(filter repository.RedemptionListFilter) ([]models.PromotionRedemption, int64, error) {
	return s.redemptionRepo.List(filter)
}
