package service

import (
	"time"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/repository"
)

// ContextService 从账单出发装配折扣计算上下文。
// 引擎本身不做持久化查询，所有协作方数据在这里一次性加载成只读快照。
type ContextService struct {
	invoiceRepo  repository.InvoiceRepository
	contractRepo repository.ContractRepository
	roomRepo     repository.RoomRepository
	userRepo     repository.UserRepository
}

// NewContextService 创建上下文装配服务
func NewContextService(
	invoiceRepo repository.InvoiceRepository,
	contractRepo repository.ContractRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
) *ContextService {
	return &ContextService{
		invoiceRepo:  invoiceRepo,
		contractRepo: contractRepo,
		roomRepo:     roomRepo,
		userRepo:     userRepo,
	}
}

// RoomRefByID 加载房间定位信息
func (s *ContextService) RoomRefByID(roomID uint) (RoomRef, error) {
	room, err := s.roomRepo.GetByID(roomID)
	if err != nil {
		return RoomRef{}, err
	}
	if room == nil {
		return RoomRef{}, ErrRoomNotFound
	}
	return RoomRef{
		ID:         room.ID,
		BuildingID: room.BuildingID,
		FloorID:    room.FloorID,
		RoomTypeID: room.RoomTypeID,
	}, nil
}

// BuildForInvoice 装配某张账单的折扣计算上下文。
// at 为评估时刻；channel 与 couponCode 由调用方给定。
func (s *ContextService) BuildForInvoice(invoiceID uint, channel, couponCode string, at time.Time) (DiscountContext, error) {
	invoice, err := s.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return DiscountContext{}, err
	}
	if invoice == nil {
		return DiscountContext{}, ErrInvoiceNotFound
	}

	contract, err := s.contractRepo.GetByID(invoice.ContractID)
	if err != nil {
		return DiscountContext{}, err
	}
	if contract == nil {
		return DiscountContext{}, ErrContractNotFound
	}

	room, err := s.RoomRefByID(contract.RoomID)
	if err != nil {
		return DiscountContext{}, err
	}

	user, err := s.userRepo.GetByID(invoice.UserID)
	if err != nil {
		return DiscountContext{}, err
	}
	if user == nil {
		return DiscountContext{}, ErrUserNotFound
	}

	periodIndex := invoice.PeriodIndex
	if periodIndex <= 0 {
		periodIndex = derivePeriodIndex(contract, invoice.PeriodStart)
	}

	if channel == "" {
		channel = constants.ChannelPublic
	}

	return DiscountContext{
		Room:          room,
		UserID:        user.ID,
		UserRoles:     []string(user.Roles),
		ContractID:    contract.ID,
		InvoiceID:     invoice.ID,
		RentAmount:    invoice.RentAmount,
		DepositAmount: invoice.DepositAmount,
		BillingPeriod: contract.BillingPeriod,
		PeriodIndex:   periodIndex,
		Date:          at,
		Channel:       channel,
		CouponCode:    couponCode,
	}, nil
}

// derivePeriodIndex 按租约起租日推算账期序号（1起）。
func derivePeriodIndex(contract *models.Contract, periodStart time.Time) int {
	if periodStart.Before(contract.StartDate) {
		return 1
	}
	switch contract.BillingPeriod {
	case constants.BillingPeriodDaily:
		return int(periodStart.Sub(contract.StartDate).Hours()/24) + 1
	case constants.BillingPeriodWeekly:
		return int(periodStart.Sub(contract.StartDate).Hours()/(24*7)) + 1
	default:
		years := periodStart.Year() - contract.StartDate.Year()
		months := int(periodStart.Month()) - int(contract.StartDate.Month())
		index := years*12 + months + 1
		if index < 1 {
			return 1
		}
		return index
	}
}
