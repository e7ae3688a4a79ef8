package service

import (
	"fmt"
	"strings"

	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/repository"
)

// KostAdminService 楼栋/楼层/房型/房间的后台维护。
// 写入前校验层级引用关系，保证范围匹配依赖的定位字段始终一致。
type KostAdminService struct {
	buildingRepo repository.BuildingRepository
	floorRepo    repository.FloorRepository
	roomTypeRepo repository.RoomTypeRepository
	roomRepo     repository.RoomRepository
}

// NewKostAdminService 创建物业管理服务
func NewKostAdminService(
	buildingRepo repository.BuildingRepository,
	floorRepo repository.FloorRepository,
	roomTypeRepo repository.RoomTypeRepository,
	roomRepo repository.RoomRepository,
) *KostAdminService {
	return &KostAdminService{
		buildingRepo: buildingRepo,
		floorRepo:    floorRepo,
		roomTypeRepo: roomTypeRepo,
		roomRepo:     roomRepo,
	}
}

// CreateBuilding 创建楼栋
func (s *KostAdminService) CreateBuilding(building *models.Building) error {
	if strings.TrimSpace(building.Name) == "" {
		return fmt.Errorf("%w: 楼栋名称不能为空", ErrInvalidInput)
	}
	return s.buildingRepo.Create(building)
}

// ListBuildings 获取楼栋列表
func (s *KostAdminService) ListBuildings(filter repository.BuildingListFilter) ([]models.Building, int64, error) {
	return s.buildingRepo.List(filter)
}

// CreateFloor 创建楼层，楼栋必须存在。
func (s *KostAdminService) CreateFloor(floor *models.Floor) error {
	building, err := s.buildingRepo.GetByID(floor.BuildingID)
	if err != nil {
		return err
	}
	if building == nil {
		return fmt.Errorf("%w: 楼栋 %d 不存在", ErrInvalidInput, floor.BuildingID)
	}
	return s.floorRepo.Create(floor)
}

// ListFloors 获取楼层列表
func (s *KostAdminService) ListFloors(filter repository.FloorListFilter) ([]models.Floor, int64, error) {
	return s.floorRepo.List(filter)
}

// CreateRoomType 创建房型
func (s *KostAdminService) CreateRoomType(roomType *models.RoomType) error {
	if strings.TrimSpace(roomType.Name) == "" {
		return fmt.Errorf("%w: 房型名称不能为空", ErrInvalidInput)
	}
	if roomType.BaseRent.Decimal.IsNegative() || roomType.BaseDeposit.Decimal.IsNegative() {
		return fmt.Errorf("%w: 金额不能为负", ErrInvalidInput)
	}
	return s.roomTypeRepo.Create(roomType)
}

// ListRoomTypes 获取房型列表
func (s *KostAdminService) ListRoomTypes(filter repository.RoomTypeListFilter) ([]models.RoomType, int64, error) {
	return s.roomTypeRepo.List(filter)
}

// CreateRoom 创建房间，楼层必须属于给定楼栋，房型必须存在。
func (s *KostAdminService) CreateRoom(room *models.Room) error {
	floor, err := s.floorRepo.GetByID(room.FloorID)
	if err != nil {
		return err
	}
	if floor == nil || floor.BuildingID != room.BuildingID {
		return fmt.Errorf("%w: 楼层与楼栋不匹配", ErrInvalidInput)
	}
	roomType, err := s.roomTypeRepo.GetByID(room.RoomTypeID)
	if err != nil {
		return err
	}
	if roomType == nil {
		return fmt.Errorf("%w: 房型 %d 不存在", ErrInvalidInput, room.RoomTypeID)
	}
	if strings.TrimSpace(room.Number) == "" {
		return fmt.Errorf("%w: 房号不能为空", ErrInvalidInput)
	}
	return s.roomRepo.Create(room)
}

// GetRoom 获取房间详情
func (s *KostAdminService) GetRoom(id uint) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// ListRooms 获取房间列表
func (s *KostAdminService) ListRooms(filter repository.RoomListFilter) ([]models.Room, int64, error) {
	return s.roomRepo.List(filter)
}
