package service

import (
	"fmt"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
)

// RoomRef 房间定位信息，范围匹配的输入。
type RoomRef struct {
	ID         uint
	BuildingID uint
	FloorID    uint
	RoomTypeID uint
}

// ScopeMatches 判断房间是否命中任一范围行。
// 范围之间为 OR；没有任何范围的促销不命中任何房间。
func ScopeMatches(scopes []models.PromotionScope, room RoomRef) bool {
	for _, scope := range scopes {
		if scopeMatchesRoom(scope, room) {
			return true
		}
	}
	return false
}

func scopeMatchesRoom(scope models.PromotionScope, room RoomRef) bool {
	switch scope.ScopeType {
	case constants.ScopeTypeGlobal:
		return true
	case constants.ScopeTypeBuilding:
		return scope.BuildingID != nil && *scope.BuildingID == room.BuildingID
	case constants.ScopeTypeFloor:
		return scope.FloorID != nil && *scope.FloorID == room.FloorID
	case constants.ScopeTypeRoomType:
		return scope.RoomTypeID != nil && *scope.RoomTypeID == room.RoomTypeID
	case constants.ScopeTypeRoom:
		return scope.RoomID != nil && *scope.RoomID == room.ID
	default:
		return false
	}
}

// ValidateScopeTarget 校验范围行的类型与目标ID是否一致：
// global 不允许携带目标ID，其余类型必须且只能设置与类型对应的目标ID。
func ValidateScopeTarget(scope models.PromotionScope) error {
	set := 0
	if scope.BuildingID != nil {
		set++
	}
	if scope.FloorID != nil {
		set++
	}
	if scope.RoomTypeID != nil {
		set++
	}
	if scope.RoomID != nil {
		set++
	}

	switch scope.ScopeType {
	case constants.ScopeTypeGlobal:
		if set != 0 {
			return fmt.Errorf("%w: global 范围不允许指定目标", ErrScopeInvalid)
		}
	case constants.ScopeTypeBuilding:
		if set != 1 || scope.BuildingID == nil || *scope.BuildingID == 0 {
			return fmt.Errorf("%w: building 范围必须指定楼栋", ErrScopeInvalid)
		}
	case constants.ScopeTypeFloor:
		if set != 1 || scope.FloorID == nil || *scope.FloorID == 0 {
			return fmt.Errorf("%w: floor 范围必须指定楼层", ErrScopeInvalid)
		}
	case constants.ScopeTypeRoomType:
		if set != 1 || scope.RoomTypeID == nil || *scope.RoomTypeID == 0 {
			return fmt.Errorf("%w: room_type 范围必须指定房型", ErrScopeInvalid)
		}
	case constants.ScopeTypeRoom:
		if set != 1 || scope.RoomID == nil || *scope.RoomID == 0 {
			return fmt.Errorf("%w: room 范围必须指定房间", ErrScopeInvalid)
		}
	default:
		return fmt.Errorf("%w: 未知范围类型 %s", ErrScopeInvalid, scope.ScopeType)
	}
	return nil
}

// CheckScopeConflict 校验新增或编辑的范围行是否与同促销的既有范围冲突。
// 冲突规则：
//   - global 范围存在时不允许任何其他范围；
//   - room_type 范围与 building/floor/room 范围互斥（room_type 视为更宽的范围）；
//   - 同类型同目标的范围不允许重复。
//
// excludeID 用于编辑场景，排除被编辑行自身。
func CheckScopeConflict(existing []models.PromotionScope, candidate models.PromotionScope, excludeID uint) error {
	if err := ValidateScopeTarget(candidate); err != nil {
		return err
	}

	for _, scope := range existing {
		if excludeID != 0 && scope.ID == excludeID {
			continue
		}

		if candidate.ScopeType == constants.ScopeTypeGlobal {
			return fmt.Errorf("%w: global 范围不能与其他范围共存", ErrScopeConflict)
		}
		if scope.ScopeType == constants.ScopeTypeGlobal {
			return fmt.Errorf("%w: 已存在 global 范围", ErrScopeConflict)
		}

		candidateNarrow := isNarrowScopeType(candidate.ScopeType)
		if candidate.ScopeType == constants.ScopeTypeRoomType && isNarrowScopeType(scope.ScopeType) {
			return fmt.Errorf("%w: room_type 范围不能与楼栋/楼层/房间范围共存", ErrScopeConflict)
		}
		if candidateNarrow && scope.ScopeType == constants.ScopeTypeRoomType {
			return fmt.Errorf("%w: 已存在 room_type 范围", ErrScopeConflict)
		}

		if scope.ScopeType == candidate.ScopeType && scope.TargetID() == candidate.TargetID() {
			return fmt.Errorf("%w: 相同类型与目标的范围已存在", ErrScopeConflict)
		}
	}
	return nil
}

func isNarrowScopeType(scopeType string) bool {
	switch scopeType {
	case constants.ScopeTypeBuilding, constants.ScopeTypeFloor, constants.ScopeTypeRoom:
		return true
	default:
		return false
	}
}
