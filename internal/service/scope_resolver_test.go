package service

import (
	"errors"
	"testing"

	"github.com/kosku-next/internal/constants"
	"github.com/kosku-next/internal/models"
)

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }

func buildingScope(id uint) models.PromotionScope {
	return models.PromotionScope{ScopeType: constants.ScopeTypeBuilding, BuildingID: uintPtr(id)}
}

func roomTypeScope(id uint) models.PromotionScope {
	return models.PromotionScope{ScopeType: constants.ScopeTypeRoomType, RoomTypeID: uintPtr(id)}
}

func TestScopeMatchesHierarchy(t *testing.T) {
	room := RoomRef{ID: 101, BuildingID: 1, FloorID: 11, RoomTypeID: 5}

	cases := []struct {
		name   string
		scopes []models.PromotionScope
		want   bool
	}{
		{"零范围不命中任何房间", nil, false},
		{"global 命中一切", []models.PromotionScope{{ScopeType: constants.ScopeTypeGlobal}}, true},
		{"楼栋命中", []models.PromotionScope{buildingScope(1)}, true},
		{"楼栋不命中", []models.PromotionScope{buildingScope(2)}, false},
		{"楼层命中", []models.PromotionScope{{ScopeType: constants.ScopeTypeFloor, FloorID: uintPtr(11)}}, true},
		{"房型命中", []models.PromotionScope{roomTypeScope(5)}, true},
		{"房间命中", []models.PromotionScope{{ScopeType: constants.ScopeTypeRoom, RoomID: uintPtr(101)}}, true},
		{"任一范围命中即可", []models.PromotionScope{buildingScope(2), roomTypeScope(5)}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScopeMatches(tc.scopes, room); got != tc.want {
				t.Fatalf("ScopeMatches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCheckScopeConflictGlobal(t *testing.T) {
	existing := []models.PromotionScope{buildingScope(1)}

	err := CheckScopeConflict(existing, models.PromotionScope{ScopeType: constants.ScopeTypeGlobal}, 0)
	if !errors.Is(err, ErrScopeConflict) {
		t.Fatalf("global 与既有范围共存应冲突, got %v", err)
	}

	existingGlobal := []models.PromotionScope{{ID: 1, ScopeType: constants.ScopeTypeGlobal}}
	err = CheckScopeConflict(existingGlobal, buildingScope(2), 0)
	if !errors.Is(err, ErrScopeConflict) {
		t.Fatalf("已有 global 时新增其他范围应冲突, got %v", err)
	}
}

func TestCheckScopeConflictRoomType(t *testing.T) {
	existing := []models.PromotionScope{{ID: 1, ScopeType: constants.ScopeTypeRoomType, RoomTypeID: uintPtr(5)}}

	err := CheckScopeConflict(existing, buildingScope(1), 0)
	if !errors.Is(err, ErrScopeConflict) {
		t.Fatalf("room_type 与 building 共存应冲突, got %v", err)
	}

	err = CheckScopeConflict([]models.PromotionScope{{ID: 2, ScopeType: constants.ScopeTypeRoom, RoomID: uintPtr(9)}}, roomTypeScope(5), 0)
	if !errors.Is(err, ErrScopeConflict) {
		t.Fatalf("新增 room_type 与既有 room 共存应冲突, got %v", err)
	}

	// 两个不同房型的 room_type 范围可以共存
	if err := CheckScopeConflict(existing, roomTypeScope(6), 0); err != nil {
		t.Fatalf("不同房型的 room_type 范围应允许, got %v", err)
	}
}

func TestCheckScopeConflictDuplicate(t *testing.T) {
	existing := []models.PromotionScope{{ID: 3, ScopeType: constants.ScopeTypeBuilding, BuildingID: uintPtr(1)}}

	err := CheckScopeConflict(existing, buildingScope(1), 0)
	if !errors.Is(err, ErrScopeConflict) {
		t.Fatalf("重复范围应冲突, got %v", err)
	}

	// 编辑自身时排除被编辑行
	if err := CheckScopeConflict(existing, buildingScope(1), 3); err != nil {
		t.Fatalf("编辑自身不应冲突, got %v", err)
	}
}

func TestValidateScopeTarget(t *testing.T) {
	err := ValidateScopeTarget(models.PromotionScope{ScopeType: constants.ScopeTypeBuilding})
	if !errors.Is(err, ErrScopeInvalid) {
		t.Fatalf("building 范围缺目标应非法, got %v", err)
	}

	err = ValidateScopeTarget(models.PromotionScope{ScopeType: constants.ScopeTypeGlobal, RoomID: uintPtr(1)})
	if !errors.Is(err, ErrScopeInvalid) {
		t.Fatalf("global 范围携带目标应非法, got %v", err)
	}

	err = ValidateScopeTarget(models.PromotionScope{
		ScopeType:  constants.ScopeTypeFloor,
		FloorID:    uintPtr(1),
		BuildingID: uintPtr(2),
	})
	if !errors.Is(err, ErrScopeInvalid) {
		t.Fatalf("多目标应非法, got %v", err)
	}
}
