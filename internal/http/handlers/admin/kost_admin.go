package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/kosku-next/internal/http/handlers/shared"
	"github.com/kosku-next/internal/http/response"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/repository"
	"github.com/kosku-next/internal/service"

	"github.com/gin-gonic/gin"
)

func respondKostError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, service.ErrInvalidInput) {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	respondError(c, response.CodeInternal, fallback, err)
}

func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return handlershared.NormalizePagination(page, pageSize)
}

func uintQuery(c *gin.Context, name string) uint {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func pagination(page, pageSize int, total int64) response.Pagination {
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}

// CreateBuilding 新增楼栋
func (h *Handler) CreateBuilding(c *gin.Context) {
	var building models.Building
	if err := c.ShouldBindJSON(&building); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	if err := h.KostAdminService.CreateBuilding(&building); err != nil {
		respondKostError(c, err, "创建楼栋失败")
		return
	}
	response.Success(c, building)
}

// ListBuildings 楼栋列表
func (h *Handler) ListBuildings(c *gin.Context) {
	page, pageSize := pageQuery(c)
	buildings, total, err := h.KostAdminService.ListBuildings(repository.BuildingListFilter{
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "查询楼栋列表失败", err)
		return
	}
	response.SuccessWithPage(c, buildings, pagination(page, pageSize, total))
}

// CreateFloor 新增楼层
func (h *Handler) CreateFloor(c *gin.Context) {
	var floor models.Floor
	if err := c.ShouldBindJSON(&floor); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	if err := h.KostAdminService.CreateFloor(&floor); err != nil {
		respondKostError(c, err, "创建楼层失败")
		return
	}
	response.Success(c, floor)
}

// ListFloors 楼层列表
func (h *Handler) ListFloors(c *gin.Context) {
	page, pageSize := pageQuery(c)
	floors, total, err := h.KostAdminService.ListFloors(repository.FloorListFilter{
		BuildingID: uintQuery(c, "building_id"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "查询楼层列表失败", err)
		return
	}
	response.SuccessWithPage(c, floors, pagination(page, pageSize, total))
}

// CreateRoomType 新增房型
func (h *Handler) CreateRoomType(c *gin.Context) {
	var roomType models.RoomType
	if err := c.ShouldBindJSON(&roomType); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	if err := h.KostAdminService.CreateRoomType(&roomType); err != nil {
		respondKostError(c, err, "创建房型失败")
		return
	}
	response.Success(c, roomType)
}

// ListRoomTypes 房型列表
func (h *Handler) ListRoomTypes(c *gin.Context) {
	page, pageSize := pageQuery(c)
	roomTypes, total, err := h.KostAdminService.ListRoomTypes(repository.RoomTypeListFilter{
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "查询房型列表失败", err)
		return
	}
	response.SuccessWithPage(c, roomTypes, pagination(page, pageSize, total))
}

// CreateRoom 新增房间
func (h *Handler) CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	if err := h.KostAdminService.CreateRoom(&room); err != nil {
		respondKostError(c, err, "创建房间失败")
		return
	}
	response.Success(c, room)
}

// ListRooms 房间列表
func (h *Handler) ListRooms(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.RoomListFilter{
		BuildingID: uintQuery(c, "building_id"),
		FloorID:    uintQuery(c, "floor_id"),
		RoomTypeID: uintQuery(c, "room_type_id"),
		Number:     strings.TrimSpace(c.Query("number")),
		Page:       page,
		PageSize:   pageSize,
	}
	if occupied := c.Query("is_occupied"); occupied != "" {
		value := occupied == "true" || occupied == "1"
		filter.IsOccupied = &value
	}
	rooms, total, err := h.KostAdminService.ListRooms(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "查询房间列表失败", err)
		return
	}
	response.SuccessWithPage(c, rooms, pagination(page, pageSize, total))
}
