package public

import (
	"errors"
	"strconv"
	"time"

	"github.com/kosku-next/internal/cache"
	"github.com/kosku-next/internal/http/response"
	"github.com/kosku-next/internal/service"

	"github.com/gin-gonic/gin"
)

// roomPromotionCacheTTL 房间促销列表的缓存时长，促销变更后最多延迟这么久可见
const roomPromotionCacheTTL = time.Minute

// RoomPromotionView 房间促销展示信息
type RoomPromotionView struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	StackMode     string     `json:"stack_mode"`
	RequireCoupon bool       `json:"require_coupon"`
	ValidFrom     *time.Time `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until"`
	Tags          []string   `json:"tags"`
}

// ListRoomPromotions 查询某房间当前可见的促销
func (h *Handler) ListRoomPromotions(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || roomID == 0 {
		respondError(c, response.CodeBadRequest, "路径参数无效", err)
		return
	}

	cacheKey := "room_promotions:" + strconv.FormatUint(roomID, 10)
	var cached []RoomPromotionView
	if hit, err := cache.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	room, err := h.ContextService.RoomRefByID(uint(roomID))
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			respondError(c, response.CodeNotFound, "房间不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "查询房间失败", err)
		return
	}

	promotions, err := h.PromotionEngine.ActivePromotionsForRoom(room, time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "查询促销失败", err)
		return
	}

	views := make([]RoomPromotionView, 0, len(promotions))
	for _, promotion := range promotions {
		views = append(views, RoomPromotionView{
			ID:            promotion.ID,
			Name:          promotion.Name,
			Slug:          promotion.Slug,
			StackMode:     promotion.StackMode,
			RequireCoupon: promotion.RequireCoupon,
			ValidFrom:     promotion.ValidFrom,
			ValidUntil:    promotion.ValidUntil,
			Tags:          promotion.Tags,
		})
	}

	if err := cache.SetJSON(c.Request.Context(), cacheKey, views, roomPromotionCacheTTL); err != nil {
		requestLog(c).Warnw("写入房间促销缓存失败", "room_id", roomID, "error", err)
	}
	response.Success(c, views)
}
