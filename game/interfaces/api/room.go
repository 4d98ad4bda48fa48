package api

import (
	"errors"

	"github.com/ubiproject-star/okey/common/http"
	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/core/domain/repository"
)

// RoomSummaryHandler 观战与排查用，不含任何手牌
func (h *Handlers) RoomSummaryHandler(c *http.Context) error {
	roomID := c.GetParam("id")
	summary, err := h.Rooms.RoomSummary(c.Request().Context(), roomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		c.NotFound("房间不存在或已过期")
		return nil
	}
	if err != nil {
		log.Error("读取房间 %s 失败: %v", roomID, err)
		c.InternalServerError("读取房间失败")
		return nil
	}
	c.Success(summary)
	return nil
}
