package api

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ubiproject-star/okey/common/http"
	"github.com/ubiproject-star/okey/common/jwts"
	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/runtime/game"
)

const maxNameLength = 24

// RoomReader 房间的公开视图，由 game.Worker 实现
type RoomReader interface {
	RoomSummary(ctx context.Context, roomID string) (*game.RoomSummary, error)
}

type Handlers struct {
	Rooms    RoomReader
	Secret   string
	TokenTTL time.Duration
}

type sessionResp struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// SessionHandler 签发玩家身份令牌。带着有效的旧令牌来时沿用原玩家 ID，
// 这样刷新令牌后仍能找回进行中的对局
func (h *Handlers) SessionHandler(c *http.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("请求参数错误")
		return nil
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		c.BadRequest("昵称不能为空且不超过 24 个字符")
		return nil
	}

	playerID := uuid.NewString()
	if bearer := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "); bearer != "" {
		claims, err := jwts.ParseToken(bearer, h.Secret)
		if err != nil {
			c.Unauthorized("令牌无效")
			return nil
		}
		playerID = claims.PlayerID
	}

	claims := jwts.NewClaims(playerID, name, h.TokenTTL)
	token, err := jwts.GetToken(claims, h.Secret)
	if err != nil {
		log.Error("签发令牌失败: %v", err)
		c.InternalServerError("签发令牌失败")
		return nil
	}
	c.Success(&sessionResp{
		PlayerID:  playerID,
		Name:      name,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Unix(),
	})
	return nil
}
