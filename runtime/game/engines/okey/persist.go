package okey

import (
	"context"

	"github.com/ubiproject-star/okey/common/log"
	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/core/domain/repository"
)

// GamePersister 对局结束时写入归档，repo 为空时什么也不做
type GamePersister struct {
	repo repository.GameRecordRepository
}

func NewGamePersister(repo repository.GameRecordRepository) *GamePersister {
	return &GamePersister{repo: repo}
}

// BuildFinalResult 从结束的房间生成归档结果
func BuildFinalResult(room *entity.GameRoom, revealed []*entity.Tile) *entity.GameFinalResult {
	result := &entity.GameFinalResult{
		WinnerID:     room.WinnerID,
		WinnerSeat:   room.SeatOf(room.WinnerID),
		Reason:       string(room.EndReason),
		Indicator:    room.Indicator,
		Joker:        room.Joker,
		DrawPileLeft: len(room.DrawPile),
	}
	if room.WinnerID == "" {
		result.WinnerSeat = -1
	}
	for _, t := range revealed {
		if t == nil {
			result.RevealedHand = append(result.RevealedHand, "")
			continue
		}
		result.RevealedHand = append(result.RevealedHand, t.ID)
	}
	return result
}

func (gp *GamePersister) Archive(ctx context.Context, room *entity.GameRoom, revealed []*entity.Tile) {
	if gp == nil || gp.repo == nil {
		return
	}
	record := entity.NewGameRecord(room)
	record.CompleteGame(BuildFinalResult(room, revealed))
	if err := gp.repo.SaveGameRecord(ctx, record); err != nil {
		log.Error("保存对局记录失败: room=%s, err=%v", room.ID, err)
		return
	}
	log.Info("对局记录已保存: room=%s, reason=%s", room.ID, room.EndReason)
}
