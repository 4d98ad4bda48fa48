package repository

import (
	"context"

	"github.com/ubiproject-star/okey/core/domain/entity"
)

// GameRecordRepository 对局归档仓储接口
type GameRecordRepository interface {
	SaveGameRecord(ctx context.Context, record *entity.GameRecord) error

	// FindGameRecordByRoom 不存在时返回 ErrGameRecordNotFound
	FindGameRecordByRoom(ctx context.Context, roomID string) (*entity.GameRecord, error)

	// FindGameRecordsByUser 按开始时间倒序分页
	FindGameRecordsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.GameRecord, error)
}
