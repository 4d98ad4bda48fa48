package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/ubiproject-star/okey/common/database"
	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/core/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gameRecordCollection = "okey_game_records"

type MongoGameRecordRepository struct {
	mongo *database.MongoManager
}

func NewGameRecordRepository(mongo *database.MongoManager) repository.GameRecordRepository {
	return &MongoGameRecordRepository{mongo: mongo}
}

func (r *MongoGameRecordRepository) collection() *mongo.Collection {
	return r.mongo.Db.Collection(gameRecordCollection)
}

func (r *MongoGameRecordRepository) SaveGameRecord(ctx context.Context, record *entity.GameRecord) error {
	if _, err := r.collection().InsertOne(ctx, record); err != nil {
		return fmt.Errorf("保存对局记录 %s 失败: %w", record.RoomID, err)
	}
	return nil
}

func (r *MongoGameRecordRepository) FindGameRecordByRoom(ctx context.Context, roomID string) (*entity.GameRecord, error) {
	var record entity.GameRecord
	err := r.collection().FindOne(ctx, bson.M{"room_id": roomID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrGameRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询对局记录 %s 失败: %w", roomID, err)
	}
	return &record, nil
}

func (r *MongoGameRecordRepository) FindGameRecordsByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.GameRecord, error) {
	opts := options.Find().
		SetSort(bson.M{"start_time": -1}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection().Find(ctx, bson.M{"players.user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("查询玩家 %s 对局记录失败: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var records []*entity.GameRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("解析对局记录失败: %w", err)
	}
	return records, nil
}
