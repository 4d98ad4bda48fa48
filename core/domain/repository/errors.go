package repository

import "errors"

var (
	// ErrRoomNotFound 房间不存在或已过期
	ErrRoomNotFound = errors.New("room not found")
	// ErrVersionConflict 写入时房间版本已被其他进程推进
	ErrVersionConflict = errors.New("room version conflict")

	ErrActiveRoomNotFound = errors.New("active room not found")

	ErrGameRecordNotFound = errors.New("game record not found")
)
