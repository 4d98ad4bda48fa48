package okey

import (
	"errors"

	"github.com/ubiproject-star/okey/core/domain/repository"
)

var (
	ErrNotYourTurn   = errors.New("not your turn")
	ErrAlreadyDrawn  = errors.New("already drawn this turn")
	ErrMustDrawFirst = errors.New("draw a tile before discarding")
	ErrEmptyPile     = errors.New("pile is empty")
	ErrTileNotInHand = errors.New("tile not in hand")
	ErrUnknownSource = errors.New("unknown draw source")
	ErrNotSeated     = errors.New("player is not seated in this room")

	ErrInvalidFinish = errors.New("invalid finishing hand")

	ErrRoomFinished = errors.New("room already finished")
)

// ErrorKind 错误分类，决定错误如何反馈给玩家
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindProtocolViolation 私下通知，不改状态
	KindProtocolViolation
	// KindInvalidFinish 私下通知，回合保留
	KindInvalidFinish
	// KindTerminal 房间已结束，不再接受命令
	KindTerminal
	// KindMissingRoom 房间不存在，命令静默丢弃
	KindMissingRoom
)

func (k ErrorKind) String() string {
	switch k {
	case KindProtocolViolation:
		return "protocol_violation"
	case KindInvalidFinish:
		return "invalid_finish"
	case KindTerminal:
		return "terminal"
	case KindMissingRoom:
		return "missing_room"
	default:
		return "unknown"
	}
}

func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNotYourTurn),
		errors.Is(err, ErrAlreadyDrawn),
		errors.Is(err, ErrMustDrawFirst),
		errors.Is(err, ErrEmptyPile),
		errors.Is(err, ErrTileNotInHand),
		errors.Is(err, ErrUnknownSource),
		errors.Is(err, ErrNotSeated):
		return KindProtocolViolation
	case errors.Is(err, ErrInvalidFinish):
		return KindInvalidFinish
	case errors.Is(err, ErrRoomFinished):
		return KindTerminal
	case errors.Is(err, repository.ErrRoomNotFound):
		return KindMissingRoom
	default:
		return KindUnknown
	}
}
