package okey

import (
	"sync"
	"time"
)

type TimeoutKind int

const (
	TimeoutWarning TimeoutKind = iota // 提醒
	TimeoutAction                     // 到点，托管出牌
)

func (k TimeoutKind) String() string {
	if k == TimeoutWarning {
		return "warning"
	}
	return "action"
}

// TimerFunc 计时器触发时回调，携带它所属回合的座位与截止时间
type TimerFunc func(kind TimeoutKind, seat int, deadline time.Time)

// TurnManager 一个房间在本进程内的计时器对（提醒 + 出牌），不落库。
// 新回合布置前一定先取消旧的一对。
type TurnManager struct {
	mu       sync.Mutex
	warning  *time.Timer
	action   *time.Timer
	seat     int
	deadline time.Time
	armed    bool
}

func NewTurnManager() *TurnManager {
	return &TurnManager{seat: -1}
}

// Arm 为 seat 的回合布置计时器。剩余时间不足提醒提前量时不布置提醒
func (tm *TurnManager) Arm(seat int, deadline time.Time, warningLead time.Duration, now time.Time, fire TimerFunc) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.stopLocked()
	remain := deadline.Sub(now)
	if remain < 0 {
		remain = 0
	}
	if warningLead > 0 && remain > warningLead {
		tm.warning = time.AfterFunc(remain-warningLead, func() {
			fire(TimeoutWarning, seat, deadline)
		})
	}
	tm.action = time.AfterFunc(remain, func() {
		fire(TimeoutAction, seat, deadline)
	})
	tm.seat = seat
	tm.deadline = deadline
	tm.armed = true
}

// Retry 出牌计时器的动作没能完成（例如存储暂时不可用），同一回合稍后再触发一次
func (tm *TurnManager) Retry(after time.Duration, fire TimerFunc) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if !tm.armed {
		return
	}
	if tm.action != nil {
		tm.action.Stop()
	}
	seat, deadline := tm.seat, tm.deadline
	tm.action = time.AfterFunc(after, func() {
		fire(TimeoutAction, seat, deadline)
	})
}

// ArmedFor 当前计时器是否就是这个回合的
func (tm *TurnManager) ArmedFor(seat int, deadline time.Time) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.armed && tm.seat == seat && tm.deadline.Equal(deadline)
}

func (tm *TurnManager) Armed() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.armed
}

func (tm *TurnManager) Cancel() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.stopLocked()
}

func (tm *TurnManager) stopLocked() {
	if tm.warning != nil {
		tm.warning.Stop()
		tm.warning = nil
	}
	if tm.action != nil {
		tm.action.Stop()
		tm.action = nil
	}
	tm.seat = -1
	tm.deadline = time.Time{}
	tm.armed = false
}
