package okey

import (
	"sort"

	"github.com/ubiproject-star/okey/core/domain/entity"
)

const (
	MinSetSize   = 3
	MaxGroupSize = len(entity.Colors)
	// wrapHigh 把 1 当作 13 之后的牌时使用的点数
	wrapHigh = MaxTileValue + 1
)

// effectiveTile 校验时的牌面，wild 表示本局 okey（任意点数任意花色）
type effectiveTile struct {
	value int
	color entity.Color
	wild  bool
}

func resolveEffective(t entity.Tile, joker entity.JokerIdentity) effectiveTile {
	if t.IsFakeJoker {
		// 假 okey 只代表本局 okey 的牌面本身，不是万能牌
		return effectiveTile{value: joker.Value, color: joker.Color}
	}
	if joker.Matches(t) {
		return effectiveTile{wild: true}
	}
	return effectiveTile{value: t.Value, color: t.Color}
}

// SplitArrangement 按 nil 分隔把玩家摆好的牌切成若干段，空段会被忽略
func SplitArrangement(arranged []*entity.Tile) [][]entity.Tile {
	var sets [][]entity.Tile
	var cur []entity.Tile
	for _, t := range arranged {
		if t == nil {
			if len(cur) > 0 {
				sets = append(sets, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, *t)
	}
	if len(cur) > 0 {
		sets = append(sets, cur)
	}
	return sets
}

// IsValidHand 玩家摆好的 14 张牌，每一段都必须是合法的组或顺
func IsValidHand(arranged []*entity.Tile, joker entity.JokerIdentity) bool {
	sets := SplitArrangement(arranged)
	total := 0
	for _, set := range sets {
		total += len(set)
	}
	if total != HandSize {
		return false
	}
	for _, set := range sets {
		if !IsValidSet(set, joker) {
			return false
		}
	}
	return true
}

// IsValidSet 单独一段是否为合法的组（同点不同色）或顺（同色连续）
func IsValidSet(set []entity.Tile, joker entity.JokerIdentity) bool {
	if len(set) < MinSetSize {
		return false
	}
	fixed := make([]effectiveTile, 0, len(set))
	wilds := 0
	for _, t := range set {
		e := resolveEffective(t, joker)
		if e.wild {
			wilds++
			continue
		}
		fixed = append(fixed, e)
	}
	if len(fixed) == 0 {
		return true
	}
	return isGroup(fixed, len(set)) || isRun(fixed, wilds, len(set))
}

func isGroup(fixed []effectiveTile, size int) bool {
	if size > MaxGroupSize {
		return false
	}
	colors := make(map[entity.Color]struct{}, len(fixed))
	for _, e := range fixed {
		if e.value != fixed[0].value {
			return false
		}
		if _, dup := colors[e.color]; dup {
			return false
		}
		colors[e.color] = struct{}{}
	}
	return true
}

func isRun(fixed []effectiveTile, wilds, size int) bool {
	if size > MaxTileValue {
		return false
	}
	values := make([]int, 0, len(fixed))
	hasOne := false
	for _, e := range fixed {
		if e.color != fixed[0].color {
			return false
		}
		if e.value == 1 {
			hasOne = true
		}
		values = append(values, e.value)
	}
	if runFits(values, wilds) {
		return true
	}
	if !hasOne {
		return false
	}
	// 1 接在 13 后面的候选（12-13-1），1 不能再往后接 2
	wrapped := make([]int, len(values))
	for i, v := range values {
		if v == 1 {
			v = wrapHigh
		}
		wrapped[i] = v
	}
	return runFits(wrapped, wilds)
}

// runFits 排序后相邻点数不能相同，中间的空缺由万能牌补齐；多余的万能牌接在两端。
// 段长不超过 13 时两端总能放下，所以这里只需要检查空缺。
func runFits(values []int, wilds int) bool {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	gaps := 0
	for i := 1; i < len(sorted); i++ {
		d := sorted[i] - sorted[i-1]
		if d == 0 {
			return false
		}
		gaps += d - 1
	}
	return gaps <= wilds
}
