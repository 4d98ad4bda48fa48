package okey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ubiproject-star/okey/core/domain/entity"
)

// 本组测试的 okey 是黑 9
var blackNine = entity.JokerIdentity{Value: 9, Color: entity.ColorBlack}

func tl(color entity.Color, value, copyIndex int) entity.Tile {
	return entity.Tile{ID: TileID(color, value, copyIndex), Value: value, Color: color}
}

func fake(n int) entity.Tile {
	return entity.Tile{ID: "fake-" + string(rune('0'+n)), Value: entity.FakeJokerValue, IsFakeJoker: true}
}

// arrange 把若干段拼成带分隔的摆牌
func arrange(sets ...[]entity.Tile) []*entity.Tile {
	var out []*entity.Tile
	for i, set := range sets {
		if i > 0 {
			out = append(out, nil)
		}
		for _, t := range set {
			t := t
			out = append(out, &t)
		}
	}
	return out
}

func set(tiles ...entity.Tile) []entity.Tile { return tiles }

func TestIsValidSetGroups(t *testing.T) {
	red, black, blue, orange := entity.ColorRed, entity.ColorBlack, entity.ColorBlue, entity.ColorOrange

	assert.True(t, IsValidSet(set(tl(red, 7, 1), tl(black, 7, 1), tl(blue, 7, 1)), blackNine))
	assert.True(t, IsValidSet(set(tl(red, 7, 1), tl(black, 7, 1), tl(blue, 7, 1), tl(orange, 7, 1)), blackNine))
	assert.True(t, IsValidSet(set(tl(red, 7, 1), tl(blue, 7, 1), tl(black, 9, 1)), blackNine), "okey fills a color slot")

	assert.False(t, IsValidSet(set(tl(red, 7, 1), tl(red, 7, 2), tl(blue, 7, 1)), blackNine), "duplicate color")
	assert.False(t, IsValidSet(set(tl(red, 7, 1), tl(black, 7, 1), tl(blue, 7, 1), tl(orange, 7, 1), tl(black, 9, 1)), blackNine), "five tiles")
	assert.False(t, IsValidSet(set(tl(red, 7, 1), tl(black, 7, 1)), blackNine), "too short")
}

func TestIsValidSetRuns(t *testing.T) {
	red, black, blue := entity.ColorRed, entity.ColorBlack, entity.ColorBlue

	assert.True(t, IsValidSet(set(tl(red, 4, 1), tl(red, 5, 1), tl(red, 6, 1)), blackNine))
	assert.True(t, IsValidSet(set(tl(red, 6, 1), tl(red, 4, 1), tl(black, 9, 1)), blackNine), "okey fills 5")
	assert.True(t, IsValidSet(set(tl(red, 3, 1), tl(black, 9, 1), tl(black, 9, 2), tl(red, 6, 1)), blackNine), "two okeys fill 4 and 5")
	assert.True(t, IsValidSet(set(tl(blue, 12, 1), tl(blue, 13, 1), tl(blue, 1, 1)), blackNine), "12-13-1 wraps")
	assert.True(t, IsValidSet(set(tl(blue, 13, 1), tl(blue, 1, 1), tl(black, 9, 1)), blackNine))
	assert.True(t, IsValidSet(set(tl(blue, 1, 1), tl(blue, 2, 1), tl(blue, 3, 1)), blackNine))

	assert.False(t, IsValidSet(set(tl(blue, 13, 1), tl(blue, 1, 1), tl(blue, 2, 1)), blackNine), "13-1-2 must not wrap")
	assert.False(t, IsValidSet(set(tl(red, 4, 1), tl(red, 6, 1), tl(red, 7, 1)), blackNine), "gap without okey")
	assert.False(t, IsValidSet(set(tl(red, 4, 1), tl(red, 5, 1), tl(blue, 6, 1)), blackNine), "mixed colors")
	assert.False(t, IsValidSet(set(tl(red, 4, 1), tl(red, 4, 2), tl(red, 5, 1)), blackNine), "repeated value")
}

func TestIsValidSetFakeJokerIsTheOkeyFace(t *testing.T) {
	red, blue := entity.ColorRed, entity.ColorBlue
	redFive := entity.JokerIdentity{Value: 5, Color: red}

	// 假 okey 代表红 5
	assert.True(t, IsValidSet(set(tl(red, 4, 1), fake(1), tl(red, 6, 1)), redFive))
	assert.False(t, IsValidSet(set(tl(blue, 4, 1), fake(1), tl(blue, 6, 1)), redFive), "fake joker is not a wildcard")
	// 真红 5 才是万能牌
	assert.True(t, IsValidSet(set(tl(blue, 4, 1), tl(red, 5, 1), tl(blue, 6, 1)), redFive))
}

func TestIsValidSetAllWildcards(t *testing.T) {
	assert.True(t, IsValidSet(set(tl(entity.ColorBlack, 9, 1), tl(entity.ColorBlack, 9, 2), tl(entity.ColorBlack, 9, 1)), blackNine))
}

func validFourteen() [][]entity.Tile {
	red, black, blue, orange := entity.ColorRed, entity.ColorBlack, entity.ColorBlue, entity.ColorOrange
	return [][]entity.Tile{
		set(tl(red, 7, 1), tl(black, 7, 1), tl(blue, 7, 1)),
		set(tl(red, 8, 1), tl(black, 8, 2), tl(blue, 8, 1), tl(orange, 8, 1)),
		set(tl(orange, 1, 1), tl(orange, 2, 1), tl(orange, 3, 1), tl(orange, 4, 1)),
		set(tl(blue, 12, 1), tl(blue, 13, 1), tl(blue, 1, 1)),
	}
}

func TestIsValidHand(t *testing.T) {
	assert.True(t, IsValidHand(arrange(validFourteen()...), blackNine))

	// 分隔符连续出现不影响分段
	sets := validFourteen()
	hand := arrange(sets...)
	hand = append([]*entity.Tile{nil, nil}, hand...)
	assert.True(t, IsValidHand(hand, blackNine))
}

func TestIsValidHandRejectsShortPartition(t *testing.T) {
	red, black, blue, orange := entity.ColorRed, entity.ColorBlack, entity.ColorBlue, entity.ColorOrange
	// 4 组 3 张加 1 组 2 张，总数 14 也不行
	hand := arrange(
		set(tl(red, 1, 1), tl(black, 1, 1), tl(blue, 1, 1)),
		set(tl(red, 2, 1), tl(black, 2, 1), tl(blue, 2, 1)),
		set(tl(red, 3, 1), tl(black, 3, 1), tl(blue, 3, 1)),
		set(tl(red, 4, 1), tl(black, 4, 1), tl(blue, 4, 1)),
		set(tl(orange, 5, 1), tl(orange, 6, 1)),
	)
	assert.False(t, IsValidHand(hand, blackNine))
}

func TestIsValidHandRespectsSeparators(t *testing.T) {
	sets := validFourteen()
	// 把 12-13-1 拆成 12-13 | 1
	last := sets[3]
	sets = append(sets[:3], last[:2], last[2:])
	assert.False(t, IsValidHand(arrange(sets...), blackNine))
}

func TestIsValidHandRejectsWrongCount(t *testing.T) {
	sets := validFourteen()
	assert.False(t, IsValidHand(arrange(sets[:3]...), blackNine))

	sets[0] = append(sets[0], tl(entity.ColorOrange, 7, 1))
	sets[0] = append(sets[0], tl(entity.ColorBlack, 9, 1))
	assert.False(t, IsValidHand(arrange(sets...), blackNine))
}
