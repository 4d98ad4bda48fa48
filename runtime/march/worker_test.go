package march

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubiproject-star/okey/core/domain/entity"
	"github.com/ubiproject-star/okey/runtime/game/share"
	"github.com/ubiproject-star/okey/runtime/march/application/service"
)

type fakeCreator struct {
	mu    sync.Mutex
	rooms [][]entity.RoomPlayer
	err   error
}

func (c *fakeCreator) CreateRoom(_ context.Context, players []entity.RoomPlayer) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	c.rooms = append(c.rooms, players)
	return "room-1", nil
}

func (c *fakeCreator) created() [][]entity.RoomPlayer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]entity.RoomPlayer(nil), c.rooms...)
}

type pushed struct {
	Conn  string
	Event share.OutboundEvent
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []pushed
}

func (n *fakeNotifier) PushTo(origin share.Origin, ev share.OutboundEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, pushed{Conn: origin.ConnectionID, Event: ev})
}

func (n *fakeNotifier) named(name string) []pushed {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []pushed
	for _, e := range n.events {
		if e.Event.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func newTestWorker(t *testing.T, botFill time.Duration) (*Worker, *fakeCreator, *fakeNotifier) {
	t.Helper()
	creator := &fakeCreator{}
	notifier := &fakeNotifier{}
	w := NewWorker("node-1", creator, notifier, func() time.Duration { return botFill })
	w.Start(context.Background())
	t.Cleanup(w.Close)
	return w, creator, notifier
}

func ticket(id string) *service.Ticket {
	return &service.Ticket{
		PlayerID: id,
		Name:     strings.ToUpper(id),
		Origin:   share.Origin{ConnectionID: "conn-" + id, ConnectorID: "node-1"},
	}
}

func TestFourHumansSeatedInQueueOrder(t *testing.T) {
	w, creator, notifier := newTestWorker(t, time.Hour)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, w.JoinQueue(ctx, ticket(id)))
	}

	require.Eventually(t, func() bool { return len(creator.created()) == 1 }, time.Second, 5*time.Millisecond)
	seats := creator.created()[0]
	require.Len(t, seats, entity.SeatCount)
	for i, id := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, id, seats[i].ID)
		assert.Equal(t, "conn-"+id, seats[i].ConnectionID)
		assert.False(t, seats[i].IsBot())
	}
	assert.Equal(t, 0, w.Waiting())

	joined := notifier.named(share.PushQueueJoined)
	require.Len(t, joined, 4)
	assert.Equal(t, 4, joined[3].Event.(*share.QueueJoined).Waiting)
}

func TestImmediateBotFill(t *testing.T) {
	w, creator, _ := newTestWorker(t, 0)

	require.NoError(t, w.JoinQueue(context.Background(), ticket("a")))

	require.Eventually(t, func() bool { return len(creator.created()) == 1 }, time.Second, 5*time.Millisecond)
	seats := creator.created()[0]
	require.Len(t, seats, entity.SeatCount)
	assert.Equal(t, "a", seats[0].ID)
	for i := 1; i < entity.SeatCount; i++ {
		assert.True(t, seats[i].IsBot(), seats[i].ID)
		assert.Empty(t, seats[i].ConnectionID)
	}
	assert.Equal(t, "Bot 1", seats[1].Name)
	assert.Equal(t, "Bot 3", seats[3].Name)
	assert.NotEqual(t, seats[1].ID, seats[2].ID)
}

func TestDelayedBotFill(t *testing.T) {
	w, creator, _ := newTestWorker(t, 40*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, w.JoinQueue(ctx, ticket("a")))
	require.NoError(t, w.JoinQueue(ctx, ticket("b")))
	assert.Empty(t, creator.created())
	assert.Equal(t, 2, w.Waiting())

	require.Eventually(t, func() bool { return len(creator.created()) == 1 }, time.Second, 5*time.Millisecond)
	seats := creator.created()[0]
	assert.Equal(t, "a", seats[0].ID)
	assert.Equal(t, "b", seats[1].ID)
	assert.True(t, seats[2].IsBot())
	assert.True(t, seats[3].IsBot())
}

func TestLeaveBeforeFill(t *testing.T) {
	w, creator, _ := newTestWorker(t, 30*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, w.JoinQueue(ctx, ticket("a")))
	require.NoError(t, w.LeaveQueue(ctx, "a"))
	assert.Equal(t, 0, w.Waiting())

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, creator.created())
}

func TestRejoinReplacesConnection(t *testing.T) {
	w, creator, _ := newTestWorker(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, w.JoinQueue(ctx, ticket("a")))
	again := ticket("a")
	again.Origin.ConnectionID = "conn-a2"
	require.NoError(t, w.JoinQueue(ctx, again))
	assert.Equal(t, 1, w.Waiting())

	for _, id := range []string{"b", "c", "d"} {
		require.NoError(t, w.JoinQueue(ctx, ticket(id)))
	}
	require.Eventually(t, func() bool { return len(creator.created()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "conn-a2", creator.created()[0][0].ConnectionID)
}

func TestCreateFailureNotifiesTable(t *testing.T) {
	w, creator, notifier := newTestWorker(t, 0)
	creator.err = errors.New("store down")

	require.NoError(t, w.JoinQueue(context.Background(), ticket("a")))

	require.Eventually(t, func() bool { return len(notifier.named(share.PushError)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "conn-a", notifier.named(share.PushError)[0].Conn)
}

func TestPollStrategyTakesHead(t *testing.T) {
	queue := []*service.Ticket{ticket("a"), ticket("b"), ticket("c")}

	picked, rest := NewPollStrategy().Match(queue, 2)
	require.Len(t, picked, 2)
	assert.Equal(t, "a", picked[0].PlayerID)
	require.Len(t, rest, 1)
	assert.Equal(t, "c", rest[0].PlayerID)

	picked, rest = NewPollStrategy().Match(queue, 5)
	assert.Len(t, picked, 3)
	assert.Empty(t, rest)
}
