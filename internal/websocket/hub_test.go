package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/teamdesk/internal/apperror"
	"go.uber.org/zap"
)

type presenceEvent struct {
	userID    uuid.UUID
	connected bool
}

type recordingObserver struct {
	mu     sync.Mutex
	events []presenceEvent
}

func (o *recordingObserver) UserConnected(_ context.Context, userID, _ uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, presenceEvent{userID: userID, connected: true})
}

func (o *recordingObserver) UserDisconnected(_ context.Context, userID, _ uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, presenceEvent{userID: userID, connected: false})
}

func (o *recordingObserver) snapshot() []presenceEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]presenceEvent(nil), o.events...)
}

func startHub(t *testing.T) (*Hub, *recordingObserver) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	observer := &recordingObserver{}
	hub.SetObserver(observer)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub, observer
}

func connect(t *testing.T, hub *Hub, userID, teamID uuid.UUID) *Client {
	t.Helper()
	client := NewClient(hub, nil, userID, teamID)
	hub.Register(client)
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return hub.clients[client.ID] == client
	}, time.Second, 5*time.Millisecond)
	return client
}

func readFrame(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return Message{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("unexpected frame: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastToTeamReachesOnlyThatTeam(t *testing.T) {
	hub, _ := startHub(t)
	teamA, teamB := uuid.New(), uuid.New()

	a1 := connect(t, hub, uuid.New(), teamA)
	a2 := connect(t, hub, uuid.New(), teamA)
	b1 := connect(t, hub, uuid.New(), teamB)

	require.NoError(t, hub.BroadcastToTeam(teamA, TypeUserStatusChange, map[string]bool{"isOnline": true}))

	for _, c := range []*Client{a1, a2} {
		msg := readFrame(t, c)
		assert.Equal(t, TypeUserStatusChange, msg.Type)
		assert.JSONEq(t, `{"isOnline":true}`, string(msg.Data))
	}
	assertNoFrame(t, b1)
}

func TestRoomSubscription(t *testing.T) {
	hub, _ := startHub(t)
	team, room := uuid.New(), uuid.New()

	member := connect(t, hub, uuid.New(), team)
	other := connect(t, hub, uuid.New(), team)

	hub.JoinRoom(member, room)
	assert.True(t, member.IsInRoom(room))
	assert.Equal(t, []uuid.UUID{member.UserID}, hub.GetRoomUsers(room))

	require.NoError(t, hub.BroadcastToRoom(room, TypeNewMessage, map[string]string{"content": "hi"}))

	msg := readFrame(t, member)
	assert.Equal(t, TypeNewMessage, msg.Type)
	require.NotNil(t, msg.RoomID)
	assert.Equal(t, room, *msg.RoomID)
	assertNoFrame(t, other)

	hub.LeaveRoom(member, room)
	assert.False(t, member.IsInRoom(room))
	assert.Empty(t, hub.GetRoomUsers(room))

	require.NoError(t, hub.BroadcastToRoom(room, TypeNewMessage, nil))
	assertNoFrame(t, member)
}

func TestObserverSeesFirstAndLastConnectionOnly(t *testing.T) {
	hub, observer := startHub(t)
	userID, team := uuid.New(), uuid.New()

	first := connect(t, hub, userID, team)
	second := connect(t, hub, userID, team)

	hub.Unregister(first)
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, ok := hub.clients[first.ID]
		return !ok
	}, time.Second, 5*time.Millisecond)
	assert.True(t, hub.IsUserConnected(userID))

	hub.Unregister(second)
	require.Eventually(t, func() bool {
		return len(observer.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []presenceEvent{
		{userID: userID, connected: true},
		{userID: userID, connected: false},
	}, observer.snapshot())
	assert.False(t, hub.IsUserConnected(userID))
}

func TestUnregisterDropsRoomAndTeamSubscriptions(t *testing.T) {
	hub, _ := startHub(t)
	team, room := uuid.New(), uuid.New()

	client := connect(t, hub, uuid.New(), team)
	hub.JoinRoom(client, room)

	hub.Unregister(client)
	require.Eventually(t, func() bool {
		return !hub.IsUserConnected(client.UserID)
	}, time.Second, 5*time.Millisecond)

	hub.mu.RLock()
	_, roomLeft := hub.rooms[room]
	_, teamLeft := hub.teams[team]
	hub.mu.RUnlock()
	assert.False(t, roomLeft)
	assert.False(t, teamLeft)

	// канал закрыт, broadcast не должен паниковать
	require.NoError(t, hub.BroadcastToTeam(team, TypePing, nil))
	assert.ErrorIs(t, client.SendMessage(TypePing, nil), ErrClientClosed)
}

func TestJoinRoomIgnoresUnregisteredClient(t *testing.T) {
	hub, _ := startHub(t)
	client := NewClient(hub, nil, uuid.New(), uuid.New())
	room := uuid.New()

	hub.JoinRoom(client, room)

	assert.False(t, client.IsInRoom(room))
	assert.Empty(t, hub.GetRoomUsers(room))
}

func TestSendErrorHidesInternalCause(t *testing.T) {
	hub, _ := startHub(t)
	client := connect(t, hub, uuid.New(), uuid.New())

	client.SendError(apperror.Forbidden("you are not a member of this chat room"))
	msg := readFrame(t, client)
	assert.Equal(t, TypeError, msg.Type)
	assert.JSONEq(t, `{"error":"you are not a member of this chat room"}`, string(msg.Data))

	client.SendError(errors.New("pq: connection refused"))
	msg = readFrame(t, client)
	assert.JSONEq(t, `{"error":"internal error"}`, string(msg.Data))
}

func TestStopReportsConnectedUsersOffline(t *testing.T) {
	hub, observer := startHub(t)
	alice, bob, team := uuid.New(), uuid.New(), uuid.New()

	aliceConn := connect(t, hub, alice, team)
	connect(t, hub, alice, team)
	connect(t, hub, bob, team)
	require.Eventually(t, func() bool {
		return len(observer.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	hub.Stop()
	hub.Unregister(aliceConn)

	events := observer.snapshot()
	assert.ElementsMatch(t, []presenceEvent{
		{userID: alice, connected: true},
		{userID: bob, connected: true},
		{userID: alice, connected: false},
		{userID: bob, connected: false},
	}, events)
	assert.False(t, hub.IsUserConnected(alice))

	// повторная остановка ничего не шлёт
	hub.Stop()
	assert.Len(t, observer.snapshot(), 4)
}

// gateObserver держит UserConnected, пока не закрыт release
type gateObserver struct {
	recordingObserver
	release chan struct{}
}

func (o *gateObserver) UserConnected(ctx context.Context, userID, teamID uuid.UUID) {
	<-o.release
	o.recordingObserver.UserConnected(ctx, userID, teamID)
}

func TestSlowObserverDoesNotBlockRegistration(t *testing.T) {
	hub := NewHub(zap.NewNop())
	observer := &gateObserver{release: make(chan struct{})}
	hub.SetObserver(observer)
	go hub.Run()
	t.Cleanup(hub.Stop)

	alice, bob, team := uuid.New(), uuid.New(), uuid.New()
	aliceConn := connect(t, hub, alice, team)
	connect(t, hub, bob, team)

	hub.Unregister(aliceConn)
	require.Eventually(t, func() bool {
		return !hub.IsUserConnected(alice)
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, observer.snapshot())

	close(observer.release)
	require.Eventually(t, func() bool {
		return len(observer.snapshot()) == 3
	}, time.Second, 5*time.Millisecond)

	var aliceEvents []presenceEvent
	for _, e := range observer.snapshot() {
		if e.userID == alice {
			aliceEvents = append(aliceEvents, e)
		}
	}
	assert.Equal(t, []presenceEvent{
		{userID: alice, connected: true},
		{userID: alice, connected: false},
	}, aliceEvents)
}

func TestFullSendQueueDropsFrameButKeepsClient(t *testing.T) {
	hub, _ := startHub(t)
	team := uuid.New()
	client := connect(t, hub, uuid.New(), team)

	for i := 0; i < cap(client.Send); i++ {
		require.NoError(t, client.SendMessage(TypePing, nil))
	}
	require.NoError(t, hub.BroadcastToTeam(team, TypeUserStatusChange, nil))

	assert.Len(t, client.Send, cap(client.Send))
	assert.True(t, hub.IsUserConnected(client.UserID))
	assert.ErrorIs(t, client.SendMessage(TypePing, nil), ErrClientQueueFull)
}
