package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/websocket"
	"github.com/thereayou/teamdesk/pkg/storage"
)

type broadcast struct {
	team    bool
	target  uuid.UUID
	msgType websocket.MessageType
	data    interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcast
}

func (f *fakeBroadcaster) BroadcastToTeam(teamID uuid.UUID, msgType websocket.MessageType, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, broadcast{team: true, target: teamID, msgType: msgType, data: data})
	return nil
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID uuid.UUID, msgType websocket.MessageType, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, broadcast{target: roomID, msgType: msgType, data: data})
	return nil
}

func (f *fakeBroadcaster) ofType(msgType websocket.MessageType) []broadcast {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []broadcast
	for _, e := range f.events {
		if e.msgType == msgType {
			out = append(out, e)
		}
	}
	return out
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, data []byte, fileName, folder string) (*storage.UploadResult, error) {
	args := m.Called(ctx, data, fileName, folder)
	result, _ := args.Get(0).(*storage.UploadResult)
	return result, args.Error(1)
}

func (m *mockUploader) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, status, apperror.StatusOf(err), err.Error())
	}
}

func ptr[T any](v T) *T {
	return &v
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
