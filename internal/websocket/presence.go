package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type connectionEvent struct {
	userID    uuid.UUID
	teamID    uuid.UUID
	connected bool
}

// presenceDispatcher вызывает наблюдателя вне цикла hub.
// События одного пользователя обрабатываются по очереди одной горутиной.
type presenceDispatcher struct {
	observer ConnectionObserver
	timeout  time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	queues map[uuid.UUID][]connectionEvent
	closed bool
	wg     sync.WaitGroup
}

func newPresenceDispatcher(timeout time.Duration, log *zap.Logger) *presenceDispatcher {
	return &presenceDispatcher{
		timeout: timeout,
		log:     log,
		queues:  make(map[uuid.UUID][]connectionEvent),
	}
}

func (d *presenceDispatcher) dispatch(ev connectionEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.enqueueLocked(ev)
}

func (d *presenceDispatcher) enqueueLocked(ev connectionEvent) {
	if d.observer == nil {
		return
	}

	// наличие ключа означает, что горутина пользователя ещё работает
	pending, running := d.queues[ev.userID]
	d.queues[ev.userID] = append(pending, ev)
	if !running {
		d.wg.Add(1)
		go d.drain(ev.userID)
	}
}

func (d *presenceDispatcher) drain(userID uuid.UUID) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		queue := d.queues[userID]
		if len(queue) == 0 {
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		ev := queue[0]
		d.queues[userID] = queue[1:]
		d.mu.Unlock()

		d.deliver(ev)
	}
}

func (d *presenceDispatcher) deliver(ev connectionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if ev.connected {
		d.observer.UserConnected(ctx, ev.userID, ev.teamID)
	} else {
		d.observer.UserDisconnected(ctx, ev.userID, ev.teamID)
	}
}

// shutdown перестаёт принимать события, отправляет offline для users
// и ждёт, пока очереди опустеют или истечёт ctx.
func (d *presenceDispatcher) shutdown(ctx context.Context, users map[uuid.UUID]uuid.UUID) {
	d.mu.Lock()
	d.closed = true
	for userID, teamID := range users {
		d.enqueueLocked(connectionEvent{userID: userID, teamID: teamID, connected: false})
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.log.Warn("presence updates did not finish before shutdown", zap.Int("users", len(users)))
	}
}
