package state

import (
	"context"
	"sync"
	"time"

	"ojclient/pkg/utils/logger"

	"github.com/zeromicro/go-zero/core/collection"
	"go.uber.org/zap"
)

const (
	DefaultCapacity     = 16
	DefaultShowDuration = 1500 * time.Millisecond

	wheelSlots = 60
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Message is one notification.
type Message struct {
	ID    uint64
	Level Level
	Text  string
	At    time.Time
}

// MessageQueue is a bounded notification queue. Entries expire after the show duration
// in FIFO order; when full the oldest entry is dropped.
type MessageQueue struct {
	capacity int
	ttl      time.Duration

	mu      sync.Mutex
	entries []Message
	nextID  uint64
	wheel   *collection.TimingWheel
}

// NewMessageQueue creates a queue. Non-positive arguments take the defaults.
func NewMessageQueue(capacity int, showDuration time.Duration) *MessageQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if showDuration <= 0 {
		showDuration = DefaultShowDuration
	}
	q := &MessageQueue{capacity: capacity, ttl: showDuration}

	tick := showDuration / wheelSlots
	if tick < time.Millisecond {
		tick = time.Millisecond
	}
	wheel, err := collection.NewTimingWheel(tick, wheelSlots, func(key, _ any) {
		if id, ok := key.(uint64); ok {
			q.expire(id)
		}
	})
	if err != nil {
		logger.Warn(context.Background(), "message expiry disabled", zap.Error(err))
	} else {
		q.wheel = wheel
	}
	return q
}

// Info queues an informational message.
func (q *MessageQueue) Info(text string) uint64 {
	return q.push(LevelInfo, text)
}

// Error queues an error message.
func (q *MessageQueue) Error(text string) uint64 {
	return q.push(LevelError, text)
}

// List returns the visible messages, oldest first.
func (q *MessageQueue) List() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Message, len(q.entries))
	copy(out, q.entries)
	return out
}

// Len returns the number of visible messages.
func (q *MessageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Close stops the expiry timer.
func (q *MessageQueue) Close() {
	if q.wheel != nil {
		q.wheel.Stop()
	}
}

func (q *MessageQueue) push(level Level, text string) uint64 {
	q.mu.Lock()
	q.nextID++
	msg := Message{ID: q.nextID, Level: level, Text: text, At: time.Now()}
	var dropped []uint64
	for len(q.entries) >= q.capacity {
		dropped = append(dropped, q.entries[0].ID)
		q.entries = q.entries[1:]
	}
	q.entries = append(q.entries, msg)
	q.mu.Unlock()

	if q.wheel == nil {
		return msg.ID
	}
	for _, id := range dropped {
		_ = q.wheel.RemoveTimer(id)
	}
	if err := q.wheel.SetTimer(msg.ID, struct{}{}, q.ttl); err != nil {
		logger.Warn(context.Background(), "schedule message expiry failed", zap.Uint64("id", msg.ID), zap.Error(err))
	}
	return msg.ID
}

// expire drops id and everything queued before it.
func (q *MessageQueue) expire(id uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := 0
	for i < len(q.entries) && q.entries[i].ID <= id {
		i++
	}
	q.entries = q.entries[i:]
}
