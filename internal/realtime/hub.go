package realtime

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event is a named payload pushed to connected clients.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Subscriber is one open connection for a user. A user may hold several
// subscribers at once, one per device or tab.
type Subscriber struct {
	ID     string
	UserID uint
	ch     chan Event
}

// Events returns the subscriber's receive channel.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Hub is the process-wide registry of per-user event channels. Delivery is
// fire-and-forget: publishing to a user with no subscribers is a no-op, and
// a subscriber whose buffer is full misses the event rather than blocking
// the publisher.
type Hub struct {
	mu    sync.RWMutex
	users map[uint]map[string]*Subscriber
}

const subscriberBuffer = 16

func NewHub() *Hub {
	return &Hub{users: make(map[uint]map[string]*Subscriber)}
}

// Subscribe registers a new channel for the user.
func (h *Hub) Subscribe(userID uint) *Subscriber {
	sub := &Subscriber{
		ID:     uuid.NewString(),
		UserID: userID,
		ch:     make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]*Subscriber)
	}
	h.users[userID][sub.ID] = sub
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Safe to call
// for a subscriber that was already removed.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.users[sub.UserID]
	if !ok {
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		return
	}
	delete(subs, sub.ID)
	if len(subs) == 0 {
		delete(h.users, sub.UserID)
	}
	close(sub.ch)
}

// Publish delivers an event to every open channel of one user.
func (h *Hub) Publish(userID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.users[userID] {
		select {
		case sub.ch <- event:
		default:
			log.Printf("[hub] subscriber %s of user %d is full, dropping %s", sub.ID, userID, event.Name)
		}
	}
}

// PublishTo delivers an event to a set of users, skipping excludeUserID
// when non-zero. The origin actor already has the result locally and is
// not echoed its own mutation.
func (h *Hub) PublishTo(userIDs []uint, event Event, excludeUserID uint) {
	for _, id := range userIDs {
		if excludeUserID != 0 && id == excludeUserID {
			continue
		}
		h.Publish(id, event)
	}
}

// SubscriberCount reports how many channels a user currently holds.
func (h *Hub) SubscriberCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
