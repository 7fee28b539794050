package service

import (
	"context"
	"log"

	"collab-todo/internal/model"
	"collab-todo/internal/realtime"
)

// Event names pushed over realtime channels.
const (
	EventTodoShared        = "todo_shared"
	EventTodoUpdated       = "todo_updated"
	EventTodoDeleted       = "todo_deleted"
	EventPermissionUpdated = "permission_updated"
	EventInviteAccepted    = "invite_accepted"
)

// Broadcaster fans task-state changes out to the authorized collaborator
// set. Delivery is fire-and-forget; a failure to resolve the audience is
// logged and the mutation path continues.
type Broadcaster struct {
	hub    *realtime.Hub
	access *AccessResolver
}

func NewBroadcaster(hub *realtime.Hub, access *AccessResolver) *Broadcaster {
	return &Broadcaster{hub: hub, access: access}
}

// Broadcast delivers the event to every collaborator on the todo except
// excludeUserID (zero means exclude nobody).
func (b *Broadcaster) Broadcast(ctx context.Context, todo *model.Todo, name string, payload interface{}, excludeUserID uint) {
	audience, err := b.access.Collaborators(ctx, todo)
	if err != nil {
		log.Printf("[broadcast] resolve audience for todo %d: %v", todo.ID, err)
		return
	}
	b.hub.PublishTo(audience, realtime.Event{Name: name, Payload: payload}, excludeUserID)
}

// BroadcastTo delivers the event to a precomputed audience. Used when the
// collaborator set must be captured before a mutation destroys it, as on
// todo deletion.
func (b *Broadcaster) BroadcastTo(audience []uint, name string, payload interface{}, excludeUserID uint) {
	b.hub.PublishTo(audience, realtime.Event{Name: name, Payload: payload}, excludeUserID)
}

// NotifyUser delivers an event to a single user's channels.
func (b *Broadcaster) NotifyUser(userID uint, name string, payload interface{}) {
	b.hub.Publish(userID, realtime.Event{Name: name, Payload: payload})
}
