package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"collab-todo/internal/model"
	"collab-todo/internal/realtime"
	"collab-todo/internal/repository"
)

type sentMessage struct {
	ChatID string
	Text   string
}

// fakeNotifier records sends and can be told to fail for specific chats.
type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]bool
	failAll bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: make(map[string]bool)}
}

func (f *fakeNotifier) Send(ctx context.Context, chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll || f.failFor[chatID] {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeNotifier) sends() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

type testEnv struct {
	users    *repository.UserRepository
	todos    *repository.TodoRepository
	shares   *repository.ShareRepository
	invites  *repository.InviteRepository
	hub      *realtime.Hub
	access   *AccessResolver
	notifier *fakeNotifier

	todoSvc     *TodoService
	sharingSvc  *SharingService
	reminderSvc *ReminderService
	digestSvc   *DigestService
}

const testInviteLimit = 3

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	env := &testEnv{
		users:    repository.NewUserRepository(db),
		todos:    repository.NewTodoRepository(db),
		shares:   repository.NewShareRepository(db),
		invites:  repository.NewInviteRepository(db),
		hub:      realtime.NewHub(),
		notifier: newFakeNotifier(),
	}
	env.access = NewAccessResolver(env.shares)
	broadcast := NewBroadcaster(env.hub, env.access)
	env.todoSvc = NewTodoService(env.todos, env.access, broadcast)
	env.sharingSvc = NewSharingService(env.todos, env.users, env.shares, env.invites, broadcast, testInviteLimit)
	env.reminderSvc = NewReminderService(env.todos, env.notifier)
	env.digestSvc = NewDigestService(env.todos, env.users, env.notifier)
	return env
}

func (e *testEnv) createUser(t *testing.T, email, fullName, chatID string) *model.User {
	t.Helper()
	user := &model.User{
		Email:    email,
		FullName: fullName,
		APIToken: uuid.NewString(),
	}
	if chatID != "" {
		user.TelegramChatID = &chatID
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func (e *testEnv) createTodo(t *testing.T, ownerID uint, title string, remindAt *time.Time, repeatable bool, repeatDays string) *model.Todo {
	t.Helper()
	todo := &model.Todo{
		OwnerID:      ownerID,
		Title:        title,
		RemindAt:     remindAt,
		IsRepeatable: repeatable,
		RepeatDays:   repeatDays,
	}
	if err := e.todos.Create(context.Background(), todo); err != nil {
		t.Fatalf("create todo %s: %v", title, err)
	}
	return todo
}

func (e *testEnv) reload(t *testing.T, todoID uint) *model.Todo {
	t.Helper()
	todo, err := e.todos.FindByID(context.Background(), todoID)
	if err != nil {
		t.Fatalf("reload todo %d: %v", todoID, err)
	}
	return todo
}

// drainEvents empties a subscriber's buffer without blocking.
func drainEvents(sub *realtime.Subscriber) []realtime.Event {
	var events []realtime.Event
	for {
		select {
		case event := <-sub.Events():
			events = append(events, event)
		default:
			return events
		}
	}
}

func timePtr(ts time.Time) *time.Time {
	return &ts
}
