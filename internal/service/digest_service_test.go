package service

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestDigest_SendsOpenTodosToLinkedUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)

	linked := env.createUser(t, "linked@example.com", "Linked", "555")
	unlinked := env.createUser(t, "unlinked@example.com", "Unlinked", "")

	env.createTodo(t, linked.ID, "water plants", timePtr(now.Add(2*time.Hour)), false, "")
	closed := env.createTodo(t, linked.ID, "shipped", nil, false, "")
	if err := env.todos.Updates(ctx, closed.ID, map[string]interface{}{"is_completed": true}); err != nil {
		t.Fatalf("close todo: %v", err)
	}
	env.createTodo(t, unlinked.ID, "invisible", nil, false, "")

	if err := env.digestSvc.SendAll(ctx, now); err != nil {
		t.Fatalf("send all: %v", err)
	}

	sends := env.notifier.sends()
	if len(sends) != 1 {
		t.Fatalf("expected one digest (linked user only), got %d", len(sends))
	}
	if sends[0].ChatID != "555" {
		t.Errorf("expected digest to chat 555, got %s", sends[0].ChatID)
	}
	if !strings.Contains(sends[0].Text, "water plants") {
		t.Errorf("digest missing open todo: %q", sends[0].Text)
	}
	if strings.Contains(sends[0].Text, "shipped") {
		t.Errorf("digest must omit completed todos: %q", sends[0].Text)
	}
}

func TestDigest_EmptyWhenNothingOpen(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()

	linked := env.createUser(t, "linked@example.com", "Linked", "555")

	if err := env.digestSvc.SendAll(context.Background(), now); err != nil {
		t.Fatalf("send all: %v", err)
	}
	if got := len(env.notifier.sends()); got != 0 {
		t.Fatalf("expected no digest for user %d with no open todos, got %d", linked.ID, got)
	}
}
