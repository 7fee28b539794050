package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"collab-todo/internal/model"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestTodoService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner", "")

	t.Run("title required", func(t *testing.T) {
		if _, err := env.todoSvc.Create(ctx, owner.ID, TodoInput{}); err == nil {
			t.Fatal("expected error for empty title")
		}
	})

	t.Run("repeatable needs repeat days", func(t *testing.T) {
		input := TodoInput{Title: "gym", IsRepeatable: true}
		if _, err := env.todoSvc.Create(ctx, owner.ID, input); err == nil {
			t.Fatal("expected error for repeatable todo without days")
		}
	})

	t.Run("valid repeatable", func(t *testing.T) {
		input := TodoInput{Title: "gym", IsRepeatable: true, RepeatDays: "2,4"}
		todo, err := env.todoSvc.Create(ctx, owner.ID, input)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if !todo.RepeatsOn(2) || todo.RepeatsOn(3) {
			t.Errorf("unexpected repeat set: %q", todo.RepeatDays)
		}
	})
}

func TestTodoService_UpdateClearsNotifiedOnReminderChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner", "")

	at := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	todo := env.createTodo(t, owner.ID, "call", timePtr(at), false, "")
	if err := env.todos.Updates(ctx, todo.ID, map[string]interface{}{"notified": true}); err != nil {
		t.Fatalf("seed notified: %v", err)
	}

	moved := at.Add(time.Hour)
	updated, err := env.todoSvc.Update(ctx, owner.ID, todo.ID, TodoUpdate{RemindAt: &moved, SetRemindAt: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Notified {
		t.Error("moving the reminder must clear the notified marker")
	}
	if updated.RemindAt == nil || !updated.RemindAt.Equal(moved) {
		t.Errorf("expected remindAt %v, got %v", moved, updated.RemindAt)
	}
}

func TestTodoService_CompletingRepeatingRollsForward(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner", "")

	at := time.Date(2026, 9, 1, 7, 30, 0, 0, time.UTC)
	todo := env.createTodo(t, owner.ID, "run", timePtr(at), true, "1,2,3,4,5")

	updated, err := env.todoSvc.Update(ctx, owner.ID, todo.ID, TodoUpdate{IsCompleted: boolPtr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsCompleted {
		t.Error("a repeating todo must not close on completion")
	}
	want := at.AddDate(0, 0, 1)
	if updated.RemindAt == nil || !updated.RemindAt.Equal(want) {
		t.Errorf("expected reminder rolled to %v, got %v", want, updated.RemindAt)
	}
	if updated.Notified {
		t.Error("rollover must clear notified")
	}
}

func TestTodoService_UpdateAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner", "")
	viewer := env.createUser(t, "viewer@example.com", "Viewer", "")
	editor := env.createUser(t, "editor@example.com", "Editor", "")
	todo := env.createTodo(t, owner.ID, "spec", nil, false, "")

	seed := []*model.Share{
		{TodoID: todo.ID, UserID: viewer.ID, Status: model.ShareStatusAccepted, CanEdit: false},
		{TodoID: todo.ID, UserID: editor.ID, Status: model.ShareStatusAccepted, CanEdit: true},
	}
	for _, share := range seed {
		if err := env.shares.Upsert(ctx, share); err != nil {
			t.Fatalf("seed share: %v", err)
		}
	}

	if _, err := env.todoSvc.Update(ctx, viewer.ID, todo.ID, TodoUpdate{Title: strPtr("nope")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("viewer: expected ErrForbidden, got %v", err)
	}
	if _, err := env.todoSvc.Update(ctx, editor.ID, todo.ID, TodoUpdate{Title: strPtr("yes")}); err != nil {
		t.Fatalf("editor: %v", err)
	}
}

func TestTodoService_UpdateBroadcastExcludesActor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner", "")
	collab := env.createUser(t, "collab@example.com", "Collab", "")
	todo := env.createTodo(t, owner.ID, "spec", nil, false, "")

	share := &model.Share{TodoID: todo.ID, UserID: collab.ID, Status: model.ShareStatusAccepted, CanEdit: true}
	if err := env.shares.Upsert(ctx, share); err != nil {
		t.Fatalf("seed share: %v", err)
	}

	ownerSub := env.hub.Subscribe(owner.ID)
	collabSub := env.hub.Subscribe(collab.ID)
	defer env.hub.Unsubscribe(ownerSub)
	defer env.hub.Unsubscribe(collabSub)

	if _, err := env.todoSvc.Update(ctx, collab.ID, todo.ID, TodoUpdate{Title: strPtr("renamed")}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if events := drainEvents(collabSub); len(events) != 0 {
		t.Errorf("actor must not receive its own todo_updated, got %+v", events)
	}
	ownerEvents := drainEvents(ownerSub)
	if len(ownerEvents) != 1 || ownerEvents[0].Name != EventTodoUpdated {
		t.Fatalf("expected one todo_updated for the owner, got %+v", ownerEvents)
	}
}

func TestTodoService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner", "")
	collab := env.createUser(t, "collab@example.com", "Collab", "")
	todo := env.createTodo(t, owner.ID, "old", nil, false, "")

	share := &model.Share{TodoID: todo.ID, UserID: collab.ID, Status: model.ShareStatusAccepted}
	if err := env.shares.Upsert(ctx, share); err != nil {
		t.Fatalf("seed share: %v", err)
	}
	if _, err := env.sharingSvc.GenerateOrUpdateInvite(ctx, todo.ID, owner.ID, nil); err != nil {
		t.Fatalf("seed invite: %v", err)
	}

	t.Run("non-owner is forbidden", func(t *testing.T) {
		if err := env.todoSvc.Delete(ctx, collab.ID, todo.ID); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("owner delete cascades and notifies collaborators", func(t *testing.T) {
		collabSub := env.hub.Subscribe(collab.ID)
		ownerSub := env.hub.Subscribe(owner.ID)
		defer env.hub.Unsubscribe(collabSub)
		defer env.hub.Unsubscribe(ownerSub)

		if err := env.todoSvc.Delete(ctx, owner.ID, todo.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}

		if _, err := env.todos.FindByID(ctx, todo.ID); err == nil {
			t.Error("expected todo gone")
		}
		if _, err := env.shares.FindByKey(ctx, todo.ID, collab.ID); err == nil {
			t.Error("expected share gone")
		}
		if _, err := env.invites.FindByTodo(ctx, todo.ID); err == nil {
			t.Error("expected invite gone")
		}

		events := drainEvents(collabSub)
		if len(events) != 1 || events[0].Name != EventTodoDeleted {
			t.Fatalf("expected one todo_deleted for collaborator, got %+v", events)
		}
		if events := drainEvents(ownerSub); len(events) != 0 {
			t.Errorf("deleting actor must not be echoed, got %+v", events)
		}
	})
}

func TestTodoService_ListVisible(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com", "Owner", "")
	other := env.createUser(t, "other@example.com", "Other", "")

	mine := env.createTodo(t, owner.ID, "mine", nil, false, "")
	shared := env.createTodo(t, other.ID, "shared with me", nil, false, "")
	env.createTodo(t, other.ID, "not mine", nil, false, "")

	pendingTodo := env.createTodo(t, other.ID, "pending only", nil, false, "")
	seed := []*model.Share{
		{TodoID: shared.ID, UserID: owner.ID, Status: model.ShareStatusAccepted},
		{TodoID: pendingTodo.ID, UserID: owner.ID, Status: model.ShareStatusPending},
	}
	for _, share := range seed {
		if err := env.shares.Upsert(ctx, share); err != nil {
			t.Fatalf("seed share: %v", err)
		}
	}

	todos, err := env.todoSvc.List(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	got := map[uint]bool{}
	for _, todo := range todos {
		got[todo.ID] = true
	}
	if len(todos) != 2 || !got[mine.ID] || !got[shared.ID] {
		t.Fatalf("expected exactly {mine, shared}, got %v", got)
	}
}
