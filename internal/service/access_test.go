package service

import (
	"context"
	"testing"

	"collab-todo/internal/model"
)

func TestAccessResolver_Level(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner@example.com", "Owner", "")
	editor := env.createUser(t, "editor@example.com", "Editor", "")
	viewer := env.createUser(t, "viewer@example.com", "Viewer", "")
	pending := env.createUser(t, "pending@example.com", "Pending", "")
	stranger := env.createUser(t, "stranger@example.com", "Stranger", "")

	todo := env.createTodo(t, owner.ID, "plan", nil, false, "")

	seed := []*model.Share{
		{TodoID: todo.ID, UserID: editor.ID, Status: model.ShareStatusAccepted, CanEdit: true},
		{TodoID: todo.ID, UserID: viewer.ID, Status: model.ShareStatusAccepted, CanEdit: false},
		{TodoID: todo.ID, UserID: pending.ID, Status: model.ShareStatusPending, CanEdit: true},
	}
	for _, share := range seed {
		if err := env.shares.Upsert(ctx, share); err != nil {
			t.Fatalf("seed share: %v", err)
		}
	}

	cases := []struct {
		name   string
		userID uint
		want   AccessLevel
	}{
		{"owner", owner.ID, AccessOwner},
		{"accepted with edit", editor.ID, AccessEditor},
		{"accepted without edit", viewer.ID, AccessViewer},
		{"pending grants nothing", pending.ID, AccessNone},
		{"no share at all", stranger.ID, AccessNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.access.Level(ctx, todo, tc.userID)
			if err != nil {
				t.Fatalf("level: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestAccessResolver_Collaborators(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner@example.com", "Owner", "")
	accepted := env.createUser(t, "accepted@example.com", "Accepted", "")
	pending := env.createUser(t, "pending@example.com", "Pending", "")

	todo := env.createTodo(t, owner.ID, "plan", nil, false, "")

	seed := []*model.Share{
		{TodoID: todo.ID, UserID: accepted.ID, Status: model.ShareStatusAccepted},
		{TodoID: todo.ID, UserID: pending.ID, Status: model.ShareStatusPending},
	}
	for _, share := range seed {
		if err := env.shares.Upsert(ctx, share); err != nil {
			t.Fatalf("seed share: %v", err)
		}
	}

	got, err := env.access.Collaborators(ctx, todo)
	if err != nil {
		t.Fatalf("collaborators: %v", err)
	}

	want := map[uint]bool{owner.ID: true, accepted.ID: true}
	if len(got) != len(want) {
		t.Fatalf("expected %d collaborators, got %d: %v", len(want), len(got), got)
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected collaborator %d", id)
		}
	}
}
