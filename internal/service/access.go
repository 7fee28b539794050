package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"collab-todo/internal/model"
	"collab-todo/internal/repository"
)

// AccessLevel is the effective permission a user holds on a todo.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessViewer
	AccessEditor
	AccessOwner
)

func (l AccessLevel) String() string {
	switch l {
	case AccessOwner:
		return "owner"
	case AccessEditor:
		return "editor"
	case AccessViewer:
		return "viewer"
	default:
		return "none"
	}
}

// CanEdit reports whether the level allows mutating the todo.
func (l AccessLevel) CanEdit() bool {
	return l == AccessOwner || l == AccessEditor
}

// CanRead reports whether the level allows seeing the todo at all.
func (l AccessLevel) CanRead() bool {
	return l != AccessNone
}

// AccessResolver computes effective access and the collaborator set from
// store state. It holds no state of its own.
type AccessResolver struct {
	shareRepo *repository.ShareRepository
}

func NewAccessResolver(shareRepo *repository.ShareRepository) *AccessResolver {
	return &AccessResolver{shareRepo: shareRepo}
}

// Level resolves the user's effective access on the todo. Only accepted
// shares count; a pending share grants nothing.
func (r *AccessResolver) Level(ctx context.Context, todo *model.Todo, userID uint) (AccessLevel, error) {
	if todo.OwnerID == userID {
		return AccessOwner, nil
	}

	share, err := r.shareRepo.FindByKey(ctx, todo.ID, userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return AccessNone, nil
	case err != nil:
		return AccessNone, err
	}

	if share.Status != model.ShareStatusAccepted {
		return AccessNone, nil
	}
	if share.CanEdit {
		return AccessEditor, nil
	}
	return AccessViewer, nil
}

// Collaborators returns the owner plus every user holding an accepted
// share on the todo. This is the fan-out audience for realtime events.
func (r *AccessResolver) Collaborators(ctx context.Context, todo *model.Todo) ([]uint, error) {
	shares, err := r.shareRepo.ListAcceptedByTodo(ctx, todo.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(shares)+1)
	ids = append(ids, todo.OwnerID)
	for _, share := range shares {
		if share.UserID != todo.OwnerID {
			ids = append(ids, share.UserID)
		}
	}
	return ids, nil
}
