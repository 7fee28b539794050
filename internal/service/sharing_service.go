package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"collab-todo/internal/model"
	"collab-todo/internal/repository"
)

// SharingService owns the share and invite lifecycle: email shares, the
// per-todo invite link, and invite acceptance.
type SharingService struct {
	todoRepo   *repository.TodoRepository
	userRepo   *repository.UserRepository
	shareRepo  *repository.ShareRepository
	inviteRepo *repository.InviteRepository
	broadcast  *Broadcaster
	usageLimit int
}

func NewSharingService(
	todoRepo *repository.TodoRepository,
	userRepo *repository.UserRepository,
	shareRepo *repository.ShareRepository,
	inviteRepo *repository.InviteRepository,
	broadcast *Broadcaster,
	usageLimit int,
) *SharingService {
	return &SharingService{
		todoRepo:   todoRepo,
		userRepo:   userRepo,
		shareRepo:  shareRepo,
		inviteRepo: inviteRepo,
		broadcast:  broadcast,
		usageLimit: usageLimit,
	}
}

// ShareByEmail shares a todo with the user behind targetEmail. Only the
// owner may share. The share is always (re)set to PENDING, even when the
// target had already accepted before: a fresh invitation re-confirms intent.
func (s *SharingService) ShareByEmail(ctx context.Context, todoID, requesterID uint, targetEmail string, canEdit bool) (*model.Share, error) {
	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: todo %d", ErrNotFound, todoID)
	}
	if err != nil {
		return nil, err
	}

	if todo.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: only the owner can share", ErrForbidden)
	}

	target, err := s.userRepo.FindByEmail(ctx, targetEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no user with email %s", ErrNotFound, targetEmail)
	}
	if err != nil {
		return nil, err
	}

	if target.ID == requesterID {
		return nil, fmt.Errorf("%w: cannot share a todo with yourself", ErrInvalidTarget)
	}

	share := &model.Share{
		TodoID:  todo.ID,
		UserID:  target.ID,
		CanEdit: canEdit,
		Status:  model.ShareStatusPending,
	}
	if err := s.shareRepo.Upsert(ctx, share); err != nil {
		return nil, err
	}

	s.broadcast.NotifyUser(target.ID, EventTodoShared, map[string]interface{}{
		"message": fmt.Sprintf("A todo was shared with you: %s", todo.Title),
		"todoId":  todo.ID,
	})

	return share, nil
}

// GenerateOrUpdateInvite returns the todo's invite link state, creating the
// invite lazily on first request. When canEdit is supplied for an existing
// invite, the flag is written to the invite and to every share on the todo,
// and collaborators are told about the permission change. Email shares can
// carry an edit flag that diverges from the invite's, so a supplied flag
// always realigns the shares even when the invite's own flag is unchanged.
func (s *SharingService) GenerateOrUpdateInvite(ctx context.Context, todoID, requesterID uint, canEdit *bool) (*model.Invite, error) {
	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: todo %d", ErrNotFound, todoID)
	}
	if err != nil {
		return nil, err
	}

	if todo.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: only the owner can manage invites", ErrForbidden)
	}

	invite, err := s.inviteRepo.FindByTodo(ctx, todoID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.createInvite(ctx, todo, canEdit)
	case err != nil:
		return nil, err
	}

	if canEdit == nil {
		return invite, nil
	}

	if err := s.inviteRepo.SetEdit(ctx, invite.ID, *canEdit); err != nil {
		return nil, err
	}
	invite.CanEdit = *canEdit

	if err := s.shareRepo.SetEditForTodo(ctx, todoID, *canEdit); err != nil {
		return nil, err
	}

	s.broadcast.Broadcast(ctx, todo, EventPermissionUpdated, map[string]interface{}{
		"todoId":  todo.ID,
		"canEdit": *canEdit,
	}, 0)

	return invite, nil
}

// AcceptInvite joins the todo behind the token. Acceptance is idempotent
// per user: a repeat acceptance leaves the single accepted share in place
// but still consumes one usage.
func (s *SharingService) AcceptInvite(ctx context.Context, token string, userID uint) (*model.Todo, error) {
	invite, err := s.inviteRepo.FindByToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: unknown invite token", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if invite.Exhausted() {
		return nil, fmt.Errorf("%w: invite has been used %d times", ErrLimitReached, invite.UsageCount)
	}

	todo, err := s.todoRepo.FindByID(ctx, invite.TodoID)
	if err != nil {
		return nil, err
	}

	if todo.OwnerID == userID {
		return nil, fmt.Errorf("%w: cannot accept an invite to your own todo", ErrInvalidTarget)
	}

	consumed, err := s.inviteRepo.ConsumeUsage(ctx, invite.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, fmt.Errorf("%w: invite usage limit of %d reached", ErrLimitReached, invite.UsageLimit)
	}

	share := &model.Share{
		TodoID:  todo.ID,
		UserID:  userID,
		CanEdit: invite.CanEdit,
		Status:  model.ShareStatusAccepted,
	}
	if err := s.shareRepo.Upsert(ctx, share); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	joined := fmt.Sprintf("user %d", userID)
	if err == nil {
		joined = user.FullName
	}
	s.broadcast.NotifyUser(todo.OwnerID, EventInviteAccepted, map[string]interface{}{
		"message": fmt.Sprintf("%s joined your todo: %s", joined, todo.Title),
		"todoId":  todo.ID,
	})

	return todo, nil
}

func (s *SharingService) createInvite(ctx context.Context, todo *model.Todo, canEdit *bool) (*model.Invite, error) {
	invite := &model.Invite{
		TodoID:     todo.ID,
		CanEdit:    canEdit != nil && *canEdit,
		UsageLimit: s.usageLimit,
	}

	// Tokens are short, so collisions are possible; regenerate and retry.
	for attempt := 0; attempt < 5; attempt++ {
		token, err := newInviteToken()
		if err != nil {
			return nil, err
		}
		invite.Token = token

		err = s.inviteRepo.Create(ctx, invite)
		if err == nil {
			return invite, nil
		}
		if !repository.IsDuplicate(err) {
			return nil, err
		}
		// A concurrent request may have created this todo's invite first;
		// otherwise the short token collided and a fresh one is tried.
		if existing, ferr := s.inviteRepo.FindByTodo(ctx, todo.ID); ferr == nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("generate invite token: too many collisions")
}

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
const tokenLength = 6

// newInviteToken produces a short opaque base-36 token.
func newInviteToken() (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invite token: %w", err)
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf), nil
}
