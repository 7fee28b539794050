package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"collab-todo/internal/model"
	"collab-todo/internal/repository"
)

// TodoInput represents data required to create a todo.
type TodoInput struct {
	Title        string
	Description  string
	RemindAt     *time.Time
	IsRepeatable bool
	RepeatDays   string
}

// TodoUpdate carries a partial update; nil fields are left untouched.
// SetRemindAt distinguishes "clear the reminder" from "leave it alone".
type TodoUpdate struct {
	Title       *string
	Description *string
	IsCompleted *bool
	RemindAt    *time.Time
	SetRemindAt bool
	RepeatDays  *string
}

// TodoService wraps todo business logic and drives realtime fan-out for
// mutations.
type TodoService struct {
	todoRepo  *repository.TodoRepository
	access    *AccessResolver
	broadcast *Broadcaster
}

func NewTodoService(todoRepo *repository.TodoRepository, access *AccessResolver, broadcast *Broadcaster) *TodoService {
	return &TodoService{todoRepo: todoRepo, access: access, broadcast: broadcast}
}

func (s *TodoService) Create(ctx context.Context, ownerID uint, input TodoInput) (*model.Todo, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	todo := model.Todo{
		OwnerID:      ownerID,
		Title:        input.Title,
		Description:  input.Description,
		RemindAt:     input.RemindAt,
		IsRepeatable: input.IsRepeatable,
		RepeatDays:   input.RepeatDays,
	}

	if todo.IsRepeatable && len(todo.RepeatDaySet()) == 0 {
		return nil, fmt.Errorf("repeatable todo needs at least one repeat day")
	}

	if err := s.todoRepo.Create(ctx, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// List returns every todo visible to the user: owned ones plus those shared
// with them through an accepted share.
func (s *TodoService) List(ctx context.Context, userID uint) ([]model.Todo, error) {
	return s.todoRepo.ListVisible(ctx, userID)
}

// Get loads a todo the user is allowed to see.
func (s *TodoService) Get(ctx context.Context, userID, todoID uint) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: todo %d", ErrNotFound, todoID)
	}
	if err != nil {
		return nil, err
	}

	level, err := s.access.Level(ctx, todo, userID)
	if err != nil {
		return nil, err
	}
	if !level.CanRead() {
		return nil, fmt.Errorf("%w: no access to todo %d", ErrForbidden, todoID)
	}
	return todo, nil
}

// Update applies a partial update. Mutation requires the owner or an edit
// grant. Moving the reminder clears the notified marker so the scheduler
// treats the new instant as a fresh occurrence; completing a repeating todo
// rolls its reminder to the next day instead of closing it for good.
func (s *TodoService) Update(ctx context.Context, actorID, todoID uint, update TodoUpdate) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: todo %d", ErrNotFound, todoID)
	}
	if err != nil {
		return nil, err
	}

	level, err := s.access.Level(ctx, todo, actorID)
	if err != nil {
		return nil, err
	}
	if !level.CanEdit() {
		return nil, fmt.Errorf("%w: editing todo %d requires an edit grant", ErrForbidden, todoID)
	}

	fields := map[string]interface{}{}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.RepeatDays != nil {
		fields["repeat_days"] = *update.RepeatDays
	}
	if update.SetRemindAt {
		fields["remind_at"] = update.RemindAt
		fields["notified"] = false
	}
	if update.IsCompleted != nil {
		if *update.IsCompleted && todo.IsRepeatable && todo.RemindAt != nil {
			// A repeating todo never closes; completion rolls it forward.
			next := todo.RemindAt.AddDate(0, 0, 1)
			fields["remind_at"] = &next
			fields["notified"] = false
		} else {
			fields["is_completed"] = *update.IsCompleted
		}
	}

	if len(fields) == 0 {
		return todo, nil
	}

	if err := s.todoRepo.Updates(ctx, todoID, fields); err != nil {
		return nil, err
	}

	todo, err = s.todoRepo.FindByID(ctx, todoID)
	if err != nil {
		return nil, err
	}

	s.broadcast.Broadcast(ctx, todo, EventTodoUpdated, todo, actorID)
	return todo, nil
}

// Delete removes a todo and everything hanging off it. Owner only. The
// audience is captured before the cascade wipes the shares.
func (s *TodoService) Delete(ctx context.Context, actorID, todoID uint) error {
	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: todo %d", ErrNotFound, todoID)
	}
	if err != nil {
		return err
	}

	if todo.OwnerID != actorID {
		return fmt.Errorf("%w: only the owner can delete todo %d", ErrForbidden, todoID)
	}

	audience, err := s.access.Collaborators(ctx, todo)
	if err != nil {
		return err
	}

	if err := s.todoRepo.Delete(ctx, todoID); err != nil {
		return err
	}

	s.broadcast.BroadcastTo(audience, EventTodoDeleted, map[string]interface{}{
		"todoId": todoID,
	}, actorID)
	return nil
}
