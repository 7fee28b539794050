package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"collab-todo/internal/model"
	"collab-todo/internal/repository"
)

// DigestService builds human-readable daily summaries of open todos and
// sends them to every user with a linked chat.
type DigestService struct {
	todoRepo *repository.TodoRepository
	userRepo *repository.UserRepository
	notifier Notifier
}

func NewDigestService(todoRepo *repository.TodoRepository, userRepo *repository.UserRepository, notifier Notifier) *DigestService {
	return &DigestService{todoRepo: todoRepo, userRepo: userRepo, notifier: notifier}
}

// SendAll delivers the digest to every linked user. Individual failures are
// logged and do not stop the rest of the batch.
func (s *DigestService) SendAll(ctx context.Context, now time.Time) error {
	users, err := s.userRepo.ListLinked(ctx)
	if err != nil {
		return fmt.Errorf("list linked users: %w", err)
	}

	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := s.DailySummary(ctx, user, now)
		if err != nil {
			log.Printf("[digest] build summary for user %d: %v", user.ID, err)
			continue
		}
		if text == "" {
			continue
		}
		if err := s.notifier.Send(ctx, *user.TelegramChatID, text); err != nil {
			log.Printf("[digest] send to user %d: %v", user.ID, err)
		}
	}
	return nil
}

// DailySummary lists the user's open todos, soonest reminder first. Returns
// an empty string when there is nothing open.
func (s *DigestService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	todos, err := s.todoRepo.ListVisible(ctx, user.ID)
	if err != nil {
		return "", err
	}

	var open []model.Todo
	for _, todo := range todos {
		if !todo.IsCompleted {
			open = append(open, todo)
		}
	}
	if len(open) == 0 {
		return "", nil
	}

	sort.SliceStable(open, func(i, j int) bool {
		switch {
		case open[i].RemindAt == nil && open[j].RemindAt == nil:
			return open[i].CreatedAt.After(open[j].CreatedAt)
		case open[i].RemindAt == nil:
			return false
		case open[j].RemindAt == nil:
			return true
		default:
			return open[i].RemindAt.Before(*open[j].RemindAt)
		}
	})

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 Daily summary — %s\n\n", now.Format("2006-01-02")))
	for _, todo := range open {
		icon := "🟢"
		if todo.RemindAt != nil && todo.RemindAt.Before(now) && !todo.IsRepeatable {
			icon = "⚠️"
		}
		builder.WriteString(fmt.Sprintf("%s %s", icon, strings.TrimSpace(todo.Title)))
		if todo.OwnerID != user.ID {
			builder.WriteString(fmt.Sprintf(" (shared by %s)", todo.Owner.FullName))
		}
		if todo.RemindAt != nil {
			builder.WriteString(fmt.Sprintf("\n   ⏰ %s", todo.RemindAt.In(now.Location()).Format("2006-01-02 15:04")))
		}
		builder.WriteByte('\n')
	}

	return strings.TrimSpace(builder.String()), nil
}
