package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"collab-todo/internal/model"
	"collab-todo/internal/repository"
)

// Notifier delivers a text message to an external chat identity. Sends may
// fail per recipient; failures are reported, never panicked.
type Notifier interface {
	Send(ctx context.Context, chatID, text string) error
}

// ReminderService is the periodic engine that finds due reminders, computes
// next occurrences for repeating todos, and dispatches notifications.
//
// Occurrence state machine: a todo with remind_at set and notified=false is
// pending; once remind_at passes it is due; after a scan it is dispatched,
// either by setting notified=true (one-time) or by rolling remind_at one day
// forward (repeating). Overlapping scans are prevented by a compare-and-set
// flag: a tick that fires while a scan is in flight is skipped outright,
// delaying those reminders to the next tick rather than queueing work.
type ReminderService struct {
	todoRepo *repository.TodoRepository
	notifier Notifier
	running  atomic.Bool
}

func NewReminderService(todoRepo *repository.TodoRepository, notifier Notifier) *ReminderService {
	return &ReminderService{todoRepo: todoRepo, notifier: notifier}
}

// Tick runs one reminder scan as of now. Each due todo is processed in its
// own goroutine; one failing dispatch never aborts the rest of the batch.
// A failure in the query phase logs and ends the tick, leaving state for
// the next tick to retry.
func (s *ReminderService) Tick(ctx context.Context, now time.Time) {
	if !s.running.CompareAndSwap(false, true) {
		log.Printf("[scheduler] previous scan still running, skipping this tick")
		return
	}
	defer s.running.Store(false)

	due, err := s.todoRepo.FindDueReminders(ctx, now)
	if err != nil {
		log.Printf("[scheduler] query due reminders: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	var wg sync.WaitGroup
	for i := range due {
		todo := due[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.process(ctx, &todo, now); err != nil {
				log.Printf("[scheduler] todo %d: %v", todo.ID, err)
			}
		}()
	}
	wg.Wait()

	log.Printf("[scheduler] processed %d due reminders", len(due))
}

// process dispatches one due todo and writes its new occurrence state back.
//
// One-time todos are marked notified whether or not the send succeeded:
// retrying a permanently unreachable recipient every minute would only spam
// the log, so delivery is at-least-once with the failure logged.
//
// Repeating todos send only when today's weekday is in the repeat set, but
// always advance remind_at by exactly one calendar day with notified reset,
// so the todo is re-evaluated daily without separate skip bookkeeping.
func (s *ReminderService) process(ctx context.Context, todo *model.Todo, now time.Time) error {
	if todo.RemindAt == nil {
		return nil
	}

	var chatID string
	if todo.Owner.TelegramChatID != nil {
		chatID = *todo.Owner.TelegramChatID
	}
	text := fmt.Sprintf("⏰ Reminder: %q\n\nIt's time to complete this task!", todo.Title)

	if !todo.IsRepeatable {
		if err := s.notifier.Send(ctx, chatID, text); err != nil {
			log.Printf("[scheduler] notify owner of todo %d: %v", todo.ID, err)
		}
		return s.todoRepo.UpdateReminderState(ctx, todo.ID, todo.RemindAt, true)
	}

	if todo.RepeatsOn(model.WeekdayNumber(now.Weekday())) {
		if err := s.notifier.Send(ctx, chatID, text); err != nil {
			log.Printf("[scheduler] notify owner of todo %d: %v", todo.ID, err)
		}
	}

	next := todo.RemindAt.AddDate(0, 0, 1)
	return s.todoRepo.UpdateReminderState(ctx, todo.ID, &next, false)
}
