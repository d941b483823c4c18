package bridge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/lifeos/internal/lifeos/events"
	"github.com/louisbranch/lifeos/internal/lifeos/store"
	"github.com/louisbranch/lifeos/internal/platform/id"
	"go.uber.org/zap"
)

// RemindersField prefixes the shell namespace fields holding reminders, one
// field per module: shell.reminders.<moduleId>.
const RemindersField = "reminders"

func remindersField(moduleID string) string {
	return RemindersField + "." + moduleID
}

// Reminder states.
const (
	ReminderPending    = "pending"
	ReminderFired      = "fired"
	ReminderSuppressed = "suppressed"
)

var (
	// ErrInvalidReminder indicates a reminder missing text, module or due time.
	ErrInvalidReminder = errors.New("invalid reminder")
	// ErrUnknownModule indicates a reminder for a module the bridge does not scan.
	ErrUnknownModule = errors.New("unknown reminder module")
)

// Reminder is a scheduled notification owned by a module.
type Reminder struct {
	ID        string     `json:"id"`
	ModuleID  string     `json:"moduleId"`
	Text      string     `json:"text"`
	DueAt     time.Time  `json:"dueAt"`
	State     string     `json:"state"`
	HandledAt *time.Time `json:"handledAt,omitempty"`
}

// Schedule stores a pending reminder under shell.reminders.<moduleId>. Module
// namespaces are never written.
func (b *Bridge) Schedule(ctx context.Context, r Reminder) (Reminder, error) {
	r.ModuleID = strings.TrimSpace(r.ModuleID)
	r.Text = strings.TrimSpace(r.Text)
	switch {
	case r.Text == "":
		return Reminder{}, fmt.Errorf("%w: text is required", ErrInvalidReminder)
	case r.DueAt.IsZero():
		return Reminder{}, fmt.Errorf("%w: due time is required", ErrInvalidReminder)
	case !b.knowsModule(r.ModuleID):
		return Reminder{}, fmt.Errorf("%w: %q", ErrUnknownModule, r.ModuleID)
	}
	newID := b.newID
	if newID == nil {
		newID = id.NewID
	}
	reminderID, err := newID()
	if err != nil {
		return Reminder{}, fmt.Errorf("generate reminder id: %w", err)
	}
	r.ID = reminderID
	r.State = ReminderPending
	r.DueAt = r.DueAt.UTC()
	r.HandledAt = nil

	err = b.adapter.Namespace(store.ShellNamespace).Update(ctx, remindersField(r.ModuleID), func(current store.Value) (any, error) {
		reminders, err := decodeReminders(current)
		if err != nil {
			return nil, err
		}
		return append(reminders, r), nil
	})
	if err != nil {
		return Reminder{}, err
	}
	b.logger.Info("reminder scheduled", zap.String("module", r.ModuleID), zap.Time("due_at", r.DueAt))
	return r, nil
}

// Reminders lists reminders across all scanned modules ordered by due time.
func (b *Bridge) Reminders(ctx context.Context) ([]Reminder, error) {
	var all []Reminder
	for _, moduleID := range b.modules {
		value, err := b.adapter.Namespace(store.ShellNamespace).Get(ctx, remindersField(moduleID))
		if err != nil {
			return nil, err
		}
		reminders, err := decodeReminders(value)
		if err != nil {
			return nil, err
		}
		all = append(all, reminders...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].DueAt.Before(all[j].DueAt) })
	return all, nil
}

// CheckDue handles every pending reminder due at or before now. Reminders are
// marked handled before reminder.due is published, so each fires at most once.
func (b *Bridge) CheckDue(ctx context.Context) (fired, suppressed int, err error) {
	now := b.now().UTC()
	deliver := b.Status().Notifications == CapabilityAvailable

	var errs []error
	for _, moduleID := range b.modules {
		var due []Reminder
		updateErr := b.adapter.Namespace(store.ShellNamespace).Update(ctx, remindersField(moduleID), func(current store.Value) (any, error) {
			due = due[:0]
			if current.IsAbsent() {
				return nil, errNothingDue
			}
			reminders, err := decodeReminders(current)
			if err != nil {
				return nil, err
			}
			for i := range reminders {
				if reminders[i].State != ReminderPending || reminders[i].DueAt.After(now) {
					continue
				}
				handled := now
				reminders[i].HandledAt = &handled
				reminders[i].State = ReminderSuppressed
				if deliver {
					reminders[i].State = ReminderFired
				}
				due = append(due, reminders[i])
			}
			if len(due) == 0 {
				return nil, errNothingDue
			}
			return reminders, nil
		})
		if errors.Is(updateErr, errNothingDue) {
			continue
		}
		if updateErr != nil {
			errs = append(errs, fmt.Errorf("check reminders %s: %w", moduleID, updateErr))
			b.record("error")
			continue
		}
		for _, r := range due {
			if r.State == ReminderFired {
				fired++
				b.record("fired")
				if b.publisher != nil {
					b.publisher.Publish(ctx, events.TopicReminderDue, map[string]string{
						"module": r.ModuleID,
						"id":     r.ID,
						"text":   r.Text,
					})
				}
				continue
			}
			suppressed++
			b.record("suppressed")
			b.logger.Info("reminder suppressed, notifications not available",
				zap.String("module", r.ModuleID),
				zap.String("reminder", r.ID),
			)
		}
	}
	return fired, suppressed, errors.Join(errs...)
}

var errNothingDue = errors.New("no reminders due")

func (b *Bridge) runScheduler(ctx context.Context) {
	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := b.CheckDue(ctx); err != nil && ctx.Err() == nil {
				b.logger.Warn("reminder scan failed", zap.Error(err))
			}
		}
	}
}

func (b *Bridge) knowsModule(moduleID string) bool {
	for _, m := range b.modules {
		if m == moduleID {
			return true
		}
	}
	return false
}

func (b *Bridge) record(outcome string) {
	if b.recorder != nil {
		b.recorder.Reminder(outcome)
	}
}

func decodeReminders(value store.Value) ([]Reminder, error) {
	reminders := []Reminder{}
	if value.IsAbsent() {
		return reminders, nil
	}
	if err := value.Decode(&reminders); err != nil {
		return nil, err
	}
	if reminders == nil {
		reminders = []Reminder{}
	}
	return reminders, nil
}
