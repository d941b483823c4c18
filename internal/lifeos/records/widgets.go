package records

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/louisbranch/lifeos/internal/lifeos/catalog"
	"github.com/louisbranch/lifeos/internal/lifeos/registry"
)

// Widget kinds backed by module entries.
const (
	KindTodoOpen         = "todo.open"
	KindFitnessWeekly    = "fitness.weekly"
	KindFinanceBalance   = "finance.balance"
	KindInvestmentsValue = "investments.value"
	KindHabitsStreak     = "habits.streak"
	KindGoalsProgress    = "goals.progress"
	KindJournalLatest    = "journal.latest"
	KindPoetryLatest     = "poetry.latest"
)

const (
	widgetLines   = 3
	excerptLength = 120
)

type widgetRenderer func(entries []Entry, b *Book, f Formatter) registry.WidgetView

var widgetKinds = map[string]widgetRenderer{
	KindTodoOpen:         renderOpen,
	KindFitnessWeekly:    renderWeekly,
	KindFinanceBalance:   renderTotal,
	KindInvestmentsValue: renderTotal,
	KindHabitsStreak:     renderDone,
	KindGoalsProgress:    renderProgress,
	KindJournalLatest:    renderLatest,
	KindPoetryLatest:     renderLatest,
}

// KnownKind reports whether kind has a renderer.
func KnownKind(kind string) bool {
	_, ok := widgetKinds[kind]
	return ok
}

// Widget returns the renderer for kind over this book's entries.
func (b *Book) Widget(kind string, f Formatter) (registry.WidgetFunc, error) {
	render, ok := widgetKinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown widget kind %q", kind)
	}
	return func(ctx context.Context) (registry.WidgetView, error) {
		entries, err := b.Entries(ctx)
		if err != nil {
			return registry.WidgetView{}, err
		}
		view := render(entries, b, f)
		if len(entries) == 0 {
			view.Empty = true
			if view.Detail == "" {
				view.Detail = fmt.Sprintf("No %s yet", strings.ToLower(plural(b.module.EntryNoun)))
			}
		}
		return view, nil
	}, nil
}

func renderOpen(entries []Entry, b *Book, f Formatter) registry.WidgetView {
	open := 0
	var lines []string
	for _, entry := range entries {
		if entry.Done {
			continue
		}
		open++
		if len(lines) < widgetLines {
			lines = append(lines, excerpt(entry.Text))
		}
	}
	return registry.WidgetView{
		Headline: f.Count(open) + " open",
		Detail:   f.Count(len(entries)-open) + " done",
		Lines:    lines,
	}
}

func renderWeekly(entries []Entry, b *Book, f Formatter) registry.WidgetView {
	weekAgo := f.clock().Add(-7 * 24 * time.Hour)
	total := 0.0
	count := 0
	for _, entry := range entries {
		if entry.CreatedAt.Before(weekAgo) {
			continue
		}
		count++
		if entry.Amount != nil {
			total += *entry.Amount
		}
	}
	return registry.WidgetView{
		Headline: f.Amount(total, unitOf(b)),
		Detail:   fmt.Sprintf("%s %s this week", f.Count(count), strings.ToLower(pluralize(b.module.EntryNoun, count))),
	}
}

func renderTotal(entries []Entry, b *Book, f Formatter) registry.WidgetView {
	total := 0.0
	for _, entry := range entries {
		if entry.Amount != nil {
			total += *entry.Amount
		}
	}
	return registry.WidgetView{
		Headline: f.Amount(total, unitOf(b)),
		Detail:   fmt.Sprintf("%s %s", f.Count(len(entries)), strings.ToLower(pluralize(b.module.EntryNoun, len(entries)))),
	}
}

func renderDone(entries []Entry, b *Book, f Formatter) registry.WidgetView {
	done := 0
	var lines []string
	for _, entry := range entries {
		if entry.Done {
			done++
			continue
		}
		if len(lines) < widgetLines {
			lines = append(lines, excerpt(entry.Text))
		}
	}
	return registry.WidgetView{
		Headline: fmt.Sprintf("%s of %s", f.Count(done), f.Count(len(entries))),
		Detail:   "checked in",
		Lines:    lines,
	}
}

func renderProgress(entries []Entry, b *Book, f Formatter) registry.WidgetView {
	done := 0
	for _, entry := range entries {
		if entry.Done {
			done++
		}
	}
	percent := 0
	if len(entries) > 0 {
		percent = int(math.Round(float64(done) * 100 / float64(len(entries))))
	}
	return registry.WidgetView{
		Headline: fmt.Sprintf("%d%%", percent),
		Detail:   fmt.Sprintf("%s of %s complete", f.Count(done), f.Count(len(entries))),
	}
}

func renderLatest(entries []Entry, b *Book, f Formatter) registry.WidgetView {
	if len(entries) == 0 {
		return registry.WidgetView{}
	}
	latest := entries[len(entries)-1]
	return registry.WidgetView{
		Headline: excerpt(latest.Text),
		Detail:   f.Since(latest.CreatedAt),
	}
}

func unitOf(b *Book) string {
	if b.module.Amount == nil {
		return catalog.UnitCount
	}
	return b.module.Amount.Unit
}

func pluralize(noun string, n int) string {
	if n == 1 {
		if noun == "" {
			return "entry"
		}
		return noun
	}
	return plural(noun)
}

func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:excerptLength])) + "…"
}
