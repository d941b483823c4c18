package records

import (
	"context"
	"fmt"

	"github.com/louisbranch/lifeos/internal/lifeos/registry"
)

// previewLimit bounds the entries shown in an external module's preview.
const previewLimit = 5

// Content renders the module content region from the module's entries.
// Editable content is produced for in-shell modules; external modules get a
// read-only preview since editing happens in their dedicated app.
func (b *Book) Content(ctx context.Context, f Formatter) (registry.Content, error) {
	return b.content(ctx, f, b.module.External)
}

// AppContent renders every entry, editable, for the module's dedicated app.
func (b *Book) AppContent(ctx context.Context, f Formatter) (registry.Content, error) {
	return b.content(ctx, f, false)
}

func (b *Book) content(ctx context.Context, f Formatter, preview bool) (registry.Content, error) {
	entries, err := b.Entries(ctx)
	if err != nil {
		return registry.Content{}, err
	}
	content := registry.Content{
		Summary:     b.module.Summary,
		Description: b.module.Description,
		Editable:    !preview,
		EntryNoun:   b.module.EntryNoun,
		Stats:       b.stats(entries, f),
	}
	if b.module.Amount != nil {
		content.AmountLabel = b.module.Amount.Label
	}

	items := entries
	if preview && len(items) > previewLimit {
		items = items[len(items)-previewLimit:]
	}
	content.Items = make([]registry.Item, 0, len(items))
	for _, entry := range items {
		content.Items = append(content.Items, b.item(entry, f))
	}
	return content, nil
}

// ContentFunc adapts Content to the registry renderer signature.
func (b *Book) ContentFunc(f Formatter) registry.ContentFunc {
	return func(ctx context.Context) (registry.Content, error) {
		return b.Content(ctx, f)
	}
}

func (b *Book) item(entry Entry, f Formatter) registry.Item {
	detail := f.Since(entry.CreatedAt)
	if entry.Amount != nil && b.module.Amount != nil {
		detail = f.Amount(*entry.Amount, b.module.Amount.Unit) + " · " + detail
	}
	return registry.Item{ID: entry.ID, Text: entry.Text, Detail: detail, Done: entry.Done}
}

func (b *Book) stats(entries []Entry, f Formatter) []registry.Stat {
	done := 0
	total := 0.0
	for _, entry := range entries {
		if entry.Done {
			done++
		}
		if entry.Amount != nil {
			total += *entry.Amount
		}
	}
	stats := []registry.Stat{{Label: plural(b.module.EntryNoun), Value: f.Count(len(entries))}}
	if b.module.Amount != nil {
		stats = append(stats, registry.Stat{Label: "Total " + b.module.Amount.Label, Value: f.Amount(total, b.module.Amount.Unit)})
	} else {
		stats = append(stats, registry.Stat{Label: "Done", Value: fmt.Sprintf("%s of %s", f.Count(done), f.Count(len(entries)))})
	}
	return stats
}

func plural(noun string) string {
	if noun == "" {
		return "Entries"
	}
	title := []rune(noun)
	if title[0] >= 'a' && title[0] <= 'z' {
		title[0] -= 'a' - 'A'
	}
	switch {
	case len(noun) > 1 && noun[len(noun)-1] == 'y':
		return string(title[:len(title)-1]) + "ies"
	default:
		return string(title) + "s"
	}
}
