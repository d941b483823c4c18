// Package records keeps the entries of each module in its store namespace and
// derives module content and widget views from them.
package records

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/louisbranch/lifeos/internal/lifeos/catalog"
	"github.com/louisbranch/lifeos/internal/lifeos/store"
	"github.com/louisbranch/lifeos/internal/platform/id"
	"github.com/microcosm-cc/bluemonday"
)

// ItemsField is the namespace field holding a module's entries.
const ItemsField = "items"

// MaxTextLength bounds entry text in runes.
const MaxTextLength = 4000

var (
	// ErrEmptyText indicates an entry without text after sanitising.
	ErrEmptyText = errors.New("entry text is required")
	// ErrTextTooLong indicates an entry above MaxTextLength.
	ErrTextTooLong = errors.New("entry text is too long")
	// ErrInvalidAmount indicates an amount that is not a finite number.
	ErrInvalidAmount = errors.New("entry amount must be a finite number")
	// ErrEntryNotFound indicates an unknown entry id.
	ErrEntryNotFound = errors.New("entry not found")
)

// Entry is one record in a module.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Amount    *float64  `json:"amount,omitempty"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
}

// Book reads and writes the entries of one module.
type Book struct {
	module    catalog.Module
	ns        store.Namespace
	sanitizer *bluemonday.Policy
	now       func() time.Time
	newID     func() (string, error)
}

// Option configures a Book.
type Option func(*Book)

// WithClock overrides the entry timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Book) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDs overrides entry id generation.
func WithIDs(newID func() (string, error)) Option {
	return func(b *Book) {
		if newID != nil {
			b.newID = newID
		}
	}
}

// NewBook returns the book for module backed by adapter.
func NewBook(adapter *store.Adapter, module catalog.Module, opts ...Option) *Book {
	b := &Book{
		module:    module,
		ns:        adapter.Namespace(module.ID),
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
		newID:     id.NewID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Module returns the catalog entry of the book's module.
func (b *Book) Module() catalog.Module {
	return b.module
}

// Entries returns the module entries in insertion order.
func (b *Book) Entries(ctx context.Context) ([]Entry, error) {
	value, err := b.ns.Get(ctx, ItemsField)
	if err != nil {
		return nil, err
	}
	return decodeEntries(value)
}

// Add appends an entry built from user input.
func (b *Book) Add(ctx context.Context, text, amount string) (Entry, error) {
	clean, err := b.cleanText(text)
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{Text: clean, CreatedAt: b.now().UTC()}
	if b.module.Amount != nil || strings.TrimSpace(amount) != "" {
		value, err := ParseAmount(amount)
		if err != nil {
			return Entry{}, err
		}
		entry.Amount = &value
	}
	entry.ID, err = b.newID()
	if err != nil {
		return Entry{}, fmt.Errorf("generate entry id: %w", err)
	}

	err = b.ns.Update(ctx, ItemsField, func(current store.Value) (any, error) {
		entries, err := decodeEntries(current)
		if err != nil {
			return nil, err
		}
		return append(entries, entry), nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Toggle flips the done flag of entry id.
func (b *Book) Toggle(ctx context.Context, entryID string) (Entry, error) {
	var toggled Entry
	err := b.ns.Update(ctx, ItemsField, func(current store.Value) (any, error) {
		entries, err := decodeEntries(current)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			if entries[i].ID == entryID {
				entries[i].Done = !entries[i].Done
				toggled = entries[i]
				return entries, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	})
	return toggled, err
}

// Remove deletes entry id.
func (b *Book) Remove(ctx context.Context, entryID string) error {
	return b.ns.Update(ctx, ItemsField, func(current store.Value) (any, error) {
		entries, err := decodeEntries(current)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			if entries[i].ID == entryID {
				return append(entries[:i:i], entries[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	})
}

// ParseAmount parses user input such as "1,250.50", "$12" or "-3".
func ParseAmount(raw string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "$", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return value, nil
}

func (b *Book) cleanText(text string) (string, error) {
	clean := strings.TrimSpace(html.UnescapeString(b.sanitizer.Sanitize(text)))
	if clean == "" {
		return "", ErrEmptyText
	}
	if utf8.RuneCountInString(clean) > MaxTextLength {
		return "", fmt.Errorf("%w: %d runes", ErrTextTooLong, utf8.RuneCountInString(clean))
	}
	return clean, nil
}

func decodeEntries(value store.Value) ([]Entry, error) {
	entries := []Entry{}
	if value.IsAbsent() {
		return entries, nil
	}
	if err := value.Decode(&entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
