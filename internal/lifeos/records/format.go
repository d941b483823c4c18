package records

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/louisbranch/lifeos/internal/lifeos/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts and timestamps for display.
type Formatter struct {
	printer *message.Printer
	now     func() time.Time
}

// NewFormatter returns a formatter for tag.
func NewFormatter(tag language.Tag, now func() time.Time) Formatter {
	if now == nil {
		now = time.Now
	}
	return Formatter{printer: message.NewPrinter(tag), now: now}
}

// DefaultFormatter formats for American English.
func DefaultFormatter() Formatter {
	return NewFormatter(language.AmericanEnglish, nil)
}

// Amount formats value according to unit.
func (f Formatter) Amount(value float64, unit string) string {
	switch unit {
	case catalog.UnitCurrency:
		sign := ""
		if value < 0 {
			sign = "-"
		}
		return sign + "$" + f.p().Sprintf("%.2f", math.Abs(value))
	case catalog.UnitMinutes:
		return f.p().Sprintf("%d min", int64(math.Round(value)))
	default:
		return f.p().Sprintf("%v", value)
	}
}

// Count formats an integer with grouping.
func (f Formatter) Count(n int) string {
	return f.p().Sprintf("%d", n)
}

// Since renders t relative to now, such as "3 minutes ago".
func (f Formatter) Since(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, f.clock(), "ago", "from now")
}

func (f Formatter) p() *message.Printer {
	if f.printer == nil {
		return message.NewPrinter(language.AmericanEnglish)
	}
	return f.printer
}

func (f Formatter) clock() time.Time {
	if f.now == nil {
		return time.Now()
	}
	return f.now()
}
