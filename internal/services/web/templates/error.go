package templates

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/lifeos/internal/services/web/routepath"
)

// ErrorState renders a user-facing error panel.
func ErrorState(status int, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		heading := "Something went wrong"
		if status == http.StatusNotFound {
			heading = "Not found"
		}
		if message == "" {
			message = http.StatusText(status)
		}
		m.open("main", "class", "app-main error-state", "data-status", http.StatusText(status))
		m.elem("h2", heading)
		m.elem("p", message, "class", "error-message")
		m.open("a", "class", "btn", "href", routepath.Root)
		m.text("Back to dashboard")
		m.close("a")
		m.close("main")
		return m.err
	})
}
