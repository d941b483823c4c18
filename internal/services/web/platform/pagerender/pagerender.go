// Package pagerender centralizes module page rendering behavior.
package pagerender

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/lifeos/internal/services/web/platform/httpx"
	webtemplates "github.com/louisbranch/lifeos/internal/services/web/templates"
)

// ModulePage describes a module page response for both full-page and HTMX flows.
type ModulePage struct {
	Title        string
	StatusCode   int
	ActiveModule string
	// Fragment answers HTMX requests. Body is wrapped in the document shell
	// for full-page requests and defaults to Fragment.
	Fragment templ.Component
	Body     templ.Component
}

// WriteModulePage renders page into a buffer first so a render failure can
// still produce a clean error status.
func WriteModulePage(w http.ResponseWriter, r *http.Request, page ModulePage) error {
	if w == nil {
		return nil
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	ctx := httpx.RequestContext(r)

	var component templ.Component
	if httpx.IsHTMXRequest(r) && page.Fragment != nil {
		component = page.Fragment
	} else {
		body := page.Body
		if body == nil {
			body = page.Fragment
		}
		path := ""
		if r != nil {
			path = r.URL.Path
		}
		component = webtemplates.Page(webtemplates.PageContext{
			Title:        page.Title,
			CurrentPath:  path,
			ActiveModule: page.ActiveModule,
		}, body)
	}

	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
	return nil
}
