// Package webtest builds a fully assembled LifeOS core over in-memory
// storage for web handler tests.
package webtest

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/louisbranch/lifeos/internal/lifeos/catalog"
	"github.com/louisbranch/lifeos/internal/lifeos/records"
	"github.com/louisbranch/lifeos/internal/lifeos/shell"
	"github.com/louisbranch/lifeos/internal/platform/metrics"
	module "github.com/louisbranch/lifeos/internal/services/web/module"
	"github.com/louisbranch/lifeos/internal/storage/memory"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Now is the fixed clock used by assembled test shells.
var Now = time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)

// Dependencies assembles a shell over fresh in-memory storage.
func Dependencies(t testing.TB) module.Dependencies {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	clock := func() time.Time { return Now }
	m := metrics.New()
	s, err := shell.Assemble(shell.Config{
		Catalog:       cat,
		Substrate:     memory.New(),
		PublicURL:     "http://localhost:3000",
		ScriptPresent: func() bool { return true },
		Formatter:     records.NewFormatter(language.AmericanEnglish, clock),
		Metrics:       m,
		Logger:        zap.NewNop(),
		Clock:         clock,
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	t.Cleanup(func() { _ = s.Store.Close() })
	return module.Dependencies{Shell: s, Metrics: m, Logger: zap.NewNop()}
}

// Get issues a GET request, optionally as an HTMX request.
func Get(h http.Handler, path string, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// PostForm issues a form POST, optionally as an HTMX request.
func PostForm(h http.Handler, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// PostJSON issues a JSON POST.
func PostJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// Document parses a response body as HTML.
func Document(t testing.TB, rr *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}
