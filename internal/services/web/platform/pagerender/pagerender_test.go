package pagerender

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func fragment(text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p class=\"frag\">"+text+"</p>")
		return err
	})
}

func TestWriteModulePageFullDocumentForPlainRequests(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	if err := WriteModulePage(rr, req, ModulePage{Title: "Settings", Fragment: fragment("body")}); err != nil {
		t.Fatalf("WriteModulePage() error = %v", err)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, "<!DOCTYPE html>") || !strings.Contains(body, `<p class="frag">body</p>`) {
		t.Fatalf("body = %q", body)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("content-type = %q", got)
	}
}

func TestWriteModulePageFragmentForHTMX(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/modules/todo", nil)
	req.Header.Set("HX-Request", "true")
	err := WriteModulePage(rr, req, ModulePage{
		StatusCode: http.StatusAccepted,
		Fragment:   fragment("only"),
		Body:       fragment("page"),
	})
	if err != nil {
		t.Fatalf("WriteModulePage() error = %v", err)
	}
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Body.String(); got != `<p class="frag">only</p>` {
		t.Fatalf("body = %q", got)
	}
}

func TestWriteModulePageReturnsRenderErrorsBeforeWriting(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	broken := templ.ComponentFunc(func(context.Context, io.Writer) error { return io.ErrUnexpectedEOF })
	if err := WriteModulePage(rr, httptest.NewRequest(http.MethodGet, "/", nil), ModulePage{Fragment: broken}); err == nil {
		t.Fatal("expected render error")
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("body written on failure: %q", rr.Body.String())
	}
}
