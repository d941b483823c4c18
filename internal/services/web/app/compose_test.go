package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	module "github.com/louisbranch/lifeos/internal/services/web/module"
)

type stubModule struct {
	id    string
	mount module.Mount
	err   error
}

func (s stubModule) ID() string { return s.id }

func (s stubModule) Mount() (module.Mount, error) { return s.mount, s.err }

func tagHandler(tag string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(tag))
	})
}

func TestComposeRejectsDuplicateModulePrefix(t *testing.T) {
	t.Parallel()

	_, err := Compose(ComposeInput{
		Modules: []module.Module{
			stubModule{id: "one", mount: module.Mount{Prefix: "/one/", Handler: tagHandler("one")}},
			stubModule{id: "two", mount: module.Mount{Prefix: "/one/", Handler: tagHandler("two")}},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicates prefix") {
		t.Fatalf("Compose() error = %v, want duplicate prefix", err)
	}
}

func TestComposeRejectsInvalidModulePrefixes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
	}{
		{name: "empty", prefix: ""},
		{name: "missing leading slash", prefix: "apps/x/"},
		{name: "missing trailing slash", prefix: "/apps/x"},
		{name: "contains surrounding whitespace", prefix: "/apps/x/ "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Compose(ComposeInput{
				Modules: []module.Module{
					stubModule{id: "bad", mount: module.Mount{Prefix: tc.prefix, Handler: tagHandler("bad")}},
				},
			})
			if err == nil {
				t.Fatalf("expected invalid prefix error")
			}
			if got := err.Error(); !strings.Contains(got, "invalid prefix") || !strings.Contains(got, "bad") {
				t.Fatalf("unexpected error = %q", got)
			}
		})
	}
}

func TestComposeRejectsNilModuleAndMountFailures(t *testing.T) {
	t.Parallel()

	if _, err := Compose(ComposeInput{Modules: []module.Module{nil}}); err == nil {
		t.Fatal("expected nil module error")
	}
	_, err := Compose(ComposeInput{Modules: []module.Module{stubModule{id: "broken", err: errors.New("boom")}}})
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("Compose() error = %v, want mount failure", err)
	}
	_, err = Compose(ComposeInput{Modules: []module.Module{stubModule{id: "nohandler", mount: module.Mount{Prefix: "/x/"}}}})
	if err == nil {
		t.Fatal("expected missing handler error")
	}
}

func TestComposeRoutesByLongestPrefixAndSlashlessAlias(t *testing.T) {
	t.Parallel()

	h, err := Compose(ComposeInput{
		Modules: []module.Module{
			stubModule{id: "shell", mount: module.Mount{Prefix: "/", Handler: tagHandler("shell")}},
			stubModule{id: "settings", mount: module.Mount{Prefix: "/settings/", Handler: tagHandler("settings")}},
		},
		Routes: map[string]http.Handler{"/up": tagHandler("up")},
	})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	tests := map[string]string{
		"/":               "shell",
		"/modules/todo":   "shell",
		"/settings":       "settings",
		"/settings/clear": "settings",
		"/up":             "up",
	}
	for path, want := range tests {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if got := rr.Body.String(); got != want {
			t.Fatalf("GET %s served by %q, want %q", path, got, want)
		}
	}
}
