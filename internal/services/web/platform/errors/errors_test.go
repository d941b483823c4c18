package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapsKnownKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want int
	}{
		{kind: KindInvalidInput, want: http.StatusBadRequest},
		{kind: KindNotFound, want: http.StatusNotFound},
		{kind: KindUnavailable, want: http.StatusServiceUnavailable},
		{kind: KindConflict, want: http.StatusConflict},
		{kind: KindUnknown, want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := HTTPStatus(E(tc.kind, "x")); got != tc.want {
			t.Fatalf("HTTPStatus(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestHTTPStatusDefaultsToInternalError(t *testing.T) {
	t.Parallel()

	if got := HTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", got, http.StatusInternalServerError)
	}
	if got := HTTPStatus(nil); got != http.StatusOK {
		t.Fatalf("HTTPStatus(nil) = %d, want %d", got, http.StatusOK)
	}
}

func TestWrapKeepsCauseAndKind(t *testing.T) {
	t.Parallel()

	cause := errors.New("module not found")
	err := fmt.Errorf("activate: %w", Wrap(KindNotFound, cause))
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(%v, cause) = false", err)
	}
	if got := KindOf(err); got != KindNotFound {
		t.Fatalf("KindOf = %q, want %q", got, KindNotFound)
	}
	if got := HTTPStatus(err); got != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", got, http.StatusNotFound)
	}
	if Wrap(KindNotFound, nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
}

func TestErrorStringFallsBackToKindWhenMessageEmpty(t *testing.T) {
	t.Parallel()

	err := Error{Kind: KindConflict}
	if got := err.Error(); got != string(KindConflict) {
		t.Fatalf("Error() = %q, want %q", got, string(KindConflict))
	}
}

func TestPublicMessageHidesUntypedErrors(t *testing.T) {
	t.Parallel()

	if got := PublicMessage(errors.New("disk sector 7 is bad")); got != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("PublicMessage = %q", got)
	}
	if got := PublicMessage(E(KindInvalidInput, "entry text is required")); got != "entry text is required" {
		t.Fatalf("PublicMessage = %q", got)
	}
}
