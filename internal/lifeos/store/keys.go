package store

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	namespacePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
	fieldPattern     = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)
)

// ShellNamespace is the only namespace written by the dashboard shell.
const ShellNamespace = "shell"

// Key builds the storage key for a namespace field.
func Key(namespace, field string) string {
	return namespace + "." + field
}

// SplitKey returns the namespace and field of key after validation.
func SplitKey(key string) (namespace, field string, err error) {
	namespace, field, ok := strings.Cut(key, ".")
	if !ok {
		return "", "", fmt.Errorf("%w: %q has no namespace", ErrInvalidKey, key)
	}
	if !namespacePattern.MatchString(namespace) {
		return "", "", fmt.Errorf("%w: namespace %q", ErrInvalidKey, namespace)
	}
	if !fieldPattern.MatchString(field) {
		return "", "", fmt.Errorf("%w: field %q", ErrInvalidKey, field)
	}
	return namespace, field, nil
}

// ValidNamespace reports whether id can be used as a storage namespace.
func ValidNamespace(id string) bool {
	return namespacePattern.MatchString(id)
}
