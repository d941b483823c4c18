// Package storagetest provides a conformance suite shared by storage
// substrate implementations.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/lifeos/internal/storage"
)

// Opener returns a fresh, empty substrate for one subtest.
type Opener func(t *testing.T) storage.Substrate

// RunSubstrateConformance checks the behavior every substrate must share.
func RunSubstrateConformance(t *testing.T, open Opener) {
	t.Helper()
	ctx := context.Background()

	t.Run("save then load", func(t *testing.T) {
		s := open(t)
		if err := s.Save(ctx, "todo.items", []byte(`[]`)); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := s.Load(ctx, "todo.items")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !bytes.Equal(got, []byte(`[]`)) {
			t.Fatalf("load = %q, want %q", got, `[]`)
		}
	})

	t.Run("load missing", func(t *testing.T) {
		s := open(t)
		if _, err := s.Load(ctx, "todo.missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("load missing error = %v, want ErrNotFound", err)
		}
	})

	t.Run("save replaces", func(t *testing.T) {
		s := open(t)
		mustSave(t, s, "habits.streak", `1`)
		mustSave(t, s, "habits.streak", `2`)
		got, err := s.Load(ctx, "habits.streak")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if string(got) != `2` {
			t.Fatalf("load = %q, want 2", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		mustSave(t, s, "goals.items", `[1]`)
		if err := s.Delete(ctx, "goals.items"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.Load(ctx, "goals.items"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("load after delete error = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, "goals.items"); err != nil {
			t.Fatalf("delete missing key should succeed: %v", err)
		}
	})

	t.Run("list by prefix in key order", func(t *testing.T) {
		s := open(t)
		mustSave(t, s, "todo.b", `"b"`)
		mustSave(t, s, "todo.a", `"a"`)
		mustSave(t, s, "todos.x", `"x"`)
		mustSave(t, s, "journal.a", `"j"`)

		records, err := s.List(ctx, "todo.")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(records) != 2 || records[0].Key != "todo.a" || records[1].Key != "todo.b" {
			t.Fatalf("list = %+v", records)
		}

		all, err := s.List(ctx, "")
		if err != nil {
			t.Fatalf("list all: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("list all returned %d records, want 4", len(all))
		}
	})

	t.Run("delete all", func(t *testing.T) {
		s := open(t)
		mustSave(t, s, "todo.items", `[]`)
		mustSave(t, s, "shell.activeModule", `"todo"`)
		if err := s.DeleteAll(ctx); err != nil {
			t.Fatalf("delete all: %v", err)
		}
		records, err := s.List(ctx, "")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(records) != 0 {
			t.Fatalf("expected empty substrate, got %+v", records)
		}
		mustSave(t, s, "todo.items", `[1]`)
	})

	t.Run("canceled context", func(t *testing.T) {
		s := open(t)
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		if err := s.Save(canceled, "todo.items", []byte(`[]`)); err == nil {
			t.Fatal("expected canceled context to fail save")
		}
	})

	t.Run("closed", func(t *testing.T) {
		s := open(t)
		if err := s.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if err := s.Save(ctx, "todo.items", []byte(`[]`)); err == nil {
			t.Fatal("expected save after close to fail")
		}
	})
}

func mustSave(t *testing.T, s storage.Substrate, key, payload string) {
	t.Helper()
	if err := s.Save(context.Background(), key, []byte(payload)); err != nil {
		t.Fatalf("save %s: %v", key, err)
	}
}
