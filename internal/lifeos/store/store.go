// Package store is the persistent store adapter: JSON documents under
// namespaced keys, a byte quota, change events and typed failures.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/louisbranch/lifeos/internal/lifeos/events"
	"github.com/louisbranch/lifeos/internal/platform/logging"
	"github.com/louisbranch/lifeos/internal/storage"
	"go.uber.org/zap"
)

var (
	// ErrQuotaExceeded indicates a write would grow the store past its quota.
	ErrQuotaExceeded = errors.New("store quota exceeded")
	// ErrUnavailable indicates the substrate is closed or failing.
	ErrUnavailable = errors.New("store unavailable")
	// ErrSerialization indicates a value cannot be encoded or decoded.
	ErrSerialization = errors.New("store serialization failed")
	// ErrClearNotConfirmed indicates Clear was called without confirmation.
	ErrClearNotConfirmed = errors.New("clear all requires confirmation")
	// ErrInvalidKey indicates a key outside the <namespace>.<field> form.
	ErrInvalidKey = errors.New("invalid store key")
)

// Confirmation guards destructive operations.
type Confirmation string

// ConfirmClearAll is the only confirmation accepted by Clear.
const ConfirmClearAll Confirmation = "clear-all"

// DefaultQuota mirrors the per-origin budget of browser local storage.
const DefaultQuota int64 = 5 << 20

// Recorder receives store metrics.
type Recorder interface {
	StoreOp(op, result string)
	SetStoreBytes(n int64)
}

// Options configures an Adapter.
type Options struct {
	// Quota caps total bytes (keys plus documents). Zero uses DefaultQuota,
	// negative disables the cap.
	Quota     int64
	Publisher events.Publisher
	Recorder  Recorder
	Logger    *zap.Logger
}

// Usage reports the store footprint.
type Usage struct {
	Bytes      int64
	Quota      int64
	Keys       int
	Namespaces map[string]int64
}

// Adapter serialises writes over a storage substrate.
type Adapter struct {
	substrate storage.Substrate
	quota     int64
	publisher events.Publisher
	recorder  Recorder
	logger    *zap.Logger

	mu        sync.Mutex
	used      int64
	sizeKnown bool
}

// New creates an adapter over substrate.
func New(substrate storage.Substrate, opts Options) (*Adapter, error) {
	if substrate == nil {
		return nil, errors.New("storage substrate is required")
	}
	quota := opts.Quota
	if quota == 0 {
		quota = DefaultQuota
	}
	return &Adapter{
		substrate: substrate,
		quota:     quota,
		publisher: opts.Publisher,
		recorder:  opts.Recorder,
		logger:    logging.OrNop(opts.Logger).Named("store"),
	}, nil
}

// Close closes the substrate.
func (a *Adapter) Close() error {
	return a.substrate.Close()
}

// Get returns the document under key, or Absent.
func (a *Adapter) Get(ctx context.Context, key string) (Value, error) {
	if _, _, err := SplitKey(key); err != nil {
		return Absent, err
	}
	payload, err := a.substrate.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		a.record("get", "absent")
		return Absent, nil
	}
	if err != nil {
		a.record("get", "error")
		return Absent, a.unavailable("get", key, err)
	}
	a.record("get", "ok")
	return Value{raw: payload}, nil
}

// Set stores value under key. On failure the previous document is untouched.
func (a *Adapter) Set(ctx context.Context, key string, value any) error {
	return a.Update(ctx, key, func(Value) (any, error) { return value, nil })
}

// Update runs a read-modify-write under the adapter write lock. fn receives
// the current document (or Absent); an error from fn aborts without writing.
func (a *Adapter) Update(ctx context.Context, key string, fn func(current Value) (any, error)) error {
	namespace, _, err := SplitKey(key)
	if err != nil {
		return err
	}
	if fn == nil {
		return errors.New("update function is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureSize(ctx); err != nil {
		return err
	}
	current, err := a.Get(ctx, key)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	encoded, err := Encode(next)
	if err != nil {
		a.record("set", "serialization")
		return err
	}

	var previous int64
	if !current.IsAbsent() {
		previous = int64(len(key)) + current.size()
	}
	projected := a.used - previous + int64(len(key)) + encoded.size()
	if a.quota > 0 && projected > a.quota {
		a.record("set", "quota")
		a.logger.Warn("store quota exceeded",
			zap.String("key", key),
			zap.Int64("projected_bytes", projected),
			zap.Int64("quota_bytes", a.quota),
		)
		return fmt.Errorf("%w: %s needs %d of %d bytes", ErrQuotaExceeded, key, projected, a.quota)
	}

	if err := a.substrate.Save(ctx, key, encoded.raw); err != nil {
		a.record("set", "error")
		return a.unavailable("set", key, err)
	}
	a.used = projected
	a.record("set", "ok")
	a.publish(ctx, "set", key, namespace)
	return nil
}

// Remove deletes key. Removing an absent key succeeds without an event.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	namespace, _, err := SplitKey(key)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureSize(ctx); err != nil {
		return err
	}
	current, err := a.Get(ctx, key)
	if err != nil {
		return err
	}
	if current.IsAbsent() {
		return nil
	}
	if err := a.substrate.Delete(ctx, key); err != nil {
		a.record("remove", "error")
		return a.unavailable("remove", key, err)
	}
	a.used -= int64(len(key)) + current.size()
	a.record("remove", "ok")
	a.publish(ctx, "remove", key, namespace)
	return nil
}

// Clear wipes every namespace. It requires ConfirmClearAll.
func (a *Adapter) Clear(ctx context.Context, confirm Confirmation) error {
	if confirm != ConfirmClearAll {
		return ErrClearNotConfirmed
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.substrate.DeleteAll(ctx); err != nil {
		a.record("clear", "error")
		return a.unavailable("clear", "*", err)
	}
	a.used = 0
	a.sizeKnown = true
	a.record("clear", "ok")
	a.logger.Info("store cleared")
	a.publish(ctx, "clear", "", "")
	return nil
}

// Keys returns the keys stored in namespace in key order.
func (a *Adapter) Keys(ctx context.Context, namespace string) ([]string, error) {
	if !ValidNamespace(namespace) {
		return nil, fmt.Errorf("%w: namespace %q", ErrInvalidKey, namespace)
	}
	records, err := a.substrate.List(ctx, namespace+".")
	if err != nil {
		return nil, a.unavailable("keys", namespace, err)
	}
	keys := make([]string, 0, len(records))
	for _, record := range records {
		keys = append(keys, record.Key)
	}
	return keys, nil
}

// Usage reports bytes used per namespace and overall.
func (a *Adapter) Usage(ctx context.Context) (Usage, error) {
	records, err := a.substrate.List(ctx, "")
	if err != nil {
		return Usage{}, a.unavailable("usage", "*", err)
	}
	usage := Usage{Quota: a.quota, Keys: len(records), Namespaces: make(map[string]int64)}
	for _, record := range records {
		size := int64(len(record.Key) + len(record.Value))
		usage.Bytes += size
		namespace, _, _ := SplitKey(record.Key)
		usage.Namespaces[namespace] += size
	}
	return usage, nil
}

// NamespaceIDs returns the namespaces that currently hold data, sorted.
func (u Usage) NamespaceIDs() []string {
	ids := make([]string, 0, len(u.Namespaces))
	for id := range u.Namespaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (a *Adapter) ensureSize(ctx context.Context) error {
	if a.sizeKnown {
		return nil
	}
	records, err := a.substrate.List(ctx, "")
	if err != nil {
		return a.unavailable("size", "*", err)
	}
	a.used = storage.Size(records)
	a.sizeKnown = true
	return nil
}

func (a *Adapter) unavailable(op, key string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	a.logger.Warn("store operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
	return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, op, key, err)
}

func (a *Adapter) record(op, result string) {
	if a.recorder == nil {
		return
	}
	a.recorder.StoreOp(op, result)
	if result == "ok" && op != "get" {
		a.recorder.SetStoreBytes(a.used)
	}
}

func (a *Adapter) publish(ctx context.Context, op, key, namespace string) {
	if a.publisher == nil {
		return
	}
	payload := map[string]string{"op": op}
	if key != "" {
		payload["key"] = key
		payload["namespace"] = namespace
	}
	a.publisher.Publish(ctx, events.TopicStoreChanged, payload)
}
