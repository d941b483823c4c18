// Package bridge coordinates the background services the browser offers:
// the service worker registration and the notification permission. It never
// blocks or fails shell startup; outcomes are recorded as capability states.
package bridge

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/lifeos/internal/lifeos/events"
	"github.com/louisbranch/lifeos/internal/lifeos/store"
	"github.com/louisbranch/lifeos/internal/platform/logging"
	"go.uber.org/zap"
)

// Capability is the tri-state outcome of a capability probe.
type Capability string

const (
	CapabilityUnknown     Capability = "unknown"
	CapabilityAvailable   Capability = "available"
	CapabilityUnavailable Capability = "unavailable"
	CapabilityDenied      Capability = "denied"
)

// Notification permission values reported by the browser.
const (
	PermissionGranted     = "granted"
	PermissionDenied      = "denied"
	PermissionDefault     = "default"
	PermissionUnsupported = "unsupported"
)

// ErrNoUserAction indicates a permission request without a user gesture.
var ErrNoUserAction = errors.New("notification permission must follow a user action")

// Status is the snapshot served to the UI.
type Status struct {
	Started            bool       `json:"started"`
	ServiceWorker      Capability `json:"serviceWorker"`
	ServiceWorkerError string     `json:"serviceWorkerError,omitempty"`
	Notifications      Capability `json:"notifications"`
	SecureContext      bool       `json:"secureContext"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// ServiceWorkerReport is the registration outcome reported by the browser.
type ServiceWorkerReport struct {
	Supported  bool   `json:"supported"`
	Registered bool   `json:"registered"`
	Scope      string `json:"scope,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Recorder receives reminder metrics.
type Recorder interface {
	Reminder(outcome string)
}

// Options configures a Bridge.
type Options struct {
	// PublicURL is the origin the browser loads the shell from.
	PublicURL string
	// ScriptPresent reports whether the service worker script is served.
	ScriptPresent func() bool
	// Modules lists the namespaces scanned for reminders.
	Modules      []string
	PollInterval time.Duration
	Publisher    events.Publisher
	Recorder     Recorder
	Logger       *zap.Logger
	Clock        func() time.Time
	NewID        func() (string, error)
}

// Bridge holds capability state and runs the reminder scheduler.
type Bridge struct {
	adapter   *store.Adapter
	publicURL string
	script    func() bool
	modules   []string
	poll      time.Duration
	publisher events.Publisher
	recorder  Recorder
	logger    *zap.Logger
	now       func() time.Time
	newID     func() (string, error)

	once   sync.Once
	mu     sync.RWMutex
	status Status
	wg     sync.WaitGroup
}

// New creates a bridge. Nothing is probed until Start.
func New(adapter *store.Adapter, opts Options) (*Bridge, error) {
	if adapter == nil {
		return nil, errors.New("store adapter is required")
	}
	b := &Bridge{
		adapter:   adapter,
		publicURL: opts.PublicURL,
		script:    opts.ScriptPresent,
		modules:   append([]string(nil), opts.Modules...),
		poll:      opts.PollInterval,
		publisher: opts.Publisher,
		recorder:  opts.Recorder,
		logger:    logging.OrNop(opts.Logger).Named("bridge"),
		now:       opts.Clock,
		newID:     opts.NewID,
		status: Status{
			ServiceWorker: CapabilityUnknown,
			Notifications: CapabilityUnknown,
		},
	}
	if b.poll <= 0 {
		b.poll = 30 * time.Second
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.script == nil {
		b.script = func() bool { return true }
	}
	return b, nil
}

// Start probes service worker support and starts the reminder scheduler. It
// runs once per process; later calls are no-ops. The scheduler stops when ctx
// is canceled.
func (b *Bridge) Start(ctx context.Context) {
	b.once.Do(func() {
		secure := IsSecureOrigin(b.publicURL)
		capability := CapabilityUnavailable
		reason := ""
		switch {
		case !secure:
			reason = "insecure context"
		case !b.script():
			reason = "service worker script missing"
		default:
			capability = CapabilityAvailable
		}

		b.mu.Lock()
		b.status.Started = true
		b.status.SecureContext = secure
		b.status.ServiceWorker = capability
		b.status.ServiceWorkerError = reason
		b.status.UpdatedAt = b.now().UTC()
		b.mu.Unlock()

		b.logger.Info("background services probed",
			zap.String("service_worker", string(capability)),
			zap.Bool("secure_context", secure),
			zap.String("reason", reason),
		)

		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.runScheduler(ctx)
		}()
	})
}

// Wait blocks until the scheduler started by Start has stopped.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

// ReportServiceWorker records the browser's registration outcome.
func (b *Bridge) ReportServiceWorker(report ServiceWorkerReport) Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case !report.Supported:
		b.status.ServiceWorker = CapabilityUnavailable
		b.status.ServiceWorkerError = "not supported by browser"
	case report.Registered:
		b.status.ServiceWorker = CapabilityAvailable
		b.status.ServiceWorkerError = ""
	default:
		b.status.ServiceWorker = CapabilityUnavailable
		b.status.ServiceWorkerError = strings.TrimSpace(report.Error)
	}
	b.status.UpdatedAt = b.now().UTC()
	if b.status.ServiceWorker != CapabilityAvailable {
		b.logger.Warn("service worker unavailable", zap.String("reason", b.status.ServiceWorkerError))
	}
	return b.status
}

// RecordNotificationPermission records the permission the browser returned
// for a request triggered by action. Denial is a state, not an error.
func (b *Bridge) RecordNotificationPermission(action, permission string) (Capability, error) {
	if strings.TrimSpace(action) == "" {
		return CapabilityUnknown, ErrNoUserAction
	}
	capability := CapabilityUnavailable
	switch strings.ToLower(strings.TrimSpace(permission)) {
	case PermissionGranted:
		capability = CapabilityAvailable
	case PermissionDenied, PermissionDefault:
		capability = CapabilityDenied
	}

	b.mu.Lock()
	b.status.Notifications = capability
	b.status.UpdatedAt = b.now().UTC()
	b.mu.Unlock()

	b.logger.Info("notification permission recorded",
		zap.String("action", action),
		zap.String("permission", permission),
		zap.String("capability", string(capability)),
	)
	return capability, nil
}

// Status returns the current capability snapshot.
func (b *Bridge) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// IsSecureOrigin reports whether a browser would expose service workers on
// rawURL: https, or http on a loopback host.
func IsSecureOrigin(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme == "https" {
		return true
	}
	if u.Scheme != "http" {
		return false
	}
	host := u.Hostname()
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
