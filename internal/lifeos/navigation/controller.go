// Package navigation owns the active-module state of the dashboard shell.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/louisbranch/lifeos/internal/lifeos/events"
	"github.com/louisbranch/lifeos/internal/lifeos/registry"
	"github.com/louisbranch/lifeos/internal/lifeos/store"
	"github.com/louisbranch/lifeos/internal/platform/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ActiveModuleField is the shell namespace field holding the last in-shell
// module.
const ActiveModuleField = "activeModule"

const (
	// RepeatBudget bounds a switch to a module that was shown before.
	RepeatBudget = 200 * time.Millisecond
	// FirstBudget bounds the first activation of a module.
	FirstBudget = 500 * time.Millisecond
)

var (
	// ErrModuleNotFound indicates an id absent from the module registry.
	ErrModuleNotFound = errors.New("module not found")
	// ErrNotExternal indicates a hand-off to a module rendered in the shell.
	ErrNotExternal = errors.New("module has no external entry point")
)

// State is the navigation state. An empty ModuleID means no module is active.
type State struct {
	ModuleID   string
	External   bool
	Seq        uint64
	LastSwitch time.Time
}

// Active reports whether a module is active.
func (s State) Active() bool {
	return s.ModuleID != ""
}

// Transition describes one applied activation.
type Transition struct {
	State      State
	Previous   State
	Module     registry.ModuleDescriptor
	Content    registry.Content
	Latency    time.Duration
	First      bool
	OverBudget bool
	// Degraded is set when the renderer failed and fallback content is shown.
	Degraded bool
}

// Recorder receives navigation metrics.
type Recorder interface {
	ObserveSwitch(module, kind string, elapsed time.Duration, overBudget bool)
	SwitchFailed(module, outcome string)
}

// Options configures a Controller.
type Options struct {
	Publisher events.Publisher
	Recorder  Recorder
	Logger    *zap.Logger
	Clock     func() time.Time
}

// Controller applies module switches one at a time in arrival order.
// Navigation events are published after the state is updated and while no
// state lock is held, so subscribers may call State; they must not start a
// transition themselves.
type Controller struct {
	modules   *registry.Modules
	shell     store.Namespace
	publisher events.Publisher
	recorder  Recorder
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time

	// mu serialises transitions and guards activated.
	mu        sync.Mutex
	activated map[string]bool

	stateMu sync.RWMutex
	state   State
}

type originKey struct{}

// WithOrigin tags transitions started with ctx with the client that asked for
// them. The origin is echoed in navigation event payloads.
func WithOrigin(ctx context.Context, origin string) context.Context {
	if origin == "" {
		return ctx
	}
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFrom returns the origin set by WithOrigin.
func OriginFrom(ctx context.Context) string {
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}

// NewController creates a controller with NoModuleActive.
func NewController(modules *registry.Modules, adapter *store.Adapter, opts Options) (*Controller, error) {
	if modules == nil {
		return nil, errors.New("module registry is required")
	}
	if adapter == nil {
		return nil, errors.New("store adapter is required")
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Controller{
		modules:   modules,
		shell:     adapter.Namespace(store.ShellNamespace),
		publisher: opts.Publisher,
		recorder:  opts.Recorder,
		logger:    logging.OrNop(opts.Logger).Named("navigation"),
		tracer:    otel.Tracer("github.com/louisbranch/lifeos/internal/lifeos/navigation"),
		now:       now,
		activated: make(map[string]bool),
	}, nil
}

// State returns a snapshot of the navigation state.
func (c *Controller) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Controller) setState(state State) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
}

// Activate makes id the active module and renders its content. Unknown ids
// fail with ErrModuleNotFound and leave the state untouched.
func (c *Controller) Activate(ctx context.Context, id string) (Transition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activateLocked(ctx, id)
}

// Deactivate returns to NoModuleActive and clears the persisted marking.
func (c *Controller) Deactivate(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.state
	next := State{Seq: previous.Seq + 1, LastSwitch: c.nextSwitchTime(previous.LastSwitch)}
	c.setState(next)
	if err := c.shell.Remove(ctx, ActiveModuleField); err != nil {
		c.logger.Warn("clear persisted module", zap.Error(err))
	}
	c.publish(ctx, events.TopicModuleDeactivated, next, map[string]string{"previous": previous.ModuleID})
	return next, nil
}

// HandOff selects an external-entry module and returns its entry URL. The
// caller performs the one-time navigation to that URL.
func (c *Controller) HandOff(ctx context.Context, id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	desc, ok := c.modules.Resolve(id)
	if !ok {
		c.recordFailure(id, "not_found")
		return "", fmt.Errorf("%w: %q", ErrModuleNotFound, id)
	}
	if !desc.External() {
		return "", fmt.Errorf("%w: %q", ErrNotExternal, id)
	}
	if c.state.ModuleID != id {
		if _, err := c.activateLocked(ctx, id); err != nil {
			return "", err
		}
	}
	c.publish(ctx, events.TopicModuleHandoff, c.state, map[string]string{"module": id, "url": desc.ExternalURL})
	c.logger.Info("module hand-off", zap.String("module", id), zap.String("url", desc.ExternalURL))
	return desc.ExternalURL, nil
}

// Restore reactivates the persisted in-shell module. It reports false when
// nothing usable was persisted.
func (c *Controller) Restore(ctx context.Context) (Transition, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, err := c.shell.Get(ctx, ActiveModuleField)
	if err != nil {
		return Transition{}, false, err
	}
	if value.IsAbsent() {
		return Transition{}, false, nil
	}
	var id string
	if err := value.Decode(&id); err != nil {
		c.logger.Warn("discard unreadable persisted module", zap.Error(err))
		_ = c.shell.Remove(ctx, ActiveModuleField)
		return Transition{}, false, nil
	}
	desc, ok := c.modules.Resolve(id)
	if !ok || desc.External() {
		c.logger.Info("discard stale persisted module", zap.String("module", id))
		_ = c.shell.Remove(ctx, ActiveModuleField)
		return Transition{}, false, nil
	}
	transition, err := c.activateLocked(ctx, id)
	if err != nil {
		return Transition{}, false, err
	}
	return transition, true, nil
}

func (c *Controller) activateLocked(ctx context.Context, id string) (Transition, error) {
	ctx, span := c.tracer.Start(ctx, "navigation.activate", trace.WithAttributes(attribute.String("lifeos.module", id)))
	defer span.End()

	start := c.now()
	desc, ok := c.modules.Resolve(id)
	if !ok {
		c.recordFailure(id, "not_found")
		span.SetStatus(codes.Error, "module not found")
		return Transition{}, fmt.Errorf("%w: %q", ErrModuleNotFound, id)
	}

	transition := Transition{Previous: c.state, Module: desc, First: !c.activated[id]}
	content, err := desc.Render(ctx)
	if err != nil {
		c.logger.Warn("module render failed, showing fallback", zap.String("module", id), zap.Error(err))
		span.RecordError(err)
		content = desc.Fallback()
		transition.Degraded = true
	}
	transition.Content = content

	c.setState(State{
		ModuleID:   id,
		External:   desc.External(),
		Seq:        c.state.Seq + 1,
		LastSwitch: c.nextSwitchTime(c.state.LastSwitch),
	})
	c.activated[id] = true
	transition.State = c.state

	if !desc.External() {
		if err := c.shell.Set(ctx, ActiveModuleField, id); err != nil {
			c.logger.Warn("persist active module", zap.String("module", id), zap.Error(err))
		}
	}
	c.publish(ctx, events.TopicModuleActivated, transition.State, map[string]string{
		"module":   id,
		"external": fmt.Sprint(desc.External()),
	})

	transition.Latency = c.now().Sub(start)
	kind, budget := "repeat", RepeatBudget
	if transition.First {
		kind, budget = "first", FirstBudget
	}
	transition.OverBudget = transition.Latency > budget
	if transition.OverBudget {
		c.logger.Warn("module switch over budget",
			zap.String("module", id),
			zap.String("kind", kind),
			zap.Duration("latency", transition.Latency),
			zap.Duration("budget", budget),
		)
	}
	if c.recorder != nil {
		c.recorder.ObserveSwitch(id, kind, transition.Latency, transition.OverBudget)
	}
	span.SetAttributes(attribute.Int64("lifeos.switch_latency_us", transition.Latency.Microseconds()))
	return transition, nil
}

// nextSwitchTime keeps LastSwitch strictly increasing even when the clock
// does not advance between transitions.
func (c *Controller) nextSwitchTime(previous time.Time) time.Time {
	now := c.now()
	if !now.After(previous) {
		return previous.Add(time.Nanosecond)
	}
	return now
}

func (c *Controller) recordFailure(id, outcome string) {
	if c.recorder != nil {
		c.recorder.SwitchFailed(id, outcome)
	}
}

// publish announces a transition. It runs with mu held so events keep the
// transition order, but never with stateMu held.
func (c *Controller) publish(ctx context.Context, topic events.Topic, state State, payload map[string]string) {
	if c.publisher == nil {
		return
	}
	payload["seq"] = strconv.FormatUint(state.Seq, 10)
	if origin := OriginFrom(ctx); origin != "" {
		payload["origin"] = origin
	}
	c.publisher.Publish(ctx, topic, payload)
}
