package navigation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/lifeos/internal/lifeos/events"
	"github.com/louisbranch/lifeos/internal/lifeos/registry"
	"github.com/louisbranch/lifeos/internal/lifeos/store"
	"github.com/louisbranch/lifeos/internal/storage/memory"
)

type fixture struct {
	controller *Controller
	adapter    *store.Adapter
	bus        *events.Bus
	recorder   *fakeRecorder
	published  *[]events.Event
}

type fakeRecorder struct {
	mu       sync.Mutex
	switches []string
	over     int
	failures []string
}

func (r *fakeRecorder) ObserveSwitch(module, kind string, _ time.Duration, overBudget bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.switches = append(r.switches, module+":"+kind)
	if overBudget {
		r.over++
	}
}

func (r *fakeRecorder) SwitchFailed(module, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, module+":"+outcome)
}

func staticContent(summary string) registry.ContentFunc {
	return func(context.Context) (registry.Content, error) {
		return registry.Content{Summary: summary}, nil
	}
}

func newFixture(t *testing.T, clock func() time.Time) fixture {
	t.Helper()
	modules := registry.NewModules()
	descs := []registry.ModuleDescriptor{
		{ID: "fitness", Label: "Fitness", Summary: "Fitness Tracker", ActionLabel: "Open Fitness App", ExternalURL: "/apps/fitness/", Render: staticContent("Fitness Tracker")},
		{ID: "todo", Label: "To-Do List", Summary: "To-Do List Manager", ActionLabel: "Open To-Do App", ExternalURL: "/apps/todo/", Render: staticContent("To-Do List Manager")},
		{ID: "investments", Label: "Investments", Summary: "Investment Dashboard", ActionLabel: "Open Investments Dashboard", ExternalURL: "/apps/investments/", Render: staticContent("Investment Dashboard")},
		{ID: "habits", Label: "Habits", Summary: "Habit Tracker", Render: staticContent("Habit Tracker")},
		{ID: "goals", Label: "Goals", Summary: "Goal Planner", Render: staticContent("Goal Planner")},
		{ID: "journal", Label: "Journal", Summary: "Daily Journal", Description: "Write", Render: func(context.Context) (registry.Content, error) {
			return registry.Content{}, errors.New("render exploded")
		}},
	}
	for _, desc := range descs {
		if err := modules.Register(desc); err != nil {
			t.Fatalf("register %s: %v", desc.ID, err)
		}
	}
	modules.Freeze()

	bus := events.NewBus()
	published := &[]events.Event{}
	bus.SubscribeAll(func(_ context.Context, evt events.Event) { *published = append(*published, evt) })

	adapter, err := store.New(memory.New(), store.Options{Publisher: bus})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	recorder := &fakeRecorder{}
	controller, err := NewController(modules, adapter, Options{Publisher: bus, Recorder: recorder, Clock: clock})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return fixture{controller: controller, adapter: adapter, bus: bus, recorder: recorder, published: published}
}

func topics(evts []events.Event) []events.Topic {
	out := make([]events.Topic, 0, len(evts))
	for _, evt := range evts {
		out = append(out, evt.Topic)
	}
	return out
}

func TestActivateRendersSummary(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		id      string
		summary string
	}{
		{id: "todo", summary: "To-Do List Manager"},
		{id: "fitness", summary: "Fitness Tracker"},
		{id: "investments", summary: "Investment Dashboard"},
	}
	for _, tt := range tests {
		transition, err := f.controller.Activate(ctx, tt.id)
		if err != nil {
			t.Fatalf("activate %s: %v", tt.id, err)
		}
		if transition.Content.Summary != tt.summary {
			t.Fatalf("summary = %q, want %q", transition.Content.Summary, tt.summary)
		}
		if got := f.controller.State().ModuleID; got != tt.id {
			t.Fatalf("active = %q, want %q", got, tt.id)
		}
	}
}

func TestActivateUnknownModuleLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.controller.Activate(ctx, "habits"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	before := f.controller.State()
	publishedBefore := len(*f.published)

	_, err := f.controller.Activate(ctx, "nonexistent")
	if !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("error = %v, want ErrModuleNotFound", err)
	}
	if after := f.controller.State(); after != before {
		t.Fatalf("state changed: %+v -> %+v", before, after)
	}
	if len(*f.published) != publishedBefore {
		t.Fatalf("unknown activation published %v", topics((*f.published)[publishedBefore:]))
	}
	if len(f.recorder.failures) != 1 || f.recorder.failures[0] != "nonexistent:not_found" {
		t.Fatalf("failures = %v", f.recorder.failures)
	}
}

func TestRapidActivationsEndOnLastCall(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	sequence := []string{"todo", "fitness", "investments", "todo", "goals", "habits"}
	var last Transition
	for _, id := range sequence {
		transition, err := f.controller.Activate(ctx, id)
		if err != nil {
			t.Fatalf("activate %s: %v", id, err)
		}
		if transition.State.Seq <= last.State.Seq {
			t.Fatalf("seq did not increase: %d after %d", transition.State.Seq, last.State.Seq)
		}
		last = transition
	}
	state := f.controller.State()
	if state.ModuleID != "habits" || state.Seq != uint64(len(sequence)) {
		t.Fatalf("state = %+v", state)
	}
}

func TestConcurrentActivationsAreSerialised(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	ids := []string{"todo", "fitness", "habits", "goals", "investments"}

	var mu sync.Mutex
	results := make([]Transition, 0, 50)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			transition, err := f.controller.Activate(ctx, id)
			if err != nil {
				t.Errorf("activate: %v", err)
				return
			}
			mu.Lock()
			results = append(results, transition)
			mu.Unlock()
		}(ids[i%len(ids)])
	}
	wg.Wait()

	var lastApplied Transition
	for _, r := range results {
		if r.State.Seq > lastApplied.State.Seq {
			lastApplied = r
		}
		if r.Content.Summary == "" {
			t.Fatalf("transition %d rendered no content", r.State.Seq)
		}
	}
	if state := f.controller.State(); state.ModuleID != lastApplied.State.ModuleID || state.Seq != 50 {
		t.Fatalf("state = %+v, last applied = %+v", state, lastApplied.State)
	}
}

func TestActivateMeetsLatencyBudgets(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.controller.Activate(ctx, "habits")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !first.First || first.OverBudget || first.Latency > FirstBudget {
		t.Fatalf("first activation = %+v", first)
	}
	if _, err := f.controller.Activate(ctx, "goals"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	repeat, err := f.controller.Activate(ctx, "habits")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if repeat.First || repeat.OverBudget || repeat.Latency > RepeatBudget {
		t.Fatalf("repeat activation = %+v", repeat)
	}
	want := []string{"habits:first", "goals:first", "habits:repeat"}
	for i, s := range want {
		if f.recorder.switches[i] != s {
			t.Fatalf("switches = %v, want %v", f.recorder.switches, want)
		}
	}
}

func TestSlowSwitchIsFlaggedOverBudget(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(150 * time.Millisecond)
		return now
	}
	f := newFixture(t, clock)
	transition, err := f.controller.Activate(context.Background(), "todo")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if transition.OverBudget {
		t.Fatalf("first activation within 500ms flagged: %v", transition.Latency)
	}
	if _, err := f.controller.Activate(context.Background(), "fitness"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	again, err := f.controller.Activate(context.Background(), "todo")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !again.OverBudget || f.recorder.over != 1 {
		t.Fatalf("repeat switch latency %v should exceed %v", again.Latency, RepeatBudget)
	}
}

func TestLastSwitchStrictlyIncreasesWithFrozenClock(t *testing.T) {
	t.Parallel()

	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, func() time.Time { return frozen })
	ctx := context.Background()

	var previous time.Time
	for _, id := range []string{"todo", "habits", "todo"} {
		transition, err := f.controller.Activate(ctx, id)
		if err != nil {
			t.Fatalf("activate: %v", err)
		}
		if !transition.State.LastSwitch.After(previous) {
			t.Fatalf("LastSwitch %v not after %v", transition.State.LastSwitch, previous)
		}
		previous = transition.State.LastSwitch
	}
	state, err := f.controller.Deactivate(ctx)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if !state.LastSwitch.After(previous) {
		t.Fatal("deactivate did not advance LastSwitch")
	}
}

func TestPersistsOnlyInShellModules(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.controller.Activate(ctx, "habits"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	assertPersisted(t, f.adapter, `"habits"`)

	transition, err := f.controller.Activate(ctx, "todo")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !transition.State.External {
		t.Fatal("todo should be flagged external")
	}
	assertPersisted(t, f.adapter, `"habits"`)

	if _, err := f.controller.Deactivate(ctx); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	value, err := f.adapter.Get(ctx, "shell.activeModule")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !value.IsAbsent() {
		t.Fatalf("deactivate kept persisted module %s", value)
	}
	if f.controller.State().Active() {
		t.Fatal("expected no active module")
	}
}

func assertPersisted(t *testing.T, adapter *store.Adapter, want string) {
	t.Helper()
	value, err := adapter.Get(context.Background(), "shell.activeModule")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value.String() != want {
		t.Fatalf("persisted = %s, want %s", value, want)
	}
}

func TestPublishesTransitionEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.controller.Activate(ctx, "goals"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := f.controller.Deactivate(ctx); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got := topics(*f.published)
	want := []events.Topic{
		events.TopicStoreChanged,
		events.TopicModuleActivated,
		events.TopicStoreChanged,
		events.TopicModuleDeactivated,
	}
	if len(got) != len(want) {
		t.Fatalf("topics = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("topics = %v, want %v", got, want)
		}
	}
	if (*f.published)[1].Payload["module"] != "goals" {
		t.Fatalf("activated payload = %v", (*f.published)[1].Payload)
	}
}

func TestRenderFailureDegradesToFallback(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	transition, err := f.controller.Activate(context.Background(), "journal")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !transition.Degraded || transition.Content.Summary != "Daily Journal" || transition.Content.Description != "Write" {
		t.Fatalf("transition = %+v", transition)
	}
	if f.controller.State().ModuleID != "journal" {
		t.Fatal("degraded render should still activate the module")
	}
}

func TestHandOff(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	url, err := f.controller.HandOff(ctx, "todo")
	if err != nil {
		t.Fatalf("hand-off: %v", err)
	}
	if url != "/apps/todo/" {
		t.Fatalf("url = %q", url)
	}
	if state := f.controller.State(); state.ModuleID != "todo" || !state.External {
		t.Fatalf("state = %+v", state)
	}
	got := topics(*f.published)
	if got[len(got)-1] != events.TopicModuleHandoff {
		t.Fatalf("topics = %v", got)
	}

	if _, err := f.controller.HandOff(ctx, "habits"); !errors.Is(err, ErrNotExternal) {
		t.Fatalf("in-shell hand-off error = %v", err)
	}
	if _, err := f.controller.HandOff(ctx, "nope"); !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("unknown hand-off error = %v", err)
	}
}

func TestRestore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("nothing persisted", func(t *testing.T) {
		f := newFixture(t, nil)
		_, ok, err := f.controller.Restore(ctx)
		if err != nil || ok {
			t.Fatalf("restore = %v, %v", ok, err)
		}
	})

	t.Run("in-shell module", func(t *testing.T) {
		f := newFixture(t, nil)
		if err := f.adapter.Set(ctx, "shell.activeModule", "goals"); err != nil {
			t.Fatalf("seed: %v", err)
		}
		transition, ok, err := f.controller.Restore(ctx)
		if err != nil || !ok {
			t.Fatalf("restore = %v, %v", ok, err)
		}
		if transition.State.ModuleID != "goals" || transition.Content.Summary != "Goal Planner" {
			t.Fatalf("transition = %+v", transition)
		}
	})

	for _, stale := range []any{"removed-module", "todo", 42} {
		f := newFixture(t, nil)
		if err := f.adapter.Set(ctx, "shell.activeModule", stale); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, ok, err := f.controller.Restore(ctx)
		if err != nil || ok {
			t.Fatalf("restore %v = %v, %v", stale, ok, err)
		}
		value, _ := f.adapter.Get(ctx, "shell.activeModule")
		if !value.IsAbsent() {
			t.Fatalf("stale marking %v kept", stale)
		}
	}
}

func TestSubscribersReadStateDuringPublish(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	seen := make(chan State, 2)
	f.bus.Subscribe(events.TopicModuleActivated, func(context.Context, events.Event) { seen <- f.controller.State() })
	f.bus.Subscribe(events.TopicModuleDeactivated, func(context.Context, events.Event) { seen <- f.controller.State() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx := context.Background()
		if _, err := f.controller.Activate(ctx, "habits"); err != nil {
			t.Errorf("activate: %v", err)
		}
		if _, err := f.controller.Deactivate(ctx); err != nil {
			t.Errorf("deactivate: %v", err)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("transition blocked on a subscriber reading State")
	}

	if got := <-seen; got.ModuleID != "habits" || got.Seq != 1 {
		t.Fatalf("state seen on activation = %+v", got)
	}
	if got := <-seen; got.Active() || got.Seq != 2 {
		t.Fatalf("state seen on deactivation = %+v", got)
	}
}

func TestNavigationEventsCarrySeqAndOrigin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := WithOrigin(context.Background(), "tab-1")
	if _, err := f.controller.Activate(ctx, "goals"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := f.controller.Activate(context.Background(), "habits"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	var activated []events.Event
	for _, evt := range *f.published {
		if evt.Topic == events.TopicModuleActivated {
			activated = append(activated, evt)
		}
	}
	if len(activated) != 2 {
		t.Fatalf("activated events = %d, want 2", len(activated))
	}
	if p := activated[0].Payload; p["seq"] != "1" || p["origin"] != "tab-1" {
		t.Fatalf("first payload = %v", p)
	}
	if p := activated[1].Payload; p["seq"] != "2" || p["origin"] != "" {
		t.Fatalf("second payload = %v", p)
	}
	if OriginFrom(context.Background()) != "" {
		t.Fatal("origin without WithOrigin should be empty")
	}
}
