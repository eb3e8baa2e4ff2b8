package runtime_test

import (
	"context"
	"testing"

	"github.com/alitto/pond/v2"
	"github.com/neilotoole/slogt"

	"github.com/aretw0/pergola/internal/runtime"
	"github.com/aretw0/pergola/pkg/adapters/memory"
	"github.com/aretw0/pergola/pkg/domain"
	"github.com/aretw0/pergola/pkg/registry"
)

func twoStateDefinition() domain.Definition {
	return domain.Definition{
		Initial: "initial",
		States: map[string]map[string]domain.Transition{
			"initial": {
				"EVENT": {Target: "final"},
				"LOOP":  {Target: "initial", Actions: []string{"tick"}},
			},
			"final": {},
		},
	}
}

type harness struct {
	engine   *runtime.Engine
	recorder *memory.Recorder
	pool     pond.Pool
}

func newHarness(t *testing.T, def domain.Definition, hooks []domain.PluginDescriptor, diag runtime.Diagnostics, opts ...runtime.EngineOption) *harness {
	t.Helper()

	table, err := runtime.Resolve(def)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	reg, err := registry.New(def, hooks)
	if err != nil {
		t.Fatalf("registry.New failed: %v", err)
	}

	pool := pond.NewPool(4)
	t.Cleanup(pool.StopAndWait)

	notifier := runtime.NewNotifier()
	executor := runtime.NewExecutor(pool, notifier, slogt.New(t), diag, nil)
	engine := runtime.NewEngine(table, reg, executor, notifier, opts...)

	recorder := memory.NewRecorder()
	engine.Subscribe(recorder.Observer())

	return &harness{engine: engine, recorder: recorder, pool: pool}
}

func TestEngine_UnroutableEventIsSilentNoop(t *testing.T) {
	h := newHarness(t, twoStateDefinition(), nil, nil)

	err := h.engine.SendEvent(context.Background(), domain.InboundEvent{Type: "UNKNOWN"})
	if err != nil {
		t.Fatalf("SendEvent returned error: %v", err)
	}
	if got := h.engine.State(); got != "initial" {
		t.Errorf("state mutated by unroutable event: %s", got)
	}
	if n := h.recorder.Len(); n != 0 {
		t.Errorf("expected no domain events, got %d", n)
	}
}

func TestEngine_TransitionEmitsSingleStateChange(t *testing.T) {
	h := newHarness(t, twoStateDefinition(), nil, nil)

	payload := map[string]any{"some": "payload"}
	err := h.engine.SendEvent(context.Background(), domain.InboundEvent{Type: "EVENT", Payload: payload})
	if err != nil {
		t.Fatalf("SendEvent returned error: %v", err)
	}

	if got := h.engine.State(); got != "final" {
		t.Fatalf("expected state final, got %s", got)
	}

	events := h.recorder.Events()
	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d: %v", len(events), events)
	}
	ev := events[0]
	if ev.Type != "EVENT" || ev.State != "final" {
		t.Errorf("unexpected event shape: %+v", ev)
	}
	got, ok := ev.Payload.(map[string]any)
	if !ok || got["some"] != "payload" {
		t.Errorf("payload not carried: %+v", ev.Payload)
	}
}

func TestEngine_OmittedPayloadStaysAbsent(t *testing.T) {
	h := newHarness(t, twoStateDefinition(), nil, nil)

	if err := h.engine.SendEvent(context.Background(), domain.InboundEvent{Type: "EVENT"}); err != nil {
		t.Fatalf("SendEvent returned error: %v", err)
	}

	events := h.recorder.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].Payload != nil {
		t.Errorf("expected no payload, got %+v", events[0].Payload)
	}
}

func TestEngine_SelfTransitionSuppressesStateChange(t *testing.T) {
	var ticked int
	bindings := map[string]domain.ActionFunc{
		"tick": func(ctx context.Context, wctx *domain.WorkflowContext) error {
			ticked++
			return nil
		},
	}

	h := newHarness(t, twoStateDefinition(), nil, nil, runtime.WithActionBindings(bindings))

	if err := h.engine.SendEvent(context.Background(), domain.InboundEvent{Type: "LOOP"}); err != nil {
		t.Fatalf("SendEvent returned error: %v", err)
	}

	if ticked != 1 {
		t.Errorf("declared action should still run on self-transition, ran %d times", ticked)
	}
	if got := h.engine.State(); got != "initial" {
		t.Errorf("self-transition changed state: %s", got)
	}
	if n := h.recorder.Len(); n != 0 {
		t.Errorf("self-transition emitted %d events", n)
	}
}

func TestEngine_SelfTransitionStillRunsHooks(t *testing.T) {
	var pre, post int
	hooks := []domain.PluginDescriptor{
		{
			Name:     "pre-counter",
			Phase:    domain.PhasePre,
			States:   []string{"initial"},
			Blocking: true,
			Action: func(ctx context.Context, wctx *domain.WorkflowContext) error {
				pre++
				return nil
			},
		},
		{
			Name:     "post-counter",
			Phase:    domain.PhasePost,
			States:   []string{"initial"},
			Blocking: true,
			Action: func(ctx context.Context, wctx *domain.WorkflowContext) error {
				post++
				return nil
			},
		},
	}

	h := newHarness(t, twoStateDefinition(), hooks, nil)

	if err := h.engine.SendEvent(context.Background(), domain.InboundEvent{Type: "LOOP"}); err != nil {
		t.Fatalf("SendEvent returned error: %v", err)
	}

	if pre != 1 || post != 1 {
		t.Errorf("expected pre=1 post=1 on self-transition, got pre=%d post=%d", pre, post)
	}

	// Status events for the hooks are emitted; only the state change is suppressed.
	for _, ev := range h.recorder.Events() {
		if ev.Type == "LOOP" {
			t.Errorf("self-transition emitted a state change: %+v", ev)
		}
	}
}

func TestEngine_DeclaredActionsRunInOrder(t *testing.T) {
	def := domain.Definition{
		Initial: "a",
		States: map[string]map[string]domain.Transition{
			"a": {"GO": {Target: "b", Actions: []string{"first", "second", "unbound", "third"}}},
			"b": {},
		},
	}

	var order []string
	record := func(name string) domain.ActionFunc {
		return func(ctx context.Context, wctx *domain.WorkflowContext) error {
			order = append(order, name)
			return nil
		}
	}
	bindings := map[string]domain.ActionFunc{
		"first":  record("first"),
		"second": record("second"),
		"third":  record("third"),
	}

	h := newHarness(t, def, nil, nil, runtime.WithActionBindings(bindings))

	if err := h.engine.SendEvent(context.Background(), domain.InboundEvent{Type: "GO"}); err != nil {
		t.Fatalf("SendEvent returned error: %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected actions %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected actions %v, got %v", want, order)
		}
	}
}

func TestEngine_FailingDeclaredActionDoesNotStopTransition(t *testing.T) {
	def := domain.Definition{
		Initial: "a",
		States: map[string]map[string]domain.Transition{
			"a": {"GO": {Target: "b", Actions: []string{"boom", "after"}}},
			"b": {},
		},
	}

	var after bool
	bindings := map[string]domain.ActionFunc{
		"boom": func(ctx context.Context, wctx *domain.WorkflowContext) error {
			panic("declared action exploded")
		},
		"after": func(ctx context.Context, wctx *domain.WorkflowContext) error {
			after = true
			return nil
		},
	}

	h := newHarness(t, def, nil, nil, runtime.WithActionBindings(bindings))

	if err := h.engine.SendEvent(context.Background(), domain.InboundEvent{Type: "GO"}); err != nil {
		t.Fatalf("SendEvent returned error: %v", err)
	}
	if !after {
		t.Error("action after the failing one did not run")
	}
	if got := h.engine.State(); got != "b" {
		t.Errorf("transition aborted by failing action, state=%s", got)
	}
}

func TestEngine_InitialContextOverridesDefinition(t *testing.T) {
	seeded := domain.NewWorkflowContext("final")
	seeded.Payload["kept"] = true

	h := newHarness(t, twoStateDefinition(), nil, nil, runtime.WithContext(seeded))

	if got := h.engine.State(); got != "final" {
		t.Fatalf("expected seeded state final, got %s", got)
	}
	snap := h.engine.Context()
	if snap.Payload["kept"] != true {
		t.Errorf("seeded payload lost: %+v", snap.Payload)
	}
}
