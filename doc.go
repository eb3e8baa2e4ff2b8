/*
Package pergola is a finite-state-machine execution runtime that advances
a named workflow state in response to discrete external events, while
state-scoped hooks run surrounding business logic under one of two
execution policies: strictly ordered ("blocking") or detached
fire-and-forget ("non-blocking").

A failing hook can never abort or corrupt a transition. The host observes
a single, ordered stream of domain events and persists from it whatever
it needs; the runtime itself stores nothing.

# Concept

The machine consumes an already-resolved transition table (state -> event
type -> target state plus declared actions). Hooks are registered against
states and a phase (pre, on the departing state; post, on the entered
state). Blocking hooks are run sequentially with PENDING/SUCCESS/ERROR
status events; non-blocking hooks are launched on a detached worker pool
and their failures are discarded, visible only on an optional diagnostic
seam.

One machine owns one workflow context. Callers serialize SendEvent calls;
there is no internal queue, no retry policy, and no hook timeout. A
stalled blocking hook stalls the transition: that is a documented
limitation, not an oversight.

# Usage

	def := domain.Definition{
		Initial: "pending",
		States: map[string]map[string]domain.Transition{
			"pending": {"SUBMIT": {Target: "review", Actions: []string{"record"}}},
			"review":  {},
		},
	}

	machine, err := pergola.New(def,
		pergola.WithHooks(domain.PluginDescriptor{
			Name:     "audit",
			Phase:    domain.PhasePost,
			States:   []string{"review"},
			Blocking: true,
			Action: func(ctx context.Context, wctx *domain.WorkflowContext) error {
				return nil
			},
		}),
	)
	if err != nil {
		log.Fatal(err) // only configuration errors are fatal
	}
	defer machine.Close()

	machine.Subscribe(func(ev domain.Event) {
		log.Println("event:", ev.Type, ev.State)
	})

	_ = machine.SendEvent(ctx, domain.InboundEvent{Type: "SUBMIT"})
*/
package pergola
