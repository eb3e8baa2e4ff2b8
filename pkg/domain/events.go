package domain

// InboundEvent is an external stimulus submitted to a machine.
// It is immutable once submitted.
type InboundEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Reserved domain event types. A state-change event carries the inbound
// event's own type instead.
const (
	// EventActionStatus reports the lifecycle of a blocking hook.
	EventActionStatus = "STATE_ACTION_STATUS"

	// EventHookError reports a contained blocking-hook failure.
	EventHookError = "ERROR"
)

// HookStatus is the reported phase of a blocking hook execution.
type HookStatus string

const (
	StatusPending HookStatus = "PENDING"
	StatusSuccess HookStatus = "SUCCESS"
	StatusError   HookStatus = "ERROR"
)

// ActionStatus is the payload of an EventActionStatus event.
type ActionStatus struct {
	Status HookStatus `json:"status"`
	Action string     `json:"action"`
}

// Event is the only externally observable output of the runtime,
// delivered to the single active subscriber in production order.
//
// Shapes:
//   - state change: Type = inbound event type, State = new state,
//     Payload = inbound payload when one was carried.
//   - EventActionStatus: Payload = ActionStatus, Error set on failure.
//   - EventHookError: Error = contained failure message.
type Event struct {
	Type    string `json:"type"`
	State   string `json:"state"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Observer receives domain events. See the notifier's replace-on-subscribe
// contract: only the most recently registered observer is invoked.
type Observer func(Event)
