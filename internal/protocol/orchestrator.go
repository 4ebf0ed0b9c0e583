package protocol

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the orchestrator's position in the request lifecycle.
type State int

const (
	StateIdle State = iota
	StatePinging
	StateInjecting
	StateDispatched
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePinging:
		return "pinging"
	case StateInjecting:
		return "injecting"
	case StateDispatched:
		return "dispatched"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Injector imperatively installs the executor into the target context. Only
// invoked lazily, after the first liveness probe goes unanswered.
type Injector interface {
	Inject(ctx context.Context) error
}

// InjectorFunc adapts a function to the Injector interface.
type InjectorFunc func(ctx context.Context) error

func (f InjectorFunc) Inject(ctx context.Context) error { return f(ctx) }

// DebugHooks is the narrow debug-facing surface of the orchestrator. It is
// passed in explicitly; nothing here is reachable globally.
type DebugHooks struct {
	// OnTransition observes every state change.
	OnTransition func(from, to State)
	// OnIgnored observes frames discarded for a stale or unexpected
	// correlation ID.
	OnIgnored func(msg Message)
}

// Config bounds the orchestrator's waits.
type Config struct {
	// PingTimeout bounds the wait for a PONG after each probe.
	PingTimeout time.Duration
	// InjectSettle is the fixed wait after a successful injection before
	// the single re-probe.
	InjectSettle time.Duration
	// DispatchTimeout bounds the wait for a correlated extraction response.
	DispatchTimeout time.Duration
}

// DefaultConfig returns the standard protocol bounds.
func DefaultConfig() Config {
	return Config{
		PingTimeout:     2 * time.Second,
		InjectSettle:    300 * time.Millisecond,
		DispatchTimeout: 10 * time.Second,
	}
}

// Orchestrator drives one capture request against one target context:
// handshake (probe, lazy inject, re-probe), then dispatch with a fresh
// correlation ID, a bounded timeout, and a single timeout-only retry.
type Orchestrator struct {
	conn     Conn
	injector Injector
	cfg      Config
	hooks    DebugHooks
	newID    func() string
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithConfig overrides the protocol bounds.
func WithConfig(cfg Config) OrchestratorOption {
	return func(o *Orchestrator) { o.cfg = cfg }
}

// WithDebugHooks installs the debug observation surface.
func WithDebugHooks(hooks DebugHooks) OrchestratorOption {
	return func(o *Orchestrator) { o.hooks = hooks }
}

// WithIDGenerator overrides correlation ID generation (tests).
func WithIDGenerator(gen func() string) OrchestratorOption {
	return func(o *Orchestrator) { o.newID = gen }
}

// NewOrchestrator creates an orchestrator over the given connection.
// Correlation IDs are random UUIDs; collision probability is negligible.
func NewOrchestrator(conn Conn, injector Injector, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		conn:     conn,
		injector: injector,
		cfg:      DefaultConfig(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Capture runs one full request lifecycle. On failure the returned error is
// always a *Failure carrying its tagged reason.
func (o *Orchestrator) Capture(ctx context.Context) (*Payload, error) {
	state := StateIdle

	transition := func(to State) {
		if o.hooks.OnTransition != nil {
			o.hooks.OnTransition(state, to)
		}
		zap.L().Debug("protocol transition",
			zap.Stringer("from", state),
			zap.Stringer("to", to),
		)
		state = to
	}

	fail := func(f *Failure) (*Payload, error) {
		transition(StateFailed)
		return nil, f
	}

	// Handshake. The executor may not be installed yet: probe, then inject
	// once, settle, and probe exactly once more.
	transition(StatePinging)
	alive, err := o.ping(ctx)
	if err != nil {
		return fail(failf(ReasonUnknown, err, "liveness probe failed"))
	}
	if !alive {
		transition(StateInjecting)
		if err := o.injector.Inject(ctx); err != nil {
			return fail(failf(ReasonInjectionFailed, err, "executor install rejected"))
		}
		if err := o.sleep(ctx, o.cfg.InjectSettle); err != nil {
			return fail(failf(ReasonUnknown, err, "injection settle interrupted"))
		}

		transition(StatePinging)
		alive, err = o.ping(ctx)
		if err != nil {
			return fail(failf(ReasonUnknown, err, "liveness probe failed"))
		}
		if !alive {
			return fail(failf(ReasonNoExecutor, nil, "no acknowledgement after injection"))
		}
	}

	// Dispatch, with exactly one retry and only for a timeout. The retry
	// carries a new correlation ID and skips re-handshake.
	transition(StateDispatched)
	payload, f := o.dispatch(ctx)
	if f != nil && f.Reason == ReasonTimeout {
		zap.L().Warn("dispatch timed out, retrying once")
		payload, f = o.dispatch(ctx)
	}
	if f != nil {
		return fail(f)
	}

	transition(StateSucceeded)
	return payload, nil
}

// ping sends one liveness probe and waits up to PingTimeout for a PONG.
// Returns false on silence; a channel error is returned to the caller.
func (o *Orchestrator) ping(ctx context.Context) (bool, error) {
	if err := o.conn.Send(ctx, Message{Type: MsgPing}); err != nil {
		// A dead channel and a silent peer look the same to the handshake.
		zap.L().Debug("ping send failed", zap.Error(err))
		return false, nil
	}

	timer := time.NewTimer(o.cfg.PingTimeout)
	defer timer.Stop()

	for {
		select {
		case msg := <-o.conn.Recv():
			if msg.Type == MsgPong {
				return true, nil
			}
			o.ignored(msg)
		case <-timer.C:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// dispatch sends one RUN_EXTRACTION with a fresh correlation ID and waits up
// to DispatchTimeout for the matching response. Frames with a different
// request ID — stragglers from an abandoned earlier attempt — are ignored.
func (o *Orchestrator) dispatch(ctx context.Context) (*Payload, *Failure) {
	requestID := o.newID()

	if err := o.conn.Send(ctx, Message{Type: MsgRunExtraction, RequestID: requestID}); err != nil {
		return nil, failf(ReasonUnknown, err, "dispatch send failed")
	}

	timer := time.NewTimer(o.cfg.DispatchTimeout)
	defer timer.Stop()

	for {
		select {
		case msg := <-o.conn.Recv():
			switch {
			case msg.Type == MsgExtractionResult && msg.RequestID == requestID:
				if !validPayload(msg.Payload) {
					return nil, failf(ReasonInvalidPayload, nil, "result missing identifier or data")
				}
				return msg.Payload, nil

			case msg.Type == MsgExtractionError && msg.RequestID == requestID:
				message := "remote extraction error"
				if msg.Error != nil {
					message = msg.Error.Message
				}
				return nil, failf(ReasonExtraction, nil, "%s", message)

			default:
				o.ignored(msg)
			}

		case <-timer.C:
			return nil, failf(ReasonTimeout, nil, "no response within %s", o.cfg.DispatchTimeout)

		case <-ctx.Done():
			return nil, failf(ReasonUnknown, ctx.Err(), "dispatch interrupted")
		}
	}
}

// validPayload checks the structural contract of a success payload: a
// non-empty identifier and a data object.
func validPayload(p *Payload) bool {
	return p != nil && p.ID != "" && p.Data != nil
}

func (o *Orchestrator) ignored(msg Message) {
	if o.hooks.OnIgnored != nil {
		o.hooks.OnIgnored(msg)
	}
	zap.L().Debug("ignored protocol frame",
		zap.String("type", string(msg.Type)),
		zap.String("requestId", msg.RequestID),
	)
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
