// Package txflow drives every state-changing contract call through the
// validate, submit, confirm, refresh lifecycle. The lifecycle is a single
// finite-state machine: one source of truth for the current phase instead
// of independent loading flags.
package txflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/winsznx/celo-guestbook/internal/contract"
	"go.uber.org/zap"
)

// State is the lifecycle phase of the in-flight transaction. Transitions
// only move forward; Succeeded and Failed are terminal and reset to Idle
// on the next user action.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateConfirming State = "confirming"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// ErrBusy rejects a submit while another transaction is in flight. New
// requests are neither queued nor dropped silently.
var ErrBusy = errors.New("a transaction is already in flight")

// ValidationError reports missing or malformed inputs. It is returned
// before any network call; the lifecycle never leaves Idle.
type ValidationError struct {
	Operation contract.Operation
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s: %v", e.Operation, e.Err)
}
func (e *ValidationError) Unwrap() error { return e.Err }

// Refresher re-requests every read-side dataset the UI depends on after a
// confirmed transaction.
type Refresher interface {
	Refresh(ctx context.Context, account contract.Address)
}

// DefaultRefreshDelay gives the read-side indexer a moment to observe the
// confirmed transaction before the refresh. Best-effort freshness only,
// not a read-after-write guarantee.
const DefaultRefreshDelay = 2 * time.Second

var validate = validator.New()

// ValidateInputs checks the user-supplied fields of args without touching
// the network. Fields the caller resolves afterwards (the todo creation
// fee) are exempt; Submit still validates the completed args.
func ValidateInputs(args Args) error {
	if err := validate.StructExcept(args, "Fee"); err != nil {
		return &ValidationError{Operation: args.Operation(), Err: err}
	}
	return nil
}

type Config struct {
	Submitter    contract.Submitter
	Refresher    Refresher
	ClearInputs  func(contract.Operation) // clears the transient inputs of the completed operation
	RefreshDelay time.Duration
	OnTransition func(State) // optional observer, called outside the lock
	Logger       *zap.Logger
}

// Orchestrator holds the in-flight state for one actor.
type Orchestrator struct {
	cfg Config
	log *zap.Logger

	mu      sync.Mutex
	state   State
	op      contract.Operation
	lastErr error
}

func New(cfg Config) *Orchestrator {
	if cfg.RefreshDelay <= 0 {
		cfg.RefreshDelay = DefaultRefreshDelay
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{cfg: cfg, log: log, state: StateIdle}
}

// Submit validates the request and, if it passes, starts the submit ->
// confirm -> refresh flow. It returns immediately: progress is observed
// through Status. A *ValidationError or ErrBusy is returned synchronously
// and leaves the current state untouched (terminal states reset to Idle
// first, this being the next user action).
func (o *Orchestrator) Submit(account contract.Address, args Args) error {
	o.mu.Lock()
	if o.state == StateSucceeded || o.state == StateFailed {
		o.toLocked(StateIdle)
	}
	if o.state != StateIdle {
		o.mu.Unlock()
		return ErrBusy
	}
	if account == "" {
		o.mu.Unlock()
		return &ValidationError{Operation: args.Operation(), Err: errors.New("no connected account")}
	}
	if err := validate.Struct(args); err != nil {
		o.mu.Unlock()
		return &ValidationError{Operation: args.Operation(), Err: err}
	}
	req := args.request()
	o.op = req.Operation
	o.lastErr = nil
	o.toLocked(StateSubmitting)
	o.mu.Unlock()
	o.notify(StateSubmitting)

	go o.run(req, account)
	return nil
}

// Status reports the current phase, the operation it belongs to, and the
// terminal error when the phase is Failed.
func (o *Orchestrator) Status() (State, contract.Operation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state, o.op, o.lastErr
}

// run executes the network phases. There is no cancel: once Submitting is
// entered the flow ends in Succeeded or Failed.
func (o *Orchestrator) run(req contract.Request, account contract.Address) {
	ctx := context.Background()

	handle, err := o.cfg.Submitter.Submit(ctx, req)
	if err != nil {
		o.fail(req.Operation, err)
		return
	}
	o.transition(StateConfirming)

	if err := o.cfg.Submitter.AwaitConfirmation(ctx, handle); err != nil {
		o.fail(req.Operation, err)
		return
	}
	o.transition(StateSucceeded)
	o.log.Info("transaction confirmed",
		zap.String("operation", string(req.Operation)),
		zap.String("tx", string(handle)),
	)

	if o.cfg.ClearInputs != nil {
		o.cfg.ClearInputs(req.Operation)
	}

	time.Sleep(o.cfg.RefreshDelay)
	if o.cfg.Refresher != nil {
		rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		o.cfg.Refresher.Refresh(rctx, account)
	}
}

func (o *Orchestrator) fail(op contract.Operation, err error) {
	o.mu.Lock()
	o.lastErr = err
	o.toLocked(StateFailed)
	o.mu.Unlock()
	o.log.Warn("transaction failed", zap.String("operation", string(op)), zap.Error(err))
	o.notify(StateFailed)
}

func (o *Orchestrator) transition(next State) {
	o.mu.Lock()
	o.toLocked(next)
	o.mu.Unlock()
	o.notify(next)
}

func (o *Orchestrator) toLocked(next State) {
	o.log.Debug("lifecycle transition",
		zap.String("from", string(o.state)),
		zap.String("to", string(next)),
	)
	o.state = next
}

func (o *Orchestrator) notify(s State) {
	if o.cfg.OnTransition != nil {
		o.cfg.OnTransition(s)
	}
}
