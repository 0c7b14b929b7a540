// Package actor provides a cooperative actor runtime with value custody.
//
// Key concepts:
//   - Address: an opaque identity; any address can hold a balance, but only
//     registered addresses dispatch messages
//   - Envelope: a message carrying a payload, attached value and a gas budget
//   - Runtime: the scheduler, message router and balance ledger
//   - Context: the per-message view handed to a Handler
//
// Each actor processes one message at a time. A handler that issues a
// cross-actor Call (or Spawn) suspends: the actor's turn is released and
// queued messages are dispatched while the reply is outstanding. State
// written before the suspension point is therefore visible to, and mutable
// by, messages processed during the suspension window.
package actor

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/inconshreveable/log15"
)

var log = log15.New("module", "actor")

// Address identifies a party on the runtime. Addresses that were never
// registered as actors are plain accounts: they can hold value but any
// payload sent to them is undeliverable.
type Address string

// NewAddress returns a fresh address with a readable prefix.
func NewAddress(prefix string) Address {
	return Address(prefix + "-" + uuid.NewString())
}

// Envelope is a routed message. Attached value moves through the ledger when
// the envelope is submitted; if the receiving handler rejects the message,
// the portion it did not forward onward is returned to the sender.
type Envelope struct {
	ID       string
	From     Address
	To       Address
	Payload  any
	Value    *uint256.Int
	GasLimit uint64

	// replyTo is the ID of the envelope this one answers.
	replyTo string
	err     error
}

// Handler processes inbound messages for one actor. The returned value is
// delivered to the caller as the reply payload; a non-nil error rejects the
// message and bounces its unforwarded attached value.
type Handler interface {
	Handle(c *Context, payload any) (any, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(c *Context, payload any) (any, error)

func (f HandlerFunc) Handle(c *Context, payload any) (any, error) { return f(c, payload) }

// Factory instantiates a handler for a spawned actor. An error means the
// instantiation failed; the spawner gets its attached value back.
type Factory func(init any) (Handler, error)

// Clock supplies the runtime's notion of now, in unix milliseconds.
type Clock interface {
	Now() uint64
}

type wallClock struct{}

func (wallClock) Now() uint64 { return uint64(time.Now().UnixMilli()) }

// ManualClock is an advanceable clock for tests.
type ManualClock struct {
	mu sync.Mutex
	t  uint64
}

// NewManualClock starts a manual clock at the given unix-millisecond time.
func NewManualClock(start uint64) *ManualClock {
	return &ManualClock{t: start}
}

func (c *ManualClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d milliseconds.
func (c *ManualClock) Advance(d uint64) {
	c.mu.Lock()
	c.t += d
	c.mu.Unlock()
}

var (
	ErrRuntimeClosed       = errors.New("actor: runtime closed")
	ErrUnknownActor        = errors.New("actor: unknown actor")
	ErrUnknownCode         = errors.New("actor: unknown code template")
	ErrActorExists         = errors.New("actor: address already registered")
	ErrInsufficientBalance = errors.New("actor: insufficient balance")
	ErrOutOfGas            = errors.New("actor: gas limit exhausted")
	ErrAborted             = errors.New("actor: handler aborted")
)

func valueOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}
	return v.Clone()
}
