package actor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

const inboxDepth = 256

type process struct {
	addr    Address
	handler Handler
	inbox   chan *Envelope

	// turn is the actor's execution token: capacity one, full while the
	// actor is idle. The dispatch loop takes it before running a handler;
	// a suspending Call puts it back and re-takes it on resume.
	turn chan struct{}
	quit chan struct{}
}

// Runtime routes envelopes between actors, keeps the balance ledger, and
// schedules handler turns.
type Runtime struct {
	mu       sync.Mutex
	clock    Clock
	procs    map[Address]*process
	codes    map[string]Factory
	balances map[Address]*uint256.Int
	waiters  map[string]chan *Envelope
	wg       sync.WaitGroup
	closed   bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithClock replaces the wall clock, typically with a ManualClock in tests.
func WithClock(c Clock) Option {
	return func(rt *Runtime) { rt.clock = c }
}

// NewRuntime creates an empty runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		clock:    wallClock{},
		procs:    make(map[Address]*process),
		codes:    make(map[string]Factory),
		balances: make(map[Address]*uint256.Int),
		waiters:  make(map[string]chan *Envelope),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Now returns the runtime clock reading in unix milliseconds.
func (rt *Runtime) Now() uint64 { return rt.clock.Now() }

// Register attaches a handler to a fixed address and starts its dispatch
// loop.
func (rt *Runtime) Register(addr Address, h Handler) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return ErrRuntimeClosed
	}
	if _, ok := rt.procs[addr]; ok {
		return ErrActorExists
	}
	rt.startLocked(addr, h)
	return nil
}

// RegisterCode makes a template available to Spawn under the given name.
func (rt *Runtime) RegisterCode(name string, f Factory) {
	rt.mu.Lock()
	rt.codes[name] = f
	rt.mu.Unlock()
}

func (rt *Runtime) startLocked(addr Address, h Handler) {
	p := &process{
		addr:    addr,
		handler: h,
		inbox:   make(chan *Envelope, inboxDepth),
		turn:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
	p.turn <- struct{}{}
	rt.procs[addr] = p
	rt.wg.Add(1)
	go rt.serve(p)
}

// Fund credits an address, creating the account if needed. Meant for genesis
// balances and tests.
func (rt *Runtime) Fund(addr Address, v *uint256.Int) {
	rt.mu.Lock()
	rt.creditLocked(addr, valueOrZero(v))
	rt.mu.Unlock()
}

// Balance returns a copy of the address's ledger balance.
func (rt *Runtime) Balance(addr Address) *uint256.Int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if b, ok := rt.balances[addr]; ok {
		return b.Clone()
	}
	return uint256.NewInt(0)
}

// Request submits a payload from an external (non-actor) caller and blocks
// until the one-shot reply arrives or ctx is done.
func (rt *Runtime) Request(ctx context.Context, from, to Address, payload any, value *uint256.Int, gas uint64) (any, error) {
	env := &Envelope{
		ID:       uuid.NewString(),
		From:     from,
		To:       to,
		Payload:  payload,
		Value:    valueOrZero(value),
		GasLimit: gas,
	}
	ch := rt.addWaiter(env.ID)
	if err := rt.submit(env); err != nil {
		rt.dropWaiter(env.ID)
		return nil, err
	}
	select {
	case reply := <-ch:
		return reply.Payload, reply.err
	case <-ctx.Done():
		rt.dropWaiter(env.ID)
		return nil, ctx.Err()
	}
}

// Close stops all dispatch loops. Suspended handlers whose replies never
// arrive are abandoned.
func (rt *Runtime) Close() {
	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		return
	}
	rt.closed = true
	for _, p := range rt.procs {
		close(p.quit)
	}
	rt.mu.Unlock()
	rt.wg.Wait()
}

// submit validates the envelope, settles its value transfer and enqueues it.
// A payload for an unregistered address is refused before any funds move; a
// nil payload is a bare transfer and needs no recipient process.
func (rt *Runtime) submit(env *Envelope) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return ErrRuntimeClosed
	}
	var p *process
	if env.Payload != nil {
		var ok bool
		p, ok = rt.procs[env.To]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownActor, env.To)
		}
	}
	v := valueOrZero(env.Value)
	if !v.IsZero() {
		if err := rt.debitLocked(env.From, v); err != nil {
			return err
		}
		rt.creditLocked(env.To, v)
	}
	if p != nil {
		select {
		case p.inbox <- env:
		default:
			// Inbox overrun is a deployment sizing defect; the value has
			// been settled, so bounce it like a rejection.
			rt.moveLocked(env.To, env.From, v)
			return fmt.Errorf("actor: inbox full for %s", env.To)
		}
	}
	return nil
}

func (rt *Runtime) serve(p *process) {
	defer rt.wg.Done()
	for {
		select {
		case env := <-p.inbox:
			<-p.turn
			go rt.dispatch(p, env)
		case <-p.quit:
			return
		}
	}
}

// dispatch runs a single handler turn. Handler panics are contained: they
// abort the message, not the actor.
func (rt *Runtime) dispatch(p *process, env *Envelope) {
	// A turn abandoned at shutdown (Call unblocked by quit) never re-took
	// the token, so the return must not block.
	defer func() {
		select {
		case p.turn <- struct{}{}:
		default:
		}
	}()

	c := &Context{rt: rt, p: p, env: env, forwarded: uint256.NewInt(0)}
	var result any
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("handler aborted", "actor", p.addr, "payload", fmt.Sprintf("%T", env.Payload), "panic", r)
				result, err = nil, fmt.Errorf("%w: %v", ErrAborted, r)
			}
		}()
		result, err = p.handler.Handle(c, env.Payload)
	}()

	if err != nil {
		rt.bounce(env, c.forwarded)
	}
	rt.reply(env, result, err)
}

// bounce returns the unforwarded portion of a rejected envelope's value to
// its sender.
func (rt *Runtime) bounce(env *Envelope, forwarded *uint256.Int) {
	v := valueOrZero(env.Value)
	if v.IsZero() {
		return
	}
	remain := new(uint256.Int)
	if _, under := remain.SubOverflow(v, forwarded); under {
		// The handler settled more than the attached value out of its own
		// balance (an explicit refund on top of a forwarded call); nothing
		// left to bounce.
		log.Debug("rejection already settled", "actor", env.To, "value", v, "forwarded", forwarded)
		return
	}
	if remain.IsZero() {
		return
	}
	rt.mu.Lock()
	rt.moveLocked(env.To, env.From, remain)
	rt.mu.Unlock()
}

func (rt *Runtime) reply(env *Envelope, result any, err error) {
	if env.replyTo != "" {
		// Replies to replies are not a thing.
		return
	}
	rt.mu.Lock()
	ch, ok := rt.waiters[env.ID]
	if ok {
		delete(rt.waiters, env.ID)
	}
	rt.mu.Unlock()
	if !ok {
		return
	}
	ch <- &Envelope{
		ID:      uuid.NewString(),
		From:    env.To,
		To:      env.From,
		Payload: result,
		replyTo: env.ID,
		err:     err,
	}
}

func (rt *Runtime) addWaiter(id string) chan *Envelope {
	ch := make(chan *Envelope, 1)
	rt.mu.Lock()
	rt.waiters[id] = ch
	rt.mu.Unlock()
	return ch
}

func (rt *Runtime) dropWaiter(id string) {
	rt.mu.Lock()
	delete(rt.waiters, id)
	rt.mu.Unlock()
}

func (rt *Runtime) creditLocked(addr Address, v *uint256.Int) {
	if v.IsZero() {
		return
	}
	b, ok := rt.balances[addr]
	if !ok {
		b = uint256.NewInt(0)
		rt.balances[addr] = b
	}
	if _, over := b.AddOverflow(b, v); over {
		log.Crit("ledger overflow", "addr", addr)
	}
}

func (rt *Runtime) debitLocked(addr Address, v *uint256.Int) error {
	if v.IsZero() {
		return nil
	}
	b, ok := rt.balances[addr]
	if !ok || b.Lt(v) {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, addr)
	}
	b.Sub(b, v)
	return nil
}

func (rt *Runtime) moveLocked(from, to Address, v *uint256.Int) {
	if err := rt.debitLocked(from, v); err != nil {
		log.Crit("ledger move failed", "from", from, "to", to, "value", v, "err", err)
		return
	}
	rt.creditLocked(to, v)
}
