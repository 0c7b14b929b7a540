package actor

import (
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// Context is the view a handler has of the message it is processing. It is
// only valid for the duration of that turn.
type Context struct {
	rt  *Runtime
	p   *process
	env *Envelope

	// forwarded accumulates attached value passed onward by this turn, so
	// a later rejection bounces only what is still held.
	forwarded *uint256.Int
}

// Self returns the handling actor's own address.
func (c *Context) Self() Address { return c.p.addr }

// Source returns the sender of the current message.
func (c *Context) Source() Address { return c.env.From }

// Value returns a copy of the attached value.
func (c *Context) Value() *uint256.Int { return valueOrZero(c.env.Value) }

// GasLimit returns the gas budget the sender attached.
func (c *Context) GasLimit() uint64 { return c.env.GasLimit }

// Now returns the runtime clock reading in unix milliseconds.
func (c *Context) Now() uint64 { return c.rt.clock.Now() }

// Send submits a one-way message. With a nil payload it is a bare value
// transfer and the recipient need not be an actor; this is the payout and
// refund primitive.
func (c *Context) Send(to Address, payload any, value *uint256.Int) error {
	v := valueOrZero(value)
	env := &Envelope{
		ID:      uuid.NewString(),
		From:    c.p.addr,
		To:      to,
		Payload: payload,
		Value:   v,
	}
	if err := c.rt.submit(env); err != nil {
		return err
	}
	c.noteForwarded(v)
	return nil
}

// Call submits a request and suspends until its reply. The actor's turn is
// released for the duration: other messages to this actor run against
// whatever state the caller wrote before suspending. An error reply means
// the attached value has already bounced back to this actor's balance.
func (c *Context) Call(to Address, payload any, value *uint256.Int, gas uint64) (any, error) {
	v := valueOrZero(value)
	env := &Envelope{
		ID:       uuid.NewString(),
		From:     c.p.addr,
		To:       to,
		Payload:  payload,
		Value:    v,
		GasLimit: gas,
	}
	ch := c.rt.addWaiter(env.ID)
	if err := c.rt.submit(env); err != nil {
		c.rt.dropWaiter(env.ID)
		return nil, err
	}
	c.noteForwarded(v)

	c.p.turn <- struct{}{}
	var reply *Envelope
	select {
	case reply = <-ch:
	case <-c.p.quit:
		return nil, ErrRuntimeClosed
	}
	<-c.p.turn

	if reply.err != nil {
		c.unnoteForwarded(v)
		return nil, reply.err
	}
	return reply.Payload, nil
}

// Spawn instantiates a registered code template as a new actor, forwarding
// the attached value to it. Like Call it suspends the current turn. On
// instantiation failure the value is back on this actor's balance.
func (c *Context) Spawn(code string, init any, value *uint256.Int, gas uint64) (Address, error) {
	c.rt.mu.Lock()
	factory, ok := c.rt.codes[code]
	c.rt.mu.Unlock()
	if !ok {
		return "", ErrUnknownCode
	}

	v := valueOrZero(value)
	c.rt.mu.Lock()
	if err := c.rt.debitLocked(c.p.addr, v); err != nil {
		c.rt.mu.Unlock()
		return "", err
	}
	c.rt.mu.Unlock()
	c.noteForwarded(v)

	c.p.turn <- struct{}{}
	h, err := factory(init)
	<-c.p.turn

	if err != nil {
		c.rt.mu.Lock()
		c.rt.creditLocked(c.p.addr, v)
		c.rt.mu.Unlock()
		c.unnoteForwarded(v)
		return "", err
	}

	addr := NewAddress(code)
	c.rt.mu.Lock()
	if c.rt.closed {
		// The new actor can never start; the debited value goes back to
		// the spawner, same as the factory-failure path.
		c.rt.creditLocked(c.p.addr, v)
		c.rt.mu.Unlock()
		c.unnoteForwarded(v)
		return "", ErrRuntimeClosed
	}
	c.rt.creditLocked(addr, v)
	c.rt.startLocked(addr, h)
	c.rt.mu.Unlock()
	return addr, nil
}

func (c *Context) noteForwarded(v *uint256.Int) {
	if _, over := c.forwarded.AddOverflow(c.forwarded, v); over {
		log.Crit("forwarded overflow", "actor", c.p.addr)
	}
}

func (c *Context) unnoteForwarded(v *uint256.Int) {
	if _, under := c.forwarded.SubOverflow(c.forwarded, v); under {
		log.Crit("forwarded underflow", "actor", c.p.addr)
	}
}
