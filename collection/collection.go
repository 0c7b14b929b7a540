package collection

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/inconshreveable/log15"

	"github.com/pflow-xyz/go-market/actor"
)

var log = log15.New("module", "collection")

// Errors a collection reports back to callers. The marketplace does not
// inspect these; any error is a rejection.
var (
	ErrSupplyExhausted    = errors.New("collection: all tokens are minted")
	ErrMintLimitReached   = errors.New("collection: user mint limit reached")
	ErrUnknownToken       = errors.New("collection: token does not exist")
	ErrNotOwner           = errors.New("collection: caller is not the token owner")
	ErrNotAuthorized      = errors.New("collection: caller may not transfer this token")
	ErrNotTransferable    = errors.New("collection: tokens are not transferable")
	ErrNotApprovable      = errors.New("collection: tokens are not approvable")
	ErrNotBurnable        = errors.New("collection: tokens are not burnable")
	ErrNotAttendable      = errors.New("collection: collection is not attendable")
	ErrApprovalExists     = errors.New("collection: approval already issued")
	ErrNoApproval         = errors.New("collection: no approval issued")
	ErrNotAdmin           = errors.New("collection: admin only")
	ErrConfigLocked       = errors.New("collection: config frozen after first mint")
	ErrTokenIDsExhausted  = errors.New("collection: token id space exhausted")
)

type token struct {
	owner    actor.Address
	name     string
	mediaURL string
}

// Collection is the reference collection actor. It owns the token ledger;
// the marketplace only reaches it through the protocol actions.
type Collection struct {
	cfg       Config
	admins    []actor.Address
	tokens    map[uint64]*token
	minted    map[actor.Address]uint32
	approvals map[uint64]actor.Address
	nonce     uint64
	links     []ImgLink

	rng    *rand.Rand
	minGas uint64
}

// Option configures a Collection.
type Option func(*Collection)

// WithRand injects the mint-rotation randomness source.
func WithRand(r *rand.Rand) Option {
	return func(c *Collection) { c.rng = r }
}

// WithMinGas makes the collection reject any action whose gas budget is
// below n, simulating metered execution.
func WithMinGas(n uint64) Option {
	return func(c *Collection) { c.minGas = n }
}

// New validates the init payload and builds a collection.
func New(init Init, opts ...Option) (*Collection, error) {
	if init.Config.Name == "" {
		return nil, errors.New("collection: empty name")
	}
	if init.Owner == "" {
		return nil, errors.New("collection: empty owner")
	}
	if len(init.ImgLinks) == 0 {
		return nil, errors.New("collection: no media links")
	}
	for _, l := range init.ImgLinks {
		if l.Copies == 0 {
			return nil, fmt.Errorf("collection: zero copies for %s", l.URL)
		}
	}
	c := &Collection{
		cfg:       init.Config,
		admins:    []actor.Address{init.Owner},
		tokens:    make(map[uint64]*token),
		minted:    make(map[actor.Address]uint32),
		approvals: make(map[uint64]actor.Address),
		links:     append([]ImgLink(nil), init.ImgLinks...),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Factory adapts New to the runtime's spawn contract. The init payload must
// be an Init value.
func Factory(opts ...Option) actor.Factory {
	return func(init any) (actor.Handler, error) {
		in, ok := init.(Init)
		if !ok {
			return nil, fmt.Errorf("collection: bad init payload %T", init)
		}
		return New(in, opts...)
	}
}

func (c *Collection) Handle(ctx *actor.Context, payload any) (any, error) {
	if c.minGas > 0 && ctx.GasLimit() < c.minGas {
		return nil, actor.ErrOutOfGas
	}
	switch a := payload.(type) {
	case MintAction:
		return c.mint(a.Minter)
	case TransferAction:
		return c.transfer(ctx.Source(), ctx.Source(), a.To, a.TokenID)
	case TransferFromAction:
		return c.transfer(ctx.Source(), a.From, a.To, a.TokenID)
	case ApproveAction:
		return c.approve(ctx.Source(), a.To, a.TokenID)
	case RevokeApprovalAction:
		return c.revokeApproval(ctx.Source(), a.TokenID)
	case BurnAction:
		return c.burn(ctx.Source(), a.TokenID)
	case GetTokenInfoAction:
		return c.tokenInfo(a.TokenID)
	case CanDeleteAction:
		return CanDeleteEvent{Answer: len(c.tokens) == 0}, nil
	case ExpandAction:
		return c.expand(ctx.Source(), a.AdditionalLinks)
	case ChangeConfigAction:
		return c.changeConfig(ctx.Source(), a.Config)
	case AddAdminAction:
		return c.addAdmin(ctx.Source(), a.NewAdmin)
	default:
		return nil, fmt.Errorf("collection: unknown action %T", payload)
	}
}

func (c *Collection) mint(minter actor.Address) (any, error) {
	if len(c.links) == 0 {
		return nil, ErrSupplyExhausted
	}
	if c.cfg.UserMintLimit > 0 && c.minted[minter] >= c.cfg.UserMintLimit && !c.isAdmin(minter) {
		return nil, ErrMintLimitReached
	}
	if c.nonce == math.MaxUint64 {
		return nil, ErrTokenIDsExhausted
	}

	i := c.rng.Intn(len(c.links))
	link := c.links[i].URL
	c.links[i].Copies--
	if c.links[i].Copies == 0 {
		c.links = append(c.links[:i], c.links[i+1:]...)
	}

	id := c.nonce
	c.nonce++
	c.tokens[id] = &token{
		owner:    minter,
		name:     fmt.Sprintf("%s - %d", c.cfg.Name, id),
		mediaURL: link,
	}
	c.minted[minter]++

	log.Debug("minted", "name", c.cfg.Name, "token", id, "owner", minter)
	return MintedEvent{Owner: minter, TokenID: id, MediaURL: link}, nil
}

func (c *Collection) transfer(caller, from, to actor.Address, id uint64) (any, error) {
	if !c.cfg.Transferable {
		return nil, ErrNotTransferable
	}
	tok, ok := c.tokens[id]
	if !ok {
		return nil, ErrUnknownToken
	}
	if tok.owner != from {
		return nil, ErrNotOwner
	}
	if caller != from && c.approvals[id] != caller {
		return nil, ErrNotAuthorized
	}

	tok.owner = to
	delete(c.approvals, id)
	return TransferredEvent{Owner: from, Recipient: to, TokenID: id}, nil
}

func (c *Collection) approve(caller, to actor.Address, id uint64) (any, error) {
	if !c.cfg.Approvable {
		return nil, ErrNotApprovable
	}
	tok, ok := c.tokens[id]
	if !ok {
		return nil, ErrUnknownToken
	}
	if tok.owner != caller {
		return nil, ErrNotOwner
	}
	if _, ok := c.approvals[id]; ok {
		return nil, ErrApprovalExists
	}
	c.approvals[id] = to
	return ApprovedEvent{To: to, TokenID: id}, nil
}

func (c *Collection) revokeApproval(caller actor.Address, id uint64) (any, error) {
	tok, ok := c.tokens[id]
	if !ok {
		return nil, ErrUnknownToken
	}
	if tok.owner != caller {
		return nil, ErrNotOwner
	}
	if _, ok := c.approvals[id]; !ok {
		return nil, ErrNoApproval
	}
	delete(c.approvals, id)
	return ApprovalRevokedEvent{TokenID: id}, nil
}

func (c *Collection) burn(caller actor.Address, id uint64) (any, error) {
	if !c.cfg.Burnable {
		return nil, ErrNotBurnable
	}
	tok, ok := c.tokens[id]
	if !ok {
		return nil, ErrUnknownToken
	}
	if tok.owner != caller && c.approvals[id] != caller {
		return nil, ErrNotAuthorized
	}
	delete(c.tokens, id)
	delete(c.approvals, id)
	return BurnedEvent{TokenID: id}, nil
}

func (c *Collection) tokenInfo(id uint64) (any, error) {
	tok, ok := c.tokens[id]
	if !ok {
		return nil, ErrUnknownToken
	}
	return TokenInfoEvent{
		Owner:    tok.owner,
		Approved: c.approvals[id],
		Sellable: c.cfg.Sellable,
	}, nil
}

func (c *Collection) expand(caller actor.Address, links []ImgLink) (any, error) {
	if !c.isAdmin(caller) {
		return nil, ErrNotAdmin
	}
	if !c.cfg.Attendable {
		return nil, ErrNotAttendable
	}
	for _, l := range links {
		if l.Copies == 0 {
			return nil, fmt.Errorf("collection: zero copies for %s", l.URL)
		}
	}
	c.links = append(c.links, links...)
	return ExpandedEvent{AdditionalLinks: links}, nil
}

func (c *Collection) changeConfig(caller actor.Address, cfg Config) (any, error) {
	if !c.isAdmin(caller) {
		return nil, ErrNotAdmin
	}
	if len(c.tokens) > 0 || c.nonce > 0 {
		return nil, ErrConfigLocked
	}
	if cfg.Name == "" {
		return nil, errors.New("collection: empty name")
	}
	c.cfg = cfg
	return ConfigChangedEvent{Config: cfg}, nil
}

func (c *Collection) addAdmin(caller, admin actor.Address) (any, error) {
	if !c.isAdmin(caller) {
		return nil, ErrNotAdmin
	}
	c.admins = append(c.admins, admin)
	return AdminAddedEvent{Admin: admin}, nil
}

func (c *Collection) isAdmin(a actor.Address) bool {
	for _, adm := range c.admins {
		if adm == a {
			return true
		}
	}
	return false
}
