// Package market implements the marketplace orchestrator: a single actor
// that registers collection templates, spawns collections, delegates mints,
// and runs the sale, auction and offer lifecycles, holding user funds in
// custody across every suspension point.
package market

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/inconshreveable/log15"

	"github.com/pflow-xyz/go-market/actor"
	"github.com/pflow-xyz/go-market/collection"
	"github.com/pflow-xyz/go-market/journal"
)

var log = log15.New("module", "market")

// Marketplace is the orchestrator's whole state. It is owned by exactly one
// actor registration; handlers run one turn at a time, so no field needs a
// lock. The hazard is turns interleaving at suspension points, which the
// handlers manage by ordering their writes.
type Marketplace struct {
	admins       []actor.Address
	types        map[string]TypeCollection
	collections  map[actor.Address]CollectionRecord
	timeCreation map[actor.Address]uint64
	sales        map[TokenKey]*Sale
	auctions     map[TokenKey]*Auction
	offers       map[OfferKey]*uint256.Int
	config       Config

	journal journal.Store
}

// Option configures a Marketplace.
type Option func(*Marketplace)

// WithJournal records every successful state-changing operation.
func WithJournal(s journal.Store) Option {
	return func(m *Marketplace) { m.journal = s }
}

// New builds a marketplace with one initial admin.
func New(admin actor.Address, cfg Config, opts ...Option) *Marketplace {
	if cfg.MinimumTransferValue == nil {
		cfg.MinimumTransferValue = uint256.NewInt(0)
	}
	if cfg.FeePerUploadedFile == nil {
		cfg.FeePerUploadedFile = uint256.NewInt(0)
	}
	m := &Marketplace{
		admins:       []actor.Address{admin},
		types:        make(map[string]TypeCollection),
		collections:  make(map[actor.Address]CollectionRecord),
		timeCreation: make(map[actor.Address]uint64),
		sales:        make(map[TokenKey]*Sale),
		auctions:     make(map[TokenKey]*Auction),
		offers:       make(map[OfferKey]*uint256.Int),
		config:       cfg,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Marketplace) Handle(c *actor.Context, payload any) (any, error) {
	out, err := m.dispatch(c, payload)
	if err != nil {
		log.Debug("rejected", "action", fmt.Sprintf("%T", payload), "source", c.Source(), "err", err)
		return nil, err
	}
	if ev, ok := out.(Event); ok {
		m.record(c, ev)
	}
	return out, nil
}

func (m *Marketplace) dispatch(c *actor.Context, payload any) (any, error) {
	switch a := payload.(type) {
	case AddCollectionTypeAction:
		return m.addCollectionType(c, a)
	case CreateCollectionAction:
		return m.createCollection(c, a)
	case MintAction:
		return m.mint(c, a)
	case ListForSaleAction:
		return m.listForSale(c, a)
	case CancelSaleAction:
		return m.cancelSale(c, a)
	case BuyAction:
		return m.buy(c, a)
	case CreateAuctionAction:
		return m.createAuction(c, a)
	case AddBidAction:
		return m.addBid(c, a)
	case CloseAuctionAction:
		return m.closeAuction(c, a)
	case CancelAuctionAction:
		return m.cancelAuction(c, a)
	case CreateOfferAction:
		return m.createOffer(c, a)
	case CancelOfferAction:
		return m.cancelOffer(c, a)
	case AcceptOfferAction:
		return m.acceptOffer(c, a)
	case DeleteCollectionAction:
		return m.deleteCollection(c, a)
	case AddAdminsAction:
		return m.addAdmins(c, a)
	case RemoveAdminAction:
		return m.removeAdmin(c, a)
	case UpdateConfigAction:
		return m.updateConfig(c, a)
	case WithdrawBalanceAction:
		return m.withdrawBalance(c, a)
	case QueryState:
		return m.stateSnapshot(), nil
	case QueryAdmins:
		return append([]actor.Address(nil), m.admins...), nil
	case QueryConfig:
		return m.config, nil
	case QueryCollectionTypes:
		return m.typeSnapshot(), nil
	case QueryCollections:
		return m.collectionSnapshot(), nil
	case QueryCollectionInfo:
		return m.collectionInfo(a.Collection)
	case QueryCommitment:
		return m.commitment()
	default:
		return nil, ErrProtocolViolation
	}
}

func (m *Marketplace) record(c *actor.Context, ev Event) {
	if m.journal == nil {
		return
	}
	if _, err := m.journal.Append(context.Background(), string(c.Self()), ev.Kind(), c.Now(), ev); err != nil {
		// The journal is an audit trail, not a ledger; losing an entry
		// must not fail the operation it describes.
		log.Warn("journal append failed", "kind", ev.Kind(), "err", err)
	}
}

func (m *Marketplace) isAdmin(a actor.Address) bool {
	for _, adm := range m.admins {
		if adm == a {
			return true
		}
	}
	return false
}

func (m *Marketplace) checkAdmin(a actor.Address) error {
	if !m.isAdmin(a) {
		return ErrAccessDenied
	}
	return nil
}

// refund returns the full attached value to the message source and yields
// the rejection. Every failed paid operation exits through here, so no code
// path leaves attached value unaccounted for. A failing refund transfer has
// no compensating step left; it aborts the message.
func refund(c *actor.Context, err error) (any, error) {
	if v := c.Value(); !v.IsZero() {
		if serr := c.Send(c.Source(), nil, v); serr != nil {
			panic(fmt.Sprintf("market: refund of %s to %s failed: %v", v, c.Source(), serr))
		}
	}
	return nil, err
}

// royaltyCut computes the marketplace's share of value in basis points.
func royaltyCut(value *uint256.Int, bps uint16) (*uint256.Int, error) {
	cut := new(uint256.Int)
	if _, over := cut.MulOverflow(value, uint256.NewInt(uint64(bps))); over {
		return nil, ErrArithmeticOverflow
	}
	cut.Div(cut, uint256.NewInt(10_000))
	return cut, nil
}

// tokenInfo round-trips the ownership facts for one token. The caller
// suspends for the duration.
func (m *Marketplace) tokenInfo(c *actor.Context, coll actor.Address, tokenID uint64) (collection.TokenInfoEvent, error) {
	out, err := c.Call(coll, collection.GetTokenInfoAction{TokenID: tokenID}, nil, m.config.GasForGetInfo)
	if err != nil {
		return collection.TokenInfoEvent{}, ErrCollectionCallFailed
	}
	info, ok := out.(collection.TokenInfoEvent)
	if !ok {
		return collection.TokenInfoEvent{}, ErrProtocolViolation
	}
	return info, nil
}

// transferToken asks the collection to move a token. Any rejection is a
// CollectionCallFailed; a success reply of the wrong shape is a protocol
// violation by the collection.
func (m *Marketplace) transferToken(c *actor.Context, coll actor.Address, from, to actor.Address, tokenID uint64, gas uint64) error {
	out, err := c.Call(coll, collection.TransferFromAction{From: from, To: to, TokenID: tokenID}, nil, gas)
	if err != nil {
		return ErrCollectionCallFailed
	}
	if _, ok := out.(collection.TransferredEvent); !ok {
		return ErrProtocolViolation
	}
	return nil
}
