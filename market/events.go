package market

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-market/actor"
)

// Event is a successful operation's reply payload. Kind doubles as the
// journal entry kind.
type Event interface {
	Kind() string
}

type CollectionTypeAddedEvent struct {
	CodeName    string
	MetaLink    string
	TypeName    string
	Description string
}

func (CollectionTypeAddedEvent) Kind() string { return "registry.type-added" }

type CollectionCreatedEvent struct {
	TypeName   string
	Collection actor.Address
}

func (CollectionCreatedEvent) Kind() string { return "registry.collection-created" }

type CollectionDeletedEvent struct {
	Collection actor.Address
}

func (CollectionDeletedEvent) Kind() string { return "registry.collection-deleted" }

type MintedEvent struct {
	Collection actor.Address
	Owner      actor.Address
	TokenID    uint64
	MediaURL   string
	Royalty    *uint256.Int
}

func (MintedEvent) Kind() string { return "mint.minted" }

type SaleListedEvent struct {
	Collection actor.Address
	TokenID    uint64
	Seller     actor.Address
	Price      *uint256.Int
}

func (SaleListedEvent) Kind() string { return "sale.listed" }

type SaleCancelledEvent struct {
	Collection actor.Address
	TokenID    uint64
}

func (SaleCancelledEvent) Kind() string { return "sale.cancelled" }

type SaleCompletedEvent struct {
	Collection actor.Address
	TokenID    uint64
	Seller     actor.Address
	Buyer      actor.Address
	Price      *uint256.Int
	Royalty    *uint256.Int
}

func (SaleCompletedEvent) Kind() string { return "sale.completed" }

type AuctionCreatedEvent struct {
	Collection actor.Address
	TokenID    uint64
	Seller     actor.Address
	MinPrice   *uint256.Int
	EndsAt     uint64
}

func (AuctionCreatedEvent) Kind() string { return "auction.created" }

type BidAddedEvent struct {
	Collection actor.Address
	TokenID    uint64
	Bidder     actor.Address
	Bid        *uint256.Int
	// Outbid and Refunded report the superseded bid, if any.
	Outbid   actor.Address
	Refunded *uint256.Int
}

func (BidAddedEvent) Kind() string { return "auction.bid-added" }

type AuctionClosedEvent struct {
	Collection actor.Address
	TokenID    uint64
	Sold       bool
	Winner     actor.Address
	Price      *uint256.Int
	Royalty    *uint256.Int
	// Refunded is set when the winning bid was returned because the token
	// transfer failed.
	Refunded *uint256.Int
}

func (AuctionClosedEvent) Kind() string { return "auction.closed" }

type AuctionCancelledEvent struct {
	Collection actor.Address
	TokenID    uint64
}

func (AuctionCancelledEvent) Kind() string { return "auction.cancelled" }

type OfferCreatedEvent struct {
	Collection actor.Address
	TokenID    uint64
	Buyer      actor.Address
	Escrow     *uint256.Int
}

func (OfferCreatedEvent) Kind() string { return "offer.created" }

type OfferCancelledEvent struct {
	Collection actor.Address
	TokenID    uint64
	Buyer      actor.Address
	Refunded   *uint256.Int
}

func (OfferCancelledEvent) Kind() string { return "offer.cancelled" }

type OfferAcceptedEvent struct {
	Collection actor.Address
	TokenID    uint64
	Buyer      actor.Address
	Seller     actor.Address
	Price      *uint256.Int
	Royalty    *uint256.Int
}

func (OfferAcceptedEvent) Kind() string { return "offer.accepted" }

type AdminsAddedEvent struct {
	Users []actor.Address
}

func (AdminsAddedEvent) Kind() string { return "admin.added" }

type AdminRemovedEvent struct {
	User actor.Address
}

func (AdminRemovedEvent) Kind() string { return "admin.removed" }

type ConfigUpdatedEvent struct {
	Patch ConfigPatch
}

func (ConfigUpdatedEvent) Kind() string { return "admin.config-updated" }

type BalanceWithdrawnEvent struct {
	Value *uint256.Int
}

func (BalanceWithdrawnEvent) Kind() string { return "admin.balance-withdrawn" }
