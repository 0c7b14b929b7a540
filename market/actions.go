package market

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-market/actor"
)

// Actions are the marketplace's inbound request payloads. Each is answered
// with exactly one reply: the matching event on success, a Code otherwise.

type AddCollectionTypeAction struct {
	CodeName    string
	MetaLink    string
	TypeName    string
	Description string
}

type CreateCollectionAction struct {
	TypeName string
	// Payload is the opaque init payload handed to the spawned template.
	Payload any
}

type MintAction struct {
	Collection actor.Address
}

type ListForSaleAction struct {
	Collection actor.Address
	TokenID    uint64
	Price      *uint256.Int
}

type CancelSaleAction struct {
	Collection actor.Address
	TokenID    uint64
}

type BuyAction struct {
	Collection actor.Address
	TokenID    uint64
}

type CreateAuctionAction struct {
	Collection     actor.Address
	TokenID        uint64
	MinPrice       *uint256.Int
	DurationBlocks uint32
}

type AddBidAction struct {
	Collection actor.Address
	TokenID    uint64
}

type CloseAuctionAction struct {
	Collection actor.Address
	TokenID    uint64
}

type CancelAuctionAction struct {
	Collection actor.Address
	TokenID    uint64
}

type CreateOfferAction struct {
	Collection actor.Address
	TokenID    uint64
}

type CancelOfferAction struct {
	Collection actor.Address
	TokenID    uint64
}

type AcceptOfferAction struct {
	Offer OfferKey
}

type DeleteCollectionAction struct {
	Collection actor.Address
}

type AddAdminsAction struct {
	Users []actor.Address
}

type RemoveAdminAction struct {
	User actor.Address
}

type UpdateConfigAction struct {
	Patch ConfigPatch
}

type WithdrawBalanceAction struct {
	Value *uint256.Int
}
