// Package collection defines the wire contract every collection actor speaks
// and provides the reference NFT collection implementation.
//
// The marketplace only ever talks to a collection through the action/event
// pairs below; a collection's internal bookkeeping (ownership maps,
// approvals, mint rotation) is its own business.
package collection

import (
	"github.com/pflow-xyz/go-market/actor"
)

// Actions understood by a collection actor.

// MintAction mints the next token for Minter. The attached value is the mint
// fee and stays with the collection on success.
type MintAction struct {
	Minter actor.Address
}

// TransferAction moves a token owned by the message source.
type TransferAction struct {
	To      actor.Address
	TokenID uint64
}

// TransferFromAction moves a token on behalf of its owner; the message
// source must be the owner or the approved actor for the token.
type TransferFromAction struct {
	From    actor.Address
	To      actor.Address
	TokenID uint64
}

// ApproveAction names an actor allowed to transfer the token.
type ApproveAction struct {
	To      actor.Address
	TokenID uint64
}

// RevokeApprovalAction clears the token's approval.
type RevokeApprovalAction struct {
	TokenID uint64
}

// BurnAction destroys a token.
type BurnAction struct {
	TokenID uint64
}

// GetTokenInfoAction asks for a token's ownership and approval facts.
type GetTokenInfoAction struct {
	TokenID uint64
}

// CanDeleteAction asks whether the collection consents to being removed
// from a registry.
type CanDeleteAction struct{}

// ExpandAction adds media links (admin, attendable collections only).
type ExpandAction struct {
	AdditionalLinks []ImgLink
}

// ChangeConfigAction replaces the collection config before any token has
// been minted.
type ChangeConfigAction struct {
	Config Config
}

// AddAdminAction grants collection admin rights.
type AddAdminAction struct {
	NewAdmin actor.Address
}

// Events replied by a collection actor.

type MintedEvent struct {
	Owner    actor.Address
	TokenID  uint64
	MediaURL string
}

type TransferredEvent struct {
	Owner     actor.Address
	Recipient actor.Address
	TokenID   uint64
}

type ApprovedEvent struct {
	To      actor.Address
	TokenID uint64
}

type ApprovalRevokedEvent struct {
	TokenID uint64
}

type BurnedEvent struct {
	TokenID uint64
}

// TokenInfoEvent carries the ownership facts the marketplace validates
// listings against. An empty Approved means no approval is outstanding.
type TokenInfoEvent struct {
	Owner    actor.Address
	Approved actor.Address
	Sellable bool
}

type CanDeleteEvent struct {
	Answer bool
}

type ExpandedEvent struct {
	AdditionalLinks []ImgLink
}

type ConfigChangedEvent struct {
	Config Config
}

type AdminAddedEvent struct {
	Admin actor.Address
}

// ImgLink is a media reference with a remaining copy count.
type ImgLink struct {
	URL    string
	Copies uint32
}

// Config is the collection's behavior switches and descriptive fields.
type Config struct {
	Name           string
	Description    string
	CollectionTags []string
	CollectionImg  string
	// UserMintLimit caps mints per user; zero means unlimited.
	UserMintLimit uint32
	Transferable  bool
	Approvable    bool
	Burnable      bool
	Sellable      bool
	Attendable    bool
}

// Init is the spawn payload for the reference collection.
type Init struct {
	Owner    actor.Address
	Config   Config
	ImgLinks []ImgLink
}
