package market

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-market/actor"
)

// TokenKey identifies one token inside one collection. It is the map key
// for sales and auctions; a key is covered by at most one of the two.
type TokenKey struct {
	Collection actor.Address `json:"collection"`
	TokenID    uint64        `json:"tokenId"`
}

// OfferKey identifies one buyer's offer on one token. Offers from different
// buyers on the same token coexist.
type OfferKey struct {
	TokenKey
	Buyer actor.Address `json:"buyer"`
}

// TypeCollection is a registered, spawnable collection template.
type TypeCollection struct {
	CodeName    string `json:"codeName"`
	MetaLink    string `json:"metaLink"`
	Description string `json:"description"`
}

// CollectionRecord ties a spawned collection to its template and creator.
type CollectionRecord struct {
	TypeName string        `json:"typeName"`
	Owner    actor.Address `json:"owner"`
}

// Sale is a fixed-price listing. It exists exactly while the token is
// listed.
type Sale struct {
	Seller actor.Address `json:"seller"`
	Price  *uint256.Int  `json:"price"`
}

// Auction is a running English auction. CurrentPrice is nil until the first
// bid; CurrentWinner is empty for the same window. The escrowed amount held
// for an auction is always exactly CurrentPrice or nothing.
type Auction struct {
	Seller        actor.Address `json:"seller"`
	MinPrice      *uint256.Int  `json:"minPrice"`
	CurrentPrice  *uint256.Int  `json:"currentPrice,omitempty"`
	CurrentWinner actor.Address `json:"currentWinner,omitempty"`
	StartedAt     uint64        `json:"startedAt"`
	EndsAt        uint64        `json:"endsAt"`
}
