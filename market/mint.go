package market

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-market/actor"
	"github.com/pflow-xyz/go-market/collection"
)

// mint forwards a mint request to the collection, keeping the marketplace's
// mint royalty and attaching the rest as the mint fee. Local state is never
// touched, so every failure path is just a full refund.
func (m *Marketplace) mint(c *actor.Context, a MintAction) (any, error) {
	if _, ok := m.collections[a.Collection]; !ok {
		return refund(c, ErrUnknownCollection)
	}
	src := c.Source()
	value := c.Value()

	cut, err := royaltyCut(value, m.config.RoyaltyToMarketplaceForMint)
	if err != nil {
		return refund(c, err)
	}
	fee := new(uint256.Int).Sub(value, cut)

	gas := m.config.GasForMint + m.config.GasForGetInfo
	out, callErr := c.Call(a.Collection, collection.MintAction{Minter: src}, fee, gas)
	if callErr != nil {
		return refund(c, ErrCollectionCallFailed)
	}
	minted, ok := out.(collection.MintedEvent)
	if !ok {
		// The collection kept the fee but answered garbage. The user is
		// still made whole; the shortfall comes out of the treasury.
		log.Warn("malformed mint reply", "collection", a.Collection, "reply", out)
		return refund(c, ErrProtocolViolation)
	}

	log.Debug("minted", "collection", a.Collection, "token", minted.TokenID, "minter", src)
	return MintedEvent{
		Collection: a.Collection,
		Owner:      minted.Owner,
		TokenID:    minted.TokenID,
		MediaURL:   minted.MediaURL,
		Royalty:    cut,
	}, nil
}
