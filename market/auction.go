package market

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-market/actor"
)

func (m *Marketplace) createAuction(c *actor.Context, a CreateAuctionAction) (any, error) {
	if _, ok := m.collections[a.Collection]; !ok {
		return nil, ErrUnknownCollection
	}
	key := TokenKey{Collection: a.Collection, TokenID: a.TokenID}
	if _, ok := m.sales[key]; ok {
		return nil, ErrAlreadyListed
	}
	if _, ok := m.auctions[key]; ok {
		return nil, ErrAlreadyListed
	}
	if a.MinPrice == nil || a.MinPrice.Lt(m.config.MinimumTransferValue) {
		return nil, ErrBelowMinimumValue
	}
	if a.DurationBlocks == 0 {
		return nil, ErrDeadlinePassed
	}
	seller := c.Source()
	now := c.Now()

	// Same lock discipline as listForSale: the record goes in before the
	// ownership round-trip so concurrent listings on this key collide.
	auc := &Auction{
		Seller:    seller,
		MinPrice:  a.MinPrice.Clone(),
		StartedAt: now,
		EndsAt:    now + uint64(a.DurationBlocks)*uint64(m.config.MsInBlock),
	}
	m.auctions[key] = auc

	info, err := m.tokenInfo(c, a.Collection, a.TokenID)
	if err != nil {
		m.rollbackAuction(c, key, auc)
		return nil, err
	}
	if !info.Sellable || info.Owner != seller || info.Approved != c.Self() {
		m.rollbackAuction(c, key, auc)
		return nil, ErrAccessDenied
	}
	if _, still := m.auctions[key]; !still {
		return nil, ErrNotListed
	}

	log.Info("auction opened", "collection", a.Collection, "token", a.TokenID, "minPrice", a.MinPrice, "endsAt", auc.EndsAt)
	return AuctionCreatedEvent{
		Collection: a.Collection,
		TokenID:    a.TokenID,
		Seller:     seller,
		MinPrice:   a.MinPrice.Clone(),
		EndsAt:     auc.EndsAt,
	}, nil
}

// rollbackAuction withdraws a reservation whose ownership check failed. The
// pending record was live and biddable during the check, so any escrow it
// gathered goes back to the bidder before the record is removed. The removal
// only applies if the record is still ours.
func (m *Marketplace) rollbackAuction(c *actor.Context, key TokenKey, auc *Auction) {
	cur, ok := m.auctions[key]
	if !ok || cur != auc {
		return
	}
	if auc.CurrentPrice != nil {
		if err := c.Send(auc.CurrentWinner, nil, auc.CurrentPrice); err != nil {
			panic("market: pending-auction bid refund failed: " + err.Error())
		}
	}
	delete(m.auctions, key)
}

// addBid runs entirely inside one turn: no call leaves the marketplace, so
// the outbid refund and the new bid record are atomic with respect to other
// messages.
func (m *Marketplace) addBid(c *actor.Context, a AddBidAction) (any, error) {
	key := TokenKey{Collection: a.Collection, TokenID: a.TokenID}
	auc, ok := m.auctions[key]
	if !ok {
		return refund(c, ErrNotListed)
	}
	if c.Now() >= auc.EndsAt {
		return refund(c, ErrDeadlinePassed)
	}
	bid := c.Value()
	if auc.CurrentPrice == nil {
		if bid.Lt(auc.MinPrice) {
			return refund(c, ErrBidTooLow)
		}
	} else if !bid.Gt(auc.CurrentPrice) {
		return refund(c, ErrBidTooLow)
	}

	var outbid actor.Address
	var refunded *uint256.Int
	if auc.CurrentPrice != nil {
		outbid, refunded = auc.CurrentWinner, auc.CurrentPrice
		if err := c.Send(outbid, nil, refunded); err != nil {
			panic("market: outbid refund failed: " + err.Error())
		}
	}
	auc.CurrentWinner = c.Source()
	auc.CurrentPrice = bid.Clone()

	log.Debug("bid added", "collection", a.Collection, "token", a.TokenID, "bidder", auc.CurrentWinner, "bid", bid)
	return BidAddedEvent{
		Collection: a.Collection,
		TokenID:    a.TokenID,
		Bidder:     auc.CurrentWinner,
		Bid:        bid.Clone(),
		Outbid:     outbid,
		Refunded:   refunded,
	}, nil
}

// closeAuction settles an expired auction. Anyone may call it; the deadline
// is the only gate.
func (m *Marketplace) closeAuction(c *actor.Context, a CloseAuctionAction) (any, error) {
	key := TokenKey{Collection: a.Collection, TokenID: a.TokenID}
	auc, ok := m.auctions[key]
	if !ok {
		return nil, ErrNotListed
	}
	if c.Now() < auc.EndsAt {
		return nil, ErrDeadlineNotReached
	}
	var cut *uint256.Int
	if auc.CurrentPrice != nil {
		var err error
		if cut, err = royaltyCut(auc.CurrentPrice, m.config.RoyaltyToMarketplaceForTrade); err != nil {
			return nil, err
		}
	}

	// Reserve by removal: a concurrent close or bid sees no auction. The
	// record never goes back; an expired auction ends exactly once.
	delete(m.auctions, key)

	if auc.CurrentPrice == nil {
		log.Info("auction closed unsold", "collection", a.Collection, "token", a.TokenID)
		return AuctionClosedEvent{Collection: a.Collection, TokenID: a.TokenID, Sold: false}, nil
	}

	if err := m.transferToken(c, a.Collection, auc.Seller, auc.CurrentWinner, a.TokenID, m.config.GasForCloseAuction); err != nil {
		// The token cannot move; release the winner's escrow instead of
		// trapping it.
		if serr := c.Send(auc.CurrentWinner, nil, auc.CurrentPrice); serr != nil {
			panic("market: bid escrow release failed: " + serr.Error())
		}
		log.Warn("auction transfer failed, winner refunded", "collection", a.Collection, "token", a.TokenID, "err", err)
		return AuctionClosedEvent{
			Collection: a.Collection,
			TokenID:    a.TokenID,
			Sold:       false,
			Refunded:   auc.CurrentPrice.Clone(),
		}, nil
	}

	proceeds := new(uint256.Int).Sub(auc.CurrentPrice, cut)
	if err := c.Send(auc.Seller, nil, proceeds); err != nil {
		panic("market: auction payout failed: " + err.Error())
	}

	log.Info("auction closed sold", "collection", a.Collection, "token", a.TokenID, "winner", auc.CurrentWinner, "price", auc.CurrentPrice)
	return AuctionClosedEvent{
		Collection: a.Collection,
		TokenID:    a.TokenID,
		Sold:       true,
		Winner:     auc.CurrentWinner,
		Price:      auc.CurrentPrice.Clone(),
		Royalty:    cut,
	}, nil
}

func (m *Marketplace) cancelAuction(c *actor.Context, a CancelAuctionAction) (any, error) {
	key := TokenKey{Collection: a.Collection, TokenID: a.TokenID}
	auc, ok := m.auctions[key]
	if !ok {
		return nil, ErrNotListed
	}
	if auc.Seller != c.Source() || auc.CurrentPrice != nil {
		return nil, ErrAccessDenied
	}
	delete(m.auctions, key)
	return AuctionCancelledEvent{Collection: a.Collection, TokenID: a.TokenID}, nil
}
