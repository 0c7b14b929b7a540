package market

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-market/actor"
)

// createOffer escrows the attached value against a token the buyer wants.
// Offers are independent of sales and auctions on the same key; several
// buyers may hold offers on one token at once.
func (m *Marketplace) createOffer(c *actor.Context, a CreateOfferAction) (any, error) {
	if _, ok := m.collections[a.Collection]; !ok {
		return refund(c, ErrUnknownCollection)
	}
	buyer := c.Source()
	key := OfferKey{TokenKey: TokenKey{Collection: a.Collection, TokenID: a.TokenID}, Buyer: buyer}
	if _, ok := m.offers[key]; ok {
		return refund(c, ErrAlreadyListed)
	}
	escrow := c.Value()
	if escrow.Lt(m.config.MinimumTransferValue) {
		return refund(c, ErrBelowMinimumValue)
	}
	m.offers[key] = escrow.Clone()

	log.Debug("offer created", "collection", a.Collection, "token", a.TokenID, "buyer", buyer, "escrow", escrow)
	return OfferCreatedEvent{Collection: a.Collection, TokenID: a.TokenID, Buyer: buyer, Escrow: escrow.Clone()}, nil
}

func (m *Marketplace) cancelOffer(c *actor.Context, a CancelOfferAction) (any, error) {
	buyer := c.Source()
	key := OfferKey{TokenKey: TokenKey{Collection: a.Collection, TokenID: a.TokenID}, Buyer: buyer}
	escrow, ok := m.offers[key]
	if !ok {
		return nil, ErrNotListed
	}
	delete(m.offers, key)
	if err := c.Send(buyer, nil, escrow); err != nil {
		panic("market: offer escrow release failed: " + err.Error())
	}
	return OfferCancelledEvent{Collection: a.Collection, TokenID: a.TokenID, Buyer: buyer, Refunded: escrow.Clone()}, nil
}

// acceptOffer lets the token's current owner take a standing offer. The
// owner is proven by asking the collection, not by trusting the caller.
func (m *Marketplace) acceptOffer(c *actor.Context, a AcceptOfferAction) (any, error) {
	if _, ok := m.offers[a.Offer]; !ok {
		return nil, ErrNotListed
	}
	seller := c.Source()

	info, err := m.tokenInfo(c, a.Offer.Collection, a.Offer.TokenID)
	if err != nil {
		return nil, err
	}
	if !info.Sellable || info.Owner != seller || info.Approved != c.Self() {
		return nil, ErrAccessDenied
	}
	// The buyer may have pulled the offer during the info round-trip.
	escrow, still := m.offers[a.Offer]
	if !still {
		return nil, ErrNotListed
	}

	cut, err := royaltyCut(escrow, m.config.RoyaltyToMarketplaceForTrade)
	if err != nil {
		return nil, err
	}

	// Reserve by removal before the transfer suspends us; reinstated if the
	// transfer fails so the buyer's escrow stays claimable.
	delete(m.offers, a.Offer)

	if err := m.transferToken(c, a.Offer.Collection, seller, a.Offer.Buyer, a.Offer.TokenID, m.config.GasForTransferToken); err != nil {
		// The removal freed the key, so the buyer may have placed a fresh
		// offer while the transfer was in flight. That one stands; the
		// reserved escrow goes back to the buyer instead of clobbering it.
		if _, replaced := m.offers[a.Offer]; replaced {
			if serr := c.Send(a.Offer.Buyer, nil, escrow); serr != nil {
				panic("market: offer escrow release failed: " + serr.Error())
			}
		} else {
			m.offers[a.Offer] = escrow
		}
		return nil, err
	}

	proceeds := new(uint256.Int).Sub(escrow, cut)
	if err := c.Send(seller, nil, proceeds); err != nil {
		panic("market: offer payout failed: " + err.Error())
	}

	log.Info("offer accepted", "collection", a.Offer.Collection, "token", a.Offer.TokenID, "buyer", a.Offer.Buyer, "price", escrow)
	return OfferAcceptedEvent{
		Collection: a.Offer.Collection,
		TokenID:    a.Offer.TokenID,
		Buyer:      a.Offer.Buyer,
		Seller:     seller,
		Price:      escrow.Clone(),
		Royalty:    cut,
	}, nil
}
