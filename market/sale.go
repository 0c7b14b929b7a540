package market

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-market/actor"
)

func (m *Marketplace) listForSale(c *actor.Context, a ListForSaleAction) (any, error) {
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
	if a.Price == nil || a.Price.Lt(m.config.MinimumTransferValue) {
		return nil, ErrBelowMinimumValue
	}
	seller := c.Source()

	// Reserve the key before suspending on the ownership check so a
	// concurrent listing or auction on the same token sees it.
	m.sales[key] = &Sale{Seller: seller, Price: a.Price.Clone()}

	info, err := m.tokenInfo(c, a.Collection, a.TokenID)
	if err != nil {
		delete(m.sales, key)
		return nil, err
	}
	if !info.Sellable || info.Owner != seller || info.Approved != c.Self() {
		delete(m.sales, key)
		return nil, ErrAccessDenied
	}
	// The seller may have cancelled the pending listing during the check.
	if _, still := m.sales[key]; !still {
		return nil, ErrNotListed
	}

	log.Info("listed for sale", "collection", a.Collection, "token", a.TokenID, "price", a.Price)
	return SaleListedEvent{Collection: a.Collection, TokenID: a.TokenID, Seller: seller, Price: a.Price.Clone()}, nil
}

func (m *Marketplace) cancelSale(c *actor.Context, a CancelSaleAction) (any, error) {
	key := TokenKey{Collection: a.Collection, TokenID: a.TokenID}
	sale, ok := m.sales[key]
	if !ok {
		return nil, ErrNotListed
	}
	if sale.Seller != c.Source() {
		return nil, ErrAccessDenied
	}
	delete(m.sales, key)
	return SaleCancelledEvent{Collection: a.Collection, TokenID: a.TokenID}, nil
}

func (m *Marketplace) buy(c *actor.Context, a BuyAction) (any, error) {
	key := TokenKey{Collection: a.Collection, TokenID: a.TokenID}
	sale, ok := m.sales[key]
	if !ok {
		return refund(c, ErrNotListed)
	}
	buyer := c.Source()
	if buyer == sale.Seller {
		return refund(c, ErrAccessDenied)
	}
	if sale.Price.Lt(m.config.MinimumTransferValue) {
		return refund(c, ErrBelowMinimumValue)
	}
	if !c.Value().Eq(sale.Price) {
		return refund(c, ErrValueMismatch)
	}
	cut, err := royaltyCut(sale.Price, m.config.RoyaltyToMarketplaceForTrade)
	if err != nil {
		return refund(c, err)
	}

	// Reserve the sale by taking it off the book: a concurrent buyer gets
	// NotListed instead of racing to the same transfer call. Reinstated
	// verbatim if the transfer fails.
	delete(m.sales, key)

	if err := m.transferToken(c, a.Collection, sale.Seller, buyer, a.TokenID, m.config.GasForTransferToken); err != nil {
		// The key was free while the transfer was in flight; a new sale or
		// auction created there stands. Reinstating over it would break the
		// one-listing-per-key rule. The removed sale held no escrow, so
		// dropping it loses nothing.
		_, relisted := m.sales[key]
		_, auctioned := m.auctions[key]
		if !relisted && !auctioned {
			m.sales[key] = sale
		}
		return refund(c, err)
	}

	proceeds := new(uint256.Int).Sub(sale.Price, cut)
	if err := c.Send(sale.Seller, nil, proceeds); err != nil {
		panic("market: seller payout failed: " + err.Error())
	}

	log.Info("sold", "collection", a.Collection, "token", a.TokenID, "price", sale.Price, "buyer", buyer)
	return SaleCompletedEvent{
		Collection: a.Collection,
		TokenID:    a.TokenID,
		Seller:     sale.Seller,
		Buyer:      buyer,
		Price:      sale.Price.Clone(),
		Royalty:    cut,
	}, nil
}
