package market

import (
	"sort"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-market/actor"
)

// Queries are read-only payloads. They never touch state and are answered
// from the current turn's snapshot.

type QueryState struct{}
type QueryAdmins struct{}
type QueryConfig struct{}
type QueryCollectionTypes struct{}
type QueryCollections struct{}

type QueryCollectionInfo struct {
	Collection actor.Address
}

type QueryCommitment struct{}

// TypeEntry is one registered template in a State snapshot.
type TypeEntry struct {
	Name string         `json:"name"`
	Info TypeCollection `json:"info"`
}

// CollectionEntry is one spawned collection in a State snapshot.
type CollectionEntry struct {
	Address actor.Address    `json:"address"`
	Record  CollectionRecord `json:"record"`
}

type SaleEntry struct {
	Key  TokenKey `json:"key"`
	Sale Sale     `json:"sale"`
}

type AuctionEntry struct {
	Key     TokenKey `json:"key"`
	Auction Auction  `json:"auction"`
}

type OfferEntry struct {
	Key    OfferKey     `json:"key"`
	Escrow *uint256.Int `json:"escrow"`
}

// State is the whole marketplace rendered for queries and the commitment.
// Map contents become slices in a fixed order so two identical states render
// identically.
type State struct {
	Admins      []actor.Address   `json:"admins"`
	Types       []TypeEntry       `json:"types"`
	Collections []CollectionEntry `json:"collections"`
	Sales       []SaleEntry       `json:"sales"`
	Auctions    []AuctionEntry    `json:"auctions"`
	Offers      []OfferEntry      `json:"offers"`
	Config      Config            `json:"config"`
}

// CollectionInfo answers QueryCollectionInfo.
type CollectionInfo struct {
	Address  actor.Address `json:"address"`
	TypeName string        `json:"typeName"`
	Owner    actor.Address `json:"owner"`
	MetaLink string        `json:"metaLink"`
}

func (m *Marketplace) stateSnapshot() State {
	s := State{
		Admins:      append([]actor.Address(nil), m.admins...),
		Types:       m.typeSnapshot(),
		Collections: m.collectionSnapshot(),
		Config:      m.config,
	}
	for key, sale := range m.sales {
		s.Sales = append(s.Sales, SaleEntry{Key: key, Sale: Sale{Seller: sale.Seller, Price: sale.Price.Clone()}})
	}
	sort.Slice(s.Sales, func(i, j int) bool { return tokenKeyLess(s.Sales[i].Key, s.Sales[j].Key) })
	for key, auc := range m.auctions {
		cp := *auc
		if auc.CurrentPrice != nil {
			cp.CurrentPrice = auc.CurrentPrice.Clone()
		}
		cp.MinPrice = auc.MinPrice.Clone()
		s.Auctions = append(s.Auctions, AuctionEntry{Key: key, Auction: cp})
	}
	sort.Slice(s.Auctions, func(i, j int) bool { return tokenKeyLess(s.Auctions[i].Key, s.Auctions[j].Key) })
	for key, escrow := range m.offers {
		s.Offers = append(s.Offers, OfferEntry{Key: key, Escrow: escrow.Clone()})
	}
	sort.Slice(s.Offers, func(i, j int) bool {
		a, b := s.Offers[i].Key, s.Offers[j].Key
		if a.TokenKey != b.TokenKey {
			return tokenKeyLess(a.TokenKey, b.TokenKey)
		}
		return a.Buyer < b.Buyer
	})
	return s
}

func (m *Marketplace) typeSnapshot() []TypeEntry {
	out := make([]TypeEntry, 0, len(m.types))
	for name, info := range m.types {
		out = append(out, TypeEntry{Name: name, Info: info})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Marketplace) collectionSnapshot() []CollectionEntry {
	out := make([]CollectionEntry, 0, len(m.collections))
	for addr, rec := range m.collections {
		out = append(out, CollectionEntry{Address: addr, Record: rec})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func (m *Marketplace) collectionInfo(addr actor.Address) (CollectionInfo, error) {
	rec, ok := m.collections[addr]
	if !ok {
		return CollectionInfo{}, ErrUnknownCollection
	}
	return CollectionInfo{
		Address:  addr,
		TypeName: rec.TypeName,
		Owner:    rec.Owner,
		MetaLink: m.types[rec.TypeName].MetaLink,
	}, nil
}

func tokenKeyLess(a, b TokenKey) bool {
	if a.Collection != b.Collection {
		return a.Collection < b.Collection
	}
	return a.TokenID < b.TokenID
}
