package market

import (
	"errors"
	"testing"
)

func TestCreateOffer(t *testing.T) {
	f := newFixture(t)
	coll, id := f.setupToken("seller")
	f.fund("buyer", 2_000)

	if _, err := f.do("buyer", CreateOfferAction{Collection: "ghost", TokenID: id}, val(500)); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
	if _, err := f.do("buyer", CreateOfferAction{Collection: coll, TokenID: id}, val(99)); !errors.Is(err, ErrBelowMinimumValue) {
		t.Fatalf("expected ErrBelowMinimumValue, got %v", err)
	}
	if got := f.balance("buyer"); !got.Eq(val(2_000)) {
		t.Fatalf("buyer balance = %s, want refunded 2000", got)
	}

	ev := f.must("buyer", CreateOfferAction{Collection: coll, TokenID: id}, val(500)).(OfferCreatedEvent)
	if ev.Buyer != "buyer" || !ev.Escrow.Eq(val(500)) {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if got := f.balance(marketAddr); !got.Eq(val(500)) {
		t.Errorf("escrow = %s, want 500", got)
	}

	// One live offer per buyer and key; the second is bounced, not merged.
	if _, err := f.do("buyer", CreateOfferAction{Collection: coll, TokenID: id}, val(700)); !errors.Is(err, ErrAlreadyListed) {
		t.Fatalf("expected ErrAlreadyListed, got %v", err)
	}
	if got := f.balance("buyer"); !got.Eq(val(1_500)) {
		t.Errorf("buyer balance = %s, want 1500", got)
	}

	// A second buyer's offer on the same token coexists.
	f.fund("other", 500)
	f.must("other", CreateOfferAction{Collection: coll, TokenID: id}, val(500))
	if st := f.state(); len(st.Offers) != 2 {
		t.Fatalf("offers = %+v, want 2 entries", st.Offers)
	}
}

func TestCancelOffer(t *testing.T) {
	f := newFixture(t)
	coll, id := f.setupToken("seller")
	f.fund("buyer", 500)
	f.must("buyer", CreateOfferAction{Collection: coll, TokenID: id}, val(500))

	// Cancellation is keyed by the caller; a stranger has no offer to pull.
	if _, err := f.do("rando", CancelOfferAction{Collection: coll, TokenID: id}, nil); !errors.Is(err, ErrNotListed) {
		t.Fatalf("expected ErrNotListed, got %v", err)
	}

	ev := f.must("buyer", CancelOfferAction{Collection: coll, TokenID: id}, nil).(OfferCancelledEvent)
	if !ev.Refunded.Eq(val(500)) {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if got := f.balance("buyer"); !got.Eq(val(500)) {
		t.Errorf("buyer balance = %s, want 500", got)
	}
	if _, err := f.do("buyer", CancelOfferAction{Collection: coll, TokenID: id}, nil); !errors.Is(err, ErrNotListed) {
		t.Fatalf("expected ErrNotListed on second cancel, got %v", err)
	}
}

func TestAcceptOffer(t *testing.T) {
	f := newFixture(t)
	coll, id := f.setupToken("seller")
	f.fund("buyer", 500)
	f.must("buyer", CreateOfferAction{Collection: coll, TokenID: id}, val(500))

	key := OfferKey{TokenKey: TokenKey{Collection: coll, TokenID: id}, Buyer: "buyer"}

	if _, err := f.do("imposter", AcceptOfferAction{Offer: key}, nil); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	ev := f.must("seller", AcceptOfferAction{Offer: key}, nil).(OfferAcceptedEvent)
	if ev.Seller != "seller" || !ev.Price.Eq(val(500)) || !ev.Royalty.Eq(val(10)) {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if owner := f.tokenOwner(coll, id); owner != "buyer" {
		t.Errorf("owner = %s, want buyer", owner)
	}
	if got := f.balance("seller"); !got.Eq(val(490)) {
		t.Errorf("seller balance = %s, want 490", got)
	}
	if got := f.balance(marketAddr); !got.Eq(val(10)) {
		t.Errorf("treasury = %s, want 10", got)
	}

	// The offer is consumed.
	if _, err := f.do("seller", AcceptOfferAction{Offer: key}, nil); !errors.Is(err, ErrNotListed) {
		t.Fatalf("expected ErrNotListed, got %v", err)
	}
}

// TestAcceptOfferWithoutApproval fails the accept at the ownership proof;
// the offer must stay untouched and cancellable in full.
func TestAcceptOfferWithoutApproval(t *testing.T) {
	f := newFixture(t)
	coll, id := f.setupToken("seller")
	f.fund("buyer", 500)
	f.must("buyer", CreateOfferAction{Collection: coll, TokenID: id}, val(500))

	key := OfferKey{TokenKey: TokenKey{Collection: coll, TokenID: id}, Buyer: "buyer"}

	f.revokeApproval(coll, "seller", id)
	if _, err := f.do("seller", AcceptOfferAction{Offer: key}, nil); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied without approval, got %v", err)
	}

	// The offer is untouched and the buyer can still withdraw everything.
	ev := f.must("buyer", CancelOfferAction{Collection: coll, TokenID: id}, nil).(OfferCancelledEvent)
	if !ev.Refunded.Eq(val(500)) {
		t.Fatalf("escrow shrank: %+v", ev)
	}
	if got := f.balance("buyer"); !got.Eq(val(500)) {
		t.Errorf("buyer balance = %s, want 500", got)
	}
}

// TestAcceptOfferFailureKeepsReplacement re-offers while the accept's
// transfer is in flight; the failed accept must refund the reserved escrow
// instead of overwriting the newer offer.
func TestAcceptOfferFailureKeepsReplacement(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	coll := f.brokenTransferCollection("gate", "seller", entered, release)
	f.fund("buyer", 1_200)
	f.must("buyer", CreateOfferAction{Collection: coll, TokenID: 1}, val(500))

	key := OfferKey{TokenKey: TokenKey{Collection: coll, TokenID: 1}, Buyer: "buyer"}
	done := make(chan error, 1)
	go func() {
		_, err := f.do("seller", AcceptOfferAction{Offer: key}, nil)
		done <- err
	}()
	<-entered

	// The reservation freed the key, so a fresh offer lands on it.
	f.must("buyer", CreateOfferAction{Collection: coll, TokenID: 1}, val(700))

	close(release)
	if err := <-done; !errors.Is(err, ErrCollectionCallFailed) {
		t.Fatalf("expected ErrCollectionCallFailed, got %v", err)
	}
	// The reserved 500 came straight back; the 700 offer stands untouched.
	if got := f.balance("buyer"); !got.Eq(val(500)) {
		t.Errorf("buyer balance = %s, want 500", got)
	}
	st := f.state()
	if len(st.Offers) != 1 || !st.Offers[0].Escrow.Eq(val(700)) {
		t.Fatalf("offers = %+v, want one 700 entry", st.Offers)
	}
	f.must("buyer", CancelOfferAction{Collection: coll, TokenID: 1}, nil)
	if got := f.balance("buyer"); !got.Eq(val(1_200)) {
		t.Errorf("buyer balance = %s, want 1200 after cancel", got)
	}
}

// TestOfferWithdrawnDuringOwnershipCheck pulls the offer while the accept's
// info round-trip is in flight.
func TestOfferWithdrawnDuringOwnershipCheck(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	coll := f.gateCollection("gate", "seller", entered, release)
	f.fund("buyer", 500)
	f.must("buyer", CreateOfferAction{Collection: coll, TokenID: 1}, val(500))

	key := OfferKey{TokenKey: TokenKey{Collection: coll, TokenID: 1}, Buyer: "buyer"}
	done := make(chan error, 1)
	go func() {
		_, err := f.do("seller", AcceptOfferAction{Offer: key}, nil)
		done <- err
	}()
	<-entered

	f.must("buyer", CancelOfferAction{Collection: coll, TokenID: 1}, nil)

	close(release)
	if err := <-done; !errors.Is(err, ErrNotListed) {
		t.Fatalf("expected ErrNotListed after mid-flight cancel, got %v", err)
	}
	if got := f.balance("buyer"); !got.Eq(val(500)) {
		t.Errorf("buyer balance = %s, want 500", got)
	}
}
