package collection

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/pflow-xyz/go-market/actor"
)

func testConfig() Config {
	return Config{
		Name:          "basic",
		Description:   "test collection",
		UserMintLimit: 2,
		Transferable:  true,
		Approvable:    true,
		Burnable:      true,
		Sellable:      true,
		Attendable:    true,
	}
}

func newTestCollection(t *testing.T, links []ImgLink) (*actor.Runtime, actor.Address) {
	t.Helper()
	rt := actor.NewRuntime()
	t.Cleanup(rt.Close)

	c, err := New(Init{
		Owner:    "owner",
		Config:   testConfig(),
		ImgLinks: links,
	}, WithRand(rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}
	addr := actor.Address("nft")
	if err := rt.Register(addr, c); err != nil {
		t.Fatalf("register: %v", err)
	}
	return rt, addr
}

func do(t *testing.T, rt *actor.Runtime, from, to actor.Address, payload any) (any, error) {
	t.Helper()
	return rt.Request(context.Background(), from, to, payload, nil, 0)
}

func mustMint(t *testing.T, rt *actor.Runtime, nft actor.Address, minter actor.Address) MintedEvent {
	t.Helper()
	out, err := do(t, rt, minter, nft, MintAction{Minter: minter})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	ev, ok := out.(MintedEvent)
	if !ok {
		t.Fatalf("expected MintedEvent, got %T", out)
	}
	return ev
}

func TestInitValidation(t *testing.T) {
	cases := []struct {
		name string
		init Init
	}{
		{"no links", Init{Owner: "o", Config: testConfig()}},
		{"zero copies", Init{Owner: "o", Config: testConfig(), ImgLinks: []ImgLink{{URL: "a", Copies: 0}}}},
		{"empty owner", Init{Config: testConfig(), ImgLinks: []ImgLink{{URL: "a", Copies: 1}}}},
		{"empty name", Init{Owner: "o", ImgLinks: []ImgLink{{URL: "a", Copies: 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.init); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestMintRotationExhaustsSupply(t *testing.T) {
	links := []ImgLink{{URL: "a", Copies: 2}, {URL: "b", Copies: 1}}
	rt, nft := newTestCollection(t, links)

	seen := map[string]int{}
	ids := map[uint64]bool{}
	minters := []actor.Address{"u1", "u2", "u3"}
	for _, m := range minters {
		ev := mustMint(t, rt, nft, m)
		seen[ev.MediaURL]++
		if ids[ev.TokenID] {
			t.Fatalf("duplicate token id %d", ev.TokenID)
		}
		ids[ev.TokenID] = true
	}
	if seen["a"] != 2 || seen["b"] != 1 {
		t.Errorf("copies not respected: %v", seen)
	}

	if _, err := do(t, rt, "u4", nft, MintAction{Minter: "u4"}); err == nil {
		t.Error("expected supply exhaustion")
	}
}

func TestMintLimit(t *testing.T) {
	rt, nft := newTestCollection(t, []ImgLink{{URL: "a", Copies: 10}})

	mustMint(t, rt, nft, "u1")
	mustMint(t, rt, nft, "u1")
	if _, err := do(t, rt, "u1", nft, MintAction{Minter: "u1"}); err == nil {
		t.Error("expected mint limit rejection")
	}

	// Admins are exempt from the limit.
	for i := 0; i < 3; i++ {
		mustMint(t, rt, nft, "owner")
	}
}

func TestTransferAndApproval(t *testing.T) {
	rt, nft := newTestCollection(t, []ImgLink{{URL: "a", Copies: 5}})
	ev := mustMint(t, rt, nft, "u1")

	t.Run("stranger cannot transfer", func(t *testing.T) {
		_, err := do(t, rt, "thief", nft, TransferFromAction{From: "u1", To: "thief", TokenID: ev.TokenID})
		if !errors.Is(err, ErrNotAuthorized) {
			t.Fatalf("expected ErrNotAuthorized, got %v", err)
		}
	})

	t.Run("approved actor can transfer", func(t *testing.T) {
		if _, err := do(t, rt, "u1", nft, ApproveAction{To: "market", TokenID: ev.TokenID}); err != nil {
			t.Fatalf("approve: %v", err)
		}

		out, err := do(t, rt, "u1", nft, GetTokenInfoAction{TokenID: ev.TokenID})
		if err != nil {
			t.Fatalf("token info: %v", err)
		}
		info := out.(TokenInfoEvent)
		if info.Owner != "u1" || info.Approved != "market" || !info.Sellable {
			t.Fatalf("unexpected token info: %+v", info)
		}

		if _, err := do(t, rt, "market", nft, TransferFromAction{From: "u1", To: "u2", TokenID: ev.TokenID}); err != nil {
			t.Fatalf("transfer from: %v", err)
		}
	})

	t.Run("approval cleared by transfer", func(t *testing.T) {
		out, err := do(t, rt, "u2", nft, GetTokenInfoAction{TokenID: ev.TokenID})
		if err != nil {
			t.Fatalf("token info: %v", err)
		}
		info := out.(TokenInfoEvent)
		if info.Owner != "u2" {
			t.Errorf("owner = %s, want u2", info.Owner)
		}
		if info.Approved != "" {
			t.Errorf("approval survived transfer: %s", info.Approved)
		}
	})

	t.Run("double approval rejected", func(t *testing.T) {
		if _, err := do(t, rt, "u2", nft, ApproveAction{To: "x", TokenID: ev.TokenID}); err != nil {
			t.Fatalf("approve: %v", err)
		}
		_, err := do(t, rt, "u2", nft, ApproveAction{To: "y", TokenID: ev.TokenID})
		if !errors.Is(err, ErrApprovalExists) {
			t.Fatalf("expected ErrApprovalExists, got %v", err)
		}
	})
}

func TestCanDelete(t *testing.T) {
	rt, nft := newTestCollection(t, []ImgLink{{URL: "a", Copies: 2}})

	out, err := do(t, rt, "anyone", nft, CanDeleteAction{})
	if err != nil {
		t.Fatalf("can delete: %v", err)
	}
	if !out.(CanDeleteEvent).Answer {
		t.Error("empty collection should be deletable")
	}

	ev := mustMint(t, rt, nft, "u1")
	out, _ = do(t, rt, "anyone", nft, CanDeleteAction{})
	if out.(CanDeleteEvent).Answer {
		t.Error("minted collection should not be deletable")
	}

	if _, err := do(t, rt, "u1", nft, BurnAction{TokenID: ev.TokenID}); err != nil {
		t.Fatalf("burn: %v", err)
	}
	out, _ = do(t, rt, "anyone", nft, CanDeleteAction{})
	if !out.(CanDeleteEvent).Answer {
		t.Error("burned-out collection should be deletable again")
	}
}

func TestConfigLockedAfterMint(t *testing.T) {
	rt, nft := newTestCollection(t, []ImgLink{{URL: "a", Copies: 2}})

	cfg := testConfig()
	cfg.Description = "updated"
	if _, err := do(t, rt, "owner", nft, ChangeConfigAction{Config: cfg}); err != nil {
		t.Fatalf("change config before mint: %v", err)
	}

	mustMint(t, rt, nft, "u1")
	_, err := do(t, rt, "owner", nft, ChangeConfigAction{Config: cfg})
	if !errors.Is(err, ErrConfigLocked) {
		t.Fatalf("expected ErrConfigLocked, got %v", err)
	}
}

func TestExpand(t *testing.T) {
	rt, nft := newTestCollection(t, []ImgLink{{URL: "a", Copies: 1}})

	if _, err := do(t, rt, "rando", nft, ExpandAction{AdditionalLinks: []ImgLink{{URL: "b", Copies: 1}}}); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if _, err := do(t, rt, "owner", nft, ExpandAction{AdditionalLinks: []ImgLink{{URL: "b", Copies: 2}}}); err != nil {
		t.Fatalf("expand: %v", err)
	}

	// 1 + 2 copies now available.
	for _, m := range []actor.Address{"u1", "u2", "u3"} {
		mustMint(t, rt, nft, m)
	}
	if _, err := do(t, rt, "u4", nft, MintAction{Minter: "u4"}); !errors.Is(err, ErrSupplyExhausted) {
		t.Fatalf("expected ErrSupplyExhausted, got %v", err)
	}
}

func TestGasBudget(t *testing.T) {
	rt := actor.NewRuntime()
	t.Cleanup(rt.Close)

	c, err := New(Init{
		Owner:    "owner",
		Config:   testConfig(),
		ImgLinks: []ImgLink{{URL: "a", Copies: 1}},
	}, WithMinGas(100))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	nft := actor.Address("metered")
	rt.Register(nft, c)

	_, err = rt.Request(context.Background(), "u1", nft, MintAction{Minter: "u1"}, nil, 99)
	if !errors.Is(err, actor.ErrOutOfGas) {
		t.Fatalf("expected ErrOutOfGas, got %v", err)
	}
	if _, err := rt.Request(context.Background(), "u1", nft, MintAction{Minter: "u1"}, nil, 100); err != nil {
		t.Fatalf("mint with budget: %v", err)
	}
}
