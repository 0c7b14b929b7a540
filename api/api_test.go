package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pflow-xyz/go-market/actor"
	"github.com/pflow-xyz/go-market/market"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	rt := actor.NewRuntime()
	t.Cleanup(rt.Close)

	m := market.New("admin", market.DefaultConfig())
	addr := actor.Address("market")
	if err := rt.Register(addr, m); err != nil {
		t.Fatalf("register: %v", err)
	}
	return New(rt, addr)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestStateEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/state")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var st struct {
		Admins []string `json:"admins"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(st.Admins) != 1 || st.Admins[0] != "admin" {
		t.Errorf("admins = %v", st.Admins)
	}
}

func TestUnknownCollectionIs404(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/collections/ghost")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (body %s)", w.Code, w.Body)
	}
}

func TestCommitmentEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := get(t, s, "/commitment")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var out struct {
		Commitment string `json:"commitment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Commitment) != 64 {
		t.Errorf("commitment = %q, want 32 hex-encoded bytes", out.Commitment)
	}
}

func TestReadOnlyEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/admins", "/config", "/types", "/collections"} {
		if w := get(t, s, path); w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, body %s", path, w.Code, w.Body)
		}
	}
}
