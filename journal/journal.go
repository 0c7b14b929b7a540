// Package journal is an append-only record of domain events, one stream per
// actor. It is an audit trail: writers never read it back for decisions.
package journal

import (
	"context"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/inconshreveable/log15"
)

var log = log15.New("module", "journal")

// Entry is one journaled event. Seq is monotone per stream, starting at 1.
// Payload is the cbor encoding of the event the writer handed in.
type Entry struct {
	Seq     uint64
	Stream  string
	Kind    string
	At      uint64
	Payload []byte
}

// Decode unmarshals the payload into out.
func (e Entry) Decode(out any) error {
	return cbor.Unmarshal(e.Payload, out)
}

// Store is the journal backend contract.
type Store interface {
	// Append encodes payload and writes it as the stream's next entry.
	Append(ctx context.Context, stream, kind string, at uint64, payload any) (Entry, error)
	// Read returns a stream's entries in seq order.
	Read(ctx context.Context, stream string) ([]Entry, error)
	Close() error
}

// MemoryStore keeps entries in process memory. Suited to tests and
// single-run tooling.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]Entry
}

// NewMemoryStore returns an empty in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]Entry)}
}

func (s *MemoryStore) Append(_ context.Context, stream, kind string, at uint64, payload any) (Entry, error) {
	blob, err := cbor.Marshal(payload)
	if err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := Entry{
		Seq:     uint64(len(s.entries[stream])) + 1,
		Stream:  stream,
		Kind:    kind,
		At:      at,
		Payload: blob,
	}
	s.entries[stream] = append(s.entries[stream], e)
	return e, nil
}

func (s *MemoryStore) Read(_ context.Context, stream string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries[stream]...), nil
}

func (s *MemoryStore) Close() error { return nil }
