package signer

import (
	"math/big"
	"sort"

	"github.com/NethermindEth/juno/core/felt"
	"golang.org/x/sync/errgroup"
)

// Multisig aggregates the shares of several keys into one signature. Keys are
// held in ascending GUID order regardless of the order they were supplied in.
type Multisig struct {
	keys []Key
}

// NewMultisig returns a multisig over keys. A single key is the owner-only case.
func NewMultisig(keys ...Key) *Multisig {
	return &Multisig{keys: SortByGUID(keys)}
}

// Keys returns the keys in signing order.
func (m *Multisig) Keys() []Key {
	return append([]Key(nil), m.keys...)
}

// SignRaw collects one share per key and returns [len(keys), shares...] with the
// shares concatenated in ascending GUID order. Keys sign concurrently; a single
// failure fails the whole signature.
func (m *Multisig) SignRaw(hash *felt.Felt) (Signature, error) {
	shares := make([]Signature, len(m.keys))
	var g errgroup.Group
	for i, k := range m.keys {
		g.Go(func() error {
			share, err := k.SignRaw(hash)
			if err != nil {
				return err
			}
			shares[i] = share
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := Signature{new(felt.Felt).SetUint64(uint64(len(m.keys)))}
	for _, share := range shares {
		out = append(out, share...)
	}
	return out, nil
}

// Aggregate signs hash with every key and returns the canonical composite signature.
func Aggregate(keys []Key, hash *felt.Felt) (Signature, error) {
	return NewMultisig(keys...).SignRaw(hash)
}

// SortByGUID returns a copy of keys in ascending GUID order. Equal GUIDs keep
// their input order.
func SortByGUID(keys []Key) []Key {
	type entry struct {
		key  Key
		guid *big.Int
	}
	entries := make([]entry, len(keys))
	for i, k := range keys {
		entries[i] = entry{key: k, guid: k.Identity().GUID.BigInt(new(big.Int))}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].guid.Cmp(entries[j].guid) < 0
	})

	sorted := make([]Key, len(entries))
	for i, e := range entries {
		sorted[i] = e.key
	}
	return sorted
}
