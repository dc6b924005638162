package core

import "sort"

// SortEvents orders events per the canonical key (block_number, block_hash
// NULLS FIRST, ts), with insertion order as the final tiebreak so the fold
// is deterministic regardless of the order events were retrieved from
// storage. An uncorrelated intent has a nil block hash and therefore sorts
// before any chain event at the same block number.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		ai, bi := a.BlockHash == nil, b.BlockHash == nil
		if ai != bi {
			return ai // nil (intent) sorts first
		}
		if !ai && *a.BlockHash != *b.BlockHash {
			return a.BlockHash.String() < b.BlockHash.String()
		}
		if !a.Ts.Equal(b.Ts.Time) {
			return a.Ts.Before(b.Ts.Time)
		}
		return a.InsertSeq < b.InsertSeq
	})
}
