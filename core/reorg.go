package core

// ReorgFlip describes one ChannelEvent whose block_is_valid changed.
type ReorgFlip struct {
	EventID  string
	Key      ChannelKey
	NewValid bool
}

// ComputeValidityFlips computes the block_is_valid changes implied by an
// asserted canonical block-hash suffix. hashes is the canonical suffix
// starting at firstBlockNum. events must contain every ChannelEvent on the
// chain with BlockNumber >= firstBlockNum, in the order the caller wants
// "first flip" ties broken (typically insertion order); events below
// firstBlockNum are never touched.
//
// It returns one ReorgFlip per event whose validity actually changed, plus
// the distinct set of channel keys touched, ordered by first flip.
func ComputeValidityFlips(firstBlockNum int64, hashes []EthHash, events []Event) ([]ReorgFlip, []ChannelKey) {
	var flips []ReorgFlip
	var changed []ChannelKey
	seen := make(map[ChannelKey]bool)

	for _, ev := range events {
		if ev.BlockNumber < firstBlockNum || ev.IsIntent() {
			continue
		}
		idx := ev.BlockNumber - firstBlockNum
		var newValid bool
		if idx >= 0 && int(idx) < len(hashes) {
			newValid = hashes[idx] == *ev.BlockHash
		} else {
			// Past the end of the asserted canonical list: invalidated.
			newValid = false
		}
		if newValid == ev.BlockIsValid {
			continue
		}
		flips = append(flips, ReorgFlip{EventID: ev.ID, Key: ev.Key, NewValid: newValid})
		if !seen[ev.Key] {
			seen[ev.Key] = true
			changed = append(changed, ev.Key)
		}
	}
	return flips, changed
}
