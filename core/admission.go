package core

// ClassifyStateUpdate computes the StateUpdateStatus fields that don't
// require a signature check: is_latest, added_amount, and dupe_status.
// latest is the channel's current latest state update (by
// max amount), or nil if the channel has none yet. exactAmountMatch tells
// the classifier whether a state update with this exact amount already
// exists for the channel (the store layer determines this via the unique
// index on (chain_id, contract_id, channel_id, amount)).
func ClassifyStateUpdate(amount Wei, latest *StateUpdate, exactAmountMatch bool) StateUpdateStatus {
	status := StateUpdateStatus{Latest: latest}

	if latest == nil {
		status.IsLatest = true
		added := amount
		status.AddedAmount = &added
	} else {
		status.IsLatest = amount.Cmp(latest.Amount) >= 0
		if status.IsLatest {
			added := amount.Sub(latest.Amount)
			status.AddedAmount = &added
		}
	}

	if exactAmountMatch {
		status.DupeStatus = DupeStatusDupe
	} else {
		status.DupeStatus = DupeStatusDistinct
	}
	return status
}
