package core

// Fold runs the reducer over an already-ordered, already-filtered event
// stream and returns the resulting channel along with the last-observed
// event in each category, up to and including the point the fold stopped.
func Fold(events []Event) (channel *Channel, latestEvent, latestIntentEvent, latestChainEvent *Event, err error) {
	for i := range events {
		ev := events[i]
		latestEvent = &events[i]
		if ev.IsIntent() {
			latestIntentEvent = &events[i]
		} else {
			latestChainEvent = &events[i]
		}

		next, ok, applyErr := Apply(channel, ev)
		if applyErr != nil {
			return channel, latestEvent, latestIntentEvent, latestChainEvent, applyErr
		}
		channel = next
		if !ok {
			// Invalid transition: the offending event was observed (tracked
			// above) but not applied, and the fold halts here.
			break
		}
	}
	return channel, latestEvent, latestIntentEvent, latestChainEvent, nil
}

// ChannelStatus is the composed read model returned by GetChannelStatus and
// embedded in the state-update admission response.
type ChannelStatus struct {
	Channel                 *Channel     `json:"channel"`
	LatestState             *StateUpdate `json:"latest_state"`
	CurrentPayment          *Wei         `json:"current_payment"`
	CurrentRemainingBalance *Wei         `json:"current_remaining_balance"`
	LatestEvent             *Event       `json:"latest_event"`
	LatestIntentEvent       *Event       `json:"latest_intent_event"`
	LatestChainEvent        *Event       `json:"latest_chain_event"`
	IsInvalid               bool         `json:"is_invalid"`
	IsInvalidReason         string       `json:"is_invalid_reason,omitempty"`
}

// BuildChannelStatus composes the reducer with the latest state-update
// lookup. events must already be filtered and will be sorted in place via
// SortEvents.
func BuildChannelStatus(events []Event, latest *StateUpdate) (*ChannelStatus, error) {
	SortEvents(events)
	channel, latestEvent, latestIntentEvent, latestChainEvent, err := Fold(events)
	if err != nil {
		return nil, err
	}

	status := &ChannelStatus{
		Channel:           channel,
		LatestState:       latest,
		LatestEvent:       latestEvent,
		LatestIntentEvent: latestIntentEvent,
		LatestChainEvent:  latestChainEvent,
	}
	if channel != nil {
		status.IsInvalid = channel.IsInvalid
		status.IsInvalidReason = channel.IsInvalidReason
	}
	if latest != nil {
		payment := latest.Amount
		status.CurrentPayment = &payment
		if channel != nil {
			remaining := channel.Value.Sub(latest.Amount)
			status.CurrentRemainingBalance = &remaining
		}
	}
	return status, nil
}
