package core

import "fmt"

// Apply folds one event into a channel aggregate. The initial state is nil.
// On success it returns the new channel and ok=true. On a precondition
// violation it returns the *unmodified* channel (the pre-violation
// snapshot) with ok=false and a populated IsInvalidReason; the caller must
// stop folding further events once ok is false. A non-nil error means the
// event payload itself was malformed (a missing required field) — this is
// not a logical-invalid transition, it is a hard error.
func Apply(channel *Channel, ev Event) (next *Channel, ok bool, err error) {
	fields, err := fieldsMap(ev.Fields)
	if err != nil {
		return channel, false, err
	}

	switch ev.EventType {
	case DidCreateChannel:
		if channel != nil {
			return invalidate(channel, DidCreateChannel, string(channel.State), "NULL"), false, nil
		}
		sender, err := fieldAddress(fields, "sender")
		if err != nil {
			return channel, false, err
		}
		receiver, err := fieldAddress(fields, "receiver")
		if err != nil {
			return channel, false, err
		}
		settlementPeriod, err := fieldInt64(fields, "settlement_period")
		if err != nil {
			return channel, false, err
		}
		until, err := fieldInt64(fields, "until")
		if err != nil {
			return channel, false, err
		}
		value, err := fieldWei(fields, "value")
		if err != nil {
			return channel, false, err
		}
		c := &Channel{
			Key:              ev.Key,
			Sender:           sender,
			Receiver:         receiver,
			SettlementPeriod: settlementPeriod,
			Until:            until,
			Value:            value,
			State:            StateOpen,
			OpenedOn:         ev.Ts,
		}
		return withIntentFlag(c, ev), true, nil

	case DidDeposit:
		if channel == nil || channel.State != StateOpen {
			return invalidate(channel, DidDeposit, stateOrNull(channel), string(StateOpen)), false, nil
		}
		value, err := fieldWei(fields, "value")
		if err != nil {
			return channel, false, err
		}
		c := channel.clone()
		c.Value = c.Value.Add(value)
		return withIntentFlag(c, ev), true, nil

	case DidStartSettle:
		if channel == nil || channel.State != StateOpen {
			return invalidate(channel, DidStartSettle, stateOrNull(channel), string(StateOpen)), false, nil
		}
		payment, err := fieldWei(fields, "payment")
		if err != nil {
			return channel, false, err
		}
		c := channel.clone()
		c.State = StateSettling
		c.SettlementStartedOn = ev.Ts
		c.Until = ev.Ts.Unix() + c.SettlementPeriod
		c.Payment = payment
		return withIntentFlag(c, ev), true, nil

	case DidSettle:
		if channel == nil || (channel.State != StateOpen && channel.State != StateSettling) {
			return invalidate(channel, DidSettle, stateOrNull(channel), string(StateOpen)+" or "+string(StateSettling)), false, nil
		}
		payment, err := fieldWei(fields, "payment")
		if err != nil {
			return channel, false, err
		}
		oddValue, err := fieldWei(fields, "odd_value")
		if err != nil {
			return channel, false, err
		}
		c := channel.clone()
		c.State = StateSettled
		c.SettlementFinalizedOn = ev.Ts
		c.Payment = payment
		c.OddValue = oddValue
		return withIntentFlag(c, ev), true, nil

	default:
		return channel, false, fmt.Errorf("unknown event type %q", ev.EventType)
	}
}

// withIntentFlag sets state_is_intent the first time the fold consumes an
// event with a null block_hash, and leaves it true forever after.
func withIntentFlag(c *Channel, ev Event) *Channel {
	if ev.IsIntent() {
		c.StateIsIntent = true
	}
	return c
}

func stateOrNull(c *Channel) string {
	if c == nil {
		return "NULL"
	}
	return string(c.State)
}

// invalidate returns the pre-violation snapshot marked invalid; the message
// format is part of the read contract and must not change.
func invalidate(c *Channel, evType EventType, got, want string) *Channel {
	snap := c.clone()
	reason := fmt.Sprintf("invalid channel state for event %s: got %s but should be %s", evType, got, want)
	if snap == nil {
		// First event for the channel was not DidCreateChannel: there is no
		// snapshot to preserve, only the invalid verdict.
		return &Channel{IsInvalid: true, IsInvalidReason: reason}
	}
	snap.IsInvalid = true
	snap.IsInvalidReason = reason
	return snap
}
