package core

// Channel is the derived, never-persisted aggregate a channel's event
// stream folds into. The zero value does not represent "no channel" — use a
// nil *Channel for that, as the reducer does.
type Channel struct {
	Key ChannelKey `json:"key"`

	Sender           EthAddress `json:"sender"`
	Receiver         EthAddress `json:"receiver"`
	Value            Wei        `json:"value"`
	SettlementPeriod int64      `json:"settlement_period"`
	Until            int64      `json:"until"`
	Payment          Wei        `json:"payment"`
	OddValue         Wei        `json:"odd_value"`

	State         ChannelState `json:"state"`
	StateIsIntent bool         `json:"state_is_intent"`

	OpenedOn              UnixTime `json:"opened_on"`
	SettlementStartedOn   UnixTime `json:"settlement_started_on"`
	SettlementFinalizedOn UnixTime `json:"settlement_finalized_on"`

	IsInvalid       bool   `json:"is_invalid"`
	IsInvalidReason string `json:"is_invalid_reason,omitempty"`
}

func (c *Channel) clone() *Channel {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
