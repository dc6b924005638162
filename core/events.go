package core

import (
	"encoding/json"
	"fmt"
)

// EventType enumerates the on-chain occurrences the reducer understands.
type EventType string

const (
	DidCreateChannel EventType = "DidCreateChannel"
	DidDeposit       EventType = "DidDeposit"
	DidStartSettle   EventType = "DidStartSettle"
	DidSettle        EventType = "DidSettle"
)

// ChannelState is the derived lifecycle phase of a Channel.
type ChannelState string

const (
	StateOpen     ChannelState = "CS_OPEN"
	StateSettling ChannelState = "CS_SETTLING"
	StateSettled  ChannelState = "CS_SETTLED"
)

// missingField formats the "<field> must not be null" error raised for an
// incomplete event payload.
func missingField(name string) error {
	return fmt.Errorf("%s must not be null", name)
}

// fieldsMap decodes a raw JSON fields payload into a generic map so the
// reducer can pull out individual keys and report a field-specific error
// when one is missing, without needing a distinct Go struct per event type.
func fieldsMap(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if len(raw) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	return m, nil
}

func fieldWei(m map[string]json.RawMessage, key string) (Wei, error) {
	raw, ok := m[key]
	if !ok || string(raw) == "null" {
		return Wei{}, missingField(key)
	}
	var w Wei
	if err := w.UnmarshalJSON(raw); err != nil {
		return Wei{}, err
	}
	return w, nil
}

func fieldAddress(m map[string]json.RawMessage, key string) (EthAddress, error) {
	raw, ok := m[key]
	if !ok || string(raw) == "null" {
		return EthAddress{}, missingField(key)
	}
	var a EthAddress
	if err := a.UnmarshalJSON(raw); err != nil {
		return EthAddress{}, err
	}
	return a, nil
}

func fieldInt64(m map[string]json.RawMessage, key string) (int64, error) {
	raw, ok := m[key]
	if !ok || string(raw) == "null" {
		return 0, missingField(key)
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// CreateChannelFields builds the fields payload for a DidCreateChannel event.
func CreateChannelFields(sender, receiver EthAddress, settlementPeriod, until int64, value Wei) json.RawMessage {
	return mustMarshal(map[string]any{
		"sender":            sender,
		"receiver":          receiver,
		"settlement_period": settlementPeriod,
		"until":             until,
		"value":             value,
	})
}

// DepositFields builds the fields payload for a DidDeposit event.
func DepositFields(value Wei) json.RawMessage {
	return mustMarshal(map[string]any{"value": value})
}

// StartSettleFields builds the fields payload for a DidStartSettle event.
func StartSettleFields(payment Wei) json.RawMessage {
	return mustMarshal(map[string]any{"payment": payment})
}

// SettleFields builds the fields payload for a DidSettle event.
func SettleFields(payment, oddValue Wei) json.RawMessage {
	return mustMarshal(map[string]any{"payment": payment, "odd_value": oddValue})
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err) // programmer error: v must always be JSON-marshalable
	}
	return b
}

// Event is the reducer's and ordering engine's unified view over a row from
// either channel_events or channel_intents. A nil
// BlockHash marks an uncorrelated intent; chain events always carry one.
type Event struct {
	ID           string          `json:"id"`
	Key          ChannelKey      `json:"key"`
	Ts           UnixTime        `json:"ts"`
	BlockNumber  int64           `json:"block_number"`
	BlockHash    *EthHash        `json:"block_hash"`
	Sender       EthAddress      `json:"sender"`
	EventType    EventType       `json:"event_type"`
	Fields       json.RawMessage `json:"fields"`
	BlockIsValid bool            `json:"block_is_valid"`
	// InsertSeq breaks ties between events with identical ordering keys in
	// insertion order, and is also the tiebreak the intent-correlation
	// engine uses for "most recently inserted valid match".
	InsertSeq int64 `json:"-"`
}

// IsIntent reports whether this row originated from channel_intents and has
// not yet been correlated with a real chain event.
func (e Event) IsIntent() bool { return e.BlockHash == nil }

// StateUpdate is a signed off-chain payment declaration.
type StateUpdate struct {
	ID        string     `json:"id"`
	Key       ChannelKey `json:"key"`
	Ts        UnixTime   `json:"ts"`
	Amount    Wei        `json:"amount"`
	Signature Signature  `json:"signature"`
	Sender    EthAddress `json:"sender"`
}

// InvalidStateUpdateReason enumerates the quarantine reasons.
type InvalidStateUpdateReason string

const (
	ReasonSignatureInvalid InvalidStateUpdateReason = "signature_invalid"
	ReasonConflict         InvalidStateUpdateReason = "conflict"
	ReasonNegativeAmount   InvalidStateUpdateReason = "negative_amount"
	ReasonInvalidStatePfx  InvalidStateUpdateReason = "invalid_state"
)

// InvalidStateUpdate is a quarantined row: append-only, never read by the
// reducer.
type InvalidStateUpdate struct {
	ID     string
	Reason string
	Status StateUpdateStatus
	Raw    json.RawMessage
}

// DupeStatus classifies a candidate state update against the channel's
// existing state updates.
type DupeStatus string

const (
	DupeStatusDupe     DupeStatus = "dupe"
	DupeStatusDistinct DupeStatus = "distinct"
	// DupeStatusConflict is reserved for a future sequence-number rule: the
	// current classifier never produces it, but the field must round-trip
	// unchanged.
	DupeStatusConflict DupeStatus = "conflict"
)

// StateUpdateStatus is the result of GetStateUpdateStatus.
type StateUpdateStatus struct {
	SignatureValid bool         `json:"signature_valid"`
	Latest         *StateUpdate `json:"-"`
	IsLatest       bool         `json:"is_latest"`
	AddedAmount    *Wei         `json:"added_amount,omitempty"`
	DupeStatus     DupeStatus   `json:"dupe_status"`
}
