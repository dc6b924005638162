package core

import (
	"encoding/json"
	"reflect"
)

// FieldsEqual performs the deep field-equality comparison the
// intent-correlation engine requires: two JSON payloads are equal if they
// decode to the same value, independent of key order or whitespace.
func FieldsEqual(a, b json.RawMessage) bool {
	var ma, mb map[string]any
	if err := json.Unmarshal(a, &ma); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &mb); err != nil {
		return false
	}
	return reflect.DeepEqual(ma, mb)
}

// MatchesIntent reports whether chainEvent is a valid candidate match for
// intent: same channel key, block number at or above the intent's floor,
// same sender, same event type, deep-equal fields, on a chain event that
// is itself real (non-intent) and currently valid.
func MatchesIntent(intent, chainEvent Event) bool {
	if chainEvent.IsIntent() || !chainEvent.BlockIsValid {
		return false
	}
	if chainEvent.Key != intent.Key {
		return false
	}
	if chainEvent.BlockNumber < intent.BlockNumber {
		return false
	}
	if chainEvent.Sender != intent.Sender {
		return false
	}
	if chainEvent.EventType != intent.EventType {
		return false
	}
	return FieldsEqual(chainEvent.Fields, intent.Fields)
}

// SelectCorrelation picks the block hash the intent should bind to: the
// most-recently-inserted matching chain event, or nil if none match.
// candidates need not be pre-filtered; SelectCorrelation applies
// MatchesIntent itself.
func SelectCorrelation(intent Event, candidates []Event) *EthHash {
	var best *Event
	for i := range candidates {
		c := candidates[i]
		if !MatchesIntent(intent, c) {
			continue
		}
		if best == nil || c.InsertSeq > best.InsertSeq {
			best = &candidates[i]
		}
	}
	if best == nil {
		return nil
	}
	h := *best.BlockHash
	return &h
}
