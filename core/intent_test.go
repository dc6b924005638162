package core

import "testing"

func makeIntent(blockNum int64, seq int64) Event {
	return Event{
		Key:         ChannelKey{ChainID: 1, ContractID: addr(0xaa), ChannelID: hash(0x01)},
		BlockNumber: blockNum,
		Sender:      addr(0x01),
		EventType:   DidCreateChannel,
		Fields:      CreateChannelFields(addr(0x01), addr(0x02), 17, 7890, WeiFromInt64(0)),
		InsertSeq:   seq,
	}
}

func makeChainEvent(blockNum int64, bh EthHash, seq int64, valid bool) Event {
	h := bh
	return Event{
		Key:          ChannelKey{ChainID: 1, ContractID: addr(0xaa), ChannelID: hash(0x01)},
		BlockNumber:  blockNum,
		BlockHash:    &h,
		Sender:       addr(0x01),
		EventType:    DidCreateChannel,
		Fields:       CreateChannelFields(addr(0x01), addr(0x02), 17, 7890, WeiFromInt64(0)),
		InsertSeq:    seq,
		BlockIsValid: valid,
	}
}

func TestIntentPromotion(t *testing.T) {
	intent := makeIntent(1, 1)
	chain := makeChainEvent(2, hash(0xb), 2, true)

	got := SelectCorrelation(intent, []Event{chain})
	if got == nil || *got != hash(0xb) {
		t.Fatalf("expected correlation to chain hash, got %v", got)
	}
}

func TestIntentPromotionOrderIndependent(t *testing.T) {
	intent := makeIntent(1, 2) // inserted after the chain event this time
	chain := makeChainEvent(2, hash(0xb), 1, true)

	got := SelectCorrelation(intent, []Event{chain})
	if got == nil || *got != hash(0xb) {
		t.Fatalf("expected correlation regardless of insertion order, got %v", got)
	}
}

func TestIntentPromotionCompetingChainEvents(t *testing.T) {
	intent := makeIntent(1, 1)
	a := makeChainEvent(2, hash(0xa), 2, true)
	b := makeChainEvent(2, hash(0xb), 3, false) // invalidated by a later reorg

	got := SelectCorrelation(intent, []Event{a, b})
	if got == nil || *got != hash(0xa) {
		t.Fatalf("expected correlation to the still-valid event, got %v", got)
	}
}

func TestIntentNoMatchBelowFloor(t *testing.T) {
	intent := makeIntent(5, 1)
	chain := makeChainEvent(2, hash(0xb), 2, true) // below the intent's block-number floor

	got := SelectCorrelation(intent, []Event{chain})
	if got != nil {
		t.Fatalf("expected no correlation, got %v", got)
	}
}

func TestFieldsEqualIgnoresKeyOrder(t *testing.T) {
	a := []byte(`{"value":"1","extra":"2"}`)
	b := []byte(`{"extra":"2","value":"1"}`)
	if !FieldsEqual(a, b) {
		t.Fatal("expected deep-equal regardless of key order")
	}
}
