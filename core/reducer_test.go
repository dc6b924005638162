package core

import (
	"strings"
	"testing"
	"time"
)

func addr(b byte) EthAddress {
	var a EthAddress
	a[0] = b
	return a
}

func hash(b byte) EthHash {
	var h EthHash
	h[0] = b
	return h
}

func chainEvent(seq int64, blockNum int64, bh EthHash, ts time.Time, sender EthAddress, evType EventType, fields []byte) Event {
	h := bh
	return Event{
		ID:           "evt",
		Key:          ChannelKey{ChainID: 1, ContractID: addr(0xaa), ChannelID: hash(0x01)},
		Ts:           NewUnixTime(ts),
		BlockNumber:  blockNum,
		BlockHash:    &h,
		Sender:       sender,
		EventType:    evType,
		Fields:       fields,
		BlockIsValid: true,
		InsertSeq:    seq,
	}
}

func TestReducerHappyLifecycle(t *testing.T) {
	sender, receiver := addr(0x01), addr(0x02)
	now := time.Unix(1000, 0)

	events := []Event{
		chainEvent(1, 1, hash(0xa), now, sender, DidCreateChannel,
			CreateChannelFields(sender, receiver, 17, 7890, WeiFromInt64(0))),
		chainEvent(2, 2, hash(0xb), now.Add(time.Second), sender, DidDeposit,
			DepositFields(WeiFromInt64(500))),
	}

	latest, _ := ParseWei("150")
	status, err := BuildChannelStatus(events, &StateUpdate{Amount: latest})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Channel == nil || status.Channel.State != StateOpen {
		t.Fatalf("expected OPEN, got %+v", status.Channel)
	}
	if status.Channel.Value.String() != "500" {
		t.Fatalf("expected value 500, got %s", status.Channel.Value)
	}
	if status.CurrentPayment.String() != "150" {
		t.Fatalf("expected payment 150, got %s", status.CurrentPayment)
	}
	if status.CurrentRemainingBalance.String() != "350" {
		t.Fatalf("expected remaining 350, got %s", status.CurrentRemainingBalance)
	}
}

func TestReducerSettleIntent(t *testing.T) {
	sender, receiver := addr(0x01), addr(0x02)
	now := time.Unix(1000, 0)

	events := []Event{
		chainEvent(1, 1, hash(0xa), now, sender, DidCreateChannel,
			CreateChannelFields(sender, receiver, 17, 7890, WeiFromInt64(0))),
		chainEvent(2, 2, hash(0xb), now.Add(time.Second), sender, DidDeposit,
			DepositFields(WeiFromInt64(500))),
		{
			ID:          "intent-1",
			Key:         ChannelKey{ChainID: 1, ContractID: addr(0xaa), ChannelID: hash(0x01)},
			Ts:          NewUnixTime(now.Add(2 * time.Second)),
			BlockNumber: 2,
			BlockHash:   nil,
			Sender:      sender,
			EventType:   DidStartSettle,
			Fields:      StartSettleFields(WeiFromInt64(123)),
			InsertSeq:   3,
		},
	}

	status, err := BuildChannelStatus(events, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Channel.State != StateSettling {
		t.Fatalf("expected SETTLING, got %s", status.Channel.State)
	}
	if !status.Channel.StateIsIntent {
		t.Fatal("expected state_is_intent = true")
	}
	if status.LatestIntentEvent == nil || status.LatestIntentEvent.EventType != DidStartSettle {
		t.Fatalf("expected latest intent event DidStartSettle, got %+v", status.LatestIntentEvent)
	}
	if status.LatestChainEvent == nil || status.LatestChainEvent.EventType != DidDeposit {
		t.Fatalf("expected latest chain event DidDeposit, got %+v", status.LatestChainEvent)
	}
}

func TestReducerDoubleCreateIsInvalid(t *testing.T) {
	senderA, senderB, receiver := addr(0x01), addr(0x03), addr(0x02)
	now := time.Unix(1000, 0)

	events := []Event{
		chainEvent(1, 1, hash(0xa), now, senderA, DidCreateChannel,
			CreateChannelFields(senderA, receiver, 17, 7890, WeiFromInt64(0))),
		chainEvent(2, 2, hash(0xb), now.Add(time.Second), senderB, DidCreateChannel,
			CreateChannelFields(senderB, receiver, 17, 7890, WeiFromInt64(0))),
	}

	status, err := BuildChannelStatus(events, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.IsInvalid {
		t.Fatal("expected is_invalid = true")
	}
	want := "invalid channel state for event DidCreateChannel: got CS_OPEN but should be NULL"
	if status.IsInvalidReason != want {
		t.Fatalf("got reason %q want %q", status.IsInvalidReason, want)
	}
	// The channel snapshot reported is the pre-violation state.
	if status.Channel.Sender != senderA {
		t.Fatalf("expected pre-violation snapshot (senderA), got sender %v", status.Channel.Sender)
	}
}

func TestReducerMissingFieldError(t *testing.T) {
	sender, receiver := addr(0x01), addr(0x02)
	now := time.Unix(1000, 0)
	bad := []byte(`{"sender":"` + sender.String() + `","receiver":"` + receiver.String() + `","settlement_period":17,"until":7890}`)

	events := []Event{chainEvent(1, 1, hash(0xa), now, sender, DidCreateChannel, bad)}
	_, err := BuildChannelStatus(events, nil)
	if err == nil || !strings.Contains(err.Error(), "must not be null") {
		t.Fatalf("expected a 'must not be null' error, got %v", err)
	}
}
