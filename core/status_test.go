package core

import (
	"testing"
	"time"
)

func TestBuildChannelStatusNeverSeenChannel(t *testing.T) {
	status, err := BuildChannelStatus(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Channel != nil {
		t.Fatalf("expected nil channel for a never-seen channel, got %+v", status.Channel)
	}
	if status.LatestEvent != nil || status.LatestIntentEvent != nil || status.LatestChainEvent != nil {
		t.Fatal("expected all latest-event fields nil")
	}
	if status.CurrentPayment != nil || status.CurrentRemainingBalance != nil {
		t.Fatal("expected nil payment fields when there is no state update")
	}
	if status.IsInvalid {
		t.Fatal("a never-seen channel is not invalid")
	}
}

func TestBuildChannelStatusNoStateUpdateYet(t *testing.T) {
	sender, receiver := addr(0x01), addr(0x02)
	events := []Event{chainEvent(1, 1, hash(0xa), time.Unix(1000, 0), sender, DidCreateChannel,
		CreateChannelFields(sender, receiver, 17, 7890, WeiFromInt64(0)))}

	status, err := BuildChannelStatus(events, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Channel == nil || status.Channel.State != StateOpen {
		t.Fatalf("expected an open channel, got %+v", status.Channel)
	}
	if status.CurrentPayment != nil || status.CurrentRemainingBalance != nil {
		t.Fatal("expected nil payment fields when there is no state update yet")
	}
}
