package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUnixTimeMarshal(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"whole seconds", time.Unix(7890, 0), "7890"},
		{"fractional seconds", time.Unix(1000, 250000000), "1000.25"},
		{"zero value is null", time.Time{}, "null"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(NewUnixTime(tc.in))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(b) != tc.want {
				t.Fatalf("got %s want %s", b, tc.want)
			}
		})
	}
}

func TestUnixTimeUnmarshal(t *testing.T) {
	var ts UnixTime
	if err := json.Unmarshal([]byte("7890"), &ts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ts.Unix() != 7890 {
		t.Fatalf("got %d want 7890", ts.Unix())
	}

	if err := json.Unmarshal([]byte("1000.25"), &ts); err != nil {
		t.Fatalf("unmarshal fractional: %v", err)
	}
	if ts.Unix() != 1000 || ts.Nanosecond() != 250000000 {
		t.Fatalf("got %d.%09d want 1000.250000000", ts.Unix(), ts.Nanosecond())
	}

	if err := json.Unmarshal([]byte(`"7890"`), &ts); err == nil {
		t.Fatal("expected error unmarshaling a quoted string into UnixTime")
	}
}

func TestEventJSONCarriesEpochTimestamps(t *testing.T) {
	sender, receiver := addr(0x01), addr(0x02)
	ev := chainEvent(1, 1, hash(0xa), time.Unix(7890, 0), sender, DidCreateChannel,
		CreateChannelFields(sender, receiver, 17, 7890, WeiFromInt64(0)))

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	if !strings.Contains(string(b), `"ts":7890`) {
		t.Fatalf("event ts is not epoch seconds: %s", b)
	}

	su := StateUpdate{Ts: NewUnixTime(time.Unix(1234, 0)), Amount: WeiFromInt64(1)}
	b, err = json.Marshal(su)
	if err != nil {
		t.Fatalf("marshal state update: %v", err)
	}
	if !strings.Contains(string(b), `"ts":1234`) {
		t.Fatalf("state update ts is not epoch seconds: %s", b)
	}
}

func TestChannelJSONCarriesEpochTimestamps(t *testing.T) {
	sender, receiver := addr(0x01), addr(0x02)
	events := []Event{chainEvent(1, 1, hash(0xa), time.Unix(7890, 0), sender, DidCreateChannel,
		CreateChannelFields(sender, receiver, 17, 7890, WeiFromInt64(0)))}

	status, err := BuildChannelStatus(events, nil)
	if err != nil {
		t.Fatalf("build status: %v", err)
	}
	b, err := json.Marshal(status.Channel)
	if err != nil {
		t.Fatalf("marshal channel: %v", err)
	}
	if !strings.Contains(string(b), `"opened_on":7890`) {
		t.Fatalf("opened_on is not epoch seconds: %s", b)
	}
	if !strings.Contains(string(b), `"settlement_started_on":null`) {
		t.Fatalf("unset settlement_started_on should be null: %s", b)
	}
}
