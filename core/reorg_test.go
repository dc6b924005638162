package core

import "testing"

func TestComputeValidityFlipsScenario(t *testing.T) {
	key := ChannelKey{ChainID: 1, ContractID: addr(0xaa), ChannelID: hash(0x01)}
	a, b, c, x := hash(0xa), hash(0xb), hash(0xc), hash(0xff)

	mk := func(seq, blockNum int64, bh EthHash) Event {
		h := bh
		return Event{ID: "e", Key: key, BlockNumber: blockNum, BlockHash: &h, BlockIsValid: true, InsertSeq: seq}
	}

	events := []Event{
		mk(1, 1, a),
		mk(2, 2, b),
		mk(3, 3, c),
	}

	flips, changed := ComputeValidityFlips(1, []EthHash{a, b}, events)
	if len(flips) != 1 {
		t.Fatalf("expected 1 flip, got %d: %+v", len(flips), flips)
	}
	if flips[0].EventID != "e" || flips[0].NewValid {
		t.Fatalf("expected block-3 event invalidated, got %+v", flips[0])
	}
	if len(changed) != 1 || changed[0] != key {
		t.Fatalf("expected one changed channel, got %v", changed)
	}

	// Mark block 3 invalid so the next call starts from a mixed-validity set.
	events[2].BlockIsValid = false

	flips2, changed2 := ComputeValidityFlips(1, []EthHash{a, x, c}, events)
	if len(flips2) != 2 {
		t.Fatalf("expected 2 flips, got %d: %+v", len(flips2), flips2)
	}
	if len(changed2) != 1 {
		t.Fatalf("expected one changed channel, got %v", changed2)
	}
}

func TestComputeValidityFlipsIgnoresEventsBelowFirst(t *testing.T) {
	key := ChannelKey{ChainID: 1, ContractID: addr(0xaa), ChannelID: hash(0x01)}
	h := hash(0xa)
	events := []Event{{ID: "e0", Key: key, BlockNumber: 1, BlockHash: &h, BlockIsValid: true}}

	flips, _ := ComputeValidityFlips(2, []EthHash{hash(0xb)}, events)
	if len(flips) != 0 {
		t.Fatalf("expected no flips for events below first_block_num, got %+v", flips)
	}
}

func TestComputeValidityFlipsPastListIsInvalid(t *testing.T) {
	key := ChannelKey{ChainID: 1, ContractID: addr(0xaa), ChannelID: hash(0x01)}
	h := hash(0xa)
	events := []Event{{ID: "e5", Key: key, BlockNumber: 5, BlockHash: &h, BlockIsValid: true}}

	flips, changed := ComputeValidityFlips(1, []EthHash{hash(0x1)}, events) // list only covers block 1
	if len(flips) != 1 || flips[0].NewValid {
		t.Fatalf("expected block past list end invalidated, got %+v", flips)
	}
	if len(changed) != 1 {
		t.Fatalf("expected one changed channel, got %v", changed)
	}
}
