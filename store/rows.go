package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/synnergy-network/channelledger/core"
)

// eventRow mirrors channel_events/channel_intents for sqlx scanning. Both
// tables share this shape; BlockHash is nullable only for intents.
type eventRow struct {
	ID           string         `db:"id"`
	ChainID      int64          `db:"chain_id"`
	ContractID   string         `db:"contract_id"`
	ChannelID    string         `db:"channel_id"`
	Ts           time.Time      `db:"ts"`
	BlockNumber  int64          `db:"block_number"`
	BlockHash    sql.NullString `db:"block_hash"`
	BlockIsValid sql.NullBool   `db:"block_is_valid"`
	Sender       string         `db:"sender"`
	EventType    string         `db:"event_type"`
	Fields       []byte         `db:"fields"`
	InsertSeq    int64          `db:"insert_seq"`
}

// toEvent converts a scanned row into the core package's unified Event view.
func (r eventRow) toEvent() (core.Event, error) {
	contractID, err := core.ParseEthAddress(r.ContractID)
	if err != nil {
		return core.Event{}, err
	}
	channelID, err := core.ParseEthHash(r.ChannelID)
	if err != nil {
		return core.Event{}, err
	}
	sender, err := core.ParseEthAddress(r.Sender)
	if err != nil {
		return core.Event{}, err
	}

	ev := core.Event{
		ID:          r.ID,
		Key:         core.ChannelKey{ChainID: r.ChainID, ContractID: contractID, ChannelID: channelID},
		Ts:          core.NewUnixTime(r.Ts),
		BlockNumber: r.BlockNumber,
		Sender:      sender,
		EventType:   core.EventType(r.EventType),
		Fields:      json.RawMessage(r.Fields),
		InsertSeq:   r.InsertSeq,
	}
	if r.BlockHash.Valid {
		h, err := core.ParseEthHash(r.BlockHash.String)
		if err != nil {
			return core.Event{}, err
		}
		ev.BlockHash = &h
	}
	if r.BlockIsValid.Valid {
		ev.BlockIsValid = r.BlockIsValid.Bool
	}
	return ev, nil
}

// newRowID generates a surrogate row identifier: a random UUID rendered as
// text.
func newRowID() string {
	return uuid.NewString()
}
