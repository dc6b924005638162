package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/synnergy-network/channelledger/core"
)

// InsertChannelEvent records a real on-chain occurrence, re-runs the
// intent-correlation engine for the channel, and returns the channel's
// fresh status.
func (s *Store) InsertChannelEvent(ev core.Event) (*core.ChannelStatus, error) {
	if ev.BlockHash == nil {
		return nil, core.NewValidationError("block_hash must not be null")
	}
	if !ev.BlockIsValid {
		ev.BlockIsValid = true // validity starts true; only a reorg clears it
	}

	var status *core.ChannelStatus
	err := s.tx(func(tx *sqlx.Tx) error {
		if err := lockChannel(tx, ev.Key); err != nil {
			return err
		}

		id := newRowID()
		_, err := tx.Exec(
			`INSERT INTO channel_events
			 (id, chain_id, contract_id, channel_id, ts, block_number, block_hash, block_is_valid, sender, event_type, fields)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			id, ev.Key.ChainID, ev.Key.ContractID.String(), ev.Key.ChannelID.String(),
			ev.Ts.Time, ev.BlockNumber, ev.BlockHash.String(), ev.BlockIsValid,
			ev.Sender.String(), string(ev.EventType), []byte(ev.Fields),
		)
		if err != nil {
			return fmt.Errorf("insert channel event: %w", err)
		}

		if err := recorrelateIntents(tx, ev.Key); err != nil {
			return err
		}

		st, err := s.loadStatusTx(tx, ev.Key, true)
		if err != nil {
			return err
		}
		status = st
		s.invalidateCache(ev.Key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// InsertChannelIntent records a locally-declared anticipation of a
// not-yet-observed chain event and immediately attempts correlation
// against the chain events already on file, returning the channel's fresh
// status.
func (s *Store) InsertChannelIntent(intent core.Event) (*core.ChannelStatus, error) {
	if intent.Ts.IsZero() {
		intent.Ts = core.NewUnixTime(time.Now().UTC())
	}

	var status *core.ChannelStatus
	err := s.tx(func(tx *sqlx.Tx) error {
		if err := lockChannel(tx, intent.Key); err != nil {
			return err
		}

		candidates, err := loadChainEvents(tx, intent.Key)
		if err != nil {
			return err
		}
		blockHash := core.SelectCorrelation(intent, candidates)

		id := newRowID()
		var blockHashArg any
		if blockHash != nil {
			blockHashArg = blockHash.String()
		}
		_, err = tx.Exec(
			`INSERT INTO channel_intents
			 (id, chain_id, contract_id, channel_id, ts, block_number, block_hash, sender, event_type, fields)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			id, intent.Key.ChainID, intent.Key.ContractID.String(), intent.Key.ChannelID.String(),
			intent.Ts.Time, intent.BlockNumber, blockHashArg, intent.Sender.String(),
			string(intent.EventType), []byte(intent.Fields),
		)
		if err != nil {
			return fmt.Errorf("insert channel intent: %w", err)
		}

		st, err := s.loadStatusTx(tx, intent.Key, true)
		if err != nil {
			return err
		}
		status = st
		s.invalidateCache(intent.Key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// GetChannelEvents returns the ordered event stream for a channel: valid
// chain events plus, optionally, still-uncorrelated intents.
func (s *Store) GetChannelEvents(key core.ChannelKey, includeIntents bool) ([]core.Event, error) {
	var events []core.Event
	err := s.tx(func(tx *sqlx.Tx) error {
		ev, err := loadFilteredEvents(tx, key, includeIntents)
		if err != nil {
			return err
		}
		events = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	core.SortEvents(events)
	return events, nil
}

// loadChainEvents returns every real (non-intent) chain event for a channel,
// valid or not, in insertion order, for use as intent-correlation
// candidates; SelectCorrelation discards the invalid ones.
func loadChainEvents(tx *sqlx.Tx, key core.ChannelKey) ([]core.Event, error) {
	var rows []eventRow
	err := tx.Select(&rows,
		`SELECT id, chain_id, contract_id, channel_id, ts, block_number, block_hash, block_is_valid, sender, event_type, fields, insert_seq
		 FROM channel_events
		 WHERE chain_id=$1 AND contract_id=$2 AND channel_id=$3
		 ORDER BY insert_seq`,
		key.ChainID, key.ContractID.String(), key.ChannelID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("load chain events: %w", err)
	}
	events := make([]core.Event, 0, len(rows))
	for _, r := range rows {
		ev, err := r.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// loadIntents returns every intent for a channel, correlated or not, in
// insertion order.
func loadIntents(tx *sqlx.Tx, key core.ChannelKey) ([]core.Event, error) {
	var rows []eventRow
	err := tx.Select(&rows,
		`SELECT id, chain_id, contract_id, channel_id, ts, block_number, block_hash, sender, event_type, fields, insert_seq
		 FROM channel_intents
		 WHERE chain_id=$1 AND contract_id=$2 AND channel_id=$3
		 ORDER BY insert_seq`,
		key.ChainID, key.ContractID.String(), key.ChannelID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("load intents: %w", err)
	}
	intents := make([]core.Event, 0, len(rows))
	for _, r := range rows {
		ev, err := r.toEvent()
		if err != nil {
			return nil, err
		}
		intents = append(intents, ev)
	}
	return intents, nil
}

// recorrelateIntents re-derives block_hash for every intent of key against
// the current chain-event set. It runs after any write that can change the
// set of valid chain events: an event insert or a reorg validity flip.
func recorrelateIntents(tx *sqlx.Tx, key core.ChannelKey) error {
	candidates, err := loadChainEvents(tx, key)
	if err != nil {
		return err
	}

	intents, err := loadIntents(tx, key)
	if err != nil {
		return err
	}

	for _, intent := range intents {
		newHash := core.SelectCorrelation(intent, candidates)
		var arg any
		if newHash != nil {
			arg = newHash.String()
		}
		current := ""
		if intent.BlockHash != nil {
			current = intent.BlockHash.String()
		}
		want := ""
		if newHash != nil {
			want = newHash.String()
		}
		if current == want {
			continue
		}
		if _, err := tx.Exec(`UPDATE channel_intents SET block_hash=$1 WHERE id=$2`, arg, intent.ID); err != nil {
			return fmt.Errorf("rebind intent: %w", err)
		}
	}
	return nil
}

// loadFilteredEvents applies the status-read filter: valid chain events,
// plus (optionally) intents that remain uncorrelated.
func loadFilteredEvents(tx *sqlx.Tx, key core.ChannelKey, includeIntents bool) ([]core.Event, error) {
	var rows []eventRow
	err := tx.Select(&rows,
		`SELECT id, chain_id, contract_id, channel_id, ts, block_number, block_hash, block_is_valid, sender, event_type, fields, insert_seq
		 FROM channel_events
		 WHERE chain_id=$1 AND contract_id=$2 AND channel_id=$3 AND block_is_valid`,
		key.ChainID, key.ContractID.String(), key.ChannelID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	events := make([]core.Event, 0, len(rows))
	for _, r := range rows {
		ev, err := r.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if includeIntents {
		var irows []eventRow
		err := tx.Select(&irows,
			`SELECT id, chain_id, contract_id, channel_id, ts, block_number, block_hash, sender, event_type, fields, insert_seq
			 FROM channel_intents
			 WHERE chain_id=$1 AND contract_id=$2 AND channel_id=$3 AND block_hash IS NULL`,
			key.ChainID, key.ContractID.String(), key.ChannelID.String(),
		)
		if err != nil {
			return nil, fmt.Errorf("load intents: %w", err)
		}
		for _, r := range irows {
			ev, err := r.toEvent()
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		}
	}
	return events, nil
}

func (s *Store) invalidateCache(key core.ChannelKey) {
	if s.cache != nil {
		s.cache.Invalidate(key)
	}
}
