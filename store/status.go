package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/synnergy-network/channelledger/core"
)

// GetChannelStatus composes the reducer with the latest state-update
// lookup, serving from the read-cache when one is configured and
// populated.
func (s *Store) GetChannelStatus(key core.ChannelKey, includeIntents bool) (*core.ChannelStatus, error) {
	if includeIntents && s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
	}

	var status *core.ChannelStatus
	err := s.tx(func(tx *sqlx.Tx) error {
		st, err := s.loadStatusTx(tx, key, includeIntents)
		if err != nil {
			return err
		}
		status = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	if includeIntents {
		s.cachePut(key, status)
	}
	return status, nil
}

// loadStatusTx builds a ChannelStatus inside an already-open transaction, so
// the write paths (InsertChannelEvent, InsertChannelIntent, admission,
// reorg) can return a status computed from the same snapshot they just
// wrote without a second round trip through a fresh transaction.
func (s *Store) loadStatusTx(tx *sqlx.Tx, key core.ChannelKey, includeIntents bool) (*core.ChannelStatus, error) {
	events, err := loadFilteredEvents(tx, key, includeIntents)
	if err != nil {
		return nil, err
	}
	latest, err := loadLatestStateTx(tx, key)
	if err != nil {
		return nil, err
	}
	return core.BuildChannelStatus(events, latest)
}

// validateChannelKey rejects a lookup with an absent key component before
// any query runs. A zero-valued component is indistinguishable from an
// absent one at this boundary, so both reject.
func validateChannelKey(key core.ChannelKey) error {
	if key.ChainID == 0 {
		return core.NewValidationError("chain_id must not be null")
	}
	if key.ContractID.IsZero() {
		return core.NewValidationError("contract_id must not be null")
	}
	if key.ChannelID.IsZero() {
		return core.NewValidationError("channel_id must not be null")
	}
	return nil
}

// GetLatestState returns the channel's highest-amount state update, or nil
// if none exists yet.
func (s *Store) GetLatestState(key core.ChannelKey) (*core.StateUpdate, error) {
	if err := validateChannelKey(key); err != nil {
		return nil, err
	}
	var latest *core.StateUpdate
	err := s.tx(func(tx *sqlx.Tx) error {
		l, err := loadLatestStateTx(tx, key)
		if err != nil {
			return err
		}
		latest = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}

type stateUpdateRow struct {
	ID        string       `db:"id"`
	ChainID   int64        `db:"chain_id"`
	Contract  string       `db:"contract_id"`
	Channel   string       `db:"channel_id"`
	Ts        sql.NullTime `db:"ts"`
	Amount    string       `db:"amount"`
	Signature string       `db:"signature"`
	Sender    string       `db:"sender"`
}

func (r stateUpdateRow) toStateUpdate() (*core.StateUpdate, error) {
	contractID, err := core.ParseEthAddress(r.Contract)
	if err != nil {
		return nil, err
	}
	channelID, err := core.ParseEthHash(r.Channel)
	if err != nil {
		return nil, err
	}
	sender, err := core.ParseEthAddress(r.Sender)
	if err != nil {
		return nil, err
	}
	sig, err := core.ParseSignature(r.Signature)
	if err != nil {
		return nil, err
	}
	amount, err := core.ParseWei(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("stored amount: %w", err)
	}
	su := &core.StateUpdate{
		ID:        r.ID,
		Key:       core.ChannelKey{ChainID: r.ChainID, ContractID: contractID, ChannelID: channelID},
		Amount:    amount,
		Signature: sig,
		Sender:    sender,
	}
	if r.Ts.Valid {
		su.Ts = core.NewUnixTime(r.Ts.Time)
	}
	return su, nil
}

func loadLatestStateTx(tx *sqlx.Tx, key core.ChannelKey) (*core.StateUpdate, error) {
	var row stateUpdateRow
	err := tx.Get(&row,
		`SELECT id, chain_id, contract_id, channel_id, ts, amount::text AS amount, signature, sender
		 FROM state_updates
		 WHERE chain_id=$1 AND contract_id=$2 AND channel_id=$3
		 ORDER BY amount DESC LIMIT 1`,
		key.ChainID, key.ContractID.String(), key.ChannelID.String(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest state: %w", err)
	}
	return row.toStateUpdate()
}

func (s *Store) cachePut(key core.ChannelKey, status *core.ChannelStatus) {
	if s.cache != nil {
		s.cache.Put(key, status)
	}
}
