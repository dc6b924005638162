package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/synnergy-network/channelledger/core"
)

// SetRecentBlocksResult is the return value of SetRecentBlocks.
type SetRecentBlocksResult struct {
	UpdatedEventCount int                   `json:"updated_event_count"`
	UpdatedChannels   []*core.ChannelStatus `json:"updated_channels"`
}

// SetRecentBlocks asserts the canonical block-hash suffix for a chain
// starting at firstBlockNum and flips block_is_valid on every affected
// channel_events row, then rebinds intent correlation and
// reports each touched channel's fresh status, ordered by first flip.
func (s *Store) SetRecentBlocks(chainID, firstBlockNum int64, hashes []core.EthHash) (*SetRecentBlocksResult, error) {
	var result SetRecentBlocksResult
	err := s.tx(func(tx *sqlx.Tx) error {
		if err := lockChain(tx, chainID); err != nil {
			return err
		}

		var rows []eventRow
		err := tx.Select(&rows,
			`SELECT id, chain_id, contract_id, channel_id, ts, block_number, block_hash, block_is_valid, sender, event_type, fields, insert_seq
			 FROM channel_events
			 WHERE chain_id=$1 AND block_number >= $2
			 ORDER BY insert_seq`,
			chainID, firstBlockNum,
		)
		if err != nil {
			return fmt.Errorf("load reorg candidates: %w", err)
		}
		events := make([]core.Event, 0, len(rows))
		for _, r := range rows {
			ev, err := r.toEvent()
			if err != nil {
				return err
			}
			events = append(events, ev)
		}

		flips, changedKeys := core.ComputeValidityFlips(firstBlockNum, hashes, events)
		for _, flip := range flips {
			if _, err := tx.Exec(`UPDATE channel_events SET block_is_valid=$1 WHERE id=$2`, flip.NewValid, flip.EventID); err != nil {
				return fmt.Errorf("apply reorg flip: %w", err)
			}
		}
		if s.metrics != nil && len(flips) > 0 {
			s.metrics.ReorgFlips.Add(float64(len(flips)))
			s.metrics.ReorgChannels.Add(float64(len(changedKeys)))
		}

		for _, key := range changedKeys {
			if err := recorrelateIntents(tx, key); err != nil {
				return err
			}
		}

		statuses := make([]*core.ChannelStatus, 0, len(changedKeys))
		for _, key := range changedKeys {
			st, err := s.loadStatusTx(tx, key, true)
			if err != nil {
				return err
			}
			statuses = append(statuses, st)
			s.invalidateCache(key)
		}

		result = SetRecentBlocksResult{UpdatedEventCount: len(flips), UpdatedChannels: statuses}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
