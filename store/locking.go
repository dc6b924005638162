package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/synnergy-network/channelledger/core"
)

// lockChannel serializes per-channel operations via a row-level lock on
// channel_locks, so state-update admission and event insertion observe a
// consistent "latest" read during their own execution. The row is created
// on first use.
func lockChannel(tx *sqlx.Tx, key core.ChannelKey) error {
	_, err := tx.Exec(
		`INSERT INTO channel_locks (chain_id, contract_id, channel_id) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		key.ChainID, key.ContractID.String(), key.ChannelID.String(),
	)
	if err != nil {
		return fmt.Errorf("lock channel: %w", err)
	}
	var discard int
	err = tx.Get(&discard,
		`SELECT 1 FROM channel_locks WHERE chain_id=$1 AND contract_id=$2 AND channel_id=$3 FOR UPDATE`,
		key.ChainID, key.ContractID.String(), key.ChannelID.String(),
	)
	if err != nil {
		return fmt.Errorf("lock channel: %w", err)
	}
	return nil
}

// lockChain serializes the coarser, cross-channel SetRecentBlocks pass via
// a transaction-scoped Postgres advisory lock keyed by chain id, released
// automatically on commit or rollback. A reorg touches many channels at
// once and must be atomic with respect to readers, which per-row locks
// cannot provide.
func lockChain(tx *sqlx.Tx, chainID int64) error {
	_, err := tx.Exec(`SELECT pg_advisory_xact_lock($1)`, chainID)
	if err != nil {
		return fmt.Errorf("lock chain: %w", err)
	}
	return nil
}
