package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/synnergy-network/channelledger/core"
	"github.com/synnergy-network/channelledger/store"
)

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	bail(err)
	fmt.Println(string(b))
}

func requiredFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		_ = cmd.Usage()
		logrus.Fatalf("missing required flag --%s", name)
	}
	return v
}

func parseChannelKey(cmd *cobra.Command) core.ChannelKey {
	chainID, _ := cmd.Flags().GetInt64("chain-id")
	contractHex := requiredFlag(cmd, "contract-id")
	channelHex := requiredFlag(cmd, "channel-id")

	contractID, err := core.ParseEthAddress(contractHex)
	bail(err)
	channelID, err := core.ParseEthHash(channelHex)
	bail(err)

	return core.ChannelKey{ChainID: chainID, ContractID: contractID, ChannelID: channelID}
}

var setupDatabaseCmd = &cobra.Command{
	Use:   "setup-database",
	Short: "Install or upgrade the ledger schema",
	Run: func(cmd *cobra.Command, args []string) {
		bail(store.SetupDatabase(cfg.DSN()))
		fmt.Println("schema installed")
	},
}

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Check connectivity and report version information",
	Run: func(cmd *cobra.Command, args []string) {
		info, err := db.Selftest()
		bail(err)
		printJSON(info)
	},
}

var insertStateUpdateCmd = &cobra.Command{
	Use:   "insert-state-update",
	Short: "Admit a signed state update",
	Run: func(cmd *cobra.Command, args []string) {
		key := parseChannelKey(cmd)
		amountStr := requiredFlag(cmd, "amount")
		sigHex := requiredFlag(cmd, "signature")
		senderHex := requiredFlag(cmd, "sender")

		amount, err := core.ParseWei(amountStr)
		bail(err)
		sig, err := core.ParseSignature(sigHex)
		bail(err)
		sender, err := core.ParseEthAddress(senderHex)
		bail(err)

		res, err := db.InsertStateUpdate(core.StateUpdate{
			Key: key, Ts: core.NewUnixTime(time.Now().UTC()), Amount: amount, Signature: sig, Sender: sender,
		})
		if err != nil {
			doc := map[string]any{"error": true, "reason": err.Error()}
			var qerr *core.QuarantineError
			if errors.As(err, &qerr) {
				doc["status"] = qerr.Status
			}
			printJSON(doc)
			return
		}
		printJSON(res)
	},
}

var getStateUpdateStatusCmd = &cobra.Command{
	Use:   "get-state-update-status",
	Short: "Classify a candidate state update without admitting it",
	Run: func(cmd *cobra.Command, args []string) {
		key := parseChannelKey(cmd)
		amountStr := requiredFlag(cmd, "amount")
		sigHex := requiredFlag(cmd, "signature")
		senderHex := requiredFlag(cmd, "sender")

		amount, err := core.ParseWei(amountStr)
		bail(err)
		sig, err := core.ParseSignature(sigHex)
		bail(err)
		sender, err := core.ParseEthAddress(senderHex)
		bail(err)

		status, err := db.GetStateUpdateStatus(core.StateUpdate{Key: key, Amount: amount, Signature: sig, Sender: sender})
		bail(err)
		printJSON(status)
	},
}

var getLatestStateCmd = &cobra.Command{
	Use:   "get-latest-state",
	Short: "Fetch a channel's highest-amount state update",
	Run: func(cmd *cobra.Command, args []string) {
		key := parseChannelKey(cmd)
		latest, err := db.GetLatestState(key)
		bail(err)
		printJSON(latest)
	},
}

var insertChannelEventCmd = &cobra.Command{
	Use:   "insert-channel-event",
	Short: "Record an observed on-chain event",
	Run: func(cmd *cobra.Command, args []string) {
		ev, err := eventFromFlags(cmd, false)
		bail(err)
		status, err := db.InsertChannelEvent(ev)
		bail(err)
		printJSON(status)
	},
}

var insertChannelIntentCmd = &cobra.Command{
	Use:   "insert-channel-intent",
	Short: "Record a locally-declared anticipated on-chain event",
	Run: func(cmd *cobra.Command, args []string) {
		ev, err := eventFromFlags(cmd, true)
		bail(err)
		status, err := db.InsertChannelIntent(ev)
		bail(err)
		printJSON(status)
	},
}

var setRecentBlocksCmd = &cobra.Command{
	Use:   "set-recent-blocks",
	Short: "Assert the canonical block-hash suffix for a chain",
	Run: func(cmd *cobra.Command, args []string) {
		chainID, _ := cmd.Flags().GetInt64("chain-id")
		firstBlockNum, _ := cmd.Flags().GetInt64("first-block-num")
		hashStrs, _ := cmd.Flags().GetStringSlice("hashes")

		hashes := make([]core.EthHash, len(hashStrs))
		for i, h := range hashStrs {
			parsed, err := core.ParseEthHash(h)
			bail(err)
			hashes[i] = parsed
		}

		result, err := db.SetRecentBlocks(chainID, firstBlockNum, hashes)
		bail(err)
		printJSON(result)
	},
}

var getChannelStatusCmd = &cobra.Command{
	Use:   "get-channel-status",
	Short: "Fetch a channel's composed status document",
	Run: func(cmd *cobra.Command, args []string) {
		key := parseChannelKey(cmd)
		includeIntents, _ := cmd.Flags().GetBool("include-intents")
		status, err := db.GetChannelStatus(key, includeIntents)
		bail(err)
		printJSON(status)
	},
}

var getChannelEventsCmd = &cobra.Command{
	Use:   "get-channel-events",
	Short: "Fetch a channel's ordered event stream",
	Run: func(cmd *cobra.Command, args []string) {
		key := parseChannelKey(cmd)
		includeIntents, _ := cmd.Flags().GetBool("include-intents")
		events, err := db.GetChannelEvents(key, includeIntents)
		bail(err)
		printJSON(events)
	},
}

// eventFromFlags builds a core.Event from the shared event-authoring flags.
// intent callers leave --block-hash unset; chain-event callers must set it.
func eventFromFlags(cmd *cobra.Command, isIntent bool) (core.Event, error) {
	key := parseChannelKey(cmd)
	blockNum, _ := cmd.Flags().GetInt64("block-number")
	senderHex := requiredFlag(cmd, "sender")
	eventType := requiredFlag(cmd, "event-type")
	fieldsJSON := requiredFlag(cmd, "fields")
	blockHashHex, _ := cmd.Flags().GetString("block-hash")

	sender, err := core.ParseEthAddress(senderHex)
	if err != nil {
		return core.Event{}, err
	}

	ev := core.Event{
		Key:         key,
		Ts:          core.NewUnixTime(time.Now().UTC()),
		BlockNumber: blockNum,
		Sender:      sender,
		EventType:   core.EventType(eventType),
		Fields:      []byte(fieldsJSON),
	}
	if !isIntent {
		if blockHashHex == "" {
			return core.Event{}, core.NewValidationError("block_hash must not be null")
		}
		h, err := core.ParseEthHash(blockHashHex)
		if err != nil {
			return core.Event{}, err
		}
		ev.BlockHash = &h
		ev.BlockIsValid = true
	}
	return ev, nil
}

func init() {
	for _, cmd := range []*cobra.Command{
		insertStateUpdateCmd, getStateUpdateStatusCmd, getLatestStateCmd,
		insertChannelEventCmd, insertChannelIntentCmd, getChannelStatusCmd, getChannelEventsCmd,
	} {
		cmd.Flags().Int64("chain-id", 1, "Chain id")
		cmd.Flags().String("contract-id", "", "Broker contract address (40 hex chars) [required]")
		cmd.Flags().String("channel-id", "", "Channel id (64 hex chars) [required]")
	}

	for _, cmd := range []*cobra.Command{insertStateUpdateCmd, getStateUpdateStatusCmd} {
		cmd.Flags().String("amount", "", "Wei amount, decimal string [required]")
		cmd.Flags().String("signature", "", "65-byte ECDSA signature, hex [required]")
		cmd.Flags().String("sender", "", "Expected sender address, hex [required]")
	}

	for _, cmd := range []*cobra.Command{insertChannelEventCmd, insertChannelIntentCmd} {
		cmd.Flags().Int64("block-number", 0, "Block number")
		cmd.Flags().String("sender", "", "Event sender address, hex [required]")
		cmd.Flags().String("event-type", "", "DidCreateChannel|DidDeposit|DidStartSettle|DidSettle [required]")
		cmd.Flags().String("fields", "", "Event fields payload, JSON [required]")
	}
	insertChannelEventCmd.Flags().String("block-hash", "", "Block hash, hex [required]")

	setRecentBlocksCmd.Flags().Int64("chain-id", 1, "Chain id")
	setRecentBlocksCmd.Flags().Int64("first-block-num", 0, "First block number of the asserted canonical suffix")
	setRecentBlocksCmd.Flags().StringSlice("hashes", nil, "Canonical block hashes, in order, hex")

	getChannelStatusCmd.Flags().Bool("include-intents", true, "Include uncorrelated intents")
	getChannelEventsCmd.Flags().Bool("include-intents", true, "Include uncorrelated intents")
}
