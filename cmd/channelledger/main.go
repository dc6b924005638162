package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/synnergy-network/channelledger/core"
	"github.com/synnergy-network/channelledger/pkg/config"
	"github.com/synnergy-network/channelledger/store"
)

var (
	cfg *config.Config
	db  *store.Store
)

func initMiddleware(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	loaded, err := config.LoadFromEnv()
	bail(err)
	cfg = loaded

	if level, levelErr := logrus.ParseLevel(cfg.Logging.Level); levelErr == nil {
		logrus.SetLevel(level)
	}

	var opts []store.Option
	if cfg.Cache.Enabled {
		opts = append(opts, store.WithCache(cfg.Cache.Capacity))
	}
	metrics := core.NewMetrics()
	opts = append(opts, store.WithMetrics(metrics))

	s, err := store.NewStore(cfg.DSN(), opts...)
	bail(err)
	db = s
}

func bail(err error) {
	if err != nil {
		logrus.Fatalf("%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:              "channelledger",
	Short:            "Operate the off-chain payment channel ledger",
	PersistentPreRun: initMiddleware,
}

func main() {
	rootCmd.AddCommand(
		setupDatabaseCmd,
		selftestCmd,
		insertStateUpdateCmd,
		getStateUpdateStatusCmd,
		getLatestStateCmd,
		insertChannelEventCmd,
		insertChannelIntentCmd,
		setRecentBlocksCmd,
		getChannelStatusCmd,
		getChannelEventsCmd,
	)
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("%v", err)
	}
	os.Exit(0)
}
