package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func Execute() error {
	return ExecuteContext(context.Background())
}

func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	loader := &appLoader{wire: wireApp}

	rootCmd := &cobra.Command{
		Use:           "ttw",
		Short:         "TraceTrade wallet (ttw): pair a ledger wallet and submit transactions",
		Long:          "ttw (TraceTrade wallet) pairs with a wallet through the local relay bridge, keeps the pairing across runs, and dispatches prepared transactions to the paired account.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&loader.configPath, "config", "", "Config file (default: ~/.tracetrade/wallet.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(loader),
		newPairCmd(loader),
		newStatusCmd(loader),
		newDisconnectCmd(loader),
		newSendCmd(loader),
		newWatchCmd(loader),
	)

	return rootCmd
}
