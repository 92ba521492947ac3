package cmd

import (
	"fmt"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/spf13/cobra"
)

func newPairCmd(loader *appLoader) *cobra.Command {
	var noSpinner bool

	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Pair a wallet, or reuse the existing pairing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, &err)

			var account domain.AccountID
			if noSpinner {
				account, err = app.wallet.Pair(cmd.Context())
			} else {
				account, err = runPairSpinner(cmd.Context(), cmd.ErrOrStderr(), app.cfg.Pairing.Timeout, app.now, app.wallet.Pair)
			}
			if err != nil {
				return fmt.Errorf("pair wallet: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Paired with account %s\n", account)
			return err
		},
	}

	cmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "Do not show the waiting spinner")
	return cmd
}

func newDisconnectCmd(loader *appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the paired wallet and forget the pairing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, &err)

			if err := app.wallet.Init(cmd.Context()); err != nil {
				return fmt.Errorf("initialize wallet: %w", err)
			}
			if err := app.wallet.Disconnect(cmd.Context()); err != nil {
				return fmt.Errorf("disconnect wallet: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Wallet disconnected")
			return err
		},
	}
}

func closeApp(app *app, errp *error) {
	if closeErr := app.Close(); closeErr != nil && *errp == nil {
		*errp = fmt.Errorf("close wallet: %w", closeErr)
	}
}
