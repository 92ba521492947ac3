package cmd

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/spf13/cobra"
)

type sendJSON struct {
	Account       string                    `json:"account"`
	Outcome       domain.TransactionOutcome `json:"outcome"`
	Success       bool                      `json:"success"`
	Status        string                    `json:"status"`
	TransactionID string                    `json:"transaction_id,omitempty"`
	Response      json.RawMessage           `json:"response,omitempty"`
}

func newSendCmd(loader *appLoader) *cobra.Command {
	var (
		accountID string
		txFile    string
		txBase64  string
		txID      string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a prepared transaction to the paired wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			txBytes, err := readTransactionBytes(txFile, txBase64)
			if err != nil {
				return err
			}

			app, err := loader.load(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, &err)

			if err := app.wallet.Init(cmd.Context()); err != nil {
				return fmt.Errorf("initialize wallet: %w", err)
			}

			result, err := app.wallet.Send(cmd.Context(), domain.Transaction{
				ID:    strings.TrimSpace(txID),
				Bytes: txBytes,
			}, accountID)
			if err != nil {
				return fmt.Errorf("send transaction: %w", err)
			}

			if err := writeSendOutput(cmd, accountID, result, asJSON); err != nil {
				return err
			}
			return result.Err()
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Paired account to sign with, e.g. 0.0.1234")
	cmd.Flags().StringVar(&txFile, "tx-file", "", "File holding the frozen transaction bytes")
	cmd.Flags().StringVar(&txBase64, "tx-base64", "", "Frozen transaction bytes, base64 encoded")
	cmd.Flags().StringVar(&txID, "tx-id", "", "Transaction id assigned when the transaction was frozen")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	_ = cmd.MarkFlagRequired("account")
	cmd.MarkFlagsMutuallyExclusive("tx-file", "tx-base64")
	cmd.MarkFlagsOneRequired("tx-file", "tx-base64")

	return cmd
}

func readTransactionBytes(path, encoded string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read transaction file: %w", err)
		}
		if len(data) == 0 {
			return nil, errors.New("transaction file is empty")
		}
		return data, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode transaction bytes: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("transaction bytes are empty")
	}
	return data, nil
}

func writeSendOutput(cmd *cobra.Command, accountID string, result domain.TransactionResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sendJSON{
			Account:       string(domain.NormalizeAccountID(accountID)),
			Outcome:       result.Outcome,
			Success:       result.Success,
			Status:        result.Status,
			TransactionID: result.TransactionID,
			Response:      result.RawResponse,
		})
	}

	var err error
	switch result.Outcome {
	case domain.OutcomeConfirmed:
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Transaction %s submitted (%s)\n", result.TransactionID, result.Status)
	case domain.OutcomeUnverifiable:
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Transaction submitted (%s) but no transaction id was returned\n", result.Status)
	default:
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Transaction rejected (%s)\n", valueOrMissing(result.Status))
	}
	return err
}

func valueOrMissing(value string) string {
	if strings.TrimSpace(value) == "" {
		return "no status"
	}
	return value
}
