package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/observability"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
	"github.com/rs/zerolog"
)

var (
	statusFields        = []string{"status", "Status"}
	transactionIDFields = []string{"transactionId", "transactionID", "transaction_id", "txId", "TransactionId"}
	signedTxFields      = []string{"signedTransaction", "signed_transaction", "SignedTransaction"}
)

// responseEnvelope is the normalized view of a bridge send-transaction response.
type responseEnvelope struct {
	Status                  string
	TransactionID           string
	SignedTransactionID     string
	BridgeLastTransactionID string
}

// transactionIDExtractor yields an identifier candidate or "". Extractors are
// tried in declaration order and the first non-empty value wins.
type transactionIDExtractor func(tx domain.Transaction, env responseEnvelope) string

var transactionIDExtractors = []transactionIDExtractor{
	func(tx domain.Transaction, _ responseEnvelope) string { return tx.ID },
	func(_ domain.Transaction, env responseEnvelope) string { return env.TransactionID },
	func(_ domain.Transaction, env responseEnvelope) string { return env.SignedTransactionID },
	func(_ domain.Transaction, env responseEnvelope) string { return env.BridgeLastTransactionID },
}

func resolveTransactionID(tx domain.Transaction, env responseEnvelope) string {
	for _, extract := range transactionIDExtractors {
		if id := strings.TrimSpace(extract(tx, env)); id != "" {
			return id
		}
	}
	return ""
}

type bridgeSource interface {
	Bridge() ports.Bridge
}

type TransactionDispatcher struct {
	state   *ConnectionStateStore
	bridges bridgeSource
	logger  zerolog.Logger
}

func NewTransactionDispatcher(state *ConnectionStateStore, bridges bridgeSource, logger zerolog.Logger) *TransactionDispatcher {
	return &TransactionDispatcher{
		state:   state,
		bridges: bridges,
		logger:  logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Send dispatches a prepared transaction to the paired wallet. Rejected and
// unverifiable outcomes are returned as results; errors are reserved for
// precondition, transport and decode failures.
func (d *TransactionDispatcher) Send(ctx context.Context, tx domain.Transaction, accountID string) (domain.TransactionResult, error) {
	snapshot := d.state.Snapshot()
	if snapshot.State != domain.StatePaired || snapshot.Record == nil {
		return domain.TransactionResult{}, domain.ErrNotPaired
	}

	account := domain.NormalizeAccountID(accountID)
	if !snapshot.Record.HasAccount(accountID) {
		return domain.TransactionResult{}, &domain.UnknownAccountError{AccountID: account}
	}

	bridge := d.bridges.Bridge()
	if bridge == nil {
		return domain.TransactionResult{}, domain.ErrNotPaired
	}

	response, err := bridge.SendTransaction(ctx, account, tx)
	if err != nil {
		return domain.TransactionResult{}, fmt.Errorf("send transaction: %w", err)
	}

	env, err := decodeEnvelope(response)
	if err != nil {
		return domain.TransactionResult{}, fmt.Errorf("decode transaction response: %w", err)
	}

	result := domain.TransactionResult{
		Success:     env.Status == domain.TransactionStatusSuccess,
		Status:      env.Status,
		RawResponse: response.Raw,
	}

	switch {
	case !result.Success:
		result.Outcome = domain.OutcomeRejected
	default:
		result.TransactionID = resolveTransactionID(tx, env)
		if result.TransactionID == "" {
			result.Outcome = domain.OutcomeUnverifiable
		} else {
			result.Outcome = domain.OutcomeConfirmed
		}
	}

	observability.RecordTransaction(string(result.Outcome))
	d.logger.Info().
		Str("account", string(account)).
		Str("status", result.Status).
		Str("outcome", string(result.Outcome)).
		Str("transaction_id", result.TransactionID).
		Msg("transaction dispatched")

	return result, nil
}

func decodeEnvelope(response ports.BridgeResponse) (responseEnvelope, error) {
	env := responseEnvelope{BridgeLastTransactionID: strings.TrimSpace(response.LastTransactionID)}

	raw := bytes.TrimSpace(response.Raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return env, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return responseEnvelope{}, err
	}

	env.Status = firstScalar(fields, statusFields)
	env.TransactionID = firstScalar(fields, transactionIDFields)

	for _, name := range signedTxFields {
		nestedRaw, ok := fields[name]
		if !ok {
			continue
		}
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(nestedRaw, &nested); err != nil {
			continue
		}
		if id := firstScalar(nested, transactionIDFields); id != "" {
			env.SignedTransactionID = id
			break
		}
	}

	return env, nil
}

// firstScalar returns the first non-empty field rendered as a trimmed string.
// Objects, arrays and null render as "".
func firstScalar(fields map[string]json.RawMessage, names []string) string {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if value := scalarString(raw); value != "" {
			return value
		}
	}
	return ""
}

func scalarString(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var number json.Number
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&number); err == nil {
		return number.String()
	}

	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		return strconv.FormatBool(flag)
	}

	return ""
}
