package domain

import "encoding/json"

// TransactionStatusSuccess is the only status the wallet reports for an accepted transaction.
const TransactionStatusSuccess = "SUCCESS"

// Transaction is a prepared, frozen and not yet submitted ledger transaction.
type Transaction struct {
	ID    string
	Bytes []byte
}

type TransactionOutcome string

const (
	OutcomeConfirmed    TransactionOutcome = "confirmed"
	OutcomeRejected     TransactionOutcome = "rejected"
	OutcomeUnverifiable TransactionOutcome = "unverifiable"
)

type TransactionResult struct {
	Success       bool
	TransactionID string
	Status        string
	Outcome       TransactionOutcome
	RawResponse   json.RawMessage
}

// Err maps business-level outcomes to their typed errors. Confirmed results return nil.
func (r TransactionResult) Err() error {
	switch r.Outcome {
	case OutcomeRejected:
		return &TransactionRejectedError{Status: r.Status}
	case OutcomeUnverifiable:
		return &TransactionUnverifiableError{Status: r.Status}
	default:
		return nil
	}
}
