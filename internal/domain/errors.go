package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrKeyNotFound             = errors.New("key not found")
	ErrStorageCorrupt          = errors.New("storage is corrupt")
	ErrInitialization          = errors.New("wallet bridge initialization failed")
	ErrReloadRequired          = errors.New("wallet storage was reset; reload required")
	ErrPairingTimeout          = errors.New("timed out waiting for wallet pairing")
	ErrPairingConflict         = errors.New("pairing event for a different account while paired")
	ErrSessionDisconnected     = errors.New("wallet session disconnected")
	ErrNotPaired               = errors.New("wallet is not paired")
	ErrUnknownAccount          = errors.New("account is not part of the paired session")
	ErrTransactionRejected     = errors.New("transaction rejected by wallet")
	ErrTransactionUnverifiable = errors.New("transaction submitted but its identifier could not be resolved")
)

// InitializationError is terminal: the caller should reload or clear site data.
type InitializationError struct {
	Attempts       int
	ReloadRequired bool
	Err            error
}

func (e *InitializationError) Error() string {
	msg := fmt.Sprintf("wallet bridge initialization failed after %d attempts; reload the application or clear its local data", e.Attempts)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InitializationError) Unwrap() error { return e.Err }

func (e *InitializationError) Is(target error) bool {
	if target == ErrInitialization {
		return true
	}
	return target == ErrReloadRequired && e.ReloadRequired
}

type PairingTimeoutError struct {
	Timeout time.Duration
}

func (e *PairingTimeoutError) Error() string {
	return fmt.Sprintf("no wallet approved the pairing within %s; open your wallet and retry", e.Timeout)
}

func (e *PairingTimeoutError) Is(target error) bool { return target == ErrPairingTimeout }

type UnknownAccountError struct {
	AccountID AccountID
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("account %q is not part of the paired session; pair again with this account", e.AccountID)
}

func (e *UnknownAccountError) Is(target error) bool { return target == ErrUnknownAccount }

type TransactionRejectedError struct {
	Status string
}

func (e *TransactionRejectedError) Error() string {
	status := e.Status
	if status == "" {
		status = "<missing>"
	}
	return fmt.Sprintf("transaction rejected with status %s", status)
}

func (e *TransactionRejectedError) Is(target error) bool { return target == ErrTransactionRejected }

type TransactionUnverifiableError struct {
	Status string
}

func (e *TransactionUnverifiableError) Error() string {
	return fmt.Sprintf("transaction reported %s but no transaction id was returned; reconcile against the ledger before retrying", e.Status)
}

func (e *TransactionUnverifiableError) Is(target error) bool {
	return target == ErrTransactionUnverifiable
}
