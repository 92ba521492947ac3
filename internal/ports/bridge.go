package ports

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
)

// ErrBridgeUnreachable marks failures to reach the bridge daemon at all. They say
// nothing about local storage, so storage recovery does not run for them.
var ErrBridgeUnreachable = errors.New("wallet bridge unreachable")

type BridgeEventKind string

const (
	BridgeEventPairing         BridgeEventKind = "pairing"
	BridgeEventDisconnect      BridgeEventKind = "disconnect"
	BridgeEventConnectionState BridgeEventKind = "connection_state"
)

type BridgeEvent struct {
	Kind       BridgeEventKind
	Topic      string
	AccountIDs []string
	Peer       domain.PeerMetadata
	State      string
}

type BridgeResponse struct {
	Raw               json.RawMessage
	LastTransactionID string
}

type Bridge interface {
	Init(ctx context.Context) error
	OpenPairing(ctx context.Context) error
	// Events is closed when the bridge is closed.
	Events() <-chan BridgeEvent
	Sessions(ctx context.Context) ([]domain.SessionEntry, error)
	SendTransaction(ctx context.Context, accountID domain.AccountID, tx domain.Transaction) (BridgeResponse, error)
	Disconnect(ctx context.Context, topic string) error
	Close() error
}

type BridgeOptions struct {
	Network   string
	ProjectID string
	Metadata  domain.PeerMetadata
	Debug     bool
	ClientID  string
}

type BridgeFactory interface {
	NewBridge(opts BridgeOptions) (Bridge, error)
}

type BridgeFactoryFunc func(opts BridgeOptions) (Bridge, error)

func (f BridgeFactoryFunc) NewBridge(opts BridgeOptions) (Bridge, error) {
	return f(opts)
}
