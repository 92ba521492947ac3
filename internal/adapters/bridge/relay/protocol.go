package relay

import (
	"encoding/json"
	"fmt"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
)

const jsonRPCVersion = "2.0"

// Requests issued by the wallet to the relay daemon.
const (
	methodInit              = "bridge_init"
	methodPairingOpen       = "pairing_open"
	methodSessionList       = "session_list"
	methodSessionDisconnect = "session_disconnect"
	methodTxSend            = "tx_send"
)

// Notifications pushed by the relay daemon.
const (
	notifySessionConnect       = "session_connect"
	notifySessionDelete        = "session_delete"
	notifyConnectionState      = "connection_state"
	notifyTransactionSubmitted = "transaction_submitted"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// rpcMessage is either a response (ID set) or a notification (Method set, no ID).
type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("relay error %d: %s", e.Code, e.Message)
}

type initParams struct {
	ClientID  string              `json:"clientId"`
	ProjectID string              `json:"projectId,omitempty"`
	Network   string              `json:"network"`
	Metadata  domain.PeerMetadata `json:"metadata"`
	Debug     bool                `json:"debug,omitempty"`
}

type pairingOpenResult struct {
	URI string `json:"uri"`
}

type sessionWire struct {
	Topic     string              `json:"topic"`
	Peer      domain.PeerMetadata `json:"peer"`
	CreatedAt int64               `json:"createdAt,omitempty"`
}

type sessionListResult struct {
	Sessions []sessionWire `json:"sessions"`
}

type topicParams struct {
	Topic string `json:"topic"`
}

type txSendParams struct {
	AccountID     string `json:"accountId"`
	Transaction   []byte `json:"transaction"`
	TransactionID string `json:"transactionId,omitempty"`
}

type sessionConnectParams struct {
	Topic    string              `json:"topic"`
	Accounts []string            `json:"accounts"`
	Peer     domain.PeerMetadata `json:"peer"`
}

type connectionStateParams struct {
	State string `json:"state"`
}

type transactionSubmittedParams struct {
	TransactionID string `json:"transactionId"`
}

func (s sessionWire) entry() domain.SessionEntry {
	entry := domain.SessionEntry{Topic: s.Topic, Peer: s.Peer}
	if s.CreatedAt > 0 {
		entry.CreatedAt = fromMillis(s.CreatedAt)
	}
	return entry
}
