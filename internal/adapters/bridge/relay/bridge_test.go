package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/embeddb"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

type notification struct {
	Method string
	Params any
}

type handlerFunc func(params json.RawMessage) (any, []notification, *RPCError)

type recordedCall struct {
	Method string
	Params json.RawMessage
}

// fakeRelay answers JSON-RPC calls on one websocket connection.
type fakeRelay struct {
	server *httptest.Server

	mu       sync.Mutex
	handlers map[string]handlerFunc
	calls    []recordedCall
	conn     *websocket.Conn

	writeMu   sync.Mutex
	connected chan struct{}
	once      sync.Once
}

func newFakeRelay(t *testing.T) *fakeRelay {
	t.Helper()

	r := &fakeRelay{
		handlers: map[string]handlerFunc{
			methodInit: func(json.RawMessage) (any, []notification, *RPCError) {
				return map[string]any{"ok": true}, nil, nil
			},
		},
		connected: make(chan struct{}),
	}

	upgrader := websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		r.mu.Lock()
		r.conn = conn
		r.mu.Unlock()
		r.once.Do(func() { close(r.connected) })

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var call struct {
				ID     uint64          `json:"id"`
				Method string          `json:"method"`
				Params json.RawMessage `json:"params"`
			}
			if err := json.Unmarshal(data, &call); err != nil {
				return
			}

			r.mu.Lock()
			r.calls = append(r.calls, recordedCall{Method: call.Method, Params: call.Params})
			handler := r.handlers[call.Method]
			r.mu.Unlock()

			var (
				result any = map[string]any{}
				notes  []notification
				rpcErr *RPCError
			)
			if handler != nil {
				result, notes, rpcErr = handler(call.Params)
			} else {
				rpcErr = &RPCError{Code: -32601, Message: "method not found"}
			}

			for _, note := range notes {
				_ = r.notify(note)
			}
			response := map[string]any{"jsonrpc": jsonRPCVersion, "id": call.ID}
			if rpcErr != nil {
				response["error"] = rpcErr
			} else {
				response["result"] = result
			}
			if err := r.writeJSON(response); err != nil {
				return
			}
		}
	}))
	t.Cleanup(r.server.Close)
	return r
}

func (r *fakeRelay) url() string {
	return "ws" + strings.TrimPrefix(r.server.URL, "http")
}

func (r *fakeRelay) handle(method string, handler handlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[method] = handler
}

func (r *fakeRelay) recorded(method string) []recordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []recordedCall
	for _, call := range r.calls {
		if call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

func (r *fakeRelay) notify(note notification) error {
	return r.writeJSON(map[string]any{"jsonrpc": jsonRPCVersion, "method": note.Method, "params": note.Params})
}

func (r *fakeRelay) writeJSON(v any) error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return conn.WriteJSON(v)
}

func (r *fakeRelay) drop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.conn.Close()
}

func newTestBridge(t *testing.T, relay *fakeRelay, mutate func(*Options)) *Bridge {
	t.Helper()

	registry, err := embeddb.NewRegistry(t.TempDir())
	require.NoError(t, err)

	opts := Options{URL: relay.url(), Databases: registry, Logger: zerolog.Nop(), CallTimeout: waitTimeout}
	if mutate != nil {
		mutate(&opts)
	}

	bridge, err := New(opts, ports.BridgeOptions{
		Network:   "testnet",
		ProjectID: "project-1",
		ClientID:  "client-1",
		Metadata:  domain.PeerMetadata{Name: "TraceTrade", URL: "https://tracetrade.example"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bridge.Close() })
	return bridge
}

func nextEvent(t *testing.T, events <-chan ports.BridgeEvent) ports.BridgeEvent {
	t.Helper()

	select {
	case event, ok := <-events:
		require.True(t, ok, "events channel closed")
		return event
	case <-time.After(waitTimeout):
		t.Fatal("no bridge event received")
		return ports.BridgeEvent{}
	}
}

func TestBridgeInitRegistersClient(t *testing.T) {
	t.Parallel()

	relay := newFakeRelay(t)
	bridge := newTestBridge(t, relay, nil)

	require.NoError(t, bridge.Init(context.Background()))

	calls := relay.recorded(methodInit)
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{
		"clientId": "client-1",
		"projectId": "project-1",
		"network": "testnet",
		"metadata": {"name": "TraceTrade", "url": "https://tracetrade.example"}
	}`, string(calls[0].Params))
}

func TestBridgeInitSurfacesRelayError(t *testing.T) {
	t.Parallel()

	relay := newFakeRelay(t)
	relay.handle(methodInit, func(json.RawMessage) (any, []notification, *RPCError) {
		return nil, nil, &RPCError{Code: 4001, Message: "storage corrupted"}
	})
	bridge := newTestBridge(t, relay, nil)

	err := bridge.Init(context.Background())

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, 4001, rpcErr.Code)
	assert.ErrorContains(t, err, "initialize relay bridge: relay error 4001: storage corrupted")
}

func TestBridgeOpenPairingPresentsURI(t *testing.T) {
	t.Parallel()

	relay := newFakeRelay(t)
	relay.handle(methodPairingOpen, func(json.RawMessage) (any, []notification, *RPCError) {
		return pairingOpenResult{URI: "wc:abc@2?relay-protocol=irn"}, nil, nil
	})

	presented := make(chan string, 1)
	bridge := newTestBridge(t, relay, func(o *Options) {
		o.Presenter = func(uri string) { presented <- uri }
	})
	require.NoError(t, bridge.Init(context.Background()))

	require.NoError(t, bridge.OpenPairing(context.Background()))
	assert.Equal(t, "wc:abc@2?relay-protocol=irn", <-presented)
}

func TestBridgeOpenPairingRejectsEmptyURI(t *testing.T) {
	t.Parallel()

	relay := newFakeRelay(t)
	relay.handle(methodPairingOpen, func(json.RawMessage) (any, []notification, *RPCError) {
		return pairingOpenResult{}, nil, nil
	})
	bridge := newTestBridge(t, relay, nil)
	require.NoError(t, bridge.Init(context.Background()))

	assert.ErrorContains(t, bridge.OpenPairing(context.Background()), "empty pairing uri")
}

func TestBridgeNotificationsBecomeEvents(t *testing.T) {
	t.Parallel()

	relay := newFakeRelay(t)
	bridge := newTestBridge(t, relay, nil)
	require.NoError(t, bridge.Init(context.Background()))

	peer := domain.PeerMetadata{Name: "HashPack", URL: "https://www.hashpack.app"}
	require.NoError(t, relay.notify(notification{Method: notifySessionConnect, Params: sessionConnectParams{
		Topic:    "abc@2",
		Accounts: []string{"hedera:testnet:0.0.1234"},
		Peer:     peer,
	}}))
	require.NoError(t, relay.notify(notification{Method: notifyConnectionState, Params: connectionStateParams{State: "connected"}}))
	require.NoError(t, relay.notify(notification{Method: notifySessionDelete, Params: topicParams{Topic: "abc@2"}}))

	events := bridge.Events()
	assert.Equal(t, ports.BridgeEvent{
		Kind:       ports.BridgeEventPairing,
		Topic:      "abc@2",
		AccountIDs: []string{"hedera:testnet:0.0.1234"},
		Peer:       peer,
	}, nextEvent(t, events))
	assert.Equal(t, ports.BridgeEvent{Kind: ports.BridgeEventConnectionState, State: "connected"}, nextEvent(t, events))
	assert.Equal(t, ports.BridgeEvent{Kind: ports.BridgeEventDisconnect, Topic: "abc@2"}, nextEvent(t, events))

	cached, err := bridge.CachedSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestBridgeSessionsRefreshCache(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	relay := newFakeRelay(t)
	relay.handle(methodSessionList, func(json.RawMessage) (any, []notification, *RPCError) {
		return sessionListResult{Sessions: []sessionWire{
			{Topic: "abc@2", Peer: domain.PeerMetadata{Name: "HashPack"}, CreatedAt: createdAt.UnixMilli()},
			{Topic: "def@2"},
		}}, nil, nil
	})
	relay.handle(methodSessionDisconnect, func(json.RawMessage) (any, []notification, *RPCError) {
		return map[string]any{}, nil, nil
	})
	bridge := newTestBridge(t, relay, nil)
	require.NoError(t, bridge.Init(context.Background()))

	sessions, err := bridge.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, domain.SessionEntry{Topic: "abc@2", Peer: domain.PeerMetadata{Name: "HashPack"}, CreatedAt: createdAt}, sessions[0])
	assert.True(t, sessions[1].CreatedAt.IsZero())

	cached, err := bridge.CachedSessions(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, sessions, cached)

	require.NoError(t, bridge.Disconnect(context.Background(), "abc@2"))
	calls := relay.recorded(methodSessionDisconnect)
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"topic":"abc@2"}`, string(calls[0].Params))

	cached, err = bridge.CachedSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "def@2", cached[0].Topic)
}

func TestBridgeSendTransactionTracksSubmittedID(t *testing.T) {
	t.Parallel()

	relay := newFakeRelay(t)
	relay.handle(methodTxSend, func(json.RawMessage) (any, []notification, *RPCError) {
		return map[string]any{"status": "SUCCESS"}, []notification{{
			Method: notifyTransactionSubmitted,
			Params: transactionSubmittedParams{TransactionID: "0.0.1234@1700000000.5"},
		}}, nil
	})
	bridge := newTestBridge(t, relay, nil)
	require.NoError(t, bridge.Init(context.Background()))

	tx := domain.Transaction{ID: "0.0.1234@1700000000.5", Bytes: []byte{0xde, 0xad}}
	response, err := bridge.SendTransaction(context.Background(), "0.0.1234", tx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"SUCCESS"}`, string(response.Raw))
	assert.Equal(t, "0.0.1234@1700000000.5", response.LastTransactionID)

	calls := relay.recorded(methodTxSend)
	require.Len(t, calls, 1)
	var params struct {
		AccountID     string `json:"accountId"`
		Transaction   string `json:"transaction"`
		TransactionID string `json:"transactionId"`
	}
	require.NoError(t, json.Unmarshal(calls[0].Params, &params))
	assert.Equal(t, "0.0.1234", params.AccountID)
	assert.Equal(t, base64.StdEncoding.EncodeToString(tx.Bytes), params.Transaction)

	relay.handle(methodTxSend, func(json.RawMessage) (any, []notification, *RPCError) {
		return map[string]any{"status": "SUCCESS"}, nil, nil
	})
	response, err = bridge.SendTransaction(context.Background(), "0.0.1234", domain.Transaction{})
	require.NoError(t, err)
	assert.Empty(t, response.LastTransactionID)
}

func TestBridgeCallsBeforeInitFail(t *testing.T) {
	t.Parallel()

	relay := newFakeRelay(t)
	bridge := newTestBridge(t, relay, nil)

	_, err := bridge.Sessions(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestBridgeCloseClosesEvents(t *testing.T) {
	t.Parallel()

	t.Run("after init", func(t *testing.T) {
		t.Parallel()

		relay := newFakeRelay(t)
		bridge := newTestBridge(t, relay, nil)
		require.NoError(t, bridge.Init(context.Background()))

		require.NoError(t, bridge.Close())
		require.NoError(t, bridge.Close())

		_, ok := <-bridge.Events()
		assert.False(t, ok)

		_, err := bridge.Sessions(context.Background())
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, bridge.Init(context.Background()), ErrClosed)
	})

	t.Run("never initialized", func(t *testing.T) {
		t.Parallel()

		relay := newFakeRelay(t)
		bridge := newTestBridge(t, relay, nil)

		require.NoError(t, bridge.Close())
		_, ok := <-bridge.Events()
		assert.False(t, ok)
	})
}

func TestBridgeConnectionLoss(t *testing.T) {
	t.Parallel()

	relay := newFakeRelay(t)
	bridge := newTestBridge(t, relay, nil)
	require.NoError(t, bridge.Init(context.Background()))

	relay.drop()

	assert.Equal(t, ports.BridgeEvent{Kind: ports.BridgeEventConnectionState, State: "closed"}, nextEvent(t, bridge.Events()))
	select {
	case _, ok := <-bridge.Events():
		assert.False(t, ok)
	case <-time.After(waitTimeout):
		t.Fatal("events channel not closed after connection loss")
	}

	_, err := bridge.Sessions(context.Background())
	assert.ErrorIs(t, err, ports.ErrBridgeUnreachable)
}

func TestBridgeInitReportsUnreachableRelay(t *testing.T) {
	t.Parallel()

	bridge, err := New(Options{URL: "ws://127.0.0.1:1/bridge", Logger: zerolog.Nop()}, ports.BridgeOptions{ClientID: "client-1"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bridge.Close() })

	err = bridge.Init(context.Background())
	require.ErrorIs(t, err, ports.ErrBridgeUnreachable)
	assert.ErrorContains(t, err, "dial relay")
}

func TestNewValidatesOptions(t *testing.T) {
	t.Parallel()

	_, err := New(Options{URL: "http://localhost:1"}, ports.BridgeOptions{ClientID: "c"})
	assert.ErrorContains(t, err, "must use ws or wss")

	_, err = New(Options{URL: "ws://localhost:1"}, ports.BridgeOptions{})
	assert.ErrorContains(t, err, "client id is required")

	factory := NewFactory(Options{URL: "ws://localhost:1"})
	bridge, err := factory.NewBridge(ports.BridgeOptions{ClientID: "c"})
	require.NoError(t, err)
	require.NoError(t, bridge.Close())
}
