// Package relay implements the wallet bridge over a JSON-RPC 2.0 websocket
// connection to a local relay daemon.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/embeddb"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	defaultWriteWait   = 10 * time.Second
	defaultCallTimeout = 30 * time.Second
	eventBuffer        = 16
)

var (
	ErrClosed         = errors.New("relay bridge closed")
	ErrNotInitialized = errors.New("relay bridge not initialized")
	ErrConnectionLost = fmt.Errorf("relay connection lost: %w", ports.ErrBridgeUnreachable)
)

var _ ports.Bridge = (*Bridge)(nil)

// Options configures the transport. Zero durations take the package defaults.
type Options struct {
	URL         string
	Header      http.Header
	Dialer      *websocket.Dialer
	WriteWait   time.Duration
	CallTimeout time.Duration
	// Presenter receives the pairing URI the user has to open in their wallet.
	Presenter func(uri string)
	// Databases hosts the session cache; nil disables it.
	Databases *embeddb.Registry
	Logger    zerolog.Logger
}

type Bridge struct {
	opts   Options
	bridge ports.BridgeOptions
	logger zerolog.Logger

	nextID  atomic.Uint64
	writeMu sync.Mutex

	mu         sync.Mutex
	conn       *websocket.Conn
	sessions   *SessionCache
	pending    map[uint64]chan rpcMessage
	readerDone chan struct{}
	lastTxID   string
	closed     bool

	events    chan ports.BridgeEvent
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func New(opts Options, bridge ports.BridgeOptions) (*Bridge, error) {
	parsed, err := url.Parse(strings.TrimSpace(opts.URL))
	if err != nil {
		return nil, fmt.Errorf("parse relay url: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return nil, fmt.Errorf("relay url %q must use ws or wss", opts.URL)
	}
	if strings.TrimSpace(bridge.ClientID) == "" {
		return nil, fmt.Errorf("bridge client id is required")
	}

	opts.URL = parsed.String()
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = defaultWriteWait
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}

	return &Bridge{
		opts:    opts,
		bridge:  bridge,
		logger:  opts.Logger.With().Str("component", "relay").Str("client_id", bridge.ClientID).Logger(),
		pending: map[uint64]chan rpcMessage{},
		events:  make(chan ports.BridgeEvent, eventBuffer),
		done:    make(chan struct{}),
	}, nil
}

// Init dials the relay, opens the session cache, and registers this client.
func (b *Bridge) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.connect(ctx); err != nil {
		return err
	}

	params := initParams{
		ClientID:  b.bridge.ClientID,
		ProjectID: b.bridge.ProjectID,
		Network:   b.bridge.Network,
		Metadata:  b.bridge.Metadata,
		Debug:     b.bridge.Debug,
	}
	if _, err := b.call(ctx, methodInit, params, nil); err != nil {
		return fmt.Errorf("initialize relay bridge: %w", err)
	}

	b.logger.Debug().Str("network", b.bridge.Network).Msg("relay bridge initialized")
	return nil
}

func (b *Bridge) connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.conn != nil {
		return nil
	}

	conn, resp, err := b.opts.Dialer.DialContext(ctx, b.opts.URL, b.opts.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial relay: %w: %w", ports.ErrBridgeUnreachable, err)
	}
	b.conn = conn
	b.readerDone = make(chan struct{})
	go b.read(conn, b.readerDone)

	if b.opts.Databases != nil {
		sessions, err := b.openSessionCache(ctx)
		if err != nil {
			b.logger.Warn().Err(err).Msg("session cache unavailable")
		} else {
			b.sessions = sessions
		}
	}
	return nil
}

func (b *Bridge) openSessionCache(ctx context.Context) (*SessionCache, error) {
	db, err := b.opts.Databases.Open(ctx, SessionDatabase)
	if err != nil {
		return nil, err
	}
	cache, err := NewSessionCache(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// OpenPairing asks the relay for a fresh pairing URI and hands it to the presenter.
func (b *Bridge) OpenPairing(ctx context.Context) error {
	var result pairingOpenResult
	if _, err := b.call(ctx, methodPairingOpen, nil, &result); err != nil {
		return fmt.Errorf("open pairing: %w", err)
	}
	uri := strings.TrimSpace(result.URI)
	if uri == "" {
		return fmt.Errorf("open pairing: relay returned an empty pairing uri")
	}

	b.logger.Info().Msg("pairing uri issued")
	if b.opts.Presenter != nil {
		b.opts.Presenter(uri)
	}
	return nil
}

func (b *Bridge) Events() <-chan ports.BridgeEvent {
	return b.events
}

// Sessions lists the relay's live session table and refreshes the cache with it.
func (b *Bridge) Sessions(ctx context.Context) ([]domain.SessionEntry, error) {
	var result sessionListResult
	if _, err := b.call(ctx, methodSessionList, nil, &result); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	entries := make([]domain.SessionEntry, 0, len(result.Sessions))
	for _, session := range result.Sessions {
		entries = append(entries, session.entry())
	}

	if cache := b.sessionCache(); cache != nil {
		if err := cache.Replace(ctx, entries); err != nil {
			b.logger.Warn().Err(err).Msg("refresh session cache")
		}
	}
	return entries, nil
}

// CachedSessions returns the last session table seen, without contacting the relay.
func (b *Bridge) CachedSessions(ctx context.Context) ([]domain.SessionEntry, error) {
	cache := b.sessionCache()
	if cache == nil {
		return []domain.SessionEntry{}, nil
	}
	return cache.List(ctx)
}

// SendTransaction submits tx. LastTransactionID carries the identifier from the
// most recent transaction_submitted notification received before the response.
func (b *Bridge) SendTransaction(ctx context.Context, accountID domain.AccountID, tx domain.Transaction) (ports.BridgeResponse, error) {
	b.setLastTransactionID("")

	params := txSendParams{
		AccountID:     string(accountID),
		Transaction:   tx.Bytes,
		TransactionID: tx.ID,
	}
	raw, err := b.call(ctx, methodTxSend, params, nil)
	if err != nil {
		return ports.BridgeResponse{}, err
	}

	return ports.BridgeResponse{Raw: raw, LastTransactionID: b.lastTransactionID()}, nil
}

func (b *Bridge) Disconnect(ctx context.Context, topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return fmt.Errorf("session topic is required")
	}
	if _, err := b.call(ctx, methodSessionDisconnect, topicParams{Topic: topic}, nil); err != nil {
		return fmt.Errorf("disconnect session: %w", err)
	}
	if cache := b.sessionCache(); cache != nil {
		if err := cache.Remove(ctx, topic); err != nil {
			b.logger.Warn().Err(err).Str("topic", topic).Msg("remove cached session")
		}
	}
	return nil
}

// Close shuts the connection down and closes the events channel once the
// reader has stopped. It is safe to call more than once.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		conn := b.conn
		readerDone := b.readerDone
		sessions := b.sessions
		b.sessions = nil
		b.mu.Unlock()

		close(b.done)

		var errs []error
		if conn != nil {
			b.writeMu.Lock()
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(b.opts.WriteWait),
			)
			b.writeMu.Unlock()
			if err := conn.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close relay connection: %w", err))
			}
		}

		if readerDone != nil {
			<-readerDone
		} else {
			close(b.events)
		}

		if err := sessions.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session cache: %w", err))
		}
		b.closeErr = errors.Join(errs...)
	})
	return b.closeErr
}

func (b *Bridge) call(ctx context.Context, method string, params any, out any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := b.nextID.Add(1)
	reply := make(chan rpcMessage, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	if b.conn == nil {
		b.mu.Unlock()
		return nil, ErrNotInitialized
	}
	conn := b.conn
	readerDone := b.readerDone
	b.pending[id] = reply
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
	}()

	if err := b.write(conn, rpcRequest{JSONRPC: jsonRPCVersion, ID: id, Method: method, Params: params}); err != nil {
		return nil, fmt.Errorf("write %s: %w: %w", method, ports.ErrBridgeUnreachable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.opts.CallTimeout)
	defer cancel()

	select {
	case msg := <-reply:
		if msg.Error != nil {
			return nil, msg.Error
		}
		if out != nil && len(msg.Result) > 0 {
			if err := json.Unmarshal(msg.Result, out); err != nil {
				return nil, fmt.Errorf("decode %s result: %w", method, err)
			}
		}
		return msg.Result, nil
	case <-readerDone:
		return nil, ErrConnectionLost
	case <-b.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", method, ctx.Err())
	}
}

// write serializes writers; gorilla connections support one concurrent writer.
func (b *Bridge) write(conn *websocket.Conn, req rpcRequest) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(b.opts.WriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(req)
}

// read is the only reader of conn and the only sender on b.events.
func (b *Bridge) read(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	defer close(b.events)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-b.done:
			default:
				b.logger.Warn().Err(err).Msg("relay connection lost")
				b.emit(ports.BridgeEvent{Kind: ports.BridgeEventConnectionState, State: "closed"})
			}
			return
		}

		var msg rpcMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			b.logger.Warn().Err(err).Msg("discarding malformed relay message")
			continue
		}

		if msg.ID != nil {
			b.deliver(*msg.ID, msg)
			continue
		}
		b.handleNotification(msg)
	}
}

func (b *Bridge) deliver(id uint64, msg rpcMessage) {
	b.mu.Lock()
	reply, ok := b.pending[id]
	b.mu.Unlock()

	if !ok {
		b.logger.Debug().Uint64("id", id).Msg("discarding response without caller")
		return
	}
	select {
	case reply <- msg:
	default:
	}
}

func (b *Bridge) handleNotification(msg rpcMessage) {
	ctx := context.Background()

	switch msg.Method {
	case notifySessionConnect:
		var params sessionConnectParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			b.logger.Warn().Err(err).Str("method", msg.Method).Msg("decode relay notification")
			return
		}
		if cache := b.sessionCache(); cache != nil && strings.TrimSpace(params.Topic) != "" {
			entry := domain.SessionEntry{Topic: params.Topic, Peer: params.Peer, CreatedAt: time.Now().UTC()}
			if err := cache.Upsert(ctx, entry); err != nil {
				b.logger.Warn().Err(err).Msg("cache connected session")
			}
		}
		b.emit(ports.BridgeEvent{
			Kind:       ports.BridgeEventPairing,
			Topic:      params.Topic,
			AccountIDs: params.Accounts,
			Peer:       params.Peer,
		})
	case notifySessionDelete:
		var params topicParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			b.logger.Warn().Err(err).Str("method", msg.Method).Msg("decode relay notification")
			return
		}
		if cache := b.sessionCache(); cache != nil && strings.TrimSpace(params.Topic) != "" {
			if err := cache.Remove(ctx, params.Topic); err != nil {
				b.logger.Warn().Err(err).Msg("remove deleted session")
			}
		}
		b.emit(ports.BridgeEvent{Kind: ports.BridgeEventDisconnect, Topic: params.Topic})
	case notifyConnectionState:
		var params connectionStateParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			b.logger.Warn().Err(err).Str("method", msg.Method).Msg("decode relay notification")
			return
		}
		b.emit(ports.BridgeEvent{Kind: ports.BridgeEventConnectionState, State: params.State})
	case notifyTransactionSubmitted:
		var params transactionSubmittedParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			b.logger.Warn().Err(err).Str("method", msg.Method).Msg("decode relay notification")
			return
		}
		b.setLastTransactionID(strings.TrimSpace(params.TransactionID))
	default:
		b.logger.Debug().Str("method", msg.Method).Msg("ignoring relay notification")
	}
}

func (b *Bridge) emit(event ports.BridgeEvent) {
	select {
	case b.events <- event:
	case <-b.done:
	}
}

func (b *Bridge) sessionCache() *SessionCache {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions
}

func (b *Bridge) setLastTransactionID(id string) {
	b.mu.Lock()
	b.lastTxID = id
	b.mu.Unlock()
}

func (b *Bridge) lastTransactionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastTxID
}
