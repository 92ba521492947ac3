package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/observability"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxInitAttempts = 3
	DefaultPairTimeout     = 60 * time.Second
)

type ConflictPolicy string

const (
	// ConflictReplace adopts a pairing event for different accounts and logs it.
	ConflictReplace ConflictPolicy = "replace"
	// ConflictReject keeps the current record and drops the event.
	ConflictReject ConflictPolicy = "reject"
)

func ParseConflictPolicy(raw string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ConflictReplace:
		return ConflictReplace, nil
	case ConflictReject:
		return ConflictReject, nil
	default:
		return "", fmt.Errorf("unsupported conflict policy %q", raw)
	}
}

type PairingConfig struct {
	Bridge          ports.BridgeOptions
	MaxInitAttempts int
	PairTimeout     time.Duration
	ConflictPolicy  ConflictPolicy
}

type PairingDeps struct {
	Factory  ports.BridgeFactory
	Cache    *PairingCache
	Recovery *StorageRecoveryManager
	State    *ConnectionStateStore
	Resolver *TopicResolver
	Clock    ports.Clock
	Logger   zerolog.Logger
	// NewClientID defaults to a random UUID.
	NewClientID func() string
}

type pairOutcome struct {
	account domain.AccountID
	err     error
}

// PairingController owns the single bridge instance and drives the connection
// state machine. Bridge events are consumed by one goroutine per bridge.
type PairingController struct {
	factory     ports.BridgeFactory
	cache       *PairingCache
	recovery    *StorageRecoveryManager
	state       *ConnectionStateStore
	resolver    *TopicResolver
	clock       ports.Clock
	logger      zerolog.Logger
	newClientID func() string
	cfg         PairingConfig

	initGroup singleflight.Group

	mu         sync.Mutex
	bridge     ports.Bridge
	initErr    error
	waiters    map[uint64]chan pairOutcome
	nextWaiter uint64
	stop       chan struct{}
	done       chan struct{}
	closed     bool
}

func NewPairingController(deps PairingDeps, cfg PairingConfig) *PairingController {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.NewClientID == nil {
		deps.NewClientID = uuid.NewString
	}
	if deps.State == nil {
		deps.State = NewConnectionStateStore()
	}
	if deps.Resolver == nil {
		deps.Resolver = NewTopicResolver(domain.PeerMetadata{})
	}
	if cfg.MaxInitAttempts <= 0 {
		cfg.MaxInitAttempts = DefaultMaxInitAttempts
	}
	if cfg.PairTimeout <= 0 {
		cfg.PairTimeout = DefaultPairTimeout
	}
	if cfg.ConflictPolicy == "" {
		cfg.ConflictPolicy = ConflictReplace
	}

	return &PairingController{
		factory:     deps.Factory,
		cache:       deps.Cache,
		recovery:    deps.Recovery,
		state:       deps.State,
		resolver:    deps.Resolver,
		clock:       deps.Clock,
		logger:      deps.Logger.With().Str("component", "pairing").Logger(),
		newClientID: deps.NewClientID,
		cfg:         cfg,
		waiters:     map[uint64]chan pairOutcome{},
	}
}

// Init returns the initialized bridge. Concurrent callers share one in-flight
// initialization, and a terminal failure is returned to every later caller.
func (c *PairingController) Init(ctx context.Context) (ports.Bridge, error) {
	if bridge, ok, err := c.initResult(); ok {
		return bridge, err
	}

	detached := context.WithoutCancel(ctx)
	result := c.initGroup.DoChan("init", func() (any, error) {
		return c.initialize(detached)
	})

	select {
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(ports.Bridge), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *PairingController) initResult() (ports.Bridge, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, true, errControllerClosed
	}
	if c.bridge != nil {
		return c.bridge, true, nil
	}
	if c.initErr != nil {
		return nil, true, c.initErr
	}
	return nil, false, nil
}

var errControllerClosed = errors.New("pairing controller is closed")

func (c *PairingController) initialize(ctx context.Context) (ports.Bridge, error) {
	if bridge, ok, err := c.initResult(); ok {
		return bridge, err
	}

	if c.recovery != nil {
		c.recovery.PreClean(ctx)
	}

	var (
		attemptErrs    []error
		reloadRequired bool
		attempts       int
		tier           int
	)
	for attempt := 1; attempt <= c.cfg.MaxInitAttempts; attempt++ {
		attempts = attempt
		bridge, err := c.attemptInit(ctx)
		observability.RecordInitAttempt(attempt, err == nil)
		if err == nil {
			c.restore(ctx, bridge)
			if startErr := c.adopt(bridge); startErr != nil {
				_ = bridge.Close()
				return nil, startErr
			}
			c.logger.Info().Int("attempt", attempt).Msg("wallet bridge initialized")
			return bridge, nil
		}

		c.logger.Warn().Err(err).Int("attempt", attempt).Msg("wallet bridge initialization failed")
		attemptErrs = append(attemptErrs, fmt.Errorf("attempt %d: %w", attempt, err))

		switch {
		case c.recovery == nil:
		case errors.Is(err, ports.ErrBridgeUnreachable):
			c.logger.Info().Int("attempt", attempt).Msg("wallet bridge unreachable; skipping storage recovery")
		default:
			_, recoverErr := c.recovery.Recover(ctx, tier, bridge)
			tier++
			if errors.Is(recoverErr, domain.ErrReloadRequired) {
				reloadRequired = true
			} else if recoverErr != nil {
				attemptErrs = append(attemptErrs, fmt.Errorf("recover storage: %w", recoverErr))
			}
		}
		if bridge != nil {
			if closeErr := bridge.Close(); closeErr != nil {
				c.logger.Debug().Err(closeErr).Msg("close failed bridge")
			}
		}
		if reloadRequired {
			break
		}
	}

	initErr := &domain.InitializationError{
		Attempts:       attempts,
		ReloadRequired: reloadRequired,
		Err:            errors.Join(attemptErrs...),
	}

	c.mu.Lock()
	c.initErr = initErr
	c.mu.Unlock()

	c.logger.Error().Err(initErr).Msg("wallet bridge initialization exhausted")
	return nil, initErr
}

func (c *PairingController) attemptInit(ctx context.Context) (ports.Bridge, error) {
	opts := c.cfg.Bridge
	opts.ClientID = c.newClientID()

	bridge, err := c.factory.NewBridge(opts)
	if err != nil {
		return nil, fmt.Errorf("construct bridge: %w", err)
	}
	if bridge == nil {
		return nil, errors.New("construct bridge: factory returned nil bridge")
	}

	if err := bridge.Init(ctx); err != nil {
		return bridge, fmt.Errorf("init bridge: %w", err)
	}

	return bridge, nil
}

func (c *PairingController) adopt(bridge ports.Bridge) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errControllerClosed
	}

	c.bridge = bridge
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.consume(bridge, bridge.Events(), c.stop, c.done)
	return nil
}

// restore adopts the cached pairing when its topic still resolves against the
// live session table. An unresolvable record is stale and is cleared without
// disconnecting anything on the bridge.
func (c *PairingController) restore(ctx context.Context, bridge ports.Bridge) {
	if c.cache == nil {
		return
	}

	record := c.cache.Load(ctx)
	if record == nil {
		return
	}

	sessions, err := bridge.Sessions(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("list bridge sessions for restore")
		return
	}

	topic := c.resolver.ResolveActive(record.Topic, sessions)
	if topic == "" && record.RawTopic != "" {
		topic = c.resolver.ResolveActive(record.RawTopic, sessions)
	}
	if topic == "" {
		c.logger.Info().Str("topic", record.Topic).Msg("cached pairing is stale")
		c.cache.Clear(ctx)
		observability.RecordPairing("restore", "stale")
		return
	}

	restored := record.Clone()
	restored.Topic = CanonicalTopic(topic)
	if restored.RawTopic == "" {
		restored.RawTopic = record.Topic
	}
	if _, err := c.state.apply(connectionEvent{kind: eventPaired, record: restored}); err != nil {
		c.logger.Warn().Err(err).Msg("adopt restored pairing")
		return
	}
	if restored.Topic != record.Topic || restored.RawTopic != record.RawTopic {
		c.cache.Save(ctx, restored)
	}

	observability.SetPaired(true)
	observability.RecordPairing("restore", "paired")
	c.logger.Info().Str("topic", restored.Topic).Str("account", string(restored.Primary())).Msg("restored wallet pairing")
}

// Pair returns the primary paired account. A live pairing is returned without
// opening the pairing UI. Otherwise Pair waits for a pairing event until the pair
// timeout elapses; ctx only bounds the bridge calls, not the wait itself.
func (c *PairingController) Pair(ctx context.Context) (domain.AccountID, error) {
	bridge, err := c.Init(ctx)
	if err != nil {
		return "", err
	}

	snapshot := c.state.Snapshot()
	if snapshot.State == domain.StatePaired && snapshot.Record != nil && len(snapshot.Record.AccountIDs) > 0 {
		live, err := c.isLive(ctx, bridge, *snapshot.Record)
		if err != nil {
			observability.RecordPairing("pair", "unverified")
			return "", fmt.Errorf("verify pairing: %w", err)
		}
		if live {
			observability.RecordPairing("pair", "fast_path")
			return snapshot.Record.Primary(), nil
		}

		c.logger.Info().Str("topic", snapshot.Record.Topic).Msg("clearing stale pairing before re-pairing")
		c.cache.Clear(ctx)
		_, _ = c.state.apply(connectionEvent{kind: eventDisconnected})
		observability.SetPaired(false)
	}

	id, waiter := c.addWaiter()
	defer c.removeWaiter(id)

	if _, err := c.state.apply(connectionEvent{kind: eventPairingRequested}); err != nil {
		c.logger.Debug().Err(err).Msg("joining pairing already in progress")
	}

	if err := bridge.OpenPairing(ctx); err != nil {
		_, _ = c.state.apply(connectionEvent{kind: eventPairingAbandoned})
		observability.RecordPairing("pair", "open_failed")
		return "", fmt.Errorf("open pairing: %w", err)
	}

	select {
	case outcome := <-waiter:
		return outcome.account, outcome.err
	case <-c.clock.After(c.cfg.PairTimeout):
	}

	select {
	case outcome := <-waiter:
		return outcome.account, outcome.err
	default:
	}

	_, _ = c.state.apply(connectionEvent{kind: eventPairingAbandoned})
	observability.RecordPairing("pair", "timeout")
	return "", &domain.PairingTimeoutError{Timeout: c.cfg.PairTimeout}
}

// isLive reports whether record still resolves against the live session table. A
// listing failure leaves liveness unknown and is returned as an error.
func (c *PairingController) isLive(ctx context.Context, bridge ports.Bridge, record domain.PairingRecord) (bool, error) {
	sessions, err := bridge.Sessions(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("list bridge sessions")
		return false, err
	}
	return c.resolver.ResolveActive(record.Topic, sessions) != "", nil
}

// Disconnect tells the bridge to drop the session when one exists. The cache and
// state are cleared whatever the bridge reports.
func (c *PairingController) Disconnect(ctx context.Context) error {
	snapshot := c.state.Snapshot()
	bridge := c.Bridge()

	if bridge != nil && snapshot.Record != nil {
		if err := bridge.Disconnect(ctx, snapshot.Record.Topic); err != nil {
			c.logger.Warn().Err(err).Str("topic", snapshot.Record.Topic).Msg("bridge disconnect failed")
		}
	}

	c.clearPairing(ctx, "disconnect")
	return nil
}

func (c *PairingController) clearPairing(ctx context.Context, source string) {
	if c.cache != nil {
		c.cache.Clear(ctx)
	}
	_, _ = c.state.apply(connectionEvent{kind: eventDisconnected})
	observability.SetPaired(false)
	observability.RecordPairing(source, "disconnected")
	c.notifyWaiters(pairOutcome{err: domain.ErrSessionDisconnected})
}

func (c *PairingController) consume(bridge ports.Bridge, events <-chan ports.BridgeEvent, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case event, ok := <-events:
			if !ok {
				c.detach(bridge)
				return
			}
			c.handleEvent(event)
		}
	}
}

// detach forgets a bridge whose event stream ended so the next Init builds a new
// one. The pairing record and state are kept.
func (c *PairingController) detach(bridge ports.Bridge) {
	c.mu.Lock()
	if c.bridge != bridge {
		c.mu.Unlock()
		return
	}
	c.bridge = nil
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	c.logger.Warn().Msg("wallet bridge event stream ended; bridge will be rebuilt on next use")
	if err := bridge.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("close detached bridge")
	}
}

func (c *PairingController) handleEvent(event ports.BridgeEvent) {
	observability.RecordBridgeEvent(string(event.Kind))
	ctx := context.Background()

	switch event.Kind {
	case ports.BridgeEventPairing:
		c.handlePairing(ctx, event)
	case ports.BridgeEventDisconnect:
		c.handleDisconnect(ctx, event)
	case ports.BridgeEventConnectionState:
		c.logger.Info().Str("state", event.State).Msg("bridge connection state changed")
	default:
		c.logger.Debug().Str("kind", string(event.Kind)).Msg("ignoring unknown bridge event")
	}
}

func (c *PairingController) handlePairing(ctx context.Context, event ports.BridgeEvent) {
	accounts := domain.NormalizeAccountIDs(event.AccountIDs)
	topic := CanonicalTopic(event.Topic)
	if len(accounts) == 0 || topic == "" {
		c.logger.Warn().Str("topic", event.Topic).Int("accounts", len(event.AccountIDs)).Msg("ignoring incomplete pairing event")
		return
	}

	record := domain.PairingRecord{
		AccountIDs: accounts,
		Topic:      topic,
		RawTopic:   strings.TrimSpace(event.Topic),
		PairedAt:   c.clock.Now(),
	}

	current := c.state.Snapshot()
	if current.State == domain.StatePaired && current.Record != nil && !current.Record.SameAccounts(record) {
		if c.cfg.ConflictPolicy == ConflictReject {
			c.logger.Warn().
				Err(domain.ErrPairingConflict).
				Str("current", string(current.Record.Primary())).
				Str("incoming", string(record.Primary())).
				Msg("rejecting pairing event")
			observability.RecordPairing("event", "conflict_rejected")
			return
		}
		c.logger.Warn().
			Str("current", string(current.Record.Primary())).
			Str("incoming", string(record.Primary())).
			Msg("replacing paired accounts")
	}

	if c.cache != nil {
		c.cache.Save(ctx, record)
	}
	if _, err := c.state.apply(connectionEvent{kind: eventPaired, record: record}); err != nil {
		c.logger.Warn().Err(err).Msg("apply pairing event")
		return
	}

	observability.SetPaired(true)
	observability.RecordPairing("event", "paired")
	c.logger.Info().Str("topic", record.Topic).Str("account", string(record.Primary())).Msg("wallet paired")
	c.notifyWaiters(pairOutcome{account: record.Primary()})
}

func (c *PairingController) handleDisconnect(ctx context.Context, event ports.BridgeEvent) {
	current := c.state.Snapshot()
	if current.Record != nil && strings.TrimSpace(event.Topic) != "" {
		incoming := NormalizeTopic(event.Topic)
		if incoming != NormalizeTopic(current.Record.Topic) && incoming != NormalizeTopic(current.Record.RawTopic) {
			c.logger.Debug().Str("topic", event.Topic).Msg("ignoring disconnect for another session")
			return
		}
	}

	c.logger.Info().Str("topic", event.Topic).Msg("wallet session disconnected by bridge")
	c.clearPairing(ctx, "event")
}

func (c *PairingController) addWaiter() (uint64, <-chan pairOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextWaiter
	c.nextWaiter++
	ch := make(chan pairOutcome, 1)
	c.waiters[id] = ch
	return id, ch
}

func (c *PairingController) removeWaiter(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.waiters, id)
}

func (c *PairingController) notifyWaiters(outcome pairOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, ch := range c.waiters {
		select {
		case ch <- outcome:
		default:
		}
		delete(c.waiters, id)
	}
}

func (c *PairingController) Snapshot() domain.ConnectionSnapshot {
	return c.state.Snapshot()
}

func (c *PairingController) PairingData() *domain.PairingRecord {
	return c.state.Snapshot().Record
}

func (c *PairingController) Bridge() ports.Bridge {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.bridge
}

// Close stops the event consumer and closes the bridge. The controller cannot be
// initialized again afterwards.
func (c *PairingController) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	bridge := c.bridge
	stop, done := c.stop, c.done
	c.bridge = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	if bridge == nil {
		return nil
	}
	if err := bridge.Close(); err != nil {
		return fmt.Errorf("close bridge: %w", err)
	}
	return nil
}
