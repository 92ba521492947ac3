package application

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
)

var ErrInvalidTransition = errors.New("invalid connection state transition")

type connectionEventKind int

const (
	eventPairingRequested connectionEventKind = iota
	eventPaired
	eventPairingAbandoned
	eventDisconnected
)

func (k connectionEventKind) String() string {
	switch k {
	case eventPairingRequested:
		return "pairing_requested"
	case eventPaired:
		return "paired"
	case eventPairingAbandoned:
		return "pairing_abandoned"
	case eventDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

type connectionEvent struct {
	kind   connectionEventKind
	record domain.PairingRecord
}

const subscriberBuffer = 8

// ConnectionStateStore owns the connection state and the pairing record. The
// record is non-empty exactly while the state is Paired.
type ConnectionStateStore struct {
	mu          sync.Mutex
	state       domain.ConnectionState
	record      *domain.PairingRecord
	subscribers map[int]chan domain.ConnectionSnapshot
	nextID      int
}

func NewConnectionStateStore() *ConnectionStateStore {
	return &ConnectionStateStore{
		state:       domain.StateDisconnected,
		subscribers: map[int]chan domain.ConnectionSnapshot{},
	}
}

func (s *ConnectionStateStore) Snapshot() domain.ConnectionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Subscribe delivers a snapshot after every applied transition. Slow subscribers
// miss intermediate snapshots. The returned func unsubscribes and closes the channel.
func (s *ConnectionStateStore) Subscribe() (<-chan domain.ConnectionSnapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan domain.ConnectionSnapshot, subscriberBuffer)
	s.subscribers[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}

	return ch, cancel
}

func (s *ConnectionStateStore) apply(event connectionEvent) (domain.ConnectionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.kind {
	case eventPairingRequested:
		if s.state != domain.StateDisconnected {
			return s.snapshotLocked(), fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event.kind, s.state)
		}
		s.state = domain.StateConnecting
	case eventPaired:
		if err := event.record.Validate(); err != nil {
			return s.snapshotLocked(), fmt.Errorf("%w: %s: %w", ErrInvalidTransition, event.kind, err)
		}
		record := event.record.Clone()
		s.state = domain.StatePaired
		s.record = &record
	case eventPairingAbandoned:
		if s.state != domain.StateConnecting {
			return s.snapshotLocked(), nil
		}
		s.state = domain.StateDisconnected
	case eventDisconnected:
		s.state = domain.StateDisconnected
		s.record = nil
	default:
		return s.snapshotLocked(), fmt.Errorf("%w: %s", ErrInvalidTransition, event.kind)
	}

	snapshot := s.snapshotLocked()
	s.publishLocked(snapshot)
	return snapshot, nil
}

func (s *ConnectionStateStore) snapshotLocked() domain.ConnectionSnapshot {
	snapshot := domain.ConnectionSnapshot{State: s.state}
	if s.state == domain.StatePaired && s.record != nil {
		record := s.record.Clone()
		snapshot.Record = &record
	}
	return snapshot
}

func (s *ConnectionStateStore) publishLocked(snapshot domain.ConnectionSnapshot) {
	for _, ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the oldest snapshot so the latest state always gets through.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
