package domain

import (
	"fmt"
	"strings"
	"time"
)

type AccountID string

// NormalizeAccountID trims the value and drops a CAIP-10 "namespace:chain:" prefix.
func NormalizeAccountID(raw string) AccountID {
	trimmed := strings.TrimSpace(raw)
	if idx := strings.LastIndex(trimmed, ":"); idx >= 0 {
		trimmed = strings.TrimSpace(trimmed[idx+1:])
	}
	return AccountID(trimmed)
}

func NormalizeAccountIDs(raw []string) []AccountID {
	ids := make([]AccountID, 0, len(raw))
	seen := make(map[AccountID]struct{}, len(raw))
	for _, value := range raw {
		id := NormalizeAccountID(value)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StatePaired
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StatePaired:
		return "paired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s ConnectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type PairingRecord struct {
	AccountIDs []AccountID
	// Topic is the canonical session topic; RawTopic keeps the spelling first observed.
	Topic    string
	RawTopic string
	PairedAt time.Time
}

func (r PairingRecord) Validate() error {
	if len(r.AccountIDs) == 0 {
		return fmt.Errorf("account ids are required")
	}
	for i, id := range r.AccountIDs {
		if strings.TrimSpace(string(id)) == "" {
			return fmt.Errorf("account id %d is empty", i)
		}
	}
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

func (r PairingRecord) Primary() AccountID {
	if len(r.AccountIDs) == 0 {
		return ""
	}
	return r.AccountIDs[0]
}

func (r PairingRecord) HasAccount(raw string) bool {
	want := NormalizeAccountID(raw)
	if want == "" {
		return false
	}
	for _, id := range r.AccountIDs {
		if NormalizeAccountID(string(id)) == want {
			return true
		}
	}
	return false
}

func (r PairingRecord) Clone() PairingRecord {
	clone := r
	clone.AccountIDs = append([]AccountID(nil), r.AccountIDs...)
	return clone
}

func (r PairingRecord) SameAccounts(other PairingRecord) bool {
	if len(r.AccountIDs) != len(other.AccountIDs) {
		return false
	}
	for i := range r.AccountIDs {
		if r.AccountIDs[i] != other.AccountIDs[i] {
			return false
		}
	}
	return true
}

// ConnectionSnapshot is a copy of the connection state; Record is set only while paired.
type ConnectionSnapshot struct {
	State  ConnectionState
	Record *PairingRecord
}
