package domain

import (
	"net/url"
	"strings"
	"time"
)

type PeerMetadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Icons       []string `json:"icons,omitempty"`
}

func (p PeerMetadata) IsZero() bool {
	return strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.URL) == ""
}

// Matches reports whether p satisfies the expected peer. A zero expectation matches any peer.
func (p PeerMetadata) Matches(expected PeerMetadata) bool {
	if expected.IsZero() {
		return true
	}
	if name := strings.TrimSpace(expected.Name); name != "" {
		if !strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return false
		}
	}
	if expectedHost := hostOf(expected.URL); expectedHost != "" {
		if host := hostOf(p.URL); host != "" && host != expectedHost {
			return false
		}
	}
	return true
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(parsed.Hostname())
}

// SessionEntry is one row of the bridge's live session table. It is never mutated here.
type SessionEntry struct {
	Topic     string
	Peer      PeerMetadata
	CreatedAt time.Time
}
