package status

import (
	"testing"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRenderPairedStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	output := Render(Report{
		Network: "testnet",
		Snapshot: domain.ConnectionSnapshot{
			State: domain.StatePaired,
			Record: &domain.PairingRecord{
				AccountIDs: []domain.AccountID{"0.0.1234", "0.0.5678"},
				Topic:      "abc@2",
				RawTopic:   "abc",
				PairedAt:   now.Add(-2 * time.Hour),
			},
		},
		Sessions: []domain.SessionEntry{
			{Topic: "abc@2", Peer: domain.PeerMetadata{Name: "HashPack", URL: "https://www.hashpack.app"}, CreatedAt: now.Add(-2 * time.Hour)},
			{Topic: "old@2", Peer: domain.PeerMetadata{}, CreatedAt: now.Add(-3 * 24 * time.Hour)},
		},
	}, RenderOptions{Now: now})

	assert.Contains(t, output, "TraceTrade Wallet")
	assert.Contains(t, output, "network: testnet")
	assert.Contains(t, output, "paired")
	assert.Contains(t, output, "Account: 0.0.1234")
	assert.Contains(t, output, "also: 0.0.5678")
	assert.Contains(t, output, "topic: abc@2")
	assert.Contains(t, output, "first seen as: abc")
	assert.Contains(t, output, "paired 2 hours ago (10:00)")
	assert.Contains(t, output, "sessions: 2")
	assert.Contains(t, output, "HashPack <https://www.hashpack.app>")
	assert.Contains(t, output, "[active]")
	assert.Contains(t, output, "unknown peer")
	assert.Contains(t, output, "3 days ago (12:00 on 26 Feb)")
	assert.NotContains(t, output, "(cached)")
}

func TestRenderDisconnectedStatusWithCachedSessions(t *testing.T) {
	output := Render(Report{
		Snapshot:       domain.ConnectionSnapshot{State: domain.StateDisconnected},
		SessionsCached: true,
		Notice:         "relay unreachable: showing cached sessions",
	}, RenderOptions{})

	assert.Contains(t, output, "network: unknown")
	assert.Contains(t, output, "disconnected")
	assert.Contains(t, output, "sessions: 0 (cached)")
	assert.Contains(t, output, "No wallet sessions.")
	assert.Contains(t, output, "relay unreachable: showing cached sessions")
	assert.NotContains(t, output, "Account:")
	assert.NotContains(t, output, "[active]")
}

func TestFormatSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		now  time.Time
		want string
	}{
		{name: "without clock", at: now, want: "at 2026-03-01T12:00:00Z"},
		{name: "future", at: now.Add(time.Minute), now: now, want: "just now"},
		{name: "seconds", at: now.Add(-10 * time.Second), now: now, want: "just now"},
		{name: "one minute", at: now.Add(-time.Minute), now: now, want: "1 minute ago (11:59)"},
		{name: "hours", at: now.Add(-5 * time.Hour), now: now, want: "5 hours ago (07:00)"},
		{name: "one day", at: now.Add(-30 * time.Hour), now: now, want: "1 day ago (06:00 on 28 Feb)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSince(tt.at, tt.now))
		})
	}
}

func TestSessionTopicMatchesIgnoresVersionSuffix(t *testing.T) {
	assert.True(t, sessionTopicMatches("abc@2", "abc"))
	assert.True(t, sessionTopicMatches(" abc ", "abc@2"))
	assert.False(t, sessionTopicMatches("abd@2", "abc@2"))
}
