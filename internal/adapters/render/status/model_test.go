package status

import (
	"context"
	"testing"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchModelRefreshesReport(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	loads := 0
	load := func(context.Context) Report {
		loads++
		return Report{
			Network:  "testnet",
			Snapshot: domain.ConnectionSnapshot{State: domain.StatePaired, Record: &domain.PairingRecord{AccountIDs: []domain.AccountID{"0.0.1234"}, Topic: "abc@2"}},
		}
	}

	m := newWatchModel(context.Background(), load, WatchOptions{Interval: time.Second, Now: func() time.Time { return at }})
	assert.Contains(t, m.View(), "Loading wallet status")

	msg := m.Init()()
	require.IsType(t, reportMsg{}, msg)

	next, tick := m.Update(msg)
	m = next.(watchModel)
	require.NotNil(t, tick)
	assert.Equal(t, 1, loads)
	assert.Contains(t, m.View(), "Account: 0.0.1234")
	assert.Contains(t, m.View(), "updated 12:30:00, every 1s")
	assert.NotContains(t, m.View(), "refreshing")

	next, fetch := m.Update(refreshMsg{})
	m = next.(watchModel)
	require.NotNil(t, fetch)
	assert.Contains(t, m.View(), "refreshing...")

	next, again := m.Update(refreshMsg{})
	m = next.(watchModel)
	assert.Nil(t, again)

	next, _ = m.Update(fetch())
	m = next.(watchModel)
	assert.Equal(t, 2, loads)
	assert.Equal(t, 2, m.refreshes)
}

func TestWatchModelKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		key       tea.KeyMsg
		wantQuit  bool
		wantFetch bool
	}{
		{name: "q quits", key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, wantQuit: true},
		{name: "ctrl+c quits", key: tea.KeyMsg{Type: tea.KeyCtrlC}, wantQuit: true},
		{name: "r refreshes", key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}, wantFetch: true},
		{name: "other keys are ignored", key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newWatchModel(context.Background(), func(context.Context) Report { return Report{} }, WatchOptions{})
			m.loading = false
			m.refreshes = 1

			_, cmd := m.Update(tt.key)
			switch {
			case tt.wantQuit:
				require.NotNil(t, cmd)
				assert.Equal(t, tea.Quit(), cmd())
			case tt.wantFetch:
				require.NotNil(t, cmd)
				assert.IsType(t, reportMsg{}, cmd())
			default:
				assert.Nil(t, cmd)
			}
		})
	}
}

func TestWatchModelDefaultsInterval(t *testing.T) {
	t.Parallel()

	m := newWatchModel(context.Background(), func(context.Context) Report { return Report{} }, WatchOptions{})
	assert.Equal(t, 5*time.Second, m.interval)
}
