package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Report is everything the status view shows.
type Report struct {
	Network  string
	Snapshot domain.ConnectionSnapshot
	Sessions []domain.SessionEntry
	// SessionsCached marks Sessions as the last table seen rather than a live listing.
	SessionsCached bool
	Notice         string
}

type RenderOptions struct {
	Now time.Time
}

func renderView(report Report, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("TraceTrade Wallet"),
		s.header.Render(fmt.Sprintf("network: %s", valueOr(report.Network, "unknown"))),
		stateLine(report.Snapshot.State, s),
	}

	if record := report.Snapshot.Record; record != nil {
		lines = append(lines, s.section.Render(renderPairing(*record, opts, s)))
	}

	lines = append(lines, s.section.Render(renderSessions(report, opts, s)))

	if notice := strings.TrimSpace(report.Notice); notice != "" {
		lines = append(lines, s.section.Render(s.warning.Render(notice)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func stateLine(state domain.ConnectionState, s styles) string {
	style := s.disconnected
	switch state {
	case domain.StatePaired:
		style = s.paired
	case domain.StateConnecting:
		style = s.connecting
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render("state:"), " ", style.Render(state.String()))
}

func renderPairing(record domain.PairingRecord, opts RenderOptions, s styles) string {
	parts := []string{
		s.account.Render(fmt.Sprintf("Account: %s", record.Primary())),
	}

	if len(record.AccountIDs) > 1 {
		others := make([]string, 0, len(record.AccountIDs)-1)
		for _, id := range record.AccountIDs[1:] {
			others = append(others, string(id))
		}
		parts = append(parts, s.detail.Render("also: "+strings.Join(others, ", ")))
	}

	parts = append(parts, s.detail.Render("topic: "+record.Topic))
	if record.RawTopic != "" && record.RawTopic != record.Topic {
		parts = append(parts, s.meta.Render("first seen as: "+record.RawTopic))
	}
	if !record.PairedAt.IsZero() {
		parts = append(parts, s.meta.Render("paired "+formatSince(record.PairedAt, opts.Now)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderSessions(report Report, opts RenderOptions, s styles) string {
	header := fmt.Sprintf("sessions: %d", len(report.Sessions))
	if report.SessionsCached {
		header += " (cached)"
	}
	parts := []string{s.header.Render(header)}

	if len(report.Sessions) == 0 {
		parts = append(parts, s.empty.Render("No wallet sessions."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	activeTopic := ""
	if report.Snapshot.Record != nil {
		activeTopic = report.Snapshot.Record.Topic
	}

	for _, session := range report.Sessions {
		parts = append(parts, sessionLine(session, activeTopic, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func sessionLine(session domain.SessionEntry, activeTopic string, opts RenderOptions, s styles) string {
	segments := []string{
		s.detail.Render("- " + session.Topic),
		" ",
		s.key.Render(peerLabel(session.Peer)),
	}
	if !session.CreatedAt.IsZero() {
		segments = append(segments, " ", s.meta.Render("("+formatSince(session.CreatedAt, opts.Now)+")"))
	}
	if activeTopic != "" && sessionTopicMatches(session.Topic, activeTopic) {
		segments = append(segments, " ", s.active.Render("[active]"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}

func sessionTopicMatches(topic, active string) bool {
	base := func(value string) string {
		value = strings.TrimSpace(value)
		if idx := strings.Index(value, "@"); idx >= 0 {
			return value[:idx]
		}
		return value
	}
	return base(topic) == base(active)
}

func peerLabel(peer domain.PeerMetadata) string {
	name := strings.TrimSpace(peer.Name)
	if name == "" {
		name = "unknown peer"
	}
	if url := strings.TrimSpace(peer.URL); url != "" {
		return fmt.Sprintf("%s <%s>", name, url)
	}
	return name
}

func formatAt(at, now time.Time) string {
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := at.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return at.Format("15:04")
	}

	return at.Format("15:04 on 02 Jan")
}

func formatSince(at, now time.Time) string {
	if now.IsZero() {
		return "at " + formatAt(at, now)
	}

	if at.After(now) {
		return "just now"
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%s ago (%s)", plural(int(elapsed.Minutes()), "minute"), formatAt(at, now))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%s ago (%s)", plural(int(elapsed.Hours()), "hour"), formatAt(at, now))
	default:
		days := int(math.Floor(elapsed.Hours() / 24))
		return fmt.Sprintf("%s ago (%s)", plural(days, "day"), formatAt(at, now))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
