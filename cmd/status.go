package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/bridge/relay"
	statusadapter "github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/render/status"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/spf13/cobra"
)

type cachedSessionLister interface {
	CachedSessions(ctx context.Context) ([]domain.SessionEntry, error)
}

type statusJSON struct {
	Network        string                 `json:"network"`
	State          domain.ConnectionState `json:"state"`
	Accounts       []domain.AccountID     `json:"accounts,omitempty"`
	Topic          string                 `json:"topic,omitempty"`
	PairedAt       *time.Time             `json:"paired_at,omitempty"`
	Sessions       []sessionJSON          `json:"sessions"`
	SessionsCached bool                   `json:"sessions_cached"`
	Notice         string                 `json:"notice,omitempty"`
}

type sessionJSON struct {
	Topic     string              `json:"topic"`
	Peer      domain.PeerMetadata `json:"peer"`
	CreatedAt time.Time           `json:"created_at"`
}

func newStatusCmd(loader *appLoader) *cobra.Command {
	var (
		asJSON   bool
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the pairing state and wallet sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}
			defer closeApp(app, &err)

			if watch {
				if asJSON {
					return errors.New("--watch cannot be combined with --json")
				}
				return statusadapter.Watch(cmd.Context(), func(ctx context.Context) statusadapter.Report {
					return loadStatusReport(ctx, app)
				}, statusadapter.WatchOptions{
					Interval: interval,
					Input:    cmd.InOrStdin(),
					Output:   cmd.OutOrStdout(),
					Now:      app.now,
				})
			}

			report := loadStatusReport(cmd.Context(), app)
			return writeStatusOutput(cmd, app, report, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep redrawing the status view")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Refresh interval for --watch")
	return cmd
}

// loadStatusReport prefers the live session table and falls back to the last
// cached one when the bridge cannot be reached.
func loadStatusReport(ctx context.Context, app *app) statusadapter.Report {
	report := statusadapter.Report{Network: app.cfg.Bridge.Network}

	if err := app.wallet.Init(ctx); err != nil {
		app.logger.Warn().Err(err).Msg("wallet bridge unavailable")
		report.Snapshot = app.wallet.State()
		report.Sessions, report.SessionsCached = offlineSessions(ctx, app)
		report.Notice = fmt.Sprintf("Bridge unavailable: %v", err)
		if record := app.pairingCache.Load(ctx); record != nil {
			report.Notice += fmt.Sprintf("\nLast paired account %s could not be verified.", record.Primary())
		}
		return report
	}

	report.Snapshot = app.wallet.State()
	bridge := app.controller.Bridge()
	if bridge == nil {
		return report
	}

	sessions, err := bridge.Sessions(ctx)
	if err == nil {
		report.Sessions = sessions
		return report
	}

	report.Notice = fmt.Sprintf("Live sessions unavailable: %v", err)
	if cached, ok := bridge.(cachedSessionLister); ok {
		if sessions, cacheErr := cached.CachedSessions(ctx); cacheErr == nil {
			report.Sessions = sessions
			report.SessionsCached = true
		}
	}
	return report
}

func offlineSessions(ctx context.Context, app *app) ([]domain.SessionEntry, bool) {
	names, err := app.databases.Names(ctx)
	if err != nil || !slices.Contains(names, relay.SessionDatabase) {
		return nil, false
	}

	db, err := app.databases.Open(ctx, relay.SessionDatabase)
	if err != nil {
		app.logger.Debug().Err(err).Msg("open cached session table")
		return nil, false
	}
	cache, err := relay.NewSessionCache(ctx, db)
	if err != nil {
		_ = db.Close()
		app.logger.Debug().Err(err).Msg("open cached session table")
		return nil, false
	}
	defer cache.Close()

	sessions, err := cache.List(ctx)
	if err != nil {
		app.logger.Debug().Err(err).Msg("list cached sessions")
		return nil, false
	}
	return sessions, true
}

func writeStatusOutput(cmd *cobra.Command, app *app, report statusadapter.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(toStatusJSON(report))
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), app.statusRenderer(report, statusadapter.RenderOptions{Now: app.now()}))
	return err
}

func toStatusJSON(report statusadapter.Report) statusJSON {
	out := statusJSON{
		Network:        report.Network,
		State:          report.Snapshot.State,
		Sessions:       make([]sessionJSON, 0, len(report.Sessions)),
		SessionsCached: report.SessionsCached,
		Notice:         report.Notice,
	}

	if record := report.Snapshot.Record; record != nil {
		pairedAt := record.PairedAt
		out.Accounts = record.AccountIDs
		out.Topic = record.Topic
		out.PairedAt = &pairedAt
	}

	for _, session := range report.Sessions {
		out.Sessions = append(out.Sessions, sessionJSON{
			Topic:     session.Topic,
			Peer:      session.Peer,
			CreatedAt: session.CreatedAt,
		})
	}

	return out
}
