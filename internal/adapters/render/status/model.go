package status

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Loader produces a fresh report for every watch refresh.
type Loader func(ctx context.Context) Report

// WatchOptions configures Watch.
type WatchOptions struct {
	Interval time.Duration
	Input    io.Reader
	Output   io.Writer
	Now      func() time.Time
}

type reportMsg struct {
	report Report
	at     time.Time
}

type refreshMsg struct{}

type watchModel struct {
	ctx      context.Context
	load     Loader
	interval time.Duration
	now      func() time.Time
	styles   styles

	report    Report
	loadedAt  time.Time
	refreshes int
	loading   bool
}

func newWatchModel(ctx context.Context, load Loader, opts WatchOptions) watchModel {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return watchModel{
		ctx:      ctx,
		load:     load,
		interval: interval,
		now:      now,
		styles:   newStyles(),
		loading:  true,
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.fetch()
}

func (m watchModel) fetch() tea.Cmd {
	return func() tea.Msg {
		report := m.load(m.ctx)
		return reportMsg{report: report, at: m.now()}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportMsg:
		m.report = msg.report
		m.loadedAt = msg.at
		m.refreshes++
		m.loading = false
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return refreshMsg{} })
	case refreshMsg:
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.fetch()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.fetch()
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.refreshes == 0 {
		return m.styles.empty.Render("Loading wallet status...") + "\n"
	}

	footer := fmt.Sprintf("updated %s, every %s. r refresh, q quit", m.loadedAt.Format("15:04:05"), m.interval)
	if m.loading {
		footer = "refreshing... " + footer
	}
	return renderView(m.report, RenderOptions{Now: m.loadedAt}, m.styles) + "\n\n" + m.styles.meta.Render(footer) + "\n"
}

// Render returns the styled status view for a single report.
func Render(report Report, opts RenderOptions) string {
	return renderView(report, opts, newStyles())
}

// Watch redraws the status view every interval until the user quits or ctx
// ends.
func Watch(ctx context.Context, load Loader, opts WatchOptions) error {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(opts.Input)}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	if _, err := tea.NewProgram(newWatchModel(ctx, load, opts), programOpts...).Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("watch status: %w", err)
	}
	return nil
}
