package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const pairingWaitLabel = "Waiting for wallet approval"

type pairResultMsg struct {
	account domain.AccountID
	err     error
}

// pairSpinnerModel shows a countdown to the pairing deadline while the
// wallet approves the proposal.
type pairSpinnerModel struct {
	spinner  spinner.Model
	deadline time.Time
	now      func() time.Time
	pair     tea.Cmd
	hint     lipgloss.Style

	account domain.AccountID
	err     error
	done    bool
}

func newPairSpinnerModel(deadline time.Time, now func() time.Time, pair tea.Cmd) pairSpinnerModel {
	return pairSpinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		deadline: deadline,
		now:      now,
		pair:     pair,
		hint:     lipgloss.NewStyle().Faint(true),
	}
}

func (m pairSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.pair)
}

func (m pairSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case pairResultMsg:
		m.done = true
		m.account = msg.account
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m pairSpinnerModel) View() string {
	if m.done {
		return ""
	}

	label := pairingWaitLabel + "..."
	if !m.deadline.IsZero() {
		left := m.deadline.Sub(m.now()).Round(time.Second)
		if left < 0 {
			left = 0
		}
		label = fmt.Sprintf("%s %s", label, m.hint.Render(fmt.Sprintf("(%s left)", left)))
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), label)
}

// runPairSpinner runs pair behind a spinner on output and returns the
// approved account.
func runPairSpinner(ctx context.Context, output io.Writer, timeout time.Duration, now func() time.Time, pair func(context.Context) (domain.AccountID, error)) (domain.AccountID, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = now().Add(timeout)
	}

	pairCmd := func() tea.Msg {
		account, err := pair(ctx)
		return pairResultMsg{account: account, err: err}
	}

	p := tea.NewProgram(
		newPairSpinnerModel(deadline, now, pairCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	result, ok := finalModel.(pairSpinnerModel)
	if !ok {
		return "", fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}
	return result.account, result.err
}
