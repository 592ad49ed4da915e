package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KernelPryanic/fs-manager/internal/queue"
	"github.com/KernelPryanic/fs-manager/internal/session"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	// outputScrollback bounds the lines kept for the output viewport.
	outputScrollback = 200

	// hashPollInterval paces the hashsum batch progress polling.
	hashPollInterval = 100 * time.Millisecond
)

//nolint:gochecknoglobals
var (
	// headerStyle renders a panel's title bar.
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("60"))

	// frameStyle renders a panel's frame.
	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60"))

	// bodyStyle renders a panel's content.
	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// hintStyle renders the key hints under the panels.
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
)

// HashProgressMsg delivers the [queue.Progress] of the session's most
// recent hashsum batch into the program.
type HashProgressMsg struct {
	at   time.Time
	data queue.Progress
}

// HashDoneMsg signals the completion of a hashsum batch launched from
// the shell.
type HashDoneMsg struct {
	op         string
	mismatched []string
	err        error
}

// TeaModel is the principal [tea.Model] of the interactive shell.
type TeaModel struct {
	width  int
	height int

	cancel context.CancelFunc

	handler *Handler
	session *session.Session

	innerWidth int

	hashData queue.Progress
	hashBar  progress.Model

	input      textinput.Model
	outputView viewport.Model
	output     []string

	ready bool
}

// NewTeaModel returns the initial model: a focused command line, an
// empty output viewport and an idle hashsum progress bar.
//
//nolint:mnd
func NewTeaModel(handler *Handler, sess *session.Session, cancel context.CancelFunc) TeaModel {
	input := textinput.New()
	input.Prompt = "fsm> "
	input.Placeholder = "help lists the available commands"
	input.CharLimit = 512
	input.Focus()

	return TeaModel{
		handler:    handler,
		session:    sess,
		cancel:     cancel,
		hashBar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(80)),
		input:      input,
		outputView: viewport.New(80, 20),
		output:     make([]string, 0, outputScrollback),
	}
}

// Init schedules the first hashsum progress poll along with the screen
// setup.
func (m TeaModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		textinput.Blink,
		pollHashProgress(m.session),
	)
}

// pollHashProgress produces a [tea.Cmd] that reports the session's
// hashsum batch progress after one tick.
func pollHashProgress(sess *session.Session) tea.Cmd {
	return tea.Tick(hashPollInterval, func(t time.Time) tea.Msg {
		return HashProgressMsg{at: t, data: sess.HashProgress()}
	})
}

// Update is the principal message handling method of the model. It sets
// the internal state of the model, for later rendering.
//
//nolint:funlen,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()

			return m, tea.Quit

		case "esc":
			return m, tea.Quit

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()

			if line == "" {
				return m, nil
			}

			result, execCmd := m.executeCommand(line)
			if result == "" {
				m.appendOutput("fsm> " + line + "\n")
			} else {
				m.appendOutput("fsm> "+line+"\n", result+"\n")
			}

			return m, execCmd

		case "pgup", "pgdown":
			m.outputView, cmd = m.outputView.Update(msg)

			return m, cmd

		default:
			m.input, cmd = m.input.Update(msg)

			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

		if !m.ready {
			m.ready = true
			m.handler.Ready.Store(true)
		}

	case HashProgressMsg:
		m.hashData = msg.data

		cmds = append(cmds,
			m.hashBar.SetPercent(float64(m.hashData.ProgressPct)/100), //nolint:mnd
			pollHashProgress(m.session),
		)

	case HashDoneMsg:
		m.appendOutput(formatHashDone(msg) + "\n")

	case LogMsg:
		m.appendOutput(string(msg))

	case progress.FrameMsg:
		updated, cmd := m.hashBar.Update(msg)
		if bar, ok := updated.(progress.Model); ok {
			m.hashBar = bar
		}
		cmds = append(cmds, cmd)
	}

	// Key messages returned above; the viewport sees the rest.
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		m.outputView, cmd = m.outputView.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// resize distributes a new terminal size over the panels: the bar and
// the command line span the content width, the output viewport takes
// the lower half of the screen.
//
//nolint:mnd
func (m *TeaModel) resize(width, height int) {
	m.width = width
	m.height = height

	m.innerWidth = width - 2

	m.hashBar.Width = m.innerWidth
	m.input.Width = m.innerWidth - 8

	m.outputView.Width = m.innerWidth
	m.outputView.Height = height - (height / 2) - 3

	if len(m.output) > 0 {
		m.refreshViewport()
	}
}

// appendOutput adds lines to the scrollback, trims it to its bound and
// re-renders the viewport.
func (m *TeaModel) appendOutput(lines ...string) {
	m.output = append(m.output, lines...)
	if excess := len(m.output) - outputScrollback; excess > 0 {
		m.output = m.output[excess:]
	}

	m.refreshViewport()
}

// refreshViewport re-renders the scrollback into the viewport and keeps
// it scrolled to the bottom.
func (m *TeaModel) refreshViewport() {
	content := lipgloss.NewStyle().
		Width(m.outputView.Width).
		Render(strings.TrimSuffix(strings.Join(m.output, ""), "\n"))

	m.outputView.SetContent(content)
	m.outputView.GotoBottom()
}

// framed wraps panel content into the full-width frame.
func (m TeaModel) framed(content string) string {
	return frameStyle.Width(m.innerWidth).Render(content)
}

// titled prefixes panel content with a title bar.
func (m TeaModel) titled(title, content string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Width(m.innerWidth).Render(title),
		content,
	)
}

// View renders the panels of the shell: session status, hashsum batch
// progress, output and the command line.
func (m TeaModel) View() string {
	if !m.ready {
		return "Preparing the shell..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.framed(m.titled("Session", bodyStyle.Width(m.innerWidth).Render(m.formatStatusView()))),
		m.framed(m.formatProgressView()),
		m.framed(m.titled("Output", lipgloss.NewStyle().Width(m.innerWidth).Render(m.outputView.View()))),
		m.framed(m.input.View()),
		hintStyle.Width(m.innerWidth).Render(
			"enter: run command • pgup/pgdown: scroll output • esc: quit shell • ctrl+c: quit program",
		),
	)
}

// formatStatusView renders the session panel.
func (m TeaModel) formatStatusView() string {
	flags := make([]string, 0, 2) //nolint:mnd
	if m.session.Temporary() {
		flags = append(flags, "temporary")
	}
	if m.session.RootBound() {
		flags = append(flags, "root-bound")
	}

	flagInfo := ""
	if len(flags) > 0 {
		flagInfo = " [" + strings.Join(flags, ", ") + "]"
	}

	return fmt.Sprintf(
		"Base: %s%s\nPosition: %s\nNodes: %d, Algorithm: %s",
		m.session.Base(),
		flagInfo,
		m.session.Pwd(),
		m.session.Tree().Len(),
		m.session.Algorithm(),
	)
}

// formatProgressView renders the hashsum batch panel: an idle notice
// before the first batch, the bar with live counters during one and the
// closing times after it.
func (m TeaModel) formatProgressView() string {
	if !m.hashData.HasStarted {
		return m.titled("Hashsum Batch",
			bodyStyle.Width(m.innerWidth).Render("No hashsum batch ran yet.\n"))
	}

	lines := []string{fmt.Sprintf(
		"%d of %d files (%.1f%%), in flight: %d, skipped: %d",
		m.hashData.ProcessedItems,
		m.hashData.TotalItems,
		m.hashData.ProgressPct,
		m.hashData.InProgressItems,
		m.hashData.SkippedItems,
	)}

	if m.hashData.HasFinished {
		lines = append(lines, fmt.Sprintf(
			"Started %s, Finished %s",
			m.hashData.StartTime.Format("15:04:05"),
			m.hashData.FinishTime.Format("15:04:05"),
		))
	} else {
		speed := fmt.Sprintf("%.0f %s", m.hashData.ProcessingSpeed, m.hashData.ProcessingSpeedUnit)
		if m.hashData.ProcessingSpeedUnit == "bytes/sec" {
			speed = humanize.Bytes(uint64(m.hashData.ProcessingSpeed)) + "/s"
		}

		eta := "unknown"
		if !m.hashData.ETA.IsZero() {
			eta = fmt.Sprintf("%s (%.1f min left)",
				m.hashData.ETA.Format("15:04:05"),
				time.Until(m.hashData.ETA).Minutes(),
			)
		}

		lines = append(lines, fmt.Sprintf(
			"Started %s, Speed: %s, ETA: %s",
			m.hashData.StartTime.Format("15:04:05"), speed, eta,
		))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Width(m.innerWidth).Render("Hashsum Batch"),
		"",
		m.hashBar.View(),
		"",
		bodyStyle.Width(m.innerWidth).Render(strings.Join(lines, "\n")+"\n"),
	)
}

// formatHashDone renders the completion notice of a hashsum batch.
func formatHashDone(msg HashDoneMsg) string {
	switch {
	case msg.err != nil:
		return fmt.Sprintf("%s failed: %v", msg.op, msg.err)

	case msg.op == "check" && len(msg.mismatched) > 0:
		return fmt.Sprintf("check finished: %d mismatched: %s",
			len(msg.mismatched), strings.Join(msg.mismatched, ", "))

	case msg.op == "check":
		return "check finished: all hashsums match"

	default:
		return "hash finished: hashsums captured"
	}
}
