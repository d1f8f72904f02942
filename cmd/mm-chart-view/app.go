package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/x1001000/mm-chart-view/pkg/engine"
	"github.com/x1001000/mm-chart-view/pkg/macromicro"
	"github.com/x1001000/mm-chart-view/pkg/modeladapter"
)

// appState represents the application state machine.
type appState int

const (
	stateIdle appState = iota
	stateLoading
	stateAsking
)

// appModel is the root bubbletea model: sidebar on the left, transcript and
// input box on the right.
type appModel struct {
	ctx      context.Context
	eng      *engine.Engine
	sess     *engine.Session
	sidebar  sidebarModel
	chatView chatViewModel
	inputBox inputModel
	state    appState
	width    int
	height   int
	opStart  time.Time
}

func newAppModel(ctx context.Context, eng *engine.Engine, sess *engine.Session) appModel {
	return appModel{
		ctx:      ctx,
		eng:      eng,
		sess:     sess,
		sidebar:  newSidebar(),
		chatView: newChatView(),
		inputBox: newInput(),
		state:    stateIdle,
	}
}

func (m appModel) Init() tea.Cmd {
	// Delay focusing the input so that stale terminal escape-sequence
	// responses (e.g. OSC 11 background-color) are drained first.
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return initDrainMsg{}
	})
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case initDrainMsg:
		cmd := m.inputBox.enable()
		return m, cmd

	case inputSubmitMsg:
		return m.handleSubmit(msg)

	case loadCompleteMsg:
		return m.handleLoadComplete(msg)

	case askCompleteMsg:
		return m.handleAskComplete(msg)

	case tickMsg:
		if m.state != stateIdle {
			m.chatView.advanceSpinner()
			return m, tickCmd()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputBox, cmd = m.inputBox.Update(msg)
	return m, cmd
}

func (m appModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	right := lipgloss.JoinVertical(lipgloss.Left,
		m.chatView.View(),
		m.inputBox.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), right)
}

func (m *appModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	chatWidth := max(m.width-sidebarWidth-2, 20)
	initMarkdownRenderer(chatWidth - 4)
	m.inputBox.setWidth(chatWidth)
	m.sidebar.height = m.height

	inputHeight := m.inputBox.viewHeight()
	chatHeight := max(m.height-inputHeight, 4)
	m.chatView.setSize(chatWidth, chatHeight)

	return m, nil
}

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyPgUp:
		m.chatView.scrollUp()
		return m, nil
	case tea.KeyPgDown:
		m.chatView.scrollDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.inputBox, cmd = m.inputBox.Update(msg)
	return m, cmd
}

func (m *appModel) handleSubmit(msg inputSubmitMsg) (tea.Model, tea.Cmd) {
	text := msg.text

	switch {
	case text == "/quit" || text == "/exit":
		return m, tea.Quit

	case text == "/help":
		m.chatView.commitInfo(helpText())
		return m, nil

	case text == "/clear":
		if err := m.sess.Clear(); err != nil {
			m.chatView.commitError("error: " + err.Error())
			return m, nil
		}
		m.sidebar.clear()
		m.chatView.Clear()
		m.inputBox.setPlaceholder(urlPlaceholder)
		m.chatView.commitInfo("Session cleared. Paste a chart URL to begin.")
		return m, nil

	case strings.HasPrefix(text, "/load "):
		return m.startLoad(strings.TrimSpace(strings.TrimPrefix(text, "/load ")))

	case !m.sess.Loaded():
		// Empty state: any submission is treated as a chart URL.
		return m.startLoad(text)

	default:
		// A pasted chart URL always loads, even mid-conversation.
		if _, ok := macromicro.ExtractChartID(text); ok {
			return m.startLoad(text)
		}
		return m.startAsk(text)
	}
}

func (m *appModel) startLoad(url string) (tea.Model, tea.Cmd) {
	if m.state != stateIdle {
		return m, nil
	}

	m.state = stateLoading
	m.chatView.setProcessing(true, "Loading chart...")
	m.inputBox.disable()
	m.opStart = time.Now()

	ctx := m.ctx
	sess := m.sess
	start := m.opStart
	loadCmd := func() tea.Msg {
		res, err := sess.LoadChart(ctx, url)
		return loadCompleteMsg{res: res, err: err, duration: time.Since(start)}
	}

	return m, tea.Batch(loadCmd, tickCmd())
}

func (m *appModel) handleLoadComplete(msg loadCompleteMsg) (tea.Model, tea.Cmd) {
	m.state = stateIdle
	m.chatView.setProcessing(false, "")
	focusCmd := m.inputBox.enable()

	if msg.err != nil {
		if errors.Is(msg.err, engine.ErrInvalidURL) {
			m.chatView.commitError("Invalid URL. Please enter a valid MacroMicro chart URL.")
		} else {
			m.chatView.commitError("error: " + msg.err.Error())
		}
		return m, focusCmd
	}

	// New snapshot — the transcript was reset, so the view resets with it.
	m.chatView.Clear()
	m.chatView.commitOK(fmt.Sprintf("Chart %s loaded! (%s)", msg.res.ChartID, fmtDuration(msg.duration)))

	if msg.res.DataErr != nil {
		m.chatView.commitError("Failed to load chart data: " + msg.res.DataErr.Error())
	}
	if msg.res.ImageErr != nil {
		m.chatView.commitError("Failed to fetch image: " + msg.res.ImageErr.Error())
	}

	if snap, ok := m.sess.Snapshot(); ok {
		m.sidebar.setSnapshot(snap)
	}
	m.inputBox.setPlaceholder(questionPlaceholder)

	return m, focusCmd
}

func (m *appModel) startAsk(question string) (tea.Model, tea.Cmd) {
	if m.state != stateIdle {
		return m, nil
	}

	m.chatView.commitUserMessage(question)
	m.state = stateAsking
	m.chatView.setProcessing(true, "")
	m.inputBox.disable()
	m.opStart = time.Now()

	ctx := m.ctx
	sess := m.sess
	start := m.opStart
	askCmd := func() tea.Msg {
		res, err := sess.Ask(ctx, question)
		return askCompleteMsg{res: res, err: err, duration: time.Since(start)}
	}

	return m, tea.Batch(askCmd, tickCmd())
}

func (m *appModel) handleAskComplete(msg askCompleteMsg) (tea.Model, tea.Cmd) {
	m.state = stateIdle
	m.chatView.setProcessing(false, "")
	focusCmd := m.inputBox.enable()

	if msg.err != nil {
		if errors.Is(msg.err, engine.ErrNoChart) {
			m.chatView.commitError("Load a chart before asking questions.")
		} else {
			m.chatView.commitError("error: " + msg.err.Error())
		}
		return m, focusCmd
	}

	if msg.res.Err != nil {
		// The session converted the failure into a visible error turn.
		m.chatView.commitError(msg.res.Answer.TextContent())
	} else {
		m.chatView.commitAnswer(msg.res.Answer.TextContent())
	}

	m.updateTokenCounter(msg.duration)

	return m, focusCmd
}

// updateTokenCounter refreshes the usage line displayed below the input.
func (m *appModel) updateTokenCounter(d time.Duration) {
	ur, ok := m.eng.Completer().(modeladapter.UsageReporter)
	if !ok {
		return
	}
	total := ur.UsageTracker().Total()
	if total.Total() > 0 {
		m.inputBox.statusLine = fmt.Sprintf("%s tokens · last answer %s", fmtTokens(total.Total()), fmtDuration(d))
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func helpText() string {
	return "Commands:\n" +
		"  /load <url>    Load (or reload) a chart by URL\n" +
		"  /clear         Discard the chart and transcript\n" +
		"  /help          Show this help message\n" +
		"  /quit          Exit\n\n" +
		"Shortcuts:\n" +
		"  Enter          Submit\n" +
		"  Alt+Enter      New line\n" +
		"  PgUp/PgDn      Scroll transcript\n" +
		"  Ctrl+C         Exit\n\n" +
		"Before a chart is loaded, anything you submit is treated as a chart URL."
}
